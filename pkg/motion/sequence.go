package motion

import (
	"sort"
	"time"

	"github.com/openmanip/go-armctl/pkg/joint"
)

// Keyframe is one step of a canned gesture: a target pose in degrees, the
// time to ease into it, and an optional gripper toggle applied before the
// move starts. A nil Gripper leaves the gripper alone.
type Keyframe struct {
	Pose     joint.Vector
	Duration time.Duration
	Gripper  *bool
}

// Sequence is a named, read-only list of keyframes. Library entries are
// never mutated at runtime.
type Sequence struct {
	Name      string
	Keyframes []Keyframe
}

// Duration sums all keyframe durations.
func (s Sequence) Duration() time.Duration {
	var total time.Duration
	for _, kf := range s.Keyframes {
		total += kf.Duration
	}
	return total
}

// Library maps sequence names to sequences.
type Library map[string]Sequence

// Get looks up a sequence by name.
func (l Library) Get(name string) (Sequence, bool) {
	s, ok := l[name]
	return s, ok
}

// Names returns all sequence names, sorted.
func (l Library) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func gripper(closed bool) *bool { return &closed }

// DefaultLibrary returns the built-in gestures. Every keyframe pose passes
// the stock safety checker.
func DefaultLibrary() Library {
	lib := Library{}
	add := func(s Sequence) { lib[s.Name] = s }

	add(Sequence{Name: "home", Keyframes: []Keyframe{
		{Pose: joint.Zero(), Duration: 1200 * time.Millisecond},
	}})

	add(Sequence{Name: "wave", Keyframes: []Keyframe{
		{Pose: joint.Vector{30, 30, 60, 0, -30, 0}, Duration: 600 * time.Millisecond},
		{Pose: joint.Vector{30, 30, 60, 40, -30, 0}, Duration: 350 * time.Millisecond},
		{Pose: joint.Vector{30, 30, 60, -40, -30, 0}, Duration: 350 * time.Millisecond},
		{Pose: joint.Vector{30, 30, 60, 40, -30, 0}, Duration: 350 * time.Millisecond},
		{Pose: joint.Vector{30, 30, 60, -40, -30, 0}, Duration: 350 * time.Millisecond},
		{Pose: joint.Zero(), Duration: 800 * time.Millisecond},
	}})

	add(Sequence{Name: "nod", Keyframes: []Keyframe{
		{Pose: joint.Vector{0, 15, 45, 0, 45, 0}, Duration: 450 * time.Millisecond},
		{Pose: joint.Vector{0, 15, 45, 0, -20, 0}, Duration: 450 * time.Millisecond},
		{Pose: joint.Vector{0, 15, 45, 0, 45, 0}, Duration: 450 * time.Millisecond},
		{Pose: joint.Zero(), Duration: 700 * time.Millisecond},
	}})

	add(Sequence{Name: "spin", Keyframes: []Keyframe{
		{Pose: joint.Vector{150, 10, 30, 0, 0, 0}, Duration: 1000 * time.Millisecond},
		{Pose: joint.Vector{-150, 10, 30, 0, 0, 0}, Duration: 1800 * time.Millisecond},
		{Pose: joint.Zero(), Duration: 1000 * time.Millisecond},
	}})

	add(Sequence{Name: "dance", Keyframes: []Keyframe{
		{Pose: joint.Vector{-45, 25, 80, 30, -45, 0}, Duration: 500 * time.Millisecond, Gripper: gripper(true)},
		{Pose: joint.Vector{45, 25, 80, -30, -45, 0}, Duration: 500 * time.Millisecond},
		{Pose: joint.Vector{-45, 40, 60, 30, -30, 45}, Duration: 500 * time.Millisecond, Gripper: gripper(false)},
		{Pose: joint.Vector{45, 40, 60, -30, -30, -45}, Duration: 500 * time.Millisecond},
		{Pose: joint.Vector{0, 10, 100, 0, -60, 0}, Duration: 600 * time.Millisecond, Gripper: gripper(true)},
		{Pose: joint.Zero(), Duration: 900 * time.Millisecond, Gripper: gripper(false)},
	}})

	return lib
}
