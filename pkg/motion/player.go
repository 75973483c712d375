package motion

import (
	"fmt"
	"sync"

	"github.com/openmanip/go-armctl/internal/log"
	"github.com/openmanip/go-armctl/pkg/safety"
)

// Gripper toggles the end effector. Dispatch failures are logged, never
// fatal to playback.
type Gripper interface {
	SetGripper(closed bool) error
}

// Player drives named keyframe sequences through the Executor. Playback is
// serialized: at most one sequence plays at a time, and a Play call while
// busy is a logged no-op, not an error. The Player is the only writer of its
// playing flag.
type Player struct {
	exec    *Executor
	checker *safety.Checker
	library Library
	gripper Gripper

	mu      sync.Mutex
	playing bool
	current string
	stopCh  chan struct{}
}

// NewPlayer builds a player over an executor, checker and sequence library.
func NewPlayer(exec *Executor, checker *safety.Checker, library Library) *Player {
	return &Player{exec: exec, checker: checker, library: library}
}

// SetGripper attaches an optional gripper controller for keyframes that
// carry a gripper state.
func (p *Player) SetGripper(g Gripper) {
	p.gripper = g
}

// Library returns the sequence library.
func (p *Player) Library() Library { return p.library }

// IsPlaying reports whether a sequence is in flight.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Current returns the playing sequence name, or "".
func (p *Player) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Play starts a sequence asynchronously. An unknown name is an error. If a
// sequence is already playing the call logs and does nothing; it is not
// queued.
func (p *Player) Play(name string) error {
	seq, ok := p.library.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSequence, name)
	}

	p.mu.Lock()
	if p.playing {
		active := p.current
		p.mu.Unlock()
		log.Warn("sequence already playing, ignoring request", "active", active, "requested", name)
		return nil
	}
	p.playing = true
	p.current = name
	stopCh := make(chan struct{})
	p.stopCh = stopCh
	p.mu.Unlock()

	log.Info("sequence started", "sequence", name, "keyframes", len(seq.Keyframes), "duration", seq.Duration().String())
	go p.run(seq, stopCh)
	return nil
}

// Stop cancels the in-flight keyframe interpolation and clears the playing
// flag. The arm is not repositioned.
func (p *Player) Stop() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	name := p.current
	close(p.stopCh)
	p.clearLocked()
	p.mu.Unlock()

	p.exec.Cancel()
	log.Info("sequence stopped", "sequence", name)
}

// run walks the keyframes in order. A keyframe that fails validation aborts
// the remainder and leaves the arm at the last pose it reached.
func (p *Player) run(seq Sequence, stopCh chan struct{}) {
	defer p.finish(stopCh)

	for i, kf := range seq.Keyframes {
		select {
		case <-stopCh:
			return
		default:
		}

		clamped, err := ValidatePose(p.checker, kf.Pose)
		if err != nil {
			log.Error("keyframe rejected, aborting sequence",
				"sequence", seq.Name, "keyframe", i, "err", err)
			return
		}

		if kf.Gripper != nil && p.gripper != nil {
			if err := p.gripper.SetGripper(*kf.Gripper); err != nil {
				log.Error("gripper dispatch failed", "sequence", seq.Name, "keyframe", i, "err", err)
			}
		}

		h := p.exec.Move(clamped, kf.Duration)
		select {
		case <-h.Done():
			if h.Outcome() != OutcomeCompleted {
				log.Warn("keyframe trajectory preempted, aborting sequence",
					"sequence", seq.Name, "keyframe", i, "outcome", h.Outcome().String())
				return
			}
		case <-stopCh:
			return
		}
	}

	log.Info("sequence complete", "sequence", seq.Name)
}

// finish clears the playing flag unless Stop (or a newer Play) already did.
func (p *Player) finish(stopCh chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopCh == stopCh {
		p.clearLocked()
	}
}

func (p *Player) clearLocked() {
	p.playing = false
	p.current = ""
	p.stopCh = nil
}
