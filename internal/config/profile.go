package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openmanip/go-armctl/pkg/joint"
	"github.com/openmanip/go-armctl/pkg/kinematics"
	"github.com/openmanip/go-armctl/pkg/motion"
	"github.com/openmanip/go-armctl/pkg/safety"
)

// Profile describes one physical arm: limits, geometry and optional
// overrides for presets and gestures. Zero-valued sections fall back to the
// built-in defaults, so a profile file only needs the fields it changes.
type Profile struct {
	Joints []jointRangeYAML `yaml:"joints,omitempty"`

	Coupling struct {
		ShoulderElbowMin float64 `yaml:"shoulder_elbow_min"`
		ShoulderElbowMax float64 `yaml:"shoulder_elbow_max"`
		ElbowForwardMax  float64 `yaml:"elbow_forward_max"`
		WristCoupledMax  float64 `yaml:"wrist_coupled_max"`
	} `yaml:"coupling,omitempty"`

	Links struct {
		BaseHeight float64 `yaml:"base_height"`
		Shoulder   float64 `yaml:"shoulder"`
		UpperArm   float64 `yaml:"upper_arm"`
		Forearm    float64 `yaml:"forearm"`
		Wrist      float64 `yaml:"wrist"`
		Flange     float64 `yaml:"flange"`
	} `yaml:"links,omitempty"`

	Geometry struct {
		BaseRadius float64 `yaml:"base_radius"`
		Clearance  float64 `yaml:"clearance"`
	} `yaml:"geometry,omitempty"`

	Sequences []sequenceYAML `yaml:"sequences,omitempty"`
}

type jointRangeYAML struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type sequenceYAML struct {
	Name      string         `yaml:"name"`
	Keyframes []keyframeYAML `yaml:"keyframes"`
}

type keyframeYAML struct {
	Angles     [joint.Count]float64 `yaml:"angles"`
	DurationMs int                  `yaml:"duration_ms"`
	Gripper    *bool                `yaml:"gripper,omitempty"`
}

// LoadProfile reads and validates a YAML arm profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if len(p.Joints) != 0 && len(p.Joints) != joint.Count {
		return fmt.Errorf("expected %d joint ranges, got %d", joint.Count, len(p.Joints))
	}
	for i, r := range p.Joints {
		if r.Min > r.Max {
			return fmt.Errorf("joint %s: min %.1f above max %.1f", joint.Name(i), r.Min, r.Max)
		}
	}
	for _, s := range p.Sequences {
		if s.Name == "" {
			return fmt.Errorf("sequence with empty name")
		}
		if len(s.Keyframes) == 0 {
			return fmt.Errorf("sequence %q has no keyframes", s.Name)
		}
		for i, kf := range s.Keyframes {
			if kf.DurationMs <= 0 {
				return fmt.Errorf("sequence %q keyframe %d: duration must be positive", s.Name, i)
			}
		}
	}
	return nil
}

// JointLimits materializes the limits, defaulting any unset section.
func (p *Profile) JointLimits() joint.Limits {
	limits := joint.DefaultLimits()
	for i, r := range p.Joints {
		limits.Joints[i] = joint.Range{Min: r.Min, Max: r.Max}
	}
	c := p.Coupling
	if c.ShoulderElbowMin != 0 || c.ShoulderElbowMax != 0 {
		limits.ShoulderElbowMin = c.ShoulderElbowMin
		limits.ShoulderElbowMax = c.ShoulderElbowMax
	}
	if c.ElbowForwardMax != 0 {
		limits.ElbowForwardMax = c.ElbowForwardMax
	}
	if c.WristCoupledMax != 0 {
		limits.WristCoupledMax = c.WristCoupledMax
	}
	return limits
}

// LinkLengths materializes the link lengths, defaulting if unset.
func (p *Profile) LinkLengths() kinematics.Links {
	if p.Links.BaseHeight == 0 && p.Links.UpperArm == 0 {
		return kinematics.DefaultLinks()
	}
	return kinematics.Links{
		BaseHeight: p.Links.BaseHeight,
		Shoulder:   p.Links.Shoulder,
		UpperArm:   p.Links.UpperArm,
		Forearm:    p.Links.Forearm,
		Wrist:      p.Links.Wrist,
		Flange:     p.Links.Flange,
	}
}

// Checker materializes a safety checker from the profile.
func (p *Profile) Checker() *safety.Checker {
	checker := safety.NewChecker()
	checker.Limits = p.JointLimits()
	checker.Links = p.LinkLengths()
	if p.Geometry.BaseRadius != 0 {
		checker.BaseRadius = p.Geometry.BaseRadius
	}
	if p.Geometry.Clearance != 0 {
		checker.Clearance = p.Geometry.Clearance
	}
	return checker
}

// SequenceLibrary returns the built-in gestures merged with any profile
// overrides; a profile sequence with a built-in name replaces it.
func (p *Profile) SequenceLibrary() motion.Library {
	lib := motion.DefaultLibrary()
	for _, s := range p.Sequences {
		seq := motion.Sequence{Name: s.Name}
		for _, kf := range s.Keyframes {
			seq.Keyframes = append(seq.Keyframes, motion.Keyframe{
				Pose:     joint.Vector(kf.Angles),
				Duration: time.Duration(kf.DurationMs) * time.Millisecond,
				Gripper:  kf.Gripper,
			})
		}
		lib[s.Name] = seq
	}
	return lib
}
