// Package safety composes the joint limits and the approximate forward
// kinematics into a single pass/fail verdict for a commanded pose. Where the
// enforcer in pkg/joint corrects a raw command, the checker here only
// reports: every violated rule is collected so callers can log all causes.
package safety

import (
	"fmt"
	"math"
	"strings"

	"github.com/openmanip/go-armctl/pkg/joint"
	"github.com/openmanip/go-armctl/pkg/kinematics"
)

// Rule identifiers carried on violations.
const (
	RuleJointRange    = "joint_range"
	RuleShoulderElbow = "shoulder_elbow_sum"
	RuleElbowForward  = "elbow_forward"
	RuleWristCoupled  = "wrist_coupled"
	RuleGround        = "ground_penetration"
	RulePedestal      = "pedestal_collision"
)

// Violation describes one failed safety rule. Joint is the offending joint
// index for per-joint rules and -1 for coupled or geometric rules. For
// geometric rules Point names the key point ("elbow", "wrist",
// "end_effector").
type Violation struct {
	Rule     string  `json:"rule"`
	Joint    int     `json:"joint"`
	Point    string  `json:"point,omitempty"`
	Observed float64 `json:"observed"`
	Bound    float64 `json:"bound"`
}

func (v Violation) String() string {
	switch {
	case v.Rule == RuleJointRange:
		return fmt.Sprintf("%s: %s %.1f outside bound %.1f", v.Rule, joint.Name(v.Joint), v.Observed, v.Bound)
	case v.Point != "":
		return fmt.Sprintf("%s: %s at %.3f, bound %.3f", v.Rule, v.Point, v.Observed, v.Bound)
	default:
		return fmt.Sprintf("%s: %.1f outside bound %.1f", v.Rule, v.Observed, v.Bound)
	}
}

// Verdict is the result of a safety check. It is never partially applied:
// callers either get OK or the full violation list explaining rejection.
type Verdict struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations,omitempty"`
}

// Summary joins all violation descriptions, or "ok".
func (v Verdict) Summary() string {
	if v.OK {
		return "ok"
	}
	parts := make([]string, len(v.Violations))
	for i, viol := range v.Violations {
		parts[i] = viol.String()
	}
	return strings.Join(parts, "; ")
}

// Checker validates poses against joint limits and collision geometry.
// It is pure and owns no mutable state.
type Checker struct {
	Limits joint.Limits
	Links  kinematics.Links

	// BaseRadius is the pedestal cylinder radius around the vertical axis.
	BaseRadius float64
	// Clearance is the extra height above BaseHeight a key point must keep
	// when it is inside the pedestal cylinder.
	Clearance float64
}

// NewChecker returns a checker with the stock arm geometry.
func NewChecker() *Checker {
	return &Checker{
		Limits:     joint.DefaultLimits(),
		Links:      kinematics.DefaultLinks(),
		BaseRadius: 0.09,
		Clearance:  0.05,
	}
}

// Check validates a pose. All rules are evaluated; nothing short-circuits.
func (c *Checker) Check(angles joint.Vector) Verdict {
	var out []Violation

	// Per-joint ranges, reported (not corrected).
	for i := 0; i < joint.Count; i++ {
		r := c.Limits.Joints[i]
		if angles[i] < r.Min {
			out = append(out, Violation{Rule: RuleJointRange, Joint: i, Observed: angles[i], Bound: r.Min})
		} else if angles[i] > r.Max {
			out = append(out, Violation{Rule: RuleJointRange, Joint: i, Observed: angles[i], Bound: r.Max})
		}
	}

	// Coupled rules mirror joint.Limits.Clamp.
	sum := angles[joint.Shoulder] + angles[joint.Elbow]
	if sum > c.Limits.ShoulderElbowMax {
		out = append(out, Violation{Rule: RuleShoulderElbow, Joint: -1, Observed: sum, Bound: c.Limits.ShoulderElbowMax})
	} else if sum < c.Limits.ShoulderElbowMin {
		out = append(out, Violation{Rule: RuleShoulderElbow, Joint: -1, Observed: sum, Bound: c.Limits.ShoulderElbowMin})
	}
	if angles[joint.Elbow] > c.Limits.ElbowForwardMax {
		out = append(out, Violation{Rule: RuleElbowForward, Joint: joint.Elbow, Observed: angles[joint.Elbow], Bound: c.Limits.ElbowForwardMax})
	}
	wrist := math.Abs(angles[joint.WristRoll]) + math.Abs(angles[joint.WristPitch])
	if wrist > c.Limits.WristCoupledMax {
		out = append(out, Violation{Rule: RuleWristCoupled, Joint: -1, Observed: wrist, Bound: c.Limits.WristCoupledMax})
	}

	// Geometric screening on the three key points.
	points := c.Links.ForwardPositions(angles)
	pointNames := [3]string{"elbow", "wrist", "end_effector"}
	floor := c.Links.BaseHeight + c.Clearance
	for i, kp := range points {
		if kp.Z < 0 {
			out = append(out, Violation{Rule: RuleGround, Joint: -1, Point: pointNames[i], Observed: kp.Z, Bound: 0})
		}
		if kp.Z < floor && kp.Radial < c.BaseRadius {
			out = append(out, Violation{Rule: RulePedestal, Joint: -1, Point: pointNames[i], Observed: kp.Z, Bound: floor})
		}
	}

	return Verdict{OK: len(out) == 0, Violations: out}
}
