package motion

import (
	"errors"
	"fmt"

	"github.com/openmanip/go-armctl/pkg/joint"
	"github.com/openmanip/go-armctl/pkg/kinematics"
	"github.com/openmanip/go-armctl/pkg/safety"
)

// ErrUnknownSequence is returned by Play for a name not in the library.
var ErrUnknownSequence = errors.New("unknown action sequence")

// ValidationError refuses a single commanded pose. Nothing is sent to
// hardware when it is returned; the verdict carries every violated rule.
type ValidationError struct {
	Verdict safety.Verdict
}

func (e *ValidationError) Error() string {
	return "pose rejected: " + e.Verdict.Summary()
}

// ValidatePose clamps a raw target into the safe envelope and checks the
// result. It returns the safe pose, or a *ValidationError when even the
// clamped pose fails the checker.
func ValidatePose(c *safety.Checker, raw joint.Vector) (joint.Vector, error) {
	clamped := c.Limits.Clamp(raw)
	if verdict := c.Check(clamped); !verdict.OK {
		return joint.Vector{}, &ValidationError{Verdict: verdict}
	}
	return clamped, nil
}

// PlanError aborts a Cartesian plan at a specific sample. Either Err is set
// (the oracle could not solve the sample) or Verdict is set (the solution
// failed the safety check). No partial plan is exposed alongside it.
type PlanError struct {
	Sample  int
	Point   kinematics.Point
	Verdict safety.Verdict
	Err     error
}

func (e *PlanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plan aborted at sample %d (%.3f, %.3f, %.3f): %v",
			e.Sample, e.Point.X, e.Point.Y, e.Point.Z, e.Err)
	}
	return fmt.Sprintf("plan aborted at sample %d (%.3f, %.3f, %.3f): %s",
		e.Sample, e.Point.X, e.Point.Y, e.Point.Z, e.Verdict.Summary())
}

func (e *PlanError) Unwrap() error { return e.Err }
