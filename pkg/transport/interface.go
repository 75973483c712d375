// Package transport carries commanded joint state to the physical
// controller board and reads telemetry back.
//
// Interfaces are small and composable; consumers should depend only on the
// capability they actually use. The motion engine sees only a joint
// dispatcher, the sequence player additionally a gripper.
package transport

import "github.com/openmanip/go-armctl/pkg/joint"

// JointDispatcher sends an absolute joint pose to the controller.
// Dispatch is best-effort: failures are reported, callers log and continue.
type JointDispatcher interface {
	DispatchJoints(v joint.Vector) error
}

// GripperController toggles the end-effector pump/gripper.
type GripperController interface {
	SetGripper(closed bool) error
}

// StatusReader reads the most recent telemetry frame from the controller,
// reporting the actual joint angles the hardware measured.
type StatusReader interface {
	ReadStatus() (*Status, error)
}

// Controller is the composite interface for a full hardware link.
type Controller interface {
	JointDispatcher
	GripperController
	StatusReader
	Close() error
}

// Status is one telemetry frame from the controller.
type Status struct {
	Angles    joint.Vector
	ErrorCode int
}

// Compile-time conformance.
var (
	_ Controller = (*Serial)(nil)
	_ Controller = (*Mock)(nil)
)
