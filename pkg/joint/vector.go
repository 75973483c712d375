// Package joint defines the joint-space types for a six-joint manipulator:
// the ordered joint vector, per-joint and coupled limits, and the safety
// enforcer that clamps raw commands into the safe envelope.
//
// Angles are in degrees everywhere in this package, matching the controller
// wire protocol. Radians() exists for kinematics math.
package joint

import (
	"fmt"
	"math"
	"strings"
)

// Joint indices. The order is fixed across the whole system.
const (
	Base = iota
	Shoulder
	Elbow
	WristRoll
	WristPitch
	Tool

	// Count is the number of joints on the arm.
	Count = 6
)

// names indexed by joint position.
var names = [Count]string{"base", "shoulder", "elbow", "wrist_roll", "wrist_pitch", "tool"}

// Name returns the canonical joint name for an index, or "joint<i>" if the
// index is out of range.
func Name(i int) string {
	if i < 0 || i >= Count {
		return fmt.Sprintf("joint%d", i)
	}
	return names[i]
}

// Vector is an ordered set of six joint angles in degrees.
type Vector [Count]float64

// Zero returns the all-zero (home) vector.
func Zero() Vector {
	return Vector{}
}

// Lerp linearly interpolates each joint independently between a and b at
// parameter t. t is not clamped; callers own the parameterization.
func Lerp(a, b Vector, t float64) Vector {
	var out Vector
	for i := 0; i < Count; i++ {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return out
}

// Radians returns the vector converted to radians.
func (v Vector) Radians() [Count]float64 {
	var out [Count]float64
	for i, deg := range v {
		out[i] = deg * math.Pi / 180.0
	}
	return out
}

// Equal reports whether every joint of v is within tol degrees of w.
func (v Vector) Equal(w Vector, tol float64) bool {
	for i := 0; i < Count; i++ {
		if math.Abs(v[i]-w[i]) > tol {
			return false
		}
	}
	return true
}

// String formats the vector as "[0.0 12.5 ...]" with one decimal per joint.
func (v Vector) String() string {
	parts := make([]string, Count)
	for i, deg := range v {
		parts[i] = fmt.Sprintf("%.1f", deg)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
