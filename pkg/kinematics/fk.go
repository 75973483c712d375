// Package kinematics provides the approximate forward-kinematics model used
// for collision screening. The arm is reduced to a planar three-link chain
// (shoulder link + upper arm, forearm, wrist + flange) rotated about the
// vertical axis by the base joint. Wrist roll and tool offsets are ignored;
// the model is good enough for gross ground/pedestal bounds and nothing else.
package kinematics

import (
	"math"

	"github.com/openmanip/go-armctl/pkg/joint"
)

// Point is a position in meters, robot base frame. X is right, Y is forward,
// Z is up; the base rotation axis is the Z axis through the origin.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// KeyPoint is a tracked position on the arm plus its distance from the base
// rotation axis.
type KeyPoint struct {
	X      float64
	Y      float64
	Z      float64
	Radial float64
}

// Links holds the fixed link lengths in meters. They feed the collision
// geometry only; rendering and precision placement use a full model elsewhere.
type Links struct {
	BaseHeight float64
	Shoulder   float64
	UpperArm   float64
	Forearm    float64
	Wrist      float64
	Flange     float64
}

// DefaultLinks returns the link lengths of the stock arm.
func DefaultLinks() Links {
	return Links{
		BaseHeight: 0.166,
		Shoulder:   0.040,
		UpperArm:   0.200,
		Forearm:    0.185,
		Wrist:      0.085,
		Flange:     0.040,
	}
}

// Proximal returns the effective first-link length (shoulder + upper arm).
func (l Links) Proximal() float64 { return l.Shoulder + l.UpperArm }

// Distal returns the effective second-link length (forearm).
func (l Links) Distal() float64 { return l.Forearm }

// Terminal returns the effective end link length (wrist + flange).
func (l Links) Terminal() float64 { return l.Wrist + l.Flange }

// MaxReach is the planar reach of the two-link chain to the wrist center.
func (l Links) MaxReach() float64 { return l.Proximal() + l.Distal() }

// MinReach is the closest the wrist center can fold toward the shoulder.
func (l Links) MinReach() float64 { return math.Abs(l.Proximal() - l.Distal()) }

// Indices into the ForwardPositions result.
const (
	ElbowPoint = iota
	WristPoint
	EndEffectorPoint
)

// ForwardPositions computes the elbow, wrist and end-effector key points for
// a set of joint angles in degrees. Zero pose points the arm straight up;
// positive shoulder pitch tilts it away from vertical. Pitch accumulates as
// shoulder, shoulder+elbow, shoulder+elbow+wrist_pitch.
func (l Links) ForwardPositions(angles joint.Vector) [3]KeyPoint {
	yaw := rad(angles[joint.Base])
	p1 := rad(angles[joint.Shoulder])
	p2 := rad(angles[joint.Shoulder] + angles[joint.Elbow])
	p3 := rad(angles[joint.Shoulder] + angles[joint.Elbow] + angles[joint.WristPitch])

	var out [3]KeyPoint

	r := l.Proximal() * math.Sin(p1)
	z := l.BaseHeight + l.Proximal()*math.Cos(p1)
	out[ElbowPoint] = keyPoint(r, z, yaw)

	r += l.Distal() * math.Sin(p2)
	z += l.Distal() * math.Cos(p2)
	out[WristPoint] = keyPoint(r, z, yaw)

	r += l.Terminal() * math.Sin(p3)
	z += l.Terminal() * math.Cos(p3)
	out[EndEffectorPoint] = keyPoint(r, z, yaw)

	return out
}

// EndEffector is a shortcut for the last key point as a task-space Point.
func (l Links) EndEffector(angles joint.Vector) Point {
	kp := l.ForwardPositions(angles)[EndEffectorPoint]
	return Point{X: kp.X, Y: kp.Y, Z: kp.Z}
}

// keyPoint spins a planar (radial, height) pair around the vertical axis.
func keyPoint(r, z, yaw float64) KeyPoint {
	return KeyPoint{
		X:      r * math.Sin(yaw),
		Y:      r * math.Cos(yaw),
		Z:      z,
		Radial: math.Abs(r),
	}
}

func rad(deg float64) float64 { return deg * math.Pi / 180.0 }

// Lerp linearly interpolates between two task-space points.
func Lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
