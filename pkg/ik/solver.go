// Package ik implements the geometric inverse-kinematics oracle for the
// six-joint arm. The motion planner consumes it through a narrow interface;
// any solver with the same contract can be swapped in.
//
// The solution keeps the flange horizontal: wrist pitch compensates the
// shoulder and elbow, wrist roll and tool stay at zero. The solver never
// clamps its output to joint limits; enforcement is the caller's job.
package ik

import (
	"errors"
	"fmt"
	"math"

	"github.com/openmanip/go-armctl/pkg/joint"
	"github.com/openmanip/go-armctl/pkg/kinematics"
)

// ErrUnreachable marks a Cartesian target outside the solvable envelope.
var ErrUnreachable = errors.New("target unreachable")

// Geometric solves the arm analytically as a two-link planar chain to the
// wrist center, with the base yaw taken from the target bearing.
type Geometric struct {
	Links kinematics.Links
}

// NewGeometric returns a solver over the given link lengths.
func NewGeometric(links kinematics.Links) *Geometric {
	return &Geometric{Links: links}
}

// Solve maps a Cartesian point to joint angles in degrees. Identical input
// always yields the identical solution; there is no internal state. A target
// outside the reachable annulus returns an error wrapping ErrUnreachable.
func (g *Geometric) Solve(p kinematics.Point) (joint.Vector, error) {
	baseYaw := math.Atan2(p.X, p.Y)
	reach := math.Hypot(p.X, p.Y)

	// Wrist-center target with the end link held horizontal.
	rw := reach - g.Links.Terminal()
	zw := p.Z - g.Links.BaseHeight

	la := g.Links.Proximal()
	lb := g.Links.Distal()
	d := math.Hypot(rw, zw)

	if d > la+lb {
		return joint.Vector{}, fmt.Errorf("%w: distance %.3fm exceeds max reach %.3fm", ErrUnreachable, d, la+lb)
	}
	if d < math.Abs(la-lb) {
		return joint.Vector{}, fmt.Errorf("%w: distance %.3fm inside min reach %.3fm", ErrUnreachable, d, math.Abs(la-lb))
	}

	// Law of cosines for the elbow, elbow-forward branch.
	cosElbow := (d*d - la*la - lb*lb) / (2 * la * lb)
	cosElbow = math.Max(-1, math.Min(1, cosElbow))
	elbow := math.Acos(cosElbow)

	// Shoulder pitch from vertical, corrected for the elbow bend.
	phi := math.Atan2(rw, zw)
	beta := math.Atan2(lb*math.Sin(elbow), la+lb*math.Cos(elbow))
	shoulder := phi - beta

	var out joint.Vector
	out[joint.Base] = deg(baseYaw)
	out[joint.Shoulder] = deg(shoulder)
	out[joint.Elbow] = deg(elbow)
	out[joint.WristPitch] = 90 - out[joint.Shoulder] - out[joint.Elbow]
	return out, nil
}

func deg(rad float64) float64 { return rad * 180.0 / math.Pi }
