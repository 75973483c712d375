package joint

import "math"

// Range is a closed per-joint angle interval in degrees.
type Range struct {
	Min float64
	Max float64
}

// Limits holds the per-joint ranges plus the coupled-joint safety rules.
// These are fixed configuration constants for a given arm, not derived at
// runtime.
type Limits struct {
	Joints [Count]Range

	// Shoulder+elbow sum must stay within [ShoulderElbowMin, ShoulderElbowMax].
	ShoulderElbowMin float64
	ShoulderElbowMax float64

	// Elbow may not bend forward past this cap.
	ElbowForwardMax float64

	// |wrist_roll| + |wrist_pitch| may not exceed this.
	WristCoupledMax float64
}

// DefaultLimits returns the limits of the stock arm.
func DefaultLimits() Limits {
	return Limits{
		Joints: [Count]Range{
			{-180, 180}, // base
			{-90, 90},   // shoulder
			{-135, 135}, // elbow
			{-180, 180}, // wrist roll
			{-90, 90},   // wrist pitch
			{-180, 180}, // tool
		},
		ShoulderElbowMin: -160,
		ShoulderElbowMax: 160,
		ElbowForwardMax:  130,
		WristCoupledMax:  180,
	}
}

// Clamp forces a raw command vector into the safe envelope. It is pure and
// idempotent: Clamp(Clamp(v)) == Clamp(v).
//
// The correction runs in a single pass: per-joint clamping, then the
// shoulder+elbow sum rule (elbow adjusted, shoulder untouched), then the
// elbow forward cap, then the coupled wrist rule. Later steps can in
// principle re-violate an earlier rule on adversarial limit configurations;
// the pass is deliberately not iterated to a fixed point. The output always
// satisfies every single-joint range.
func (l Limits) Clamp(raw Vector) Vector {
	out := raw

	// Per-joint ranges. Non-numeric input collapses to the joint minimum.
	for i := 0; i < Count; i++ {
		r := l.Joints[i]
		switch {
		case math.IsNaN(out[i]):
			out[i] = r.Min
		case out[i] < r.Min:
			out[i] = r.Min
		case out[i] > r.Max:
			out[i] = r.Max
		}
	}

	// Shoulder+elbow sum: move the elbow only, to the nearest bound.
	sum := out[Shoulder] + out[Elbow]
	if sum > l.ShoulderElbowMax {
		out[Elbow] = l.ShoulderElbowMax - out[Shoulder]
	} else if sum < l.ShoulderElbowMin {
		out[Elbow] = l.ShoulderElbowMin - out[Shoulder]
	}
	out[Elbow] = clampRange(out[Elbow], l.Joints[Elbow])

	// Forward elbow cap.
	if out[Elbow] > l.ElbowForwardMax {
		out[Elbow] = l.ElbowForwardMax
	}

	// Coupled wrist rule: shave half the excess off each magnitude.
	combined := math.Abs(out[WristRoll]) + math.Abs(out[WristPitch])
	if combined > l.WristCoupledMax {
		half := (combined - l.WristCoupledMax) / 2
		out[WristRoll] = shrinkToward(out[WristRoll], half)
		out[WristPitch] = shrinkToward(out[WristPitch], half)
		out[WristRoll] = clampRange(out[WristRoll], l.Joints[WristRoll])
		out[WristPitch] = clampRange(out[WristPitch], l.Joints[WristPitch])
	}

	return out
}

// InRange reports whether v satisfies every per-joint range (coupled rules
// not considered).
func (l Limits) InRange(v Vector) bool {
	for i := 0; i < Count; i++ {
		if v[i] < l.Joints[i].Min || v[i] > l.Joints[i].Max {
			return false
		}
	}
	return true
}

func clampRange(v float64, r Range) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// shrinkToward reduces the magnitude of v by amount, saturating at zero.
func shrinkToward(v, amount float64) float64 {
	mag := math.Abs(v) - amount
	if mag < 0 {
		mag = 0
	}
	return math.Copysign(mag, v)
}
