// Package motion turns already-decided goals into safe joint-space motion:
// the Planner samples Cartesian lines through the IK oracle, the Executor
// plays eased joint-space trajectories on a tick loop, and the Player drives
// canned keyframe sequences through the Executor.
package motion

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openmanip/go-armctl/internal/log"
	"github.com/openmanip/go-armctl/pkg/joint"
	"github.com/openmanip/go-armctl/pkg/kinematics"
	"github.com/openmanip/go-armctl/pkg/safety"
)

// DefaultSamples is the straight-line sample count when the caller passes 0.
const DefaultSamples = 15

// Solver is the external IK oracle contract. Implementations must be
// idempotent for identical input and must not clamp: limit enforcement
// belongs to the planner.
type Solver interface {
	Solve(p kinematics.Point) (joint.Vector, error)
}

// PathPlan is a fully validated joint-space path. Points holds the sampled
// task-space line, Waypoints the clamped and checked solution per sample;
// both have the same length and order.
type PathPlan struct {
	ID        uuid.UUID
	Points    []kinematics.Point
	Waypoints []joint.Vector
}

// Planner converts a Cartesian goal into a validated joint-space path by
// discretizing the straight line and validating every sample. The oracle is
// opaque, so joint-space continuity cannot be assumed analytically;
// discretize-and-validate is the only robust strategy against an unknown
// solver.
type Planner struct {
	solver  Solver
	checker *safety.Checker
}

// NewPlanner builds a planner over a solver and a safety checker.
func NewPlanner(solver Solver, checker *safety.Checker) *Planner {
	return &Planner{solver: solver, checker: checker}
}

// Plan samples samples+1 points (both endpoints included) on the line from
// start to goal, solves each through the oracle strictly in order, clamps
// the solution and validates it. The first unreachable or unsafe sample
// aborts the whole plan with a *PlanError carrying its index; nothing has
// been committed to hardware at that point.
//
// Oracle calls are sequential on purpose: ordering stays deterministic and
// the external solver never sees concurrent load from a single plan.
func (p *Planner) Plan(ctx context.Context, start, goal kinematics.Point, samples int) (*PathPlan, error) {
	if samples <= 0 {
		samples = DefaultSamples
	}

	plan := &PathPlan{
		ID:        uuid.New(),
		Points:    make([]kinematics.Point, 0, samples+1),
		Waypoints: make([]joint.Vector, 0, samples+1),
	}

	for i := 0; i <= samples; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("plan cancelled at sample %d: %w", i, err)
		}

		pt := kinematics.Lerp(start, goal, float64(i)/float64(samples))

		solution, err := p.solver.Solve(pt)
		if err != nil {
			log.Debug("plan sample unsolvable", "plan", plan.ID, "sample", i, "err", err)
			return nil, &PlanError{Sample: i, Point: pt, Err: err}
		}

		clamped := p.checker.Limits.Clamp(solution)
		verdict := p.checker.Check(clamped)
		if !verdict.OK {
			log.Debug("plan sample unsafe", "plan", plan.ID, "sample", i, "violations", verdict.Summary())
			return nil, &PlanError{Sample: i, Point: pt, Verdict: verdict}
		}

		plan.Points = append(plan.Points, pt)
		plan.Waypoints = append(plan.Waypoints, clamped)
	}

	log.Debug("plan complete", "plan", plan.ID, "waypoints", len(plan.Waypoints),
		"distance_m", kinematics.Dist(start, goal))
	return plan, nil
}
