package motion

import (
	"context"
	"errors"
	"testing"

	"github.com/openmanip/go-armctl/pkg/ik"
	"github.com/openmanip/go-armctl/pkg/joint"
	"github.com/openmanip/go-armctl/pkg/kinematics"
	"github.com/openmanip/go-armctl/pkg/safety"
)

// recordingSolver wraps the geometric solver and records call order.
type recordingSolver struct {
	inner  Solver
	points []kinematics.Point
}

func (r *recordingSolver) Solve(p kinematics.Point) (joint.Vector, error) {
	r.points = append(r.points, p)
	return r.inner.Solve(p)
}

func newTestPlanner() (*Planner, *recordingSolver, *safety.Checker) {
	checker := safety.NewChecker()
	rec := &recordingSolver{inner: ik.NewGeometric(checker.Links)}
	return NewPlanner(rec, checker), rec, checker
}

func TestPlan_WaypointCountAndEndpoints(t *testing.T) {
	planner, _, checker := newTestPlanner()
	start := kinematics.Point{X: 0, Y: 0.34, Z: 0.30}
	goal := kinematics.Point{X: 0.16, Y: 0.38, Z: 0.18}

	plan, err := planner.Plan(context.Background(), start, goal, 10)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(plan.Waypoints) != 11 {
		t.Fatalf("waypoints = %d, want 11", len(plan.Waypoints))
	}
	if len(plan.Points) != 11 {
		t.Fatalf("points = %d, want 11", len(plan.Points))
	}
	if plan.Points[0] != start {
		t.Errorf("first point = %+v, want start %+v", plan.Points[0], start)
	}
	if kinematics.Dist(plan.Points[10], goal) > 1e-12 {
		t.Errorf("last point = %+v, want goal %+v", plan.Points[10], goal)
	}

	// The final waypoint must reproduce the goal through FK.
	got := checker.Links.EndEffector(plan.Waypoints[10])
	if kinematics.Dist(got, goal) > 1e-6 {
		t.Errorf("final waypoint reaches (%.4f, %.4f, %.4f), want goal", got.X, got.Y, got.Z)
	}
}

func TestPlan_DefaultSamples(t *testing.T) {
	planner, _, _ := newTestPlanner()
	start := kinematics.Point{X: 0, Y: 0.34, Z: 0.30}
	goal := kinematics.Point{X: 0, Y: 0.32, Z: 0.20}

	plan, err := planner.Plan(context.Background(), start, goal, 0)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Waypoints) != DefaultSamples+1 {
		t.Errorf("waypoints = %d, want %d", len(plan.Waypoints), DefaultSamples+1)
	}
}

func TestPlan_AllWaypointsSafe(t *testing.T) {
	planner, _, checker := newTestPlanner()
	start := kinematics.Point{X: -0.22, Y: 0.30, Z: 0.26}
	goal := kinematics.Point{X: 0.22, Y: 0.30, Z: 0.26}

	plan, err := planner.Plan(context.Background(), start, goal, 15)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i, wp := range plan.Waypoints {
		if verdict := checker.Check(wp); !verdict.OK {
			t.Errorf("waypoint %d unsafe: %s", i, verdict.Summary())
		}
	}
}

func TestPlan_UnreachableSampleAborts(t *testing.T) {
	planner, rec, _ := newTestPlanner()
	start := kinematics.Point{X: 0, Y: 0.30, Z: 0.25}
	goal := kinematics.Point{X: 0.40, Y: 0.30, Z: 0.45}

	plan, err := planner.Plan(context.Background(), start, goal, 15)

	if plan != nil {
		t.Fatal("partial plan returned alongside error")
	}
	var planErr *PlanError
	if !errors.As(err, &planErr) {
		t.Fatalf("err = %v, want *PlanError", err)
	}
	if planErr.Sample != 14 {
		t.Errorf("failed sample = %d, want 14", planErr.Sample)
	}
	if !errors.Is(err, ik.ErrUnreachable) {
		t.Errorf("err does not wrap ErrUnreachable: %v", err)
	}
	// Samples after the failure must never reach the oracle.
	if len(rec.points) != 15 {
		t.Errorf("oracle saw %d samples, want 15 (0..14)", len(rec.points))
	}
}

func TestPlan_UnsafeSampleAborts(t *testing.T) {
	planner, _, _ := newTestPlanner()
	start := kinematics.Point{X: 0, Y: 0.30, Z: 0.25}
	goal := kinematics.Point{X: 0, Y: 0.14, Z: 0.05}

	plan, err := planner.Plan(context.Background(), start, goal, 15)

	if plan != nil {
		t.Fatal("partial plan returned alongside error")
	}
	var planErr *PlanError
	if !errors.As(err, &planErr) {
		t.Fatalf("err = %v, want *PlanError", err)
	}
	if planErr.Sample != 11 {
		t.Errorf("failed sample = %d, want 11", planErr.Sample)
	}
	if planErr.Verdict.OK || len(planErr.Verdict.Violations) == 0 {
		t.Error("verdict missing violations")
	}
}

func TestPlan_SequentialOracleCalls(t *testing.T) {
	planner, rec, _ := newTestPlanner()
	start := kinematics.Point{X: 0, Y: 0.34, Z: 0.30}
	goal := kinematics.Point{X: 0, Y: 0.28, Z: 0.42}

	if _, err := planner.Plan(context.Background(), start, goal, 8); err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(rec.points) != 9 {
		t.Fatalf("oracle saw %d calls, want 9", len(rec.points))
	}
	for i, p := range rec.points {
		want := kinematics.Lerp(start, goal, float64(i)/8)
		if p != want {
			t.Errorf("call %d: point %+v, want %+v (in-order sampling)", i, p, want)
		}
	}
}

func TestPlan_ContextCancelled(t *testing.T) {
	planner, _, _ := newTestPlanner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := planner.Plan(ctx, kinematics.Point{Y: 0.34, Z: 0.30}, kinematics.Point{Y: 0.32, Z: 0.20}, 15)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
