package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openmanip/go-armctl/pkg/ik"
	"github.com/openmanip/go-armctl/pkg/motion"
	"github.com/openmanip/go-armctl/pkg/safety"
	"github.com/openmanip/go-armctl/pkg/transport"
)

func newTestServer() (*Server, *motion.Executor, *transport.Mock) {
	mock := transport.NewMock()
	checker := safety.NewChecker()
	exec := motion.NewExecutor(mock, motion.DefaultTickRate)
	planner := motion.NewPlanner(ik.NewGeometric(checker.Links), checker)
	player := motion.NewPlayer(exec, checker, motion.DefaultLibrary())
	player.SetGripper(mock)

	s := NewServer("0", Deps{
		Exec:    exec,
		Planner: planner,
		Player:  player,
		Checker: checker,
		Gripper: mock,
	})
	return s, exec, mock
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := s.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestGetPresets(t *testing.T) {
	s, _, _ := newTestServer()

	resp := doJSON(t, s, "GET", "/api/presets", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var presets map[string]struct{ X, Y, Z float64 }
	decode(t, resp, &presets)
	if _, ok := presets["home"]; !ok {
		t.Errorf("presets = %v, want home included", presets)
	}
}

func TestGetActions(t *testing.T) {
	s, _, _ := newTestServer()

	resp := doJSON(t, s, "GET", "/api/actions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var names []string
	decode(t, resp, &names)
	found := false
	for _, n := range names {
		found = found || n == "wave"
	}
	if !found {
		t.Errorf("actions = %v, want wave included", names)
	}
}

func TestPostJoints_StartsTrajectory(t *testing.T) {
	s, exec, _ := newTestServer()

	resp := doJSON(t, s, "POST", "/api/joints", map[string]any{
		"angles":      []float64{10, 20, 40, 0, -30, 0},
		"duration_ms": 500,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		TrajectoryID string `json:"trajectory_id"`
	}
	decode(t, resp, &body)
	if body.TrajectoryID == "" {
		t.Error("missing trajectory_id")
	}
	if !exec.Busy() {
		t.Error("executor idle after accepted joints command")
	}
}

func TestPostJoints_UnsafePoseRejected(t *testing.T) {
	s, exec, mock := newTestServer()

	// Clamping fixes the shoulder+elbow sum but the pose still dips below
	// ground, so the verdict rejects it.
	resp := doJSON(t, s, "POST", "/api/joints", map[string]any{
		"angles": []float64{0, 90, 90, 0, 0, 0},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}

	var verdict safety.Verdict
	decode(t, resp, &verdict)
	if verdict.OK || len(verdict.Violations) == 0 {
		t.Errorf("verdict = %+v, want violations", verdict)
	}
	if exec.Busy() {
		t.Error("trajectory started for rejected pose")
	}
	if mock.DispatchCount() != 0 {
		t.Errorf("dispatched %d times, want 0", mock.DispatchCount())
	}
}

func TestPostMove_Unreachable(t *testing.T) {
	s, exec, mock := newTestServer()

	resp := doJSON(t, s, "POST", "/api/move", map[string]any{
		"x": 0.6, "y": 0.6, "z": 0.5,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Error  string `json:"error"`
		Sample int    `json:"sample"`
	}
	decode(t, resp, &body)
	if body.Error == "" {
		t.Error("missing error message")
	}
	if exec.Busy() || mock.DispatchCount() != 0 {
		t.Error("motion started for unreachable goal")
	}
}

func TestPostMovePreset(t *testing.T) {
	s, exec, _ := newTestServer()
	// Seed the commanded pose at a preset so the plan start is reachable.
	solver := ik.NewGeometric(safety.NewChecker().Links)
	start, _ := ik.Preset("home")
	angles, err := solver.Solve(start)
	if err != nil {
		t.Fatal(err)
	}
	exec.SetCommanded(angles)

	resp := doJSON(t, s, "POST", "/api/move/preset/pickup", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		PlanID    string `json:"plan_id"`
		Waypoints int    `json:"waypoints"`
	}
	decode(t, resp, &body)
	if body.Waypoints != motion.DefaultSamples+1 {
		t.Errorf("waypoints = %d, want %d", body.Waypoints, motion.DefaultSamples+1)
	}
	if !exec.Busy() {
		t.Error("executor idle after accepted preset move")
	}
}

func TestPostMovePreset_Unknown(t *testing.T) {
	s, _, _ := newTestServer()

	resp := doJSON(t, s, "POST", "/api/move/preset/nonsense", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPostAction_UnknownName(t *testing.T) {
	s, _, _ := newTestServer()

	resp := doJSON(t, s, "POST", "/api/action/nonsense", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPostEStop_DispatchesHold(t *testing.T) {
	s, _, mock := newTestServer()

	resp := doJSON(t, s, "POST", "/api/estop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if mock.DispatchCount() != 1 {
		t.Errorf("dispatched %d times, want 1 (the hold)", mock.DispatchCount())
	}
}

func TestPostGripper(t *testing.T) {
	s, _, mock := newTestServer()

	resp := doJSON(t, s, "POST", "/api/gripper", map[string]any{"closed": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	calls := mock.Calls()
	if len(calls) != 1 || calls[0].Method != "SetGripper" || !calls[0].Gripper {
		t.Errorf("calls = %+v, want one SetGripper(true)", calls)
	}
}

func TestPublishTick_CachesState(t *testing.T) {
	s, exec, _ := newTestServer()
	go s.telemetry.Run()

	exec.SetCommanded([6]float64{1, 2, 3, 0, 0, 0})
	s.PublishTick(exec.Commanded())

	resp := doJSON(t, s, "GET", "/api/state", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var state StateSnapshot
	decode(t, resp, &state)
	if state.Commanded != [6]float64{1, 2, 3, 0, 0, 0} {
		t.Errorf("commanded = %v", state.Commanded)
	}
	if state.TS == 0 {
		t.Error("missing timestamp")
	}
	if time.Since(time.UnixMilli(state.TS)) > time.Minute {
		t.Errorf("stale timestamp %d", state.TS)
	}
}
