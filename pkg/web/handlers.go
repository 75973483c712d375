package web

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/openmanip/go-armctl/internal/log"
	"github.com/openmanip/go-armctl/pkg/hub"
	"github.com/openmanip/go-armctl/pkg/ik"
	"github.com/openmanip/go-armctl/pkg/joint"
	"github.com/openmanip/go-armctl/pkg/kinematics"
	"github.com/openmanip/go-armctl/pkg/motion"
)

// Request/response defaults.
const (
	defaultMoveDuration = 1500 * time.Millisecond
	jogStepDuration     = 150 * time.Millisecond
	planTimeout         = 5 * time.Second
)

// handleState returns the latest telemetry snapshot.
func (s *Server) handleState(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.lastState)
}

// handlePresets lists the named Cartesian targets.
func (s *Server) handlePresets(c *fiber.Ctx) error {
	out := make(map[string]kinematics.Point, len(ik.PresetNames()))
	for _, name := range ik.PresetNames() {
		p, _ := ik.Preset(name)
		out[name] = p
	}
	return c.JSON(out)
}

// handleActions lists the gesture library.
func (s *Server) handleActions(c *fiber.Ctx) error {
	return c.JSON(s.deps.Player.Library().Names())
}

// JointsRequest commands explicit joint angles in degrees.
type JointsRequest struct {
	Angles     [joint.Count]float64 `json:"angles"`
	DurationMs int                  `json:"duration_ms"`
}

func (s *Server) handleJoints(c *fiber.Ctx) error {
	var req JointsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body: "+err.Error())
	}

	target, err := motion.ValidatePose(s.deps.Checker, joint.Vector(req.Angles))
	if err != nil {
		var verr *motion.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(verr.Verdict)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	h := s.deps.Exec.Move(target, durationOrDefault(req.DurationMs))
	return c.JSON(fiber.Map{"trajectory_id": h.ID, "target": target})
}

// MoveRequest commands a Cartesian goal via the planner.
type MoveRequest struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Samples    int     `json:"samples"`
	DurationMs int     `json:"duration_ms"`
}

func (s *Server) handleMove(c *fiber.Ctx) error {
	var req MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body: "+err.Error())
	}
	goal := kinematics.Point{X: req.X, Y: req.Y, Z: req.Z}
	return s.planAndRun(c, goal, req.Samples, req.DurationMs)
}

func (s *Server) handleMovePreset(c *fiber.Ctx) error {
	name := c.Params("name")
	goal, ok := ik.Preset(name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":     "unknown preset: " + name,
			"available": ik.PresetNames(),
		})
	}
	return s.planAndRun(c, goal, 0, 0)
}

// planAndRun plans from the arm's current end-effector position to goal and
// plays the validated path.
func (s *Server) planAndRun(c *fiber.Ctx, goal kinematics.Point, samples, durationMs int) error {
	start := s.deps.Checker.Links.EndEffector(s.deps.Exec.Commanded())

	ctx, cancel := context.WithTimeout(context.Background(), planTimeout)
	defer cancel()

	plan, err := s.deps.Planner.Plan(ctx, start, goal, samples)
	if err != nil {
		var planErr *motion.PlanError
		if errors.As(err, &planErr) {
			status := fiber.StatusUnprocessableEntity
			if errors.Is(err, ik.ErrUnreachable) {
				status = fiber.StatusBadRequest
			}
			return c.Status(status).JSON(fiber.Map{
				"error":  planErr.Error(),
				"sample": planErr.Sample,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	h := s.deps.Exec.MovePath(plan.Waypoints, durationOrDefault(durationMs))
	return c.JSON(fiber.Map{
		"plan_id":       plan.ID,
		"trajectory_id": h.ID,
		"waypoints":     len(plan.Waypoints),
	})
}

func (s *Server) handleAction(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := s.deps.Player.Play(name); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":     err.Error(),
			"available": s.deps.Player.Library().Names(),
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"playing": s.deps.Player.Current()})
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	s.deps.Player.Stop()
	s.deps.Exec.Cancel()
	return c.JSON(fiber.Map{"stopped": true})
}

func (s *Server) handleEStop(c *fiber.Ctx) error {
	s.deps.Player.Stop()
	s.deps.Exec.EmergencyStop()
	return c.JSON(fiber.Map{"estop": true, "hold": s.deps.Exec.Commanded()})
}

// GripperRequest toggles the end effector.
type GripperRequest struct {
	Closed bool `json:"closed"`
}

func (s *Server) handleGripper(c *fiber.Ctx) error {
	if s.deps.Gripper == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "no gripper attached"})
	}
	var req GripperRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body: "+err.Error())
	}
	if err := s.deps.Gripper.SetGripper(req.Closed); err != nil {
		// Best-effort, same as every hardware dispatch.
		log.Error("gripper dispatch failed", "err", err)
	}
	return c.JSON(fiber.Map{"closed": req.Closed})
}

// handleTelemetryWS subscribes a client to the telemetry hub.
func (s *Server) handleTelemetryWS(c *websocket.Conn) {
	client := hub.NewClient(s.telemetry, c)
	client.Run()
}

// JogMessage is one incremental jog step from the control socket.
type JogMessage struct {
	Joint int     `json:"joint"`
	Delta float64 `json:"delta"`
}

// handleControlWS consumes jog messages. Each step offsets the commanded
// pose, clamps it, and starts a short superseding move, so held keys stream
// naturally into continuous motion.
func (s *Server) handleControlWS(c *websocket.Conn) {
	log.Info("jog client connected", "remote", c.RemoteAddr().String())
	defer log.Info("jog client disconnected")

	for {
		var msg JogMessage
		if err := c.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Joint < 0 || msg.Joint >= joint.Count {
			log.Warn("jog for invalid joint", "joint", msg.Joint)
			continue
		}

		target := s.deps.Exec.Commanded()
		target[msg.Joint] += msg.Delta
		target = s.deps.Checker.Limits.Clamp(target)
		if verdict := s.deps.Checker.Check(target); !verdict.OK {
			log.Warn("jog rejected", "violations", verdict.Summary())
			continue
		}
		s.deps.Exec.Move(target, jogStepDuration)
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func durationOrDefault(ms int) time.Duration {
	if ms <= 0 {
		return defaultMoveDuration
	}
	return time.Duration(ms) * time.Millisecond
}
