// Package web exposes the motion engine over HTTP and WebSocket: REST
// endpoints for goals (joints, Cartesian targets, presets, gestures) and
// live telemetry/jog streams for dashboards and the jog client.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/openmanip/go-armctl/internal/log"
	"github.com/openmanip/go-armctl/pkg/hub"
	"github.com/openmanip/go-armctl/pkg/joint"
	"github.com/openmanip/go-armctl/pkg/motion"
	"github.com/openmanip/go-armctl/pkg/safety"
	"github.com/openmanip/go-armctl/pkg/transport"
)

// Deps are the engine pieces the server drives. Gripper and Actual are
// optional; nil disables the corresponding surface.
type Deps struct {
	Exec    *motion.Executor
	Planner *motion.Planner
	Player  *motion.Player
	Checker *safety.Checker
	Gripper transport.GripperController

	// Actual supplies the latest sensed joint state for telemetry, if a
	// hardware telemetry source exists.
	Actual func() (joint.Vector, bool)
}

// Server is the armctl control server.
type Server struct {
	app  *fiber.App
	port string
	deps Deps

	telemetry *hub.Hub

	// lastState caches the most recent telemetry snapshot for GET /api/state.
	mu        sync.RWMutex
	lastState StateSnapshot
}

// StateSnapshot is the telemetry payload broadcast each tick.
type StateSnapshot struct {
	TS        int64                 `json:"ts"`
	Commanded [joint.Count]float64  `json:"commanded"`
	Actual    *[joint.Count]float64 `json:"actual,omitempty"`
	Busy      bool                  `json:"busy"`
	Playing   bool                  `json:"playing"`
	Sequence  string                `json:"sequence,omitempty"`
}

// NewServer builds the control server. Call Start (or StartAsync) to serve.
func NewServer(port string, deps Deps) *Server {
	s := &Server{
		port:      port,
		deps:      deps,
		telemetry: hub.New("telemetry"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "armctl",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/presets", s.handlePresets)
	api.Get("/actions", s.handleActions)
	api.Post("/joints", s.handleJoints)
	api.Post("/move", s.handleMove)
	api.Post("/move/preset/:name", s.handleMovePreset)
	api.Post("/action/:name", s.handleAction)
	api.Post("/stop", s.handleStop)
	api.Post("/estop", s.handleEStop)
	api.Post("/gripper", s.handleGripper)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/telemetry", websocket.New(s.handleTelemetryWS))
	app.Get("/ws/control", websocket.New(s.handleControlWS))

	s.app = app
	return s
}

// Start serves until Shutdown. It blocks.
func (s *Server) Start() error {
	go s.telemetry.Run()
	log.Info("control server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync serves in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("control server stopped", "err", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishTick snapshots engine state for the given commanded pose and
// broadcasts it to telemetry subscribers. Wire it to the executor's tick
// observer.
func (s *Server) PublishTick(commanded joint.Vector) {
	snap := StateSnapshot{
		TS:        time.Now().UnixMilli(),
		Commanded: [joint.Count]float64(commanded),
		Busy:      s.deps.Exec.Busy(),
		Playing:   s.deps.Player.IsPlaying(),
		Sequence:  s.deps.Player.Current(),
	}
	if s.deps.Actual != nil {
		if actual, ok := s.deps.Actual(); ok {
			a := [joint.Count]float64(actual)
			snap.Actual = &a
		}
	}

	s.mu.Lock()
	s.lastState = snap
	s.mu.Unlock()

	s.telemetry.BroadcastJSON(snap)
}
