// armctl - safety-checked motion daemon for a six-joint arm
//
// Runs the control loop, exposes the REST/WebSocket API, and drives either a
// serial-connected controller or a mock transport for bench work.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/openmanip/go-armctl/internal/config"
	"github.com/openmanip/go-armctl/internal/log"
	"github.com/openmanip/go-armctl/pkg/ik"
	"github.com/openmanip/go-armctl/pkg/motion"
	"github.com/openmanip/go-armctl/pkg/safety"
	"github.com/openmanip/go-armctl/pkg/transport"
	"github.com/openmanip/go-armctl/pkg/web"
)

func main() {
	httpPort := flag.String("port", config.HTTPPort(), "HTTP listen port")
	serialPort := flag.String("serial", config.SerialPort(), "serial device (empty = mock transport)")
	baud := flag.Int("baud", config.DefaultSerialBaud, "serial baud rate")
	profilePath := flag.String("profile", config.ProfilePath(), "arm profile YAML (empty = built-in defaults)")
	tickRate := flag.Duration("tick", motion.DefaultTickRate, "control loop period")
	flag.Parse()

	log.Init(config.LogLevel())

	checker := safety.NewChecker()
	library := motion.DefaultLibrary()
	if *profilePath != "" {
		profile, err := config.LoadProfile(*profilePath)
		if err != nil {
			log.Error("profile load failed", "path", *profilePath, "err", err)
			os.Exit(1)
		}
		checker = profile.Checker()
		library = profile.SequenceLibrary()
		log.Info("arm profile loaded", "path", *profilePath)
	}

	ctrl, err := openTransport(*serialPort, *baud)
	if err != nil {
		log.Error("transport open failed", "port", *serialPort, "err", err)
		os.Exit(1)
	}
	defer ctrl.Close()

	exec := motion.NewExecutor(ctrl, *tickRate)
	solver := ik.NewGeometric(checker.Links)
	planner := motion.NewPlanner(solver, checker)
	player := motion.NewPlayer(exec, checker, library)
	player.SetGripper(ctrl)

	// Telemetry reads block on the serial line, so they run on their own
	// goroutine; the web layer only ever sees the cached reading.
	poller := transport.NewStatusPoller(ctrl, transport.DefaultStatusInterval)

	server := web.NewServer(*httpPort, web.Deps{
		Exec:    exec,
		Planner: planner,
		Player:  player,
		Checker: checker,
		Gripper: ctrl,
		Actual:  poller.Latest,
	})
	exec.SetTickObserver(server.PublishTick)

	go poller.Run()
	go exec.Run()
	server.StartAsync()

	log.Info("armctl up", "port", *httpPort, "serial", *serialPort, "tick", tickRate.String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	player.Stop()
	exec.Stop()
	poller.Stop()
	if err := server.Shutdown(); err != nil {
		log.Error("server shutdown failed", "err", err)
	}
}

// openTransport picks the hardware link: a real serial controller when a
// device is configured, otherwise a mock that lets the daemon run headless.
func openTransport(port string, baud int) (transport.Controller, error) {
	if port == "" {
		log.Warn("no serial device configured, using mock transport")
		return transport.NewMock(), nil
	}
	cfg := transport.DefaultSerialConfig(port)
	cfg.Baud = baud
	return transport.OpenSerial(cfg)
}
