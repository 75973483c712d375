package transport

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"

	"github.com/openmanip/go-armctl/internal/log"
	"github.com/openmanip/go-armctl/pkg/joint"
)

// Line protocol spoken by the controller board. Commands are newline
// terminated ASCII:
//
//	abs_rotate <joint 1-6> <degrees> 0 0 0 0
//	PUMP_ON / PUMP_OFF
//	remote_enable / remote_disable   (session handshake)
//
// Telemetry frames arrive as "STATUS,j1,j2,j3,j4,j5,j6,errcode".

// SerialConfig configures the serial link.
type SerialConfig struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
}

// DefaultSerialConfig returns the stock controller settings.
func DefaultSerialConfig(port string) SerialConfig {
	return SerialConfig{Port: port, Baud: 115200, ReadTimeout: 500 * time.Millisecond}
}

// Serial is the hardware link over a serial port.
type Serial struct {
	mu     sync.Mutex
	port   *serial.Port
	reader *bufio.Reader
}

// OpenSerial opens the port and performs the remote-enable handshake.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}

	s := &Serial{port: port, reader: bufio.NewReader(port)}
	if err := s.writeLine("remote_enable"); err != nil {
		port.Close()
		return nil, fmt.Errorf("serial handshake: %w", err)
	}
	log.Info("serial link open", "port", cfg.Port, "baud", cfg.Baud)
	return s, nil
}

// DispatchJoints sends one absolute rotate command per joint, in joint
// order. The first write error aborts the remaining joints.
func (s *Serial) DispatchJoints(v joint.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cmd := range JointCommands(v) {
		if err := s.writeLineLocked(cmd); err != nil {
			return fmt.Errorf("dispatch joints: %w", err)
		}
	}
	return nil
}

// SetGripper toggles the vacuum pump.
func (s *Serial) SetGripper(closed bool) error {
	cmd := "PUMP_OFF"
	if closed {
		cmd = "PUMP_ON"
	}
	if err := s.writeLine(cmd); err != nil {
		return fmt.Errorf("gripper command: %w", err)
	}
	return nil
}

// ReadStatus reads lines until a telemetry frame parses or the port times
// out. Unparseable lines are skipped with a debug log.
func (s *Serial) ReadStatus() (*Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read status: %w", err)
		}
		status, perr := ParseStatus(strings.TrimSpace(line))
		if perr != nil {
			log.Debug("skipping serial line", "line", strings.TrimSpace(line))
			continue
		}
		return status, nil
	}
}

// Close performs the disable handshake and releases the port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	if err := s.writeLineLocked("remote_disable"); err != nil {
		log.Warn("serial disable handshake failed", "err", err)
	}
	err := s.port.Close()
	s.port = nil
	return err
}

func (s *Serial) writeLine(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLineLocked(cmd)
}

func (s *Serial) writeLineLocked(cmd string) error {
	if s.port == nil {
		return fmt.Errorf("serial port closed")
	}
	_, err := s.port.Write([]byte(cmd + "\n"))
	return err
}

// JointCommands renders the per-joint command lines for a pose. Joints are
// 1-indexed on the wire.
func JointCommands(v joint.Vector) []string {
	cmds := make([]string, joint.Count)
	for i, deg := range v {
		cmds[i] = fmt.Sprintf("abs_rotate %d %.2f 0 0 0 0", i+1, deg)
	}
	return cmds
}

// ParseStatus parses a "STATUS,j1..j6,errcode" telemetry frame.
func ParseStatus(line string) (*Status, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 8 || !strings.EqualFold(parts[0], "STATUS") {
		return nil, fmt.Errorf("not a status frame: %q", line)
	}

	var status Status
	for i := 0; i < joint.Count; i++ {
		angle, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad angle %q in status frame: %w", parts[i+1], err)
		}
		status.Angles[i] = angle
	}
	code, err := strconv.Atoi(strings.TrimSpace(parts[7]))
	if err != nil {
		return nil, fmt.Errorf("bad error code %q in status frame: %w", parts[7], err)
	}
	status.ErrorCode = code
	return &status, nil
}
