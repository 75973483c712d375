package transport

import (
	"sync"
	"time"

	"github.com/openmanip/go-armctl/pkg/joint"
)

// Mock implements Controller for testing and for running the daemon without
// hardware. All methods can be customized via function fields; by default
// every call succeeds and is recorded.
type Mock struct {
	// DispatchFunc is called by DispatchJoints. Nil means success.
	DispatchFunc func(v joint.Vector) error

	// GripperFunc is called by SetGripper. Nil means success.
	GripperFunc func(closed bool) error

	// StatusFunc is called by ReadStatus. Nil echoes the last dispatched
	// pose as the actual pose.
	StatusFunc func() (*Status, error)

	mu    sync.Mutex
	calls []MockCall
	last  joint.Vector
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method  string
	Joints  joint.Vector
	Gripper bool
	Time    time.Time
}

// NewMock creates a recording mock controller.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DispatchJoints(v joint.Vector) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Method: "DispatchJoints", Joints: v, Time: time.Now()})
	m.last = v
	m.mu.Unlock()

	if m.DispatchFunc != nil {
		return m.DispatchFunc(v)
	}
	return nil
}

func (m *Mock) SetGripper(closed bool) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Method: "SetGripper", Gripper: closed, Time: time.Now()})
	m.mu.Unlock()

	if m.GripperFunc != nil {
		return m.GripperFunc(closed)
	}
	return nil
}

func (m *Mock) ReadStatus() (*Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return &Status{Angles: m.last}, nil
}

func (m *Mock) Close() error { return nil }

// Calls returns a copy of all recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// DispatchCount returns how many joint dispatches were recorded.
func (m *Mock) DispatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == "DispatchJoints" {
			n++
		}
	}
	return n
}

// LastJoints returns the most recently dispatched pose.
func (m *Mock) LastJoints() joint.Vector {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Reset clears the recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
