package transport

import (
	"sync"
	"time"

	"github.com/openmanip/go-armctl/internal/log"
	"github.com/openmanip/go-armctl/pkg/joint"
)

// DefaultStatusInterval is how often the poller asks the controller for a
// status frame.
const DefaultStatusInterval = 200 * time.Millisecond

// StatusPoller reads controller telemetry on its own goroutine and caches the
// latest frame. Serial status reads block on the wire for up to the read
// timeout; callers on the control loop use Latest, which never blocks.
type StatusPoller struct {
	reader   StatusReader
	interval time.Duration

	mu    sync.Mutex
	last  Status
	fresh bool

	stop    chan struct{}
	stopped sync.Once
}

// NewStatusPoller creates a poller for r. A non-positive interval falls back
// to DefaultStatusInterval.
func NewStatusPoller(r StatusReader, interval time.Duration) *StatusPoller {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	return &StatusPoller{
		reader:   r,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Run polls until Stop is called. Call it on its own goroutine.
func (p *StatusPoller) Run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// Stop halts the polling loop. Safe to call more than once.
func (p *StatusPoller) Stop() {
	p.stopped.Do(func() { close(p.stop) })
}

func (p *StatusPoller) poll() {
	status, err := p.reader.ReadStatus()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		// Keep the last angles for display but mark them stale.
		p.fresh = false
		log.Debug("status read failed", "err", err)
		return
	}
	p.last = *status
	p.fresh = true
}

// Latest returns the most recent joint angles read from the controller and
// whether they are fresh. It never touches the hardware.
func (p *StatusPoller) Latest() (joint.Vector, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last.Angles, p.fresh
}
