package motion

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/openmanip/go-armctl/internal/log"
	"github.com/openmanip/go-armctl/pkg/joint"
)

// Dispatcher forwards a commanded pose to the hardware transport. Dispatch
// failures are logged and never unwind planning or interpolation state.
type Dispatcher interface {
	DispatchJoints(v joint.Vector) error
}

// Outcome reports how a trajectory ended.
type Outcome int

const (
	// OutcomePending means the trajectory is still in flight.
	OutcomePending Outcome = iota
	// OutcomeCompleted means the final pose was reached and dispatched.
	OutcomeCompleted
	// OutcomeSuperseded means a newer trajectory replaced this one mid-flight.
	OutcomeSuperseded
	// OutcomeStopped means the trajectory was cancelled or emergency-stopped.
	OutcomeStopped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeSuperseded:
		return "superseded"
	case OutcomeStopped:
		return "stopped"
	default:
		return "pending"
	}
}

// Handle tracks one submitted trajectory. Done is closed exactly once when
// the trajectory finishes for any reason; Outcome says which.
type Handle struct {
	ID uuid.UUID

	mu      sync.Mutex
	outcome Outcome
	done    chan struct{}
}

func newHandle() *Handle {
	return &Handle{ID: uuid.New(), done: make(chan struct{})}
}

// Done returns a channel closed when the trajectory finishes.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Outcome returns the final state, or OutcomePending while in flight.
func (h *Handle) Outcome() Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome
}

func (h *Handle) finish(o Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.outcome != OutcomePending {
		return
	}
	h.outcome = o
	close(h.done)
}

// trajectory is the executor's active motion. waypoints always starts at the
// pose the arm was commanding when the trajectory was submitted.
type trajectory struct {
	handle     *Handle
	generation uint64
	waypoints  []joint.Vector
	started    time.Time
	duration   time.Duration
	eased      bool
}

// Executor owns the single commanded joint vector and advances it on a
// periodic tick. At most one trajectory is active; submitting a new one
// supersedes the old with the current mid-flight pose as its start, so the
// commanded value never jumps. The tick loop is the only writer.
type Executor struct {
	clk        clock.Clock
	rate       time.Duration
	dispatcher Dispatcher

	// onTick observes every commanded value, outside the lock.
	onTick func(joint.Vector)

	mu         sync.Mutex
	commanded  joint.Vector
	active     *trajectory
	generation uint64

	stop    chan struct{}
	stopped sync.Once
	running bool

	tickCount    atomic.Uint64
	dispatchErrs atomic.Uint64
}

// DefaultTickRate is the control-loop period (50Hz).
const DefaultTickRate = 20 * time.Millisecond

// minDuration keeps degenerate trajectories from dividing by zero.
const minDuration = time.Millisecond

// NewExecutor creates an executor dispatching to d. A nil dispatcher is
// allowed; completion dispatch then becomes a no-op.
func NewExecutor(d Dispatcher, rate time.Duration) *Executor {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &Executor{
		clk:        clock.New(),
		rate:       rate,
		dispatcher: d,
		stop:       make(chan struct{}),
	}
}

// SetTickObserver registers a callback invoked with the commanded vector on
// every tick. Set it before Run; it is used for telemetry fan-out.
func (e *Executor) SetTickObserver(fn func(joint.Vector)) {
	e.onTick = fn
}

// SetCommanded seeds the commanded pose. It refuses while a trajectory is in
// flight; use Move for that.
func (e *Executor) SetCommanded(v joint.Vector) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active != nil {
		return false
	}
	e.commanded = v
	return true
}

// Commanded returns the current commanded joint vector.
func (e *Executor) Commanded() joint.Vector {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commanded
}

// Busy reports whether a trajectory is in flight.
func (e *Executor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil
}

// Run starts the control loop and blocks until Stop is called.
func (e *Executor) Run() {
	ticker := e.clk.Ticker(e.rate)
	defer ticker.Stop()

	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	log.Info("executor started", "rate", e.rate.String())

	for {
		select {
		case <-e.stop:
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			log.Info("executor stopped", "ticks", e.tickCount.Load())
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// Stop halts the control loop. Safe to call more than once.
func (e *Executor) Stop() {
	e.stopped.Do(func() { close(e.stop) })
}

// Move starts a single eased segment from the current commanded pose to
// `to`. Any in-flight trajectory is superseded immediately: its handle
// finishes with OutcomeSuperseded and its caller is not otherwise notified.
func (e *Executor) Move(to joint.Vector, d time.Duration) *Handle {
	e.mu.Lock()
	from := e.commanded
	h := e.startLocked([]joint.Vector{from, to}, d, true)
	e.mu.Unlock()

	log.Debug("trajectory started", "trajectory", h.ID, "to", to.String(), "duration", d.String())
	return h
}

// MovePath starts a multi-waypoint trajectory. The current commanded pose is
// prepended as the first waypoint unless it already matches, so the
// commanded value stays continuous across supersession. Total duration is
// split equally across segments; segments interpolate linearly with no
// per-segment easing.
func (e *Executor) MovePath(waypoints []joint.Vector, total time.Duration) *Handle {
	e.mu.Lock()
	pts := make([]joint.Vector, 0, len(waypoints)+1)
	if len(waypoints) == 0 || !e.commanded.Equal(waypoints[0], 1e-9) {
		pts = append(pts, e.commanded)
	}
	pts = append(pts, waypoints...)
	if len(pts) < 2 {
		pts = append(pts, e.commanded)
	}
	h := e.startLocked(pts, total, false)
	e.mu.Unlock()

	log.Debug("path started", "trajectory", h.ID, "waypoints", len(pts), "duration", total.String())
	return h
}

// startLocked installs a new trajectory; e.mu must be held.
func (e *Executor) startLocked(waypoints []joint.Vector, d time.Duration, eased bool) *Handle {
	if old := e.active; old != nil {
		old.handle.finish(OutcomeSuperseded)
	}
	if d < minDuration {
		d = minDuration
	}
	e.generation++
	t := &trajectory{
		handle:     newHandle(),
		generation: e.generation,
		waypoints:  waypoints,
		started:    e.clk.Now(),
		duration:   d,
		eased:      eased,
	}
	e.active = t
	return t.handle
}

// Cancel drops the in-flight trajectory without repositioning or
// dispatching. The commanded pose stays where interpolation left it.
func (e *Executor) Cancel() {
	e.mu.Lock()
	t := e.active
	e.active = nil
	e.generation++
	e.mu.Unlock()

	if t != nil {
		t.handle.finish(OutcomeStopped)
		log.Info("trajectory cancelled", "trajectory", t.handle.ID)
	}
}

// EmergencyStop is a priority command: it synchronously clears the in-flight
// trajectory and dispatches the current commanded pose as a hold. It is not
// merely another trajectory; nothing resumes until a caller submits new
// motion.
func (e *Executor) EmergencyStop() {
	e.mu.Lock()
	t := e.active
	e.active = nil
	e.generation++
	hold := e.commanded
	e.mu.Unlock()

	if t != nil {
		t.handle.finish(OutcomeStopped)
	}
	log.Warn("emergency stop", "hold", hold.String())
	e.dispatch(hold)
}

// tick advances the active trajectory by one control period.
func (e *Executor) tick() {
	e.mu.Lock()
	e.tickCount.Add(1)
	t := e.active

	if t == nil {
		cmd := e.commanded
		e.mu.Unlock()
		e.observe(cmd)
		return
	}

	progress := float64(e.clk.Since(t.started)) / float64(t.duration)
	if progress > 1 {
		progress = 1
	}
	e.commanded = t.sample(progress)
	finished := progress >= 1
	if finished {
		e.active = nil
	}
	cmd := e.commanded
	e.mu.Unlock()

	if finished {
		// One-shot hardware dispatch of the final pose, dropped if the
		// generation moved on between releasing the lock and dispatching.
		e.dispatchCurrent(t.generation, cmd)
		t.handle.finish(OutcomeCompleted)
		log.Debug("trajectory complete", "trajectory", t.handle.ID, "pose", cmd.String())
	}
	e.observe(cmd)
}

// sample evaluates the trajectory pose at overall progress p in [0,1].
func (t *trajectory) sample(p float64) joint.Vector {
	if t.eased && len(t.waypoints) == 2 {
		return joint.Lerp(t.waypoints[0], t.waypoints[1], easeInOutCubic(p))
	}
	segs := len(t.waypoints) - 1
	sp := p * float64(segs)
	idx := int(sp)
	if idx >= segs {
		idx = segs - 1
	}
	return joint.Lerp(t.waypoints[idx], t.waypoints[idx+1], sp-float64(idx))
}

// dispatchCurrent sends v to the hardware only while gen is still the live
// generation. It holds the lock across the send so a hold dispatched by a
// concurrent EmergencyStop cannot be overwritten by a stale completion pose.
func (e *Executor) dispatchCurrent(gen uint64, v joint.Vector) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		log.Debug("stale dispatch dropped", "generation", gen)
		return false
	}
	e.dispatch(v)
	return true
}

func (e *Executor) dispatch(v joint.Vector) {
	if e.dispatcher == nil {
		return
	}
	if err := e.dispatcher.DispatchJoints(v); err != nil {
		e.dispatchErrs.Add(1)
		log.Error("hardware dispatch failed", "err", err)
	}
}

// DispatchErrors reports how many hardware dispatches have failed since the
// executor was created.
func (e *Executor) DispatchErrors() uint64 {
	return e.dispatchErrs.Load()
}

func (e *Executor) observe(v joint.Vector) {
	if e.onTick != nil {
		e.onTick(v)
	}
}

// easeInOutCubic maps linear progress to eased progress: slow start, slow
// stop, unit endpoints.
func easeInOutCubic(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	if p < 0.5 {
		return 4 * p * p * p
	}
	q := -2*p + 2
	return 1 - q*q*q/2
}
