// Package timer implements the per-step countdown used by a cooking session.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/cookflow/internal/logger"
)

// Option configures the countdown.
type Option func(*Countdown)

// WithTickInterval sets the length of one countdown second.
func WithTickInterval(d time.Duration) Option {
	return func(c *Countdown) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

// Countdown owns at most one armed Handle at a time. Arming replaces
// the previous handle, disarming it first.
//
// Callbacks run with the handle locked, so once Disarm returns no callback
// of that handle is running or will run. Callbacks must therefore not call
// back into the Countdown or their own Handle.
type Countdown struct {
	log          *logger.Logger
	tickInterval time.Duration

	mu      sync.Mutex
	current *Handle
}

// New creates an idle countdown.
func New(log *logger.Logger, opts ...Option) *Countdown {
	c := &Countdown{
		log:          log,
		tickInterval: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Arm starts counting down from seconds. onTick(seconds) is emitted before
// Arm returns, then once per tick down to onTick(0), which is immediately
// followed by a single onExpire(). A non-positive seconds value returns an
// inert handle and emits nothing. Either callback may be nil.
func (c *Countdown) Arm(seconds int, onTick func(remaining int), onExpire func()) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.Disarm()
		c.current = nil
	}

	if seconds <= 0 {
		c.log.Debug("countdown: ignoring arm with %d seconds", seconds)
		return &Handle{stopped: true}
	}

	h := &Handle{stop: make(chan struct{}), done: make(chan struct{})}

	h.mu.Lock()
	if onTick != nil {
		onTick(seconds)
	}
	h.mu.Unlock()

	c.current = h
	go h.run(c.tickInterval, seconds, onTick, onExpire)

	c.log.Debug("countdown: armed for %s", FormatClock(seconds))
	return h
}

// Disarm stops the current handle, if any. Safe to call repeatedly.
func (c *Countdown) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}
	c.current.Disarm()
	c.current = nil
	c.log.Debug("countdown: disarmed")
}

// Armed reports whether a handle is still counting down.
func (c *Countdown) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.Active()
}

// Handle is one armed countdown. Releasing it with Disarm is the only way
// to stop it early.
type Handle struct {
	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

// Disarm stops the countdown. No callback fires after it returns.
// Disarming an expired, inert or already disarmed handle is a no-op.
func (h *Handle) Disarm() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return
	}
	h.stopped = true
	close(h.stop)
}

// Active reports whether the handle can still emit callbacks.
func (h *Handle) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.stopped
}

// Done is closed once the ticking goroutine has exited. It is nil for
// inert handles.
func (h *Handle) Done() <-chan struct{} { return h.done }

// run is the tick loop of one handle.
func (h *Handle) run(interval time.Duration, remaining int, onTick func(int), onExpire func()) {
	defer close(h.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		if h.step(&remaining, onTick, onExpire) {
			return
		}
	}
}

// step emits one tick and reports whether the loop is finished.
func (h *Handle) step(remaining *int, onTick func(int), onExpire func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return true
	}

	*remaining--
	if onTick != nil {
		onTick(*remaining)
	}
	if *remaining > 0 {
		return false
	}

	h.stopped = true
	if onExpire != nil {
		onExpire()
	}
	return true
}

// FormatClock renders seconds as m:ss. Negative values render as 0:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
