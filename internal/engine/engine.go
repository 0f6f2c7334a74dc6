// Package engine implements the core cooking session state machine.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/logger"
	"github.com/hammamikhairi/cookflow/internal/timer"
)

// Default labels for the advance action.
const (
	DefaultNextLabel = "Next"
	DefaultDoneLabel = "Done"
)

// User-facing notices.
const (
	msgEmptyRecipe   = "This recipe has no steps."
	msgTimerFinished = "Timer finished."
	msgCongrats      = "Congratulations! Recipe finished."
	msgNotRecorded   = "Completion was not recorded: "
)

// Option configures the controller.
type Option func(*Controller)

// WithTickInterval sets the length of one timer second. Tests use this to
// run countdowns quickly.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.tickInterval = d
	}
}

// WithReportTimeout bounds the detached completion report.
func WithReportTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.reportTimeout = d
		}
	}
}

// WithAlarm sets what rings when a step timer expires.
func WithAlarm(a domain.Alarm) Option {
	return func(c *Controller) {
		c.alarm = a
	}
}

// WithAdvanceLabels overrides the labels of the advance action.
func WithAdvanceLabels(next, done string) Option {
	return func(c *Controller) {
		if next != "" {
			c.nextLabel = next
		}
		if done != "" {
			c.doneLabel = done
		}
	}
}

// Controller walks a user through one recipe at a time. It owns the step
// countdown and reports completion to the backend without letting that
// report hold up the session.
//
// Lock order is mu, then the countdown, then viewMu. Timer callbacks only
// take viewMu.
type Controller struct {
	reporter      domain.CompletionReporter
	notifier      domain.Notifier
	alarm         domain.Alarm
	log           *logger.Logger
	countdown     *timer.Countdown
	tickInterval  time.Duration
	reportTimeout time.Duration
	nextLabel     string
	doneLabel     string

	mu        sync.Mutex
	sessionID string
	recipe    *domain.Recipe // private copy, never mutated
	stepIndex int
	phase     domain.Phase
	slog      *logger.Logger

	viewMu sync.RWMutex
	view   domain.View

	reports sync.WaitGroup
}

// New creates an idle controller. reporter may be nil, in which case
// completion is only recorded locally.
func New(reporter domain.CompletionReporter, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		reporter:      reporter,
		notifier:      notifier,
		log:           log,
		tickInterval:  1 * time.Second,
		reportTimeout: 15 * time.Second,
		nextLabel:     DefaultNextLabel,
		doneLabel:     DefaultDoneLabel,
		phase:         domain.PhaseIdle,
		slog:          log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.countdown = timer.New(log, timer.WithTickInterval(c.tickInterval))
	return c
}

// Start begins cooking recipe from its first step. Any running session is
// closed first. A recipe without steps is refused with domain.ErrEmptyRecipe
// and the controller stays idle.
func (c *Controller) Start(ctx context.Context, recipe *domain.Recipe) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != domain.PhaseIdle {
		c.slog.Info("replacing session for recipe %s", c.recipe.ID)
		c.closeLocked()
	}

	if recipe == nil || len(recipe.Steps) == 0 {
		c.log.Warn("refusing to start cooking: %v", domain.ErrEmptyRecipe)
		if err := c.notifier.NotifyUrgent(ctx, msgEmptyRecipe); err != nil {
			c.log.Error("notifying empty recipe: %v", err)
		}
		return domain.ErrEmptyRecipe
	}

	cp := *recipe
	cp.Steps = append([]domain.Step(nil), recipe.Steps...)

	c.recipe = &cp
	c.sessionID = generateID()
	c.slog = c.log.WithField("session", shortID(c.sessionID))
	c.phase = domain.PhaseActive
	c.showStep(0)

	c.slog.Info("started cooking %q (%d steps)", cp.Title, len(cp.Steps))
	return nil
}

// Advance moves to the next step. On the last step it finishes the session:
// the completion report is sent in the background and the session closes
// right away, whatever the report's outcome.
func (c *Controller) Advance(ctx context.Context) domain.View {
	c.mu.Lock()

	if c.phase != domain.PhaseActive {
		c.mu.Unlock()
		c.log.Debug("advance ignored: %v", domain.ErrSessionNotActive)
		return c.View()
	}

	if c.stepIndex < len(c.recipe.Steps)-1 {
		c.showStep(c.stepIndex + 1)
		c.mu.Unlock()
		return c.View()
	}

	c.countdown.Disarm()
	recipeID := c.recipe.ID
	c.phase = domain.PhaseClosed
	c.slog.Info("finished recipe %s", recipeID)
	c.reportCompletion(ctx, recipeID)
	c.closeLocked()
	c.mu.Unlock()

	if err := c.notifier.Notify(ctx, msgCongrats); err != nil {
		c.log.Error("notifying completion: %v", err)
	}
	return c.View()
}

// Retreat moves to the previous step. On the first step it stays put.
func (c *Controller) Retreat() domain.View {
	c.mu.Lock()
	if c.phase == domain.PhaseActive {
		c.showStep(c.stepIndex - 1)
	} else {
		c.log.Debug("retreat ignored: %v", domain.ErrSessionNotActive)
	}
	c.mu.Unlock()
	return c.View()
}

// GoToStep jumps to step i (0-based). Out-of-range values are clamped to
// the first or last step.
func (c *Controller) GoToStep(i int) domain.View {
	c.mu.Lock()
	if c.phase == domain.PhaseActive {
		c.showStep(i)
	} else {
		c.log.Debug("go to step ignored: %v", domain.ErrSessionNotActive)
	}
	c.mu.Unlock()
	return c.View()
}

// Close ends the session and stops its timer. Closing an idle controller
// does nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == domain.PhaseIdle {
		return
	}
	c.closeLocked()
}

// Wait blocks until every completion report started so far has returned.
func (c *Controller) Wait() {
	c.reports.Wait()
}

// View returns the state published by the last transition or timer tick.
func (c *Controller) View() domain.View {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.view
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() domain.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// StepIndex returns the 0-based current step. It is 0 when idle.
func (c *Controller) StepIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepIndex
}

// Recipe returns a copy of the recipe being cooked, or nil when idle.
func (c *Controller) Recipe() *domain.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.recipe == nil {
		return nil
	}
	cp := *c.recipe
	cp.Steps = append([]domain.Step(nil), c.recipe.Steps...)
	return &cp
}

// showStep disarms the countdown, moves to step i (clamped), publishes the
// view and arms a new countdown if the step is timed. Caller holds mu.
func (c *Controller) showStep(i int) {
	c.countdown.Disarm()

	last := len(c.recipe.Steps) - 1
	c.stepIndex = clamp(i, 0, last)
	step := c.recipe.Steps[c.stepIndex]

	label := c.nextLabel
	if c.stepIndex == last {
		label = c.doneLabel
	}

	c.setView(domain.View{
		Phase:          domain.PhaseActive,
		SessionID:      c.sessionID,
		RecipeID:       c.recipe.ID,
		Title:          c.recipe.Title,
		StepCount:      len(c.recipe.Steps),
		StepNumber:     c.stepIndex + 1,
		Description:    step.Description,
		ImageURL:       step.ImageURL,
		HasTimer:       step.HasTimer(),
		TimerRemaining: max(step.TimerSeconds, 0),
		AdvanceLabel:   label,
		LastStep:       c.stepIndex == last,
	})

	c.slog.Debug("showing step %d/%d", c.stepIndex+1, len(c.recipe.Steps))

	if step.HasTimer() {
		c.countdown.Arm(step.TimerSeconds, c.onTick, c.onExpire)
	}
}

// closeLocked resets the controller to idle. Caller holds mu.
func (c *Controller) closeLocked() {
	c.countdown.Disarm()
	c.slog.Info("session closed")

	c.recipe = nil
	c.sessionID = ""
	c.stepIndex = 0
	c.phase = domain.PhaseIdle
	c.slog = c.log
	c.setView(domain.View{})
}

// reportCompletion sends the completion report on its own goroutine. The
// report outlives the caller's context but is bounded by reportTimeout.
func (c *Controller) reportCompletion(ctx context.Context, recipeID string) {
	if c.reporter == nil {
		c.log.Debug("no completion reporter, recipe %s completed locally", recipeID)
		return
	}

	log := c.slog
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.reportTimeout)

	c.reports.Add(1)
	go func() {
		defer c.reports.Done()
		defer cancel()

		res, err := c.reporter.NotifyCompletion(reportCtx, recipeID)
		if err != nil {
			log.Warn("completion report for recipe %s: %v", recipeID, err)
			if nerr := c.notifier.Notify(context.Background(), msgNotRecorded+err.Error()); nerr != nil {
				log.Error("notifying report failure: %v", nerr)
			}
			return
		}

		log.Info("completion recorded for recipe %s (%d challenge(s) progressed, %d completed)",
			recipeID, res.ProgressUpdated, res.ChallengesCompleted)
	}()
}

// onTick publishes the remaining seconds. Runs under the countdown handle.
func (c *Controller) onTick(remaining int) {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	c.view.HasTimer = true
	c.view.TimerRemaining = remaining
}

// onExpire marks the timer as finished and alerts the user.
func (c *Controller) onExpire() {
	c.viewMu.Lock()
	c.view.TimerRemaining = 0
	c.view.TimerExpired = true
	step := c.view.StepNumber
	c.viewMu.Unlock()

	c.log.Debug("timer expired on step %d", step)
	if err := c.notifier.Notify(context.Background(), msgTimerFinished); err != nil {
		c.log.Error("notifying timer expiry: %v", err)
	}
	if c.alarm != nil {
		c.alarm.Ring()
	}
}

func (c *Controller) setView(v domain.View) {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	c.view = v
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}
