package domain

// Phase is the lifecycle phase of a cooking session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	// PhaseClosed is passed through on completion and collapses to PhaseIdle.
	PhaseClosed
)

// String returns a human-readable phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// View is a snapshot of everything a renderer needs after a transition.
// A zero View is the idle view.
type View struct {
	Phase     Phase
	SessionID string
	RecipeID  string
	Title     string
	StepCount int

	StepNumber  int // 1-based
	Description string
	ImageURL    string

	HasTimer       bool
	TimerRemaining int // seconds
	TimerExpired   bool

	AdvanceLabel string
	LastStep     bool
}

// Active reports whether the view describes a running session.
func (v View) Active() bool { return v.Phase == PhaseActive }
