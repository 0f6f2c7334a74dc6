// Package domain defines the core types and interfaces for the cooking client.
// All other packages depend on domain; domain depends on nothing.
package domain

// Recipe is a recipe as loaded for cooking. A session treats it as read-only.
type Recipe struct {
	ID          string
	Title       string
	Description string
	Steps       []Step
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID          string
	Title       string
	Description string
}

// Step is one instruction of a recipe.
type Step struct {
	Description  string
	TimerSeconds int    // countdown length, 0 if untimed
	ImageURL     string // optional
}

// HasTimer reports whether the step carries a countdown.
func (s Step) HasTimer() bool { return s.TimerSeconds > 0 }

// CompletionResult is what the backend reports after a cook is counted.
type CompletionResult struct {
	Message             string
	ProgressUpdated     int
	ChallengesCompleted int
}
