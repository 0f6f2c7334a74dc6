package domain

import "context"

// RecipeSource provides recipes. Implementations can be in-memory,
// file-based or backed by the recipe API.
type RecipeSource interface {
	List(ctx context.Context) ([]RecipeSummary, error)
	Get(ctx context.Context, id string) (*Recipe, error)
}

// CompletionReporter tells the backend that a recipe was cooked to the end.
// Failures carry a human-readable message and a machine code.
type CompletionReporter interface {
	NotifyCompletion(ctx context.Context, recipeID string) (*CompletionResult, error)
}

// Notifier delivers notices to the user. Implementations can write to
// the terminal, a flash area, or anything else.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// Alarm makes the user notice an expired timer. Ring must not block.
type Alarm interface {
	Ring()
}

// IntentParser turns raw user input into an intent.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}
