package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound               = errors.New("not found")
	ErrAlreadyExists          = errors.New("already exists")
	ErrEmptyRecipe            = errors.New("recipe has no steps")
	ErrSessionNotActive       = errors.New("session is not active")
	ErrCompletionReportFailed = errors.New("completion report failed")
)
