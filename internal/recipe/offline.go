package recipe

import (
	"context"

	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/logger"
)

// Compile-time interface check.
var _ domain.CompletionReporter = (*OfflineReporter)(nil)

// OfflineReporter stands in for the backend when cooking from a local
// recipe book. Completions are only logged.
type OfflineReporter struct {
	log *logger.Logger
}

// NewOfflineReporter creates a reporter that never contacts a server.
func NewOfflineReporter(log *logger.Logger) *OfflineReporter {
	return &OfflineReporter{log: log}
}

// NotifyCompletion logs the completion and reports nothing progressed.
func (r *OfflineReporter) NotifyCompletion(ctx context.Context, recipeID string) (*domain.CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.log.Info("offline: recipe %s cooked (not sent to a server)", recipeID)
	return &domain.CompletionResult{Message: "recorded locally"}, nil
}
