package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateEvaluationCache invalidates everything derived from a student's
// evaluations: the per-student entries plus all dashboard aggregates.
func InvalidateEvaluationCache(ctx context.Context, cm *CacheManager, usn string) {
	SafeDelete(ctx, cm.Evaluation,
		fmt.Sprintf("usn:%s", usn),
		fmt.Sprintf("report:%s", usn))

	SafeInvalidatePattern(ctx, cm.Evaluation, "list:*")
	SafeInvalidatePattern(ctx, cm.Dashboard, "*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("usn:%s:*", usn))
}

// InvalidateStudentCache invalidates the student roster caches.
func InvalidateStudentCache(ctx context.Context, cm *CacheManager, usn string) {
	SafeDelete(ctx, cm.Exists, fmt.Sprintf("student:%s", usn))
	SafeInvalidatePattern(ctx, cm.Dashboard, "*")
}
