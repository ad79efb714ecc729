// Package snapshot caches computed performance metrics keyed by
// (account, period). Entries are disposable: the analytics service
// recomputes them on a miss, and every ledger operation that changes an
// account's realized P&L invalidates that account's entries so a stale
// snapshot is never served past the account's last mutation.
package snapshot

import (
	"context"

	"trade-journal-go/internal/models"
)

// Store is the snapshot cache contract.
type Store interface {
	// Get returns the cached metrics for (accountID, period), or ok=false
	// on a miss.
	Get(ctx context.Context, accountID, period string) (metrics models.PerformanceMetrics, ok bool, err error)
	// Put stores the metrics for (accountID, period).
	Put(ctx context.Context, accountID, period string, metrics models.PerformanceMetrics) error
	// Invalidate removes every period's entry for the account.
	Invalidate(ctx context.Context, accountID string) error
}
