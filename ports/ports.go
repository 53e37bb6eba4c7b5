// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/agencyos/growthmeter/domain/usage"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// UsageStore persists usage events. The ledger issues exactly four query
// shapes against it: insert-one, aggregate-sum-with-filter,
// delete-by-timestamp-range, and group-by-sum-and-count-with-optional-range;
// plus the conditional insert backing atomic reservation.
type UsageStore interface {
	// Record appends one immutable usage event.
	Record(ctx context.Context, e usage.Event) error

	// SumQuota sums QuotaUsed for a user/tool over [start, end).
	// An empty action aggregates across all actions for the tool.
	SumQuota(ctx context.Context, userID string, tool usage.Tool, action string, start, end time.Time) (int64, error)

	// RecordIfUnder appends e only when the existing [start, end) aggregate
	// for e's user/tool/action plus e.QuotaUsed stays within limit, as one
	// atomic store operation. It returns whether the event was recorded and
	// the aggregate after the attempt (including e when recorded).
	RecordIfUnder(ctx context.Context, e usage.Event, start, end time.Time, limit int64) (recorded bool, current int64, err error)

	// Cleanup deletes all events with a timestamp before olderThan and
	// returns the number deleted.
	Cleanup(ctx context.Context, olderThan time.Time) (int64, error)

	// GlobalStats aggregates quota sums and event counts per tool across all
	// users. Nil bounds leave the corresponding side of the range open; start
	// is inclusive, end exclusive.
	GlobalStats(ctx context.Context, start, end *time.Time) ([]usage.GlobalStat, error)
}
