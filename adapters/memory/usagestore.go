// Package memory provides in-memory implementations of storage ports,
// primarily for tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agencyos/growthmeter/domain/usage"
	"github.com/agencyos/growthmeter/ports"
)

// UsageStore is an in-memory implementation of ports.UsageStore.
type UsageStore struct {
	mu     sync.RWMutex
	events []usage.Event

	// FailNext forces the next operation to return this error (for tests).
	FailNext error
}

// NewUsageStore creates a new in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{
		events: make([]usage.Event, 0),
	}
}

func (s *UsageStore) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// Record appends one usage event.
func (s *UsageStore) Record(ctx context.Context, e usage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	s.events = append(s.events, e)
	return nil
}

// SumQuota sums QuotaUsed for a user/tool over [start, end).
func (s *UsageStore) SumQuota(ctx context.Context, userID string, tool usage.Tool, action string, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.takeFailure(); err != nil {
		return 0, err
	}
	return s.sumLocked(userID, tool, action, start, end), nil
}

func (s *UsageStore) sumLocked(userID string, tool usage.Tool, action string, start, end time.Time) int64 {
	var total int64
	for _, e := range s.events {
		if usage.Matches(e, userID, tool, action) && usage.InWindow(e, start, end) {
			total += e.QuotaUsed
		}
	}
	return total
}

// RecordIfUnder appends e only when the window aggregate plus e.QuotaUsed
// stays within limit. The whole check-and-append runs under one lock.
func (s *UsageStore) RecordIfUnder(ctx context.Context, e usage.Event, start, end time.Time, limit int64) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return false, 0, err
	}

	current := s.sumLocked(e.UserID, e.Tool, e.Action, start, end)
	if current+e.QuotaUsed > limit {
		return false, current, nil
	}
	s.events = append(s.events, e)
	return true, current + e.QuotaUsed, nil
}

// Cleanup removes all events older than the given instant.
func (s *UsageStore) Cleanup(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return 0, err
	}

	kept := s.events[:0]
	var deleted int64
	for _, e := range s.events {
		if e.Timestamp.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}

// GlobalStats aggregates quota sums and event counts per tool across all users.
func (s *UsageStore) GlobalStats(ctx context.Context, start, end *time.Time) ([]usage.GlobalStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	byTool := make(map[usage.Tool]*usage.GlobalStat)
	for _, e := range s.events {
		if start != nil && e.Timestamp.Before(*start) {
			continue
		}
		if end != nil && !e.Timestamp.Before(*end) {
			continue
		}
		st, ok := byTool[e.Tool]
		if !ok {
			st = &usage.GlobalStat{Tool: e.Tool}
			byTool[e.Tool] = st
		}
		st.TotalQuota += e.QuotaUsed
		st.EventCount++
	}

	var stats []usage.GlobalStat
	for _, st := range byTool {
		stats = append(stats, *st)
	}
	// Stable ordering to match the SQL adapter.
	sort.Slice(stats, func(i, j int) bool { return stats[i].Tool < stats[j].Tool })
	return stats, nil
}

// All returns a copy of all events (for testing).
func (s *UsageStore) All() []usage.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]usage.Event{}, s.events...)
}

// Clear removes all events (for testing).
func (s *UsageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make([]usage.Event, 0)
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
