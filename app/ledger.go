// Package app contains the application services wiring domain logic to ports.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/agencyos/growthmeter/adapters/metrics"
	"github.com/agencyos/growthmeter/domain/quota"
	"github.com/agencyos/growthmeter/domain/usage"
	"github.com/agencyos/growthmeter/ports"
	"github.com/rs/zerolog"
)

// DefaultRetention is how long usage events are kept before cleanup.
const DefaultRetention = 90 * 24 * time.Hour

// LedgerService records usage events and answers quota admission queries.
// Aggregates are always recomputed from the store; no in-process caching, so
// limits are never enforced against stale counts.
type LedgerService struct {
	store   ports.UsageStore
	clock   ports.Clock
	ids     ports.IDGenerator
	logger  zerolog.Logger
	metrics *metrics.Collector

	// mu guards limits and retention, which are hot-reloadable.
	mu        sync.RWMutex
	limits    quota.Limits
	retention time.Duration
}

// LedgerConfig contains dependencies for the ledger service.
type LedgerConfig struct {
	Store  ports.UsageStore
	Limits quota.Limits
	Clock  ports.Clock
	IDs    ports.IDGenerator
	Logger zerolog.Logger
	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.Collector
	// Retention overrides the event retention window (default 90 days).
	Retention time.Duration
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(cfg LedgerConfig) *LedgerService {
	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &LedgerService{
		store:     cfg.Store,
		limits:    cfg.Limits,
		clock:     cfg.Clock,
		ids:       cfg.IDs,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		retention: retention,
	}
}

// SetLimits swaps the quota ceilings, typically after a config reload.
func (s *LedgerService) SetLimits(limits quota.Limits) {
	s.mu.Lock()
	s.limits = limits
	s.mu.Unlock()
}

// SetRetention swaps the event retention window. Non-positive values keep
// the default.
func (s *LedgerService) SetRetention(retention time.Duration) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	s.mu.Lock()
	s.retention = retention
	s.mu.Unlock()
}

func (s *LedgerService) currentLimits() quota.Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

func (s *LedgerService) currentRetention() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retention
}

// TrackUsage appends one usage event for a metered action. Identical repeated
// calls produce multiple events; callers own deduplication. Metadata is
// serialized to JSON when non-nil and stored as an explicit null otherwise.
func (s *LedgerService) TrackUsage(ctx context.Context, userID string, tool usage.Tool, action string, quotaUsed int64, metadata map[string]any) (usage.Event, error) {
	event := usage.NewEvent(s.ids.New(), userID, tool, action, quotaUsed, s.clock.Now().UTC())
	if err := event.Validate(); err != nil {
		return usage.Event{}, err
	}

	if metadata != nil {
		serialized, err := json.Marshal(metadata)
		if err != nil {
			return usage.Event{}, fmt.Errorf("%w: metadata not serializable: %v", usage.ErrValidation, err)
		}
		event = event.WithMetadata(string(serialized))
	}

	if err := s.store.Record(ctx, event); err != nil {
		return usage.Event{}, fmt.Errorf("%w: record event: %v", usage.ErrStorage, err)
	}

	if s.metrics != nil {
		s.metrics.UsageEvents.WithLabelValues(string(tool)).Inc()
	}
	s.logger.Debug().
		Str("user_id", userID).
		Str("tool", string(tool)).
		Str("action", action).
		Int64("quota_used", event.QuotaUsed).
		Msg("usage tracked")

	return event, nil
}

// MonthlyUsage sums quota consumed in the current calendar month, recomputed
// against the clock on every call. An empty action aggregates across all
// actions for the tool. Returns 0 when no events match.
func (s *LedgerService) MonthlyUsage(ctx context.Context, userID string, tool usage.Tool, action string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", usage.ErrValidation)
	}
	if !usage.ValidTool(tool) {
		return 0, fmt.Errorf("%w: unknown tool %q", usage.ErrValidation, tool)
	}

	start, end := usage.PeriodBounds(s.clock.Now())
	total, err := s.store.SumQuota(ctx, userID, tool, action, start, end)
	if err != nil {
		return 0, fmt.Errorf("%w: sum monthly usage: %v", usage.ErrStorage, err)
	}
	return total, nil
}

// CheckQuota answers whether requested additional units are admissible under
// the free-tier ceiling for the action's metric. Pure read: callers must
// still TrackUsage after performing the gated action, and the check-then-track
// pair is not atomic; use ReserveQuota to close that race.
func (s *LedgerService) CheckQuota(ctx context.Context, userID string, tool usage.Tool, action string, requested int64) (quota.CheckResult, error) {
	if requested <= 0 {
		requested = 1
	}
	if action == "" {
		return quota.CheckResult{}, fmt.Errorf("%w: action is required", usage.ErrValidation)
	}

	limit, err := s.currentLimits().ForAction(tool, action)
	if err != nil {
		return quota.CheckResult{}, err
	}

	current, err := s.MonthlyUsage(ctx, userID, tool, action)
	if err != nil {
		return quota.CheckResult{}, err
	}

	result := quota.Check(current, requested, limit)
	if s.metrics != nil {
		s.metrics.QuotaChecks.WithLabelValues(string(tool), fmt.Sprintf("%t", result.Allowed)).Inc()
		if !result.Allowed {
			s.metrics.QuotaDenials.WithLabelValues(string(tool)).Inc()
		}
	}
	return result, nil
}

// ReserveQuota atomically records usage only when it fits under the ceiling,
// closing the check-then-track race. On success the returned result includes
// the reserved amount in Current.
func (s *LedgerService) ReserveQuota(ctx context.Context, userID string, tool usage.Tool, action string, amount int64) (quota.CheckResult, error) {
	event := usage.NewEvent(s.ids.New(), userID, tool, action, amount, s.clock.Now().UTC())
	if err := event.Validate(); err != nil {
		return quota.CheckResult{}, err
	}

	limit, err := s.currentLimits().ForAction(tool, action)
	if err != nil {
		return quota.CheckResult{}, err
	}

	start, end := usage.PeriodBounds(s.clock.Now())
	recorded, current, err := s.store.RecordIfUnder(ctx, event, start, end, limit)
	if err != nil {
		return quota.CheckResult{}, fmt.Errorf("%w: reserve quota: %v", usage.ErrStorage, err)
	}

	remaining := limit - current
	if remaining < 0 {
		remaining = 0
	}

	if s.metrics != nil {
		outcome := "reserved"
		if !recorded {
			outcome = "denied"
			s.metrics.QuotaDenials.WithLabelValues(string(tool)).Inc()
		} else {
			s.metrics.UsageEvents.WithLabelValues(string(tool)).Inc()
		}
		s.metrics.Reservations.WithLabelValues(string(tool), outcome).Inc()
	}
	s.logger.Debug().
		Str("user_id", userID).
		Str("tool", string(tool)).
		Str("action", action).
		Bool("reserved", recorded).
		Msg("quota reservation")

	return quota.CheckResult{
		Allowed:   recorded,
		Current:   current,
		Limit:     limit,
		Remaining: remaining,
	}, nil
}

// UserUsageStats reports month-to-date usage against each tool's primary
// ceiling. All seven tools are present unconditionally; tools with no events
// report zero usage.
func (s *LedgerService) UserUsageStats(ctx context.Context, userID string) (map[usage.Tool]usage.ToolStat, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", usage.ErrValidation)
	}

	start, end := usage.PeriodBounds(s.clock.Now())

	stats := make(map[usage.Tool]usage.ToolStat, len(usage.Tools()))
	for _, tool := range usage.Tools() {
		used, err := s.store.SumQuota(ctx, userID, tool, "", start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: sum usage for %s: %v", usage.ErrStorage, tool, err)
		}

		limit, err := s.currentLimits().Primary(tool)
		if err != nil {
			return nil, err
		}

		var percentage float64
		if limit > 0 {
			percentage = float64(used) / float64(limit) * 100
		}
		stats[tool] = usage.ToolStat{Usage: used, Limit: limit, Percentage: percentage}
	}
	return stats, nil
}

// CleanupOldUsage deletes events older than the retention window and returns
// the number deleted. Idempotent: repeated calls with no new old data return 0.
func (s *LedgerService) CleanupOldUsage(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.currentRetention())
	deleted, err := s.store.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup old usage: %v", usage.ErrStorage, err)
	}

	if s.metrics != nil {
		s.metrics.CleanupEvents.Add(float64(deleted))
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("old usage events purged")
	}
	return deleted, nil
}

// GlobalUsageStats aggregates usage per tool across all users for
// administrative reporting. Nil bounds leave the range open on that side.
func (s *LedgerService) GlobalUsageStats(ctx context.Context, start, end *time.Time) ([]usage.GlobalStat, error) {
	stats, err := s.store.GlobalStats(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: global usage stats: %v", usage.ErrStorage, err)
	}
	return stats, nil
}
