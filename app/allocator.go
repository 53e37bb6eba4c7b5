package app

import (
	"github.com/agencyos/growthmeter/adapters/metrics"
	"github.com/agencyos/growthmeter/domain/budget"
	"github.com/rs/zerolog"
)

// AllocatorService runs budget allocation plans. The engine itself is pure;
// the service only adds logging and instrumentation around it.
type AllocatorService struct {
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// NewAllocatorService creates a new allocator service.
// Metrics is optional; nil disables instrumentation.
func NewAllocatorService(logger zerolog.Logger, m *metrics.Collector) *AllocatorService {
	return &AllocatorService{logger: logger, metrics: m}
}

// Allocate computes a full allocation plan for the given budget and channels.
func (s *AllocatorService) Allocate(totalBudget float64, channels []budget.Channel, mode budget.Mode) (budget.Summary, error) {
	summary, err := budget.Allocate(totalBudget, channels, mode)
	if err != nil {
		return budget.Summary{}, err
	}

	if s.metrics != nil {
		s.metrics.AllocationRequests.WithLabelValues(string(mode)).Inc()
	}
	s.logger.Debug().
		Str("mode", string(mode)).
		Float64("total_budget", totalBudget).
		Int("channels", len(channels)).
		Msg("budget allocated")

	return summary, nil
}
