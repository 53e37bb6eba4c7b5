package quota

import (
	"fmt"

	"github.com/agencyos/growthmeter/domain/usage"
)

// Limits maps (tool, metric) pairs to entitlement ceilings for one tier.
// The zero value has no ceilings; build instances with DefaultFreeTier and
// WithOverride. Treat as immutable once constructed.
type Limits struct {
	ceilings map[usage.Tool]map[Metric]int64
}

// DefaultFreeTier returns the free-tier policy constants.
func DefaultFreeTier() Limits {
	return Limits{ceilings: map[usage.Tool]map[Metric]int64{
		usage.ToolExperiments: {
			MetricActive:    1,
			MetricPageviews: 10000,
		},
		usage.ToolAttribution: {
			MetricEvents:        50000,
			MetricRetentionDays: 90,
		},
		usage.ToolSEO: {
			MetricBriefs:          5,
			MetricKeywordsTracked: 10,
		},
		usage.ToolRepurposer: {
			MetricGenerations: 50,
		},
		usage.ToolWidgets: {
			MetricActive:    2,
			MetricPageviews: 10000,
		},
		usage.ToolHeatmaps: {
			MetricSessions: 1000,
			MetricPages:    5,
		},
		usage.ToolCompetitors: {
			MetricTracked:  1,
			MetricKeywords: 10,
		},
	}}
}

// Get returns the ceiling for a (tool, metric) pair.
func (l Limits) Get(tool usage.Tool, metric Metric) (int64, error) {
	if tools, ok := l.ceilings[tool]; ok {
		if limit, ok := tools[metric]; ok {
			return limit, nil
		}
	}
	return 0, fmt.Errorf("%w: no limit for tool %q metric %q", usage.ErrValidation, tool, metric)
}

// ForAction resolves the ceiling governing an action via the metric classifier.
func (l Limits) ForAction(tool usage.Tool, action string) (int64, error) {
	metric, err := MetricFor(tool, action)
	if err != nil {
		return 0, err
	}
	return l.Get(tool, metric)
}

// primaryMetrics fixes the per-tool metric used for usage stats reporting.
var primaryMetrics = map[usage.Tool]Metric{
	usage.ToolExperiments: MetricActive,
	usage.ToolAttribution: MetricEvents,
	usage.ToolSEO:         MetricBriefs,
	usage.ToolRepurposer:  MetricGenerations,
	usage.ToolWidgets:     MetricActive,
	usage.ToolHeatmaps:    MetricSessions,
	usage.ToolCompetitors: MetricTracked,
}

// Primary returns the tool's primary ceiling, the one stats are reported against.
func (l Limits) Primary(tool usage.Tool) (int64, error) {
	metric, ok := primaryMetrics[tool]
	if !ok {
		return 0, fmt.Errorf("%w: unknown tool %q", usage.ErrValidation, tool)
	}
	return l.Get(tool, metric)
}

// WithOverride returns a copy of the limits with one ceiling replaced.
// The receiver is left unchanged.
func (l Limits) WithOverride(tool usage.Tool, metric Metric, limit int64) Limits {
	out := Limits{ceilings: make(map[usage.Tool]map[Metric]int64, len(l.ceilings))}
	for t, metrics := range l.ceilings {
		cp := make(map[Metric]int64, len(metrics))
		for m, v := range metrics {
			cp[m] = v
		}
		out.ceilings[t] = cp
	}
	if _, ok := out.ceilings[tool]; !ok {
		out.ceilings[tool] = make(map[Metric]int64, 1)
	}
	out.ceilings[tool][metric] = limit
	return out
}
