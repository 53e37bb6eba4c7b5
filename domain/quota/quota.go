// Package quota provides pure functions for entitlement quota enforcement.
// All functions are deterministic with no side effects.
package quota

import (
	"fmt"

	"github.com/agencyos/growthmeter/domain/usage"
)

// Metric identifies a named ceiling within a tool.
type Metric string

const (
	MetricActive          Metric = "active"
	MetricPageviews       Metric = "pageviews"
	MetricEvents          Metric = "events"
	MetricRetentionDays   Metric = "retentionDays"
	MetricBriefs          Metric = "briefs"
	MetricKeywordsTracked Metric = "keywordsTracked"
	MetricGenerations     Metric = "generations"
	MetricSessions        Metric = "sessions"
	MetricPages           Metric = "pages"
	MetricTracked         Metric = "tracked"
	MetricKeywords        Metric = "keywords"
)

// MetricFor classifies an action into the metric whose ceiling governs it.
// Each tool has at most two metrics; the action string selects between them.
// This is a PURE function.
func MetricFor(tool usage.Tool, action string) (Metric, error) {
	switch tool {
	case usage.ToolExperiments:
		if action == "pageview" {
			return MetricPageviews, nil
		}
		return MetricActive, nil
	case usage.ToolAttribution:
		// Retention days is a policy constant, not an admission metric.
		return MetricEvents, nil
	case usage.ToolSEO:
		if action == "generate_brief" {
			return MetricBriefs, nil
		}
		return MetricKeywordsTracked, nil
	case usage.ToolRepurposer:
		return MetricGenerations, nil
	case usage.ToolWidgets:
		if action == "pageview" {
			return MetricPageviews, nil
		}
		return MetricActive, nil
	case usage.ToolHeatmaps:
		if action == "page" {
			return MetricPages, nil
		}
		return MetricSessions, nil
	case usage.ToolCompetitors:
		if action == "keyword" {
			return MetricKeywords, nil
		}
		return MetricTracked, nil
	}
	return "", fmt.Errorf("%w: unknown tool %q", usage.ErrValidation, tool)
}

// CheckResult represents the outcome of a quota check (value type).
type CheckResult struct {
	Allowed   bool
	Current   int64
	Limit     int64
	Remaining int64
}

// Check decides admission for requested additional units against a ceiling.
// The limit is inclusive: current + requested == limit is still allowed.
// This is a PURE function.
func Check(current, requested, limit int64) CheckResult {
	remaining := limit - current
	if remaining < 0 {
		remaining = 0
	}
	return CheckResult{
		Allowed:   current+requested <= limit,
		Current:   current,
		Limit:     limit,
		Remaining: remaining,
	}
}
