// Package usage provides usage event types and aggregation functions.
// All functions are pure - no side effects.
package usage

import (
	"errors"
	"fmt"
	"time"
)

// Tool identifies a metered growth-suite feature.
type Tool string

const (
	ToolExperiments Tool = "experiments"
	ToolAttribution Tool = "attribution"
	ToolSEO         Tool = "seo"
	ToolRepurposer  Tool = "repurposer"
	ToolWidgets     Tool = "widgets"
	ToolHeatmaps    Tool = "heatmaps"
	ToolCompetitors Tool = "competitors"
)

// Tools returns all metered tools in display order.
func Tools() []Tool {
	return []Tool{
		ToolExperiments,
		ToolAttribution,
		ToolSEO,
		ToolRepurposer,
		ToolWidgets,
		ToolHeatmaps,
		ToolCompetitors,
	}
}

// ValidTool reports whether t is a known metered tool.
func ValidTool(t Tool) bool {
	switch t {
	case ToolExperiments, ToolAttribution, ToolSEO, ToolRepurposer,
		ToolWidgets, ToolHeatmaps, ToolCompetitors:
		return true
	}
	return false
}

// Sentinel errors for the ledger error taxonomy.
// Callers translate ErrValidation to 4xx responses and ErrStorage to 5xx.
var (
	ErrValidation = errors.New("validation_error")
	ErrStorage    = errors.New("storage_error")
)

// Event represents a single metered action (immutable value type).
// Events are created once by the ledger and never updated in place;
// the only deletion path is the retention cleanup.
type Event struct {
	ID        string
	UserID    string
	Tool      Tool
	Action    string
	QuotaUsed int64
	// Metadata is an opaque serialized payload supplied by the caller.
	// HasMetadata distinguishes "no metadata" from "metadata present but
	// empty" so stores can persist an explicit null.
	Metadata    string
	HasMetadata bool
	Timestamp   time.Time
}

// NewEvent creates a usage event with defaults applied.
// A zero quotaUsed defaults to 1; negative values are left for
// Validate to reject.
func NewEvent(id, userID string, tool Tool, action string, quotaUsed int64, timestamp time.Time) Event {
	if quotaUsed == 0 {
		quotaUsed = 1
	}
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	return Event{
		ID:        id,
		UserID:    userID,
		Tool:      tool,
		Action:    action,
		QuotaUsed: quotaUsed,
		Timestamp: timestamp,
	}
}

// WithMetadata returns a copy of the event carrying a serialized metadata payload.
func (e Event) WithMetadata(serialized string) Event {
	e.Metadata = serialized
	e.HasMetadata = true
	return e
}

// Validate checks the event's invariants.
func (e Event) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if !ValidTool(e.Tool) {
		return fmt.Errorf("%w: unknown tool %q", ErrValidation, e.Tool)
	}
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrValidation)
	}
	if e.QuotaUsed < 1 {
		return fmt.Errorf("%w: quota used must be at least 1", ErrValidation)
	}
	return nil
}

// ToolStat summarizes one tool's usage against its primary ceiling.
type ToolStat struct {
	Usage      int64
	Limit      int64
	Percentage float64
}

// GlobalStat aggregates usage across all users for one tool.
type GlobalStat struct {
	Tool       Tool
	TotalQuota int64
	EventCount int64
}
