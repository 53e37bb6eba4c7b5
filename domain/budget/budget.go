// Package budget provides pure budget allocation strategies for marketing
// channels. All functions are deterministic with no side effects.
package budget

import (
	"errors"
	"fmt"
)

// Mode selects an allocation strategy.
type Mode string

const (
	ModeEqual        Mode = "equal"
	ModeWeighted     Mode = "weighted"
	ModePerformance  Mode = "performance"
	ModeROIOptimized Mode = "roi-optimized"
	ModeGrowth       Mode = "growth"
)

// Modes returns all supported allocation modes.
func Modes() []Mode {
	return []Mode{ModeEqual, ModeWeighted, ModePerformance, ModeROIOptimized, ModeGrowth}
}

// ValidMode reports whether m is a supported allocation mode.
func ValidMode(m Mode) bool {
	switch m {
	case ModeEqual, ModeWeighted, ModePerformance, ModeROIOptimized, ModeGrowth:
		return true
	}
	return false
}

// Priority ranks a channel's allocation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ErrValidation marks caller input errors (empty channel list, non-positive
// budget, unsupported mode). Degenerate numeric inputs are never errors;
// they use the documented strategy fallbacks instead.
var ErrValidation = errors.New("validation_error")

// Channel is one marketing spend destination. Weight, Performance and ROI are
// relative scores on a caller-defined scale; a zero value means "not
// provided" and triggers each strategy's documented default.
type Channel struct {
	Name         string
	Weight       float64
	Performance  float64
	ROI          float64
	CurrentSpend float64
	Conversions  float64
	CPA          float64
}

// Allocation is one channel's share of the budget.
type Allocation struct {
	Channel          string
	Amount           float64
	Percentage       float64
	Recommendation   string
	Priority         Priority
	ExpectedROI      string
	SuggestedActions []string
}

// Summary wraps the full allocation plan plus derived guidance.
type Summary struct {
	Allocations            []Allocation
	Insights               []string
	TotalBudget            float64
	RecommendedRebalancing []string
}

// Allocate distributes totalBudget across channels under the given mode and
// derives insights and rebalancing guidance. Amounts and percentages are
// rounded to two decimals; summed across channels they match the total budget
// and 100% within rounding tolerance.
func Allocate(totalBudget float64, channels []Channel, mode Mode) (Summary, error) {
	if totalBudget <= 0 {
		return Summary{}, fmt.Errorf("%w: total budget must be positive", ErrValidation)
	}
	if len(channels) == 0 {
		return Summary{}, fmt.Errorf("%w: at least one channel is required", ErrValidation)
	}
	if !ValidMode(mode) {
		return Summary{}, fmt.Errorf("%w: unsupported allocation mode %q", ErrValidation, mode)
	}

	var allocations []Allocation
	switch mode {
	case ModeEqual:
		allocations = allocateEqual(totalBudget, channels)
	case ModeWeighted:
		allocations = allocateWeighted(totalBudget, channels)
	case ModePerformance:
		allocations = allocatePerformance(totalBudget, channels)
	case ModeROIOptimized:
		allocations = allocateROIOptimized(totalBudget, channels)
	case ModeGrowth:
		allocations = allocateGrowth(totalBudget, channels)
	}

	return Summary{
		Allocations:            allocations,
		Insights:               generateInsights(allocations, totalBudget, mode),
		TotalBudget:            totalBudget,
		RecommendedRebalancing: generateRebalancing(allocations),
	}, nil
}
