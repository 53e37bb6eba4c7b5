package budget

import (
	"fmt"
	"strings"
)

const maxRebalancingEntries = 5

func generateInsights(allocations []Allocation, totalBudget float64, mode Mode) []string {
	top := allocations[0]
	lowCount := 0
	for _, a := range allocations {
		if a.Amount > top.Amount {
			top = a
		}
		if a.Percentage < 10 {
			lowCount++
		}
	}

	insights := []string{
		fmt.Sprintf("Total budget: $%s allocated across %d channels", formatMoney(totalBudget), len(allocations)),
		fmt.Sprintf("Top allocation: %s receives $%s (%.1f%%)", top.Channel, formatMoney(top.Amount), top.Percentage),
	}

	if mode == ModeROIOptimized {
		var totalExpectedReturn float64
		for _, a := range allocations {
			if a.ExpectedROI != "" && a.ExpectedROI != "Unknown" {
				totalExpectedReturn += parseDollar(a.ExpectedROI)
			}
		}
		if totalExpectedReturn > 0 {
			insights = append(insights, fmt.Sprintf("Expected total return: $%.2f from ROI-optimized allocation", totalExpectedReturn))
		}
	}

	if lowCount > 0 {
		insights = append(insights, fmt.Sprintf("%d channel(s) receiving less than 10%% - consider consolidation or testing", lowCount))
	}
	if len(allocations) > 5 {
		insights = append(insights, fmt.Sprintf("Managing %d channels - ensure you have resources to optimize each effectively", len(allocations)))
	}

	return insights
}

func generateRebalancing(allocations []Allocation) []string {
	var high, low []string
	for _, a := range allocations {
		switch a.Priority {
		case PriorityHigh:
			high = append(high, a.Channel)
		case PriorityLow:
			low = append(low, a.Channel)
		}
	}

	var recommendations []string
	if len(high) > 0 {
		recommendations = append(recommendations, "Scale high-priority channels: "+strings.Join(high, ", "))
	}
	if len(low) > 0 {
		recommendations = append(recommendations, "Review low-priority channels: "+strings.Join(low, ", ")+" - optimize or reallocate")
	}

	recommendations = append(recommendations,
		"Review allocation monthly and adjust based on performance data",
		"Reserve 10-15% of budget for testing new channels and strategies",
		"Track ROI, CPA, and conversion rates for each channel to inform future allocations",
	)

	if len(recommendations) > maxRebalancingEntries {
		recommendations = recommendations[:maxRebalancingEntries]
	}
	return recommendations
}
