package budget

import "fmt"

// Exploration pool bounds for roi-optimized allocation: each channel without
// ROI data nominally requests 5 percentage points, but the pool as a whole
// never exceeds 25 points.
const (
	minZeroROIPercentage = 5.0
	maxZeroROIPool       = 25.0
)

func allocateEqual(totalBudget float64, channels []Channel) []Allocation {
	amount := totalBudget / float64(len(channels))
	percentage := 100 / float64(len(channels))

	allocations := make([]Allocation, 0, len(channels))
	for _, ch := range channels {
		allocations = append(allocations, Allocation{
			Channel:        ch.Name,
			Amount:         round2(amount),
			Percentage:     round2(percentage),
			Recommendation: "Equal distribution - ideal for testing new channels or when performance data is limited",
			Priority:       PriorityMedium,
			SuggestedActions: []string{
				"Track performance metrics closely",
				"Run A/B tests to identify top performers",
				"Plan to rebalance after 30 days of data",
			},
		})
	}
	return allocations
}

func allocateWeighted(totalBudget float64, channels []Channel) []Allocation {
	var totalWeight float64
	for _, ch := range channels {
		totalWeight += defaultOne(ch.Weight)
	}

	meanWeight := totalWeight / float64(len(channels))
	allocations := make([]Allocation, 0, len(channels))
	for _, ch := range channels {
		weight := defaultOne(ch.Weight)
		percentage := weight / totalWeight * 100
		amount := totalBudget * percentage / 100

		highPriority := weight > meanWeight
		priority := PriorityLow
		if highPriority {
			priority = PriorityHigh
		} else if percentage > 10 {
			priority = PriorityMedium
		}

		recommendation := "Standard allocation based on strategic weight"
		actions := []string{
			"Test and learn approach",
			"Gather performance data",
			"Consider increasing if ROI is strong",
		}
		if highPriority {
			recommendation = "High priority channel - strategic focus with significant budget allocation"
			actions = []string{
				"Monitor ROI closely",
				"Scale if performing well",
				"Optimize creative and targeting",
			}
		}

		allocations = append(allocations, Allocation{
			Channel:          ch.Name,
			Amount:           round2(amount),
			Percentage:       round2(percentage),
			Recommendation:   recommendation,
			Priority:         priority,
			SuggestedActions: actions,
		})
	}
	return allocations
}

func allocatePerformance(totalBudget float64, channels []Channel) []Allocation {
	var totalPerformance float64
	for _, ch := range channels {
		totalPerformance += defaultOne(ch.Performance)
	}

	allocations := make([]Allocation, 0, len(channels))
	for _, ch := range channels {
		performance := defaultOne(ch.Performance)
		percentage := performance / totalPerformance * 100
		amount := totalBudget * percentage / 100

		var (
			recommendation string
			priority       Priority
			actions        []string
		)
		switch {
		case percentage > 30:
			recommendation = "Top performer - maximize investment for best returns"
			priority = PriorityHigh
			actions = []string{
				"Scale budget aggressively (20-30% increase)",
				"Maintain winning strategies",
				"Test new audiences to expand reach",
			}
		case percentage > 15:
			recommendation = "Good performer - maintain and optimize investment"
			priority = PriorityMedium
			actions = []string{
				"Optimize for efficiency",
				"Test incremental budget increases",
				"Analyze top-performing segments",
			}
		default:
			recommendation = "Lower performer - optimize or consider reducing budget"
			priority = PriorityLow
			actions = []string{
				"Audit campaign setup and targeting",
				"Test new creative approaches",
				"Consider reallocating to higher performers",
			}
		}

		allocations = append(allocations, Allocation{
			Channel:          ch.Name,
			Amount:           round2(amount),
			Percentage:       round2(percentage),
			Recommendation:   recommendation,
			Priority:         priority,
			SuggestedActions: actions,
		})
	}
	return allocations
}

func allocateROIOptimized(totalBudget float64, channels []Channel) []Allocation {
	var (
		positiveCount int
		zeroCount     int
		totalROI      float64
	)
	for _, ch := range channels {
		if ch.ROI > 0 {
			positiveCount++
			totalROI += ch.ROI
		} else {
			zeroCount++
		}
	}

	if positiveCount == 0 {
		// No ROI data at all; equal split is the only defensible plan.
		return allocateEqual(totalBudget, channels)
	}

	zeroPool := min3(float64(zeroCount)*minZeroROIPercentage, maxZeroROIPool, 100)
	remaining := 100 - zeroPool
	if remaining < 0 {
		remaining = 0
	}

	allocations := make([]Allocation, 0, len(channels))
	for _, ch := range channels {
		if ch.ROI <= 0 {
			percentage := zeroPool / float64(zeroCount)
			allocations = append(allocations, Allocation{
				Channel:        ch.Name,
				Amount:         totalBudget * percentage / 100,
				Percentage:     percentage,
				Recommendation: "No ROI data - minimal allocation for testing",
				Priority:       PriorityLow,
				ExpectedROI:    "Unknown",
				SuggestedActions: []string{
					"Gather ROI data",
					"Run small test campaigns",
					"Track conversions carefully",
				},
			})
			continue
		}

		percentage := ch.ROI / totalROI * remaining
		amount := totalBudget * percentage / 100
		expectedReturn := amount * (ch.ROI / 100)

		priority := PriorityLow
		scaleAction := "Monitor performance closely"
		switch {
		case ch.ROI > 150:
			priority = PriorityHigh
			scaleAction = "Excellent ROI - scale aggressively"
		case ch.ROI > 75:
			priority = PriorityMedium
		}

		allocations = append(allocations, Allocation{
			Channel:        ch.Name,
			Amount:         amount,
			Percentage:     percentage,
			Recommendation: fmt.Sprintf("ROI-optimized allocation - %s%% ROI expected", formatScore(ch.ROI)),
			Priority:       priority,
			ExpectedROI:    fmt.Sprintf("$%.2f (%s%% ROI)", expectedReturn, formatScore(ch.ROI)),
			SuggestedActions: []string{
				fmt.Sprintf("Expected return: $%.2f", expectedReturn),
				scaleAction,
				"Optimize for maximum efficiency",
			},
		})
	}

	return normalize(allocations, totalBudget)
}

// normalize rescales percentages so they sum to exactly 100, then re-derives
// amounts from the rescaled percentages. The capped exploration pool makes the
// raw roi-optimized percentages drift from 100, so this pass is mandatory.
func normalize(allocations []Allocation, totalBudget float64) []Allocation {
	var totalPercentage float64
	for _, a := range allocations {
		totalPercentage += a.Percentage
	}
	if totalPercentage == 0 {
		return allocations
	}

	factor := 100 / totalPercentage
	out := make([]Allocation, len(allocations))
	for i, a := range allocations {
		a.Percentage = round2(a.Percentage * factor)
		a.Amount = round2(totalBudget * a.Percentage / 100)
		out[i] = a
	}
	return out
}

func allocateGrowth(totalBudget float64, channels []Channel) []Allocation {
	var proven, test []Channel
	for _, ch := range channels {
		if ch.Performance > 5 || ch.ROI > 50 {
			proven = append(proven, ch)
		} else {
			test = append(test, ch)
		}
	}

	// Degenerate splits collapse to a single-strategy plan.
	if len(proven) == 0 {
		return allocateEqual(totalBudget, channels)
	}
	if len(test) == 0 {
		return allocatePerformance(totalBudget, channels)
	}

	var totalProvenScore float64
	for _, ch := range proven {
		totalProvenScore += growthScore(ch)
	}

	allocations := make([]Allocation, 0, len(channels))
	for _, ch := range proven {
		percentage := growthScore(ch) / totalProvenScore * 70
		amount := totalBudget * percentage / 100
		allocations = append(allocations, Allocation{
			Channel:        ch.Name,
			Amount:         round2(amount),
			Percentage:     round2(percentage),
			Recommendation: "Proven channel - growth allocation for scaling",
			Priority:       PriorityHigh,
			SuggestedActions: []string{
				"Scale budget by 20-30% monthly",
				"Expand to new audiences",
				"Test new creative variations",
			},
		})
	}

	amountPerTest := totalBudget * 0.3 / float64(len(test))
	percentagePerTest := 30 / float64(len(test))
	for _, ch := range test {
		allocations = append(allocations, Allocation{
			Channel:        ch.Name,
			Amount:         round2(amountPerTest),
			Percentage:     round2(percentagePerTest),
			Recommendation: "Test channel - growth allocation for experimentation",
			Priority:       PriorityMedium,
			SuggestedActions: []string{
				"Run controlled experiments",
				"Gather performance data",
				"Graduate to proven if ROI > 100%",
			},
		})
	}
	return allocations
}

// growthScore picks the proven-channel weighting score: performance first,
// falling back to ROI, falling back to 1.
func growthScore(ch Channel) float64 {
	if ch.Performance > 0 {
		return ch.Performance
	}
	if ch.ROI > 0 {
		return ch.ROI
	}
	return 1
}

func defaultOne(v float64) float64 {
	if v > 0 {
		return v
	}
	return 1
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
