package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agencyos/growthmeter/domain/budget"
	"github.com/agencyos/growthmeter/pkg/jsonapi"
)

// ChannelInput is one channel in an allocation request.
type ChannelInput struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight,omitempty"`
	Performance  float64 `json:"performance,omitempty"`
	ROI          float64 `json:"roi,omitempty"`
	CurrentSpend float64 `json:"current_spend,omitempty"`
	Conversions  float64 `json:"conversions,omitempty"`
	CPA          float64 `json:"cpa,omitempty"`
}

// AllocateBudgetRequest is the body for POST /api/v1/budget/allocate.
type AllocateBudgetRequest struct {
	TotalBudget float64        `json:"total_budget"`
	Channels    []ChannelInput `json:"channels"`
	Mode        string         `json:"mode"`
}

// AllocationOutput is one channel's allocation on the wire.
type AllocationOutput struct {
	Channel          string   `json:"channel"`
	Amount           float64  `json:"amount"`
	Percentage       float64  `json:"percentage"`
	Recommendation   string   `json:"recommendation"`
	Priority         string   `json:"priority"`
	ExpectedROI      string   `json:"expected_roi,omitempty"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}

// AllocateBudgetResponse wraps the full allocation plan.
type AllocateBudgetResponse struct {
	Allocations            []AllocationOutput `json:"allocations"`
	Insights               []string           `json:"insights"`
	TotalBudget            float64            `json:"total_budget"`
	RecommendedRebalancing []string           `json:"recommended_rebalancing"`
}

// AllocateBudget handles POST /api/v1/budget/allocate.
func (h *Handler) AllocateBudget(w http.ResponseWriter, r *http.Request) {
	var req AllocateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.WriteBadRequest(w, "Invalid JSON body: "+err.Error())
		return
	}

	channels := make([]budget.Channel, 0, len(req.Channels))
	for _, ch := range req.Channels {
		channels = append(channels, budget.Channel{
			Name:         ch.Name,
			Weight:       ch.Weight,
			Performance:  ch.Performance,
			ROI:          ch.ROI,
			CurrentSpend: ch.CurrentSpend,
			Conversions:  ch.Conversions,
			CPA:          ch.CPA,
		})
	}

	summary, err := h.allocator.Allocate(req.TotalBudget, channels, budget.Mode(req.Mode))
	if err != nil {
		if errors.Is(err, budget.ErrValidation) {
			jsonapi.WriteValidationError(w, err.Error())
			return
		}
		jsonapi.WriteInternalError(w, err.Error())
		return
	}

	resp := AllocateBudgetResponse{
		Allocations:            make([]AllocationOutput, 0, len(summary.Allocations)),
		Insights:               summary.Insights,
		TotalBudget:            summary.TotalBudget,
		RecommendedRebalancing: summary.RecommendedRebalancing,
	}
	for _, a := range summary.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationOutput{
			Channel:          a.Channel,
			Amount:           a.Amount,
			Percentage:       a.Percentage,
			Recommendation:   a.Recommendation,
			Priority:         string(a.Priority),
			ExpectedROI:      a.ExpectedROI,
			SuggestedActions: a.SuggestedActions,
		})
	}

	jsonapi.WriteData(w, http.StatusOK, resp)
}
