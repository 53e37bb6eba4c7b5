package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/agencyos/growthmeter/domain/quota"
	"github.com/agencyos/growthmeter/domain/usage"
	"github.com/agencyos/growthmeter/pkg/jsonapi"
)

// JSON:API resource type constant for usage events
const TypeUsageEvent = "usage_events"

// TrackUsageRequest is the body for POST /api/v1/usage.
type TrackUsageRequest struct {
	UserID    string         `json:"user_id"`
	Tool      string         `json:"tool"`
	Action    string         `json:"action"`
	QuotaUsed int64          `json:"quota_used,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ReserveQuotaRequest is the body for POST /api/v1/usage/reserve.
type ReserveQuotaRequest struct {
	UserID string `json:"user_id"`
	Tool   string `json:"tool"`
	Action string `json:"action"`
	Amount int64  `json:"amount,omitempty"`
}

// QuotaResult mirrors quota.CheckResult on the wire.
type QuotaResult struct {
	Allowed   bool  `json:"allowed"`
	Current   int64 `json:"current"`
	Limit     int64 `json:"limit"`
	Remaining int64 `json:"remaining"`
}

func toQuotaResult(r quota.CheckResult) QuotaResult {
	return QuotaResult{
		Allowed:   r.Allowed,
		Current:   r.Current,
		Limit:     r.Limit,
		Remaining: r.Remaining,
	}
}

// writeLedgerError maps ledger errors onto the HTTP error taxonomy.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usage.ErrValidation):
		jsonapi.WriteValidationError(w, err.Error())
	case errors.Is(err, usage.ErrStorage):
		jsonapi.WriteError(w, jsonapi.ErrStorageUnavailable(err.Error()))
	default:
		jsonapi.WriteInternalError(w, err.Error())
	}
}

// TrackUsage handles POST /api/v1/usage.
func (h *Handler) TrackUsage(w http.ResponseWriter, r *http.Request) {
	var req TrackUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.WriteBadRequest(w, "Invalid JSON body: "+err.Error())
		return
	}

	event, err := h.ledger.TrackUsage(r.Context(), req.UserID, usage.Tool(req.Tool), req.Action, req.QuotaUsed, req.Metadata)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	jsonapi.WriteData(w, http.StatusCreated, map[string]any{
		"type": TypeUsageEvent,
		"id":   event.ID,
		"attributes": map[string]any{
			"user_id":    event.UserID,
			"tool":       string(event.Tool),
			"action":     event.Action,
			"quota_used": event.QuotaUsed,
			"timestamp":  event.Timestamp.Format(time.RFC3339),
		},
	})
}

// ReserveQuota handles POST /api/v1/usage/reserve.
func (h *Handler) ReserveQuota(w http.ResponseWriter, r *http.Request) {
	var req ReserveQuotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.WriteBadRequest(w, "Invalid JSON body: "+err.Error())
		return
	}

	result, err := h.ledger.ReserveQuota(r.Context(), req.UserID, usage.Tool(req.Tool), req.Action, req.Amount)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	jsonapi.WriteData(w, http.StatusOK, toQuotaResult(result))
}

// CheckQuota handles GET /api/v1/usage/quota.
// Pure read: performing the gated action still requires a separate track call.
func (h *Handler) CheckQuota(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requested := int64(1)
	if raw := q.Get("requested"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			jsonapi.WriteBadRequest(w, "requested must be a positive integer")
			return
		}
		requested = parsed
	}

	result, err := h.ledger.CheckQuota(r.Context(), q.Get("user_id"), usage.Tool(q.Get("tool")), q.Get("action"), requested)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	jsonapi.WriteData(w, http.StatusOK, toQuotaResult(result))
}

// UserStats handles GET /api/v1/usage/stats.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.UserUsageStats(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	out := make(map[string]any, len(stats))
	for tool, st := range stats {
		out[string(tool)] = map[string]any{
			"usage":      st.Usage,
			"limit":      st.Limit,
			"percentage": st.Percentage,
		}
	}
	jsonapi.WriteData(w, http.StatusOK, out)
}

// GlobalStats handles GET /api/v1/usage/global.
func (h *Handler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var start, end *time.Time
	if raw := q.Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			jsonapi.WriteBadRequest(w, "start must be RFC3339")
			return
		}
		start = &t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			jsonapi.WriteBadRequest(w, "end must be RFC3339")
			return
		}
		end = &t
	}

	stats, err := h.ledger.GlobalUsageStats(r.Context(), start, end)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(stats))
	for _, st := range stats {
		out = append(out, map[string]any{
			"tool":        string(st.Tool),
			"total_quota": st.TotalQuota,
			"event_count": st.EventCount,
		})
	}
	jsonapi.WriteData(w, http.StatusOK, out)
}
