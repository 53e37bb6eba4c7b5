package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agencyos/growthmeter/adapters/clock"
	apihttp "github.com/agencyos/growthmeter/adapters/http"
	"github.com/agencyos/growthmeter/adapters/idgen"
	"github.com/agencyos/growthmeter/adapters/memory"
	"github.com/agencyos/growthmeter/app"
	"github.com/agencyos/growthmeter/domain/quota"
	"github.com/rs/zerolog"
)

var baseTime = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *memory.UsageStore) {
	t.Helper()

	store := memory.NewUsageStore()
	logger := zerolog.Nop()

	ledger := app.NewLedgerService(app.LedgerConfig{
		Store:  store,
		Limits: quota.DefaultFreeTier(),
		Clock:  clock.NewFake(baseTime),
		IDs:    idgen.NewSequential("evt_"),
		Logger: logger,
	})
	allocator := app.NewAllocatorService(logger, nil)

	handler := apihttp.NewHandler(apihttp.HandlerConfig{
		Ledger:    ledger,
		Allocator: allocator,
		Logger:    logger,
	})

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return doc
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestTrackUsage_Created(t *testing.T) {
	srv, store := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/usage",
		`{"user_id":"user_1","tool":"seo","action":"generate_brief","quota_used":2}`)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	doc := decode(t, resp)
	data := doc["data"].(map[string]any)
	if data["type"] != "usage_events" {
		t.Errorf("type = %v, want usage_events", data["type"])
	}
	if data["id"] != "evt_1" {
		t.Errorf("id = %v, want evt_1", data["id"])
	}
	attrs := data["attributes"].(map[string]any)
	if attrs["quota_used"].(float64) != 2 {
		t.Errorf("quota_used = %v, want 2", attrs["quota_used"])
	}
	if len(store.All()) != 1 {
		t.Errorf("stored events = %d, want 1", len(store.All()))
	}
}

func TestTrackUsage_ValidationIs422(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/usage",
		`{"user_id":"","tool":"seo","action":"generate_brief"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestTrackUsage_NegativeQuotaIs422(t *testing.T) {
	srv, store := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/usage",
		`{"user_id":"user_1","tool":"seo","action":"generate_brief","quota_used":-5}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	if len(store.All()) != 0 {
		t.Errorf("stored events = %d, want 0", len(store.All()))
	}
}

func TestTrackUsage_MalformedBodyIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/usage", `{not json`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCheckQuota_FreshUserAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/usage/quota?user_id=user_1&tool=seo&action=generate_brief")
	if err != nil {
		t.Fatalf("GET quota: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	doc := decode(t, resp)
	data := doc["data"].(map[string]any)
	if data["allowed"] != true {
		t.Errorf("allowed = %v, want true", data["allowed"])
	}
	if data["limit"].(float64) != 5 {
		t.Errorf("limit = %v, want 5", data["limit"])
	}
}

func TestCheckQuota_BadRequestedParamIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/usage/quota?user_id=user_1&tool=seo&action=generate_brief&requested=nope")
	if err != nil {
		t.Fatalf("GET quota: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestReserveQuota_DeniedWhenExhausted(t *testing.T) {
	srv, _ := newTestServer(t)

	// experiments active ceiling is 1
	resp := postJSON(t, srv.URL+"/api/v1/usage/reserve",
		`{"user_id":"user_1","tool":"experiments","action":"create","amount":1}`)
	doc := decode(t, resp)
	if doc["data"].(map[string]any)["allowed"] != true {
		t.Fatal("first reservation should be allowed")
	}

	resp = postJSON(t, srv.URL+"/api/v1/usage/reserve",
		`{"user_id":"user_1","tool":"experiments","action":"create","amount":1}`)
	doc = decode(t, resp)
	if doc["data"].(map[string]any)["allowed"] != false {
		t.Error("second reservation should be denied")
	}
}

func TestUserStats_AllSevenTools(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/usage/stats?user_id=user_1")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	doc := decode(t, resp)
	data := doc["data"].(map[string]any)
	if len(data) != 7 {
		t.Errorf("tools in stats = %d, want 7", len(data))
	}
	seo := data["seo"].(map[string]any)
	if seo["limit"].(float64) != 5 {
		t.Errorf("seo limit = %v, want 5", seo["limit"])
	}
}

func TestGlobalStats_WithBounds(t *testing.T) {
	srv, _ := newTestServer(t)

	postJSON(t, srv.URL+"/api/v1/usage",
		`{"user_id":"user_1","tool":"seo","action":"generate_brief"}`).Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/usage/global?start=2026-08-01T00:00:00Z&end=2026-09-01T00:00:00Z")
	if err != nil {
		t.Fatalf("GET global: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	doc := decode(t, resp)
	data := doc["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("stats = %d entries, want 1", len(data))
	}
	entry := data[0].(map[string]any)
	if entry["tool"] != "seo" || entry["event_count"].(float64) != 1 {
		t.Errorf("entry = %v, want seo with 1 event", entry)
	}
}

func TestGlobalStats_BadBoundIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/usage/global?start=yesterday")
	if err != nil {
		t.Fatalf("GET global: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAllocateBudget_ReturnsPlan(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/budget/allocate",
		`{"total_budget":1000,"mode":"equal","channels":[{"name":"a"},{"name":"b"}]}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	doc := decode(t, resp)
	data := doc["data"].(map[string]any)
	allocations := data["allocations"].([]any)
	if len(allocations) != 2 {
		t.Fatalf("allocations = %d, want 2", len(allocations))
	}
	first := allocations[0].(map[string]any)
	if first["amount"].(float64) != 500 {
		t.Errorf("amount = %v, want 500", first["amount"])
	}
	if len(data["insights"].([]any)) == 0 {
		t.Error("expected insights in response")
	}
}

func TestAllocateBudget_ValidationIs422(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/budget/allocate",
		`{"total_budget":0,"mode":"equal","channels":[{"name":"a"}]}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestStorageErrorIs502(t *testing.T) {
	srv, store := newTestServer(t)
	store.FailNext = errTestStorage{}

	resp := postJSON(t, srv.URL+"/api/v1/usage",
		`{"user_id":"user_1","tool":"seo","action":"generate_brief"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

type errTestStorage struct{}

func (errTestStorage) Error() string { return "backend unavailable" }
