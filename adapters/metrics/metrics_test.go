package metrics_test

import (
	"testing"

	"github.com/agencyos/growthmeter/adapters/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewWithRegistry(t *testing.T) {
	// Use a new registry to avoid conflicts with other tests
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}

	if m.UsageEvents == nil {
		t.Error("UsageEvents is nil")
	}
	if m.QuotaChecks == nil {
		t.Error("QuotaChecks is nil")
	}
	if m.QuotaDenials == nil {
		t.Error("QuotaDenials is nil")
	}
	if m.Reservations == nil {
		t.Error("Reservations is nil")
	}
	if m.CleanupEvents == nil {
		t.Error("CleanupEvents is nil")
	}
	if m.AllocationRequests == nil {
		t.Error("AllocationRequests is nil")
	}
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
}

func TestCounters_Gather(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.UsageEvents.WithLabelValues("seo").Inc()
	m.QuotaDenials.WithLabelValues("experiments").Add(3)
	m.AllocationRequests.WithLabelValues("roi-optimized").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := make(map[string]bool)
	for _, f := range families {
		found[f.GetName()] = true
	}

	for _, name := range []string{
		"growthmeter_usage_events_total",
		"growthmeter_quota_denials_total",
		"growthmeter_allocation_requests_total",
	} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}
