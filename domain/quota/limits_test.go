package quota_test

import (
	"errors"
	"testing"

	"github.com/agencyos/growthmeter/domain/quota"
	"github.com/agencyos/growthmeter/domain/usage"
)

func TestDefaultFreeTier_Ceilings(t *testing.T) {
	limits := quota.DefaultFreeTier()

	cases := []struct {
		tool   usage.Tool
		metric quota.Metric
		want   int64
	}{
		{usage.ToolExperiments, quota.MetricActive, 1},
		{usage.ToolExperiments, quota.MetricPageviews, 10000},
		{usage.ToolAttribution, quota.MetricEvents, 50000},
		{usage.ToolAttribution, quota.MetricRetentionDays, 90},
		{usage.ToolSEO, quota.MetricBriefs, 5},
		{usage.ToolSEO, quota.MetricKeywordsTracked, 10},
		{usage.ToolRepurposer, quota.MetricGenerations, 50},
		{usage.ToolWidgets, quota.MetricActive, 2},
		{usage.ToolWidgets, quota.MetricPageviews, 10000},
		{usage.ToolHeatmaps, quota.MetricSessions, 1000},
		{usage.ToolHeatmaps, quota.MetricPages, 5},
		{usage.ToolCompetitors, quota.MetricTracked, 1},
		{usage.ToolCompetitors, quota.MetricKeywords, 10},
	}

	for _, c := range cases {
		got, err := limits.Get(c.tool, c.metric)
		if err != nil {
			t.Errorf("Get(%s, %s) error: %v", c.tool, c.metric, err)
			continue
		}
		if got != c.want {
			t.Errorf("Get(%s, %s) = %d, want %d", c.tool, c.metric, got, c.want)
		}
	}
}

func TestGet_UnknownMetricIsValidationError(t *testing.T) {
	limits := quota.DefaultFreeTier()

	_, err := limits.Get(usage.ToolRepurposer, quota.MetricPageviews)
	if !errors.Is(err, usage.ErrValidation) {
		t.Errorf("Get() = %v, want ErrValidation", err)
	}
}

func TestForAction_ResolvesViaClassifier(t *testing.T) {
	limits := quota.DefaultFreeTier()

	got, err := limits.ForAction(usage.ToolSEO, "generate_brief")
	if err != nil {
		t.Fatalf("ForAction() error: %v", err)
	}
	if got != 5 {
		t.Errorf("ForAction(seo, generate_brief) = %d, want 5", got)
	}
}

func TestPrimary_CoversAllTools(t *testing.T) {
	limits := quota.DefaultFreeTier()

	want := map[usage.Tool]int64{
		usage.ToolExperiments: 1,
		usage.ToolAttribution: 50000,
		usage.ToolSEO:         5,
		usage.ToolRepurposer:  50,
		usage.ToolWidgets:     2,
		usage.ToolHeatmaps:    1000,
		usage.ToolCompetitors: 1,
	}

	for _, tool := range usage.Tools() {
		got, err := limits.Primary(tool)
		if err != nil {
			t.Errorf("Primary(%s) error: %v", tool, err)
			continue
		}
		if got != want[tool] {
			t.Errorf("Primary(%s) = %d, want %d", tool, got, want[tool])
		}
	}
}

func TestWithOverride_DoesNotMutateReceiver(t *testing.T) {
	base := quota.DefaultFreeTier()
	raised := base.WithOverride(usage.ToolSEO, quota.MetricBriefs, 100)

	got, err := raised.Get(usage.ToolSEO, quota.MetricBriefs)
	if err != nil || got != 100 {
		t.Errorf("override Get() = %d, %v, want 100, nil", got, err)
	}

	orig, err := base.Get(usage.ToolSEO, quota.MetricBriefs)
	if err != nil || orig != 5 {
		t.Errorf("base Get() = %d, %v, want 5, nil (receiver mutated)", orig, err)
	}
}

func TestWithOverride_NewToolMetricPair(t *testing.T) {
	var empty quota.Limits
	limits := empty.WithOverride(usage.ToolSEO, quota.MetricBriefs, 7)

	got, err := limits.Get(usage.ToolSEO, quota.MetricBriefs)
	if err != nil || got != 7 {
		t.Errorf("Get() = %d, %v, want 7, nil", got, err)
	}
}
