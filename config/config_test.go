package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agencyos/growthmeter/config"
	"github.com/agencyos/growthmeter/domain/quota"
	"github.com/agencyos/growthmeter/domain/usage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "growthmeter.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := config.Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "growthmeter.db" {
		t.Errorf("database.path = %q, want growthmeter.db", cfg.Database.Path)
	}
	if cfg.Retention.Days != 90 {
		t.Errorf("retention.days = %d, want 90", cfg.Retention.Days)
	}
	if cfg.Retention.CleanupInterval != 24*time.Hour {
		t.Errorf("cleanup_interval = %v, want 24h", cfg.Retention.CleanupInterval)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
retention:
  days: 30
logging:
  level: debug
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Retention.Days != 30 {
		t.Errorf("retention.days = %d, want 30", cfg.Retention.Days)
	}
	// Untouched fields keep defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default", cfg.Server.Host)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("format = %q, want default json", cfg.Logging.Format)
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() = nil error, want read failure")
	}
}

func TestLoad_InvalidYAMLErrors(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	if _, err := config.Load(path); err == nil {
		t.Error("Load() = nil error, want parse failure")
	}
}

func TestLoad_ValidatesValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad retention", "retention:\n  days: 0\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"unknown override tool", "quota:\n  overrides:\n    - tool: crm\n      metric: seats\n      limit: 5\n"},
		{"unknown override metric", "quota:\n  overrides:\n    - tool: seo\n      metric: brief\n      limit: 20\n"},
	}

	for _, c := range cases {
		path := writeConfig(t, c.content)
		if _, err := config.Load(path); err == nil {
			t.Errorf("%s: Load() = nil error, want validation failure", c.name)
		}
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("GROWTHMETER_SERVER_PORT", "7070")
	t.Setenv("GROWTHMETER_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadWithFallback_NoFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback() error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLimits_AppliesOverrides(t *testing.T) {
	path := writeConfig(t, `
quota:
  overrides:
    - tool: seo
      metric: briefs
      limit: 20
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	limits, err := cfg.Limits()
	if err != nil {
		t.Fatalf("Limits() error: %v", err)
	}

	got, err := limits.Get(usage.ToolSEO, quota.MetricBriefs)
	if err != nil || got != 20 {
		t.Errorf("briefs limit = %d, %v, want 20, nil", got, err)
	}

	// Other ceilings untouched.
	got, err = limits.Get(usage.ToolSEO, quota.MetricKeywordsTracked)
	if err != nil || got != 10 {
		t.Errorf("keywordsTracked = %d, %v, want default 10", got, err)
	}
}

func TestLimits_RejectsUnknownMetricForTool(t *testing.T) {
	cfg := config.Defaults()
	cfg.Quota.Overrides = []config.QuotaOverride{
		{Tool: "seo", Metric: "brief", Limit: 20},
	}

	if _, err := cfg.Limits(); err == nil {
		t.Error("Limits() = nil error, want unknown metric failure")
	}
}

func TestRetentionWindow(t *testing.T) {
	cfg := config.Defaults()
	cfg.Retention.Days = 30

	if got := cfg.RetentionWindow(); got != 30*24*time.Hour {
		t.Errorf("RetentionWindow() = %v, want 720h", got)
	}
}
