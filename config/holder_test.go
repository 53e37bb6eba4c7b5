package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agencyos/growthmeter/config"
	"github.com/rs/zerolog"
)

func TestHolder_LoadsInitialConfig(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	holder, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder() error: %v", err)
	}
	defer holder.Stop()

	if holder.Get().Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", holder.Get().Server.Port)
	}
}

func TestHolder_ReloadPicksUpChanges(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	holder, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder() error: %v", err)
	}
	defer holder.Stop()

	var notified *config.Config
	holder.OnChange(func(c *config.Config) { notified = c })

	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := holder.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}

	if holder.Get().Server.Port != 7070 {
		t.Errorf("port = %d, want 7070 after reload", holder.Get().Server.Port)
	}
	if notified == nil || notified.Server.Port != 7070 {
		t.Error("expected on-change callback with new config")
	}
}

func TestHolder_ReloadKeepsOldConfigOnError(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	holder, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder() error: %v", err)
	}
	defer holder.Stop()

	if err := os.WriteFile(path, []byte("server:\n  port: 70000\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := holder.Reload(); err == nil {
		t.Error("Reload() = nil error, want validation failure")
	}

	if holder.Get().Server.Port != 9090 {
		t.Errorf("port = %d, want old 9090 after failed reload", holder.Get().Server.Port)
	}
}

func TestStaticHolder_ReloadIsNoop(t *testing.T) {
	holder := config.NewStaticHolder(config.Defaults())
	defer holder.Stop()

	if err := holder.Reload(); err != nil {
		t.Errorf("Reload() = %v, want nil for static holder", err)
	}
	if holder.Get().Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", holder.Get().Server.Port)
	}
}

func TestHolder_MissingFileErrors(t *testing.T) {
	if _, err := config.NewHolder(filepath.Join(t.TempDir(), "nope.yaml"), zerolog.Nop()); err == nil {
		t.Error("NewHolder() = nil error, want load failure")
	}
}
