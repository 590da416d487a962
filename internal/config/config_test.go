package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

type testOptions struct {
	Config      string
	MetricsAddr string `toml:"metrics.addr" env:"METRICS_ADDR"`
	Profiles    string `toml:"profiles.path" env:"PROFILES"`
	Debug       bool   `toml:"debug" env:"DEBUG"`
	Workers     int    `toml:"workers" env:"WORKERS"`
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromTOML(t *testing.T) {
	path := writeTempConfig(t, `
debug = true
workers = 4

[metrics]
addr = ":9200"

[profiles]
path = "/etc/camdrv/profiles.toml"
`)

	opts := testOptions{Config: path}
	if err := Load(&opts, nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if opts.MetricsAddr != ":9200" {
		t.Errorf("MetricsAddr = %q, want :9200", opts.MetricsAddr)
	}
	if opts.Profiles != "/etc/camdrv/profiles.toml" {
		t.Errorf("Profiles = %q", opts.Profiles)
	}
	if !opts.Debug {
		t.Error("Debug not set from TOML")
	}
	if opts.Workers != 4 {
		t.Errorf("Workers = %d, want 4", opts.Workers)
	}
}

func TestLoadEnvOverridesTOML(t *testing.T) {
	path := writeTempConfig(t, "[metrics]\naddr = \":9200\"\n")
	t.Setenv("CAMDRV_METRICS_ADDR", ":9300")

	opts := testOptions{Config: path}
	if err := Load(&opts, nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if opts.MetricsAddr != ":9300" {
		t.Errorf("MetricsAddr = %q, want env value :9300", opts.MetricsAddr)
	}
}

func TestLoadCLIFlagWins(t *testing.T) {
	path := writeTempConfig(t, "[metrics]\naddr = \":9200\"\n")
	t.Setenv("CAMDRV_METRICS_ADDR", ":9300")

	cmd := &cobra.Command{}
	cmd.Flags().String("metrics-addr", "", "")
	if err := cmd.Flags().Set("metrics-addr", ":9400"); err != nil {
		t.Fatal(err)
	}

	opts := testOptions{Config: path, MetricsAddr: ":9400"}
	if err := Load(&opts, cmd); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if opts.MetricsAddr != ":9400" {
		t.Errorf("MetricsAddr = %q, want CLI value :9400", opts.MetricsAddr)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	opts := testOptions{Config: "/nonexistent/config.toml"}
	if err := Load(&opts, nil); err != nil {
		t.Errorf("Load() with missing file error = %v", err)
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{field: "Port", want: "port"},
		{field: "MetricsAddr", want: "metrics-addr"},
		{field: "LoggingLevel", want: "logging-level"},
	}

	for _, tt := range tests {
		if got := fieldNameToFlag(tt.field); got != tt.want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeTempConfig(t, `
[logging]
level = "debug"
format = "json"
capture = "warn"
hotplug = "error"
`)

	cfg := LoadLoggingConfig(path)
	if cfg.Level != "debug" || cfg.Format != "json" {
		t.Errorf("level/format = %q/%q", cfg.Level, cfg.Format)
	}
	if cfg.Modules["capture"] != "warn" || cfg.Modules["hotplug"] != "error" {
		t.Errorf("modules = %v", cfg.Modules)
	}
}

func TestLoadLoggingConfigDefaults(t *testing.T) {
	cfg := LoadLoggingConfig("/nonexistent/config.toml")
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("defaults = %q/%q, want info/text", cfg.Level, cfg.Format)
	}
}

func TestWatcherNotifiesOnChange(t *testing.T) {
	path := writeTempConfig(t, "workers = 1\n")

	loader := func(p string) (testOptions, error) {
		opts := testOptions{Config: p}
		err := Load(&opts, nil)
		return opts, err
	}

	w := NewWatcher(path, loader, slog.Default(), WithDebounce[testOptions](50*time.Millisecond))
	got := make(chan testOptions, 1)
	w.OnReload(func(opts testOptions) {
		select {
		case got <- opts:
		default:
		}
	})

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("workers = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case opts := <-got:
		if opts.Workers != 7 {
			t.Errorf("reloaded Workers = %d, want 7", opts.Workers)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload notification")
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	path := writeTempConfig(t, "workers = 1\n")

	loader := func(p string) (testOptions, error) {
		return testOptions{}, nil
	}

	w := NewWatcher(path, loader, slog.Default(), WithDebounce[testOptions](10*time.Millisecond))
	called := make(chan struct{}, 1)
	unsub := w.OnReload(func(testOptions) {
		select {
		case called <- struct{}{}:
		default:
		}
	})
	unsub()

	w.loadAndNotify()

	select {
	case <-called:
		t.Error("unsubscribed handler was called")
	default:
	}
}
