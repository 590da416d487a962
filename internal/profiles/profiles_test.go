package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smazurov/camdrv/pkg/linuxav/v4l2"
)

func tempStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.toml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	s := tempStore(t, "")
	if len(s.All()) != 0 {
		t.Errorf("All() = %v, want empty", s.All())
	}
}

func TestLoadAndEnabled(t *testing.T) {
	s := tempStore(t, `
version = 1

[profiles.door]
device = "/dev/video0"
enabled = true
width = 1280
height = 720
format = "MJPG"
interval_num = 1
interval_den = 30

[profiles.bench]
device = "/dev/video2"
enabled = false
`)

	if len(s.All()) != 2 {
		t.Fatalf("All() has %d profiles, want 2", len(s.All()))
	}

	enabled := s.Enabled()
	if len(enabled) != 1 {
		t.Fatalf("Enabled() has %d profiles, want 1", len(enabled))
	}
	door, ok := enabled["door"]
	if !ok {
		t.Fatal("door profile missing from Enabled()")
	}
	if door.ID != "door" {
		t.Errorf("ID backfilled from map key = %q, want door", door.ID)
	}
	if door.Device != "/dev/video0" || door.Width != 1280 {
		t.Errorf("door = %+v", door)
	}
}

func TestAddRemoveRoundTrip(t *testing.T) {
	s := tempStore(t, "")

	p := Profile{ID: "lab", Device: "/dev/video1", Enabled: true, Format: "YUYV"}
	if err := s.Add(p); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	reloaded := NewStore(s.path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if _, ok := reloaded.Get("lab"); !ok {
		t.Error("profile not persisted")
	}

	if err := s.Remove("lab"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove("lab"); err == nil {
		t.Error("Remove() of missing profile succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name:    "valid minimal",
			profile: Profile{ID: "a", Device: "/dev/video0"},
		},
		{
			name:    "missing ID",
			profile: Profile{Device: "/dev/video0"},
			wantErr: true,
		},
		{
			name:    "missing device",
			profile: Profile{ID: "a"},
			wantErr: true,
		},
		{
			name:    "bad fourcc",
			profile: Profile{ID: "a", Device: "/dev/video0", Format: "YUY"},
			wantErr: true,
		},
		{
			name:    "width without height",
			profile: Profile{ID: "a", Device: "/dev/video0", Width: 640},
			wantErr: true,
		},
		{
			name:    "interval half set",
			profile: Profile{ID: "a", Device: "/dev/video0", IntervalDen: 30},
			wantErr: true,
		},
		{
			name:    "unknown field order",
			profile: Profile{ID: "a", Device: "/dev/video0", Field: "woven"},
			wantErr: true,
		},
		{
			name:    "interlaced field order",
			profile: Profile{ID: "a", Device: "/dev/video0", Field: "interlaced-bt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.profile)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCaptureConfigDefaults(t *testing.T) {
	p := Profile{ID: "a", Device: "/dev/video0"}
	cfg, err := p.CaptureConfig()
	if err != nil {
		t.Fatal(err)
	}
	want := v4l2.DefaultConfig()
	if cfg != want {
		t.Errorf("CaptureConfig() = %+v, want defaults %+v", cfg, want)
	}
}

func TestCaptureConfigOverrides(t *testing.T) {
	p := Profile{
		ID: "a", Device: "/dev/video0",
		Width: 1920, Height: 1080,
		Format:      "MJPG",
		IntervalNum: 1, IntervalDen: 60,
		Field:   "interlaced",
		Buffers: 6,
	}
	cfg, err := p.CaptureConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1920 || cfg.Height != 1080 {
		t.Errorf("resolution = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Format != "MJPG" {
		t.Errorf("format = %q", cfg.Format)
	}
	if cfg.Interval != (v4l2.Fract{Numerator: 1, Denominator: 60}) {
		t.Errorf("interval = %v", cfg.Interval)
	}
	if cfg.Field != v4l2.FieldInterlaced {
		t.Errorf("field = %v", cfg.Field)
	}
	if cfg.Buffers != 6 {
		t.Errorf("buffers = %d", cfg.Buffers)
	}
}
