package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  *slog.Level
	}{
		{input: "debug", want: levelPtr(slog.LevelDebug)},
		{input: "INFO", want: levelPtr(slog.LevelInfo)},
		{input: "warn", want: levelPtr(slog.LevelWarn)},
		{input: "warning", want: levelPtr(slog.LevelWarn)},
		{input: "error", want: levelPtr(slog.LevelError)},
		{input: "verbose", want: nil},
		{input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			switch {
			case got == nil && tt.want != nil:
				t.Errorf("parseLevel(%q) = nil, want %v", tt.input, *tt.want)
			case got != nil && tt.want == nil:
				t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
			case got != nil && tt.want != nil && *got != *tt.want:
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func levelPtr(l slog.Level) *slog.Level { return &l }

func TestGetLoggerReturnsSameInstance(t *testing.T) {
	a := GetLogger("capture")
	b := GetLogger("capture")
	if a != b {
		t.Error("GetLogger returned different loggers for the same module")
	}
}

func TestInitializeAppliesModuleLevels(t *testing.T) {
	// Hand out a logger before Initialize so the retrofit path runs.
	GetLogger("noisy")

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"noisy": "error",
		},
	})

	mutex.RLock()
	defer mutex.RUnlock()
	if got := moduleLevelVars["noisy"].Level(); got != slog.LevelError {
		t.Errorf("module level = %v, want error", got)
	}
	if got := globalLevelVar.Level(); got != slog.LevelInfo {
		t.Errorf("global level = %v, want info", got)
	}
}

func TestMultiHandlerEnabled(t *testing.T) {
	quiet := &slog.LevelVar{}
	quiet.Set(slog.LevelError)
	loud := &slog.LevelVar{}
	loud.Set(slog.LevelDebug)

	h := NewMultiHandler(
		slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: quiet}),
		slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: loud}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("MultiHandler disabled although one handler accepts debug")
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
