package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  Options
		debug bool
	}{
		{name: "console info", opts: Options{}},
		{name: "json debug", opts: Options{JSON: true, Debug: true}, debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, err := New(tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(zapcore.InfoLevel) {
				t.Fatalf("info must be enabled")
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
				t.Fatalf("expected debug enabled=%v, got %v", tt.debug, got)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit-screener.log")

	l, err := New(Options{JSON: true, File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Info("analysis finished")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"step":"analysis finished"`) {
		t.Fatalf("unexpected log content: %s", data)
	}
}
