package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" Warning ", slog.LevelWarn, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown key=value") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(LevelEnv, "error")
	var buf bytes.Buffer
	logger, err := New(&buf, "")
	if err != nil {
		t.Fatal(err)
	}
	logger.Warn("hidden")
	if buf.Len() != 0 {
		t.Fatalf("unexpected output: %q", buf.String())
	}

	t.Setenv(LevelEnv, "bogus")
	if _, err := New(&buf, ""); err == nil {
		t.Fatal("expected error for bad level in environment")
	}
}
