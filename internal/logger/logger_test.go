package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "test")

	l.Info("hidden")
	l.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Fatalf("expected warn with fields, got %q", out)
	}
	if !strings.Contains(out, "test") {
		t.Fatalf("expected prefix, got %q", out)
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "chatty", "")

	l.Debug("hidden")
	l.Info("visible")

	out := buf.String()
	if !strings.Contains(out, "unknown log level") {
		t.Fatalf("expected fallback warning, got %q", out)
	}
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
		t.Fatalf("expected info level, got %q", out)
	}
}
