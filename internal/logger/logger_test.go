package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "seriesbr.log")
	l, err := New(Config{Level: "info", Format: "json", File: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("hello")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = With(ctx, zap.String("source", "sgs"))

	Debugf(ctx, "GET %s", "http://example")
	Warnf(ctx, "retry %d", 2)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "GET http://example" || entries[0].Level != zapcore.DebugLevel {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].ContextMap()["source"] != "sgs" {
		t.Errorf("missing source field: %v", entries[1].ContextMap())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(zap.New(core))
	defer SetDefault(nil)

	Infof(context.Background(), "using default")
	if logs.Len() != 1 {
		t.Errorf("default logger got %d entries, want 1", logs.Len())
	}
}
