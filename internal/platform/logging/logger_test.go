package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return FromZap(zap.New(core)), logs
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q): expected %s, got=%s err=%v", raw, want, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLogger_KeyValueFields(t *testing.T) {
	t.Parallel()

	logger, logs := observed(LevelDebug)
	logger.With("team_id", "team-fire").Named("sync").Warn("provider failed",
		"attempt", 2,
		"error", errors.New("timeout"),
		"dangling",
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got=%d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "sync" || entry.Level != zapcore.WarnLevel {
		t.Fatalf("unexpected entry: %+v", entry.Entry)
	}
	fields := entry.ContextMap()
	if fields["team_id"] != "team-fire" || fields["attempt"] != int64(2) || fields["error"] != "timeout" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept, got=%+v", fields)
	}
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	t.Parallel()

	logger, logs := observed(LevelInfo)
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "synced")
	logger.DebugContext(ctx, "filtered out")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got=%d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["trace_id"] != spanCtx.TraceID().String() || fields["span_id"] != spanCtx.SpanID().String() {
		t.Fatalf("expected trace fields, got=%+v", fields)
	}
}

func TestLogger_NilSafe(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if err := logger.Sync(); err != nil {
		t.Fatalf("expected nil sync error, got=%v", err)
	}
	if logger.With("k", "v") == nil {
		t.Fatalf("expected nop logger from nil receiver")
	}
}
