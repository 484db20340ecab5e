package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLine(t *testing.T, format logFormat, emit func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	log := slog.New(newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		writer: aw,
		format: format,
	}))
	emit(log)
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithUpdateMeta(WithRID(context.Background(), "rid-123"), 42, 7, 9)
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "service.survey"), slog.LevelInfo, "survey.step",
			slog.String("status", "ok"),
			slog.String("state", "join.callsign"),
		)
	})

	tokens := strings.Split(line, " ")
	want := []string{"ts=", "level=INFO", "component=service.survey", "event=survey.step", "status=ok", "rid=rid-123"}
	if len(tokens) < len(want) {
		t.Fatalf("unexpected line %q", line)
	}
	for i, prefix := range want {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	if !strings.Contains(line, "user_id=7") || !strings.Contains(line, "chat_id=9") {
		t.Fatalf("context ids missing: %s", line)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithTrace(WithRID(context.Background(), "rid-json"), "trace-1", "")
	line := captureLine(t, formatJSON, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "service.admin"), slog.LevelError, "admin.edit",
			slog.String("status", "error"),
			slog.String("err", "boom"),
			slog.Duration("duration", 1500*time.Microsecond),
		)
	})
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	ordered := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.admin"`, `"event":"admin.edit"`, `"status":"fail"`, `"rid":"rid-json"`, `"trace_id":"trace-1"`}
	pos := -1
	for _, pref := range ordered {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("%s not found in order within %s", pref, line)
		}
		pos = idx
	}
	if !strings.Contains(line, `"duration_ms":2`) {
		t.Fatalf("expected rounded duration_ms, got %s", line)
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	raw := "123:456:789"
	ctx := WithRID(context.Background(), raw)
	emit := func(l *slog.Logger) { LogEvent(ctx, l, slog.LevelInfo, "rid.test") }

	kv := captureLine(t, formatKV, emit)
	if !strings.Contains(kv, "rid="+CompactRID(raw)) {
		t.Fatalf("expected compact rid, got %s", kv)
	}
	if strings.Contains(kv, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", kv)
	}

	js := captureLine(t, formatJSON, emit)
	if !strings.Contains(js, `"rid_full":"`+raw+`"`) || !strings.Contains(js, `"ts_unix_nano"`) {
		t.Fatalf("expected rid_full and ts_unix_nano in JSON, got %s", js)
	}
}

func TestCompactRID(t *testing.T) {
	tests := map[string]string{
		"35:36:37": "z.10.11",
		"a:b:c":    "a:b:c",
		"1:2":      "1:2",
	}
	for in, want := range tests {
		if got := CompactRID(in); got != want {
			t.Errorf("CompactRID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRatioSampler(t *testing.T) {
	var s ratioSampler
	s.Set(parseRatio("2/4"))
	var allowed int
	for i := 0; i < 8; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 4 {
		t.Fatalf("allowed = %d, want 4", allowed)
	}
	s.Set(parseRatio("garbage"))
	if !s.Allow() {
		t.Fatal("disabled sampler must allow everything")
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("при\x00вет\u200b", 4); got != "прив" {
		t.Fatalf("got %q", got)
	}
}
