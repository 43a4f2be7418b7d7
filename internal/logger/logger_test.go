package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestZapLoggerWritesStructuredField(t *testing.T) {
	var buf bytes.Buffer
	log := newZap("info", &buf)

	log.InfoObj("render completed", "render", map[string]any{"meme_key": "petpet"})
	log.DebugObj("dropped at info level", "x", 1)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "render completed" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	render, ok := entry["render"].(map[string]any)
	if !ok || render["meme_key"] != "petpet" {
		t.Fatalf("render field = %#v", entry["render"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("ts field missing")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNilZapLoggerIsSafe(t *testing.T) {
	var log *ZapLogger
	log.ErrorObj("ignored", "k", "v")
	NopLogger{}.WarnObj("ignored", "k", "v")
}
