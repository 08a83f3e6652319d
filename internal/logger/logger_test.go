package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/erpclean/erpclean-go/internal/config"
)

func TestInitWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := initWith(&config.Config{AppName: "erpclean", LogLevel: "info"}, &buf)
	if err != nil {
		t.Fatalf("initWith: %v", err)
	}
	t.Cleanup(func() { S = nil })

	log.DebugObj("hidden", "k", 1)
	log.InfoObj("api call recorded", "call", map[string]any{"operation": "list-persons"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "api call recorded" || entry["app"] != "erpclean" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
	call, ok := entry["call"].(map[string]any)
	if !ok || call["operation"] != "list-persons" {
		t.Fatalf("unexpected call field %v", entry["call"])
	}
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("x", "k", 1)
	ErrorObj("x", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var nop Logger = &NopLogger{}
	nop.WarnObj("x", "k", 1)
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug").String() != "debug" || parseLevel("warning").String() != "warn" || parseLevel("bogus").String() != "info" {
		t.Fatalf("unexpected level mapping")
	}
}
