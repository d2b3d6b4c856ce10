package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_LevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf})

	log.Info("dropped")
	log.WithFields(map[string]interface{}{"upstream": "analytics"}).WithError(errors.New("boom")).Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines: got %v want %v (%q)", len(lines), 1, buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry["message"] != "kept" || entry["upstream"] != "analytics" || entry["error"] != "boom" || entry["level"] != "warn" {
		t.Errorf("entry: got %v", entry)
	}
}

func TestParseLevel_Default(t *testing.T) {
	for _, in := range []string{"", "loud"} {
		if got := parseLevel(in).String(); got != "info" {
			t.Errorf("parseLevel(%q): got %v want %v", in, got, "info")
		}
	}
}
