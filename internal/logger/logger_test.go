package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json")
	log.Info().Str("component", "scoring_worker").Msg("started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "scoring_worker" || entry["message"] != "started" {
		t.Errorf("unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Errorf("expected a timestamp field")
	}
	if _, ok := entry["caller"]; !ok {
		t.Errorf("expected a caller field")
	}
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "pretty")
	l.Warn().Msg("slow probe")
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("pretty format must not emit JSON, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "slow probe") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"warn":    zerolog.WarnLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
