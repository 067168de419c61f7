package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/config"
)

func TestWithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "json"}, false)

	ctx := WithSubjectID(WithTraceID(context.Background(), "t-1"), "fan@example.com")
	With(ctx, base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if line["trace_id"] != "t-1" {
		t.Errorf("trace_id = %v", line["trace_id"])
	}
	if line["subject_id"] != "fan@example.com" {
		t.Errorf("subject_id = %v", line["subject_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %s", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Fatal("warn should be written")
	}
}

func TestRedact(t *testing.T) {
	cases := []struct {
		in   string
		dev  bool
		want string
	}{
		{"fan@example.com", true, "fan@example.com"},
		{"short", false, "***"},
		{"fan@example.com", false, "fan@...om"},
	}
	for _, c := range cases {
		if got := Redact(c.in, c.dev); got != c.want {
			t.Errorf("Redact(%q,%v) = %q, want %q", c.in, c.dev, got, c.want)
		}
	}
}
