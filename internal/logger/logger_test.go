package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithFormat(FormatJSON), WithOutput(&buf), WithAttr(slog.String("service", "agritranslate")))

	log.Info("installed package", "pair", "en->hi")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "installed package" || record["pair"] != "en->hi" || record["service"] != "agritranslate" {
		t.Errorf("Unexpected record %v", record)
	}
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithLevel(slog.LevelWarn), WithOutput(&buf))

	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromStrings(t *testing.T) {
	var buf bytes.Buffer
	log, err := FromStrings("debug", "json", &buf)
	if err != nil {
		t.Fatalf("FromStrings failed: %v", err)
	}
	log.Debug("visible")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("Expected JSON output, got %q", buf.String())
	}

	if _, err := FromStrings("info", "xml", &buf); err == nil {
		t.Error("Expected error for unknown format")
	}
}
