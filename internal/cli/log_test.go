package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("compiled floor plan", "rooms", 3)

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("log line %q does not start with an HH:MM:SS.ms timestamp", line)
	}
	if !strings.Contains(line, "rooms=3") {
		t.Errorf("log line %q missing rooms=3", line)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug not written after SetLogLevel(LogDebug): %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		want  bool
	}{
		{"debug level", LogDebug, true},
		{"info level", LogInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newProgress(newLogger(&buf, tt.level)).done("compile finished", "input", "plan.json")

			got := buf.String()
			if (got != "") != tt.want {
				t.Fatalf("output = %q, want output %v", got, tt.want)
			}
			if !tt.want {
				return
			}
			for _, want := range []string{"compile finished", "input=plan.json", "elapsed="} {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
		})
	}
}
