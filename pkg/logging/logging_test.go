package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Level(tt.verbosity); got != tt.wantLevel {
				t.Errorf("Level(%d) = %v, want %v", tt.verbosity, got, tt.wantLevel)
			}
		})
	}
}

func TestNewWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "nested", "shard.log")

	logger, closeLog := New(Options{Verbosity: 1, Console: &console, LogFile: logPath, NoColor: true})
	logger.Info().Str("shard", "work").Msg("applied")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(console.String(), "applied") {
		t.Errorf("console output missing message: %q", console.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Log file was not created at %s: %v", logPath, err)
	}
	if !strings.Contains(string(data), `"shard":"work"`) {
		t.Errorf("log file should hold JSON fields, got %q", string(data))
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var console bytes.Buffer
	logger, _ := New(Options{Verbosity: 0, Console: &console, NoColor: true})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	if strings.Contains(console.String(), "hidden") {
		t.Error("info should be filtered at verbosity 0")
	}
	if !strings.Contains(console.String(), "shown") {
		t.Error("warn should pass at verbosity 0")
	}
}

func TestComponentAndRun(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	logger, id := WithRun(Component(base, "reconcile"))
	logger.Warn().Msg("stage")

	out := buf.String()
	if !strings.Contains(out, `"component":"reconcile"`) {
		t.Errorf("missing component field: %s", out)
	}
	if id == "" || !strings.Contains(out, id) {
		t.Errorf("missing run id %q: %s", id, out)
	}
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "snapshot")
	done()

	out := buf.String()
	if !strings.Contains(out, "Operation started") || !strings.Contains(out, "Operation completed") {
		t.Errorf("unexpected output: %s", out)
	}
	if !strings.Contains(out, `"duration"`) {
		t.Errorf("completion should carry a duration: %s", out)
	}
}
