package core_test

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/LongboardStudios/vulkan-app/core"
)

func TestSeverityString(t *testing.T) {
	cases := map[core.Severity]string{
		core.SeverityVerbose: "verbose",
		core.SeverityInfo:    "info",
		core.SeverityWarning: "warning",
		core.SeverityError:   "error",
		core.Severity(42):    "unknown",
	}

	for severity, expected := range cases {
		if severity.String() != expected {
			t.Errorf("Severity(%d).String() = %q, expected %q", severity, severity.String(), expected)
		}
	}
}

func TestCollectorForwardsToLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	collector := core.NewCollector(logger, 16)
	collector.Emit(core.Diagnostic{Severity: core.SeverityError, Source: "validation", Message: "bad submit"})
	collector.Emit(core.Diagnostic{Severity: core.SeverityWarning, Source: "validation", Message: "slow path"})
	collector.Emit(core.Diagnostic{Severity: core.SeverityInfo, Source: "loader", Message: "layer loaded"})
	collector.Emit(core.Diagnostic{Severity: core.SeverityVerbose, Source: "loader", Message: "chatter"})
	collector.Close()

	entries := hook.AllEntries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 log entries after close, got %d", len(entries))
	}

	expectedLevels := []log.Level{log.ErrorLevel, log.WarnLevel, log.InfoLevel, log.DebugLevel}
	for i, entry := range entries {
		if entry.Level != expectedLevels[i] {
			t.Errorf("entry %d: expected level %v, got %v", i, expectedLevels[i], entry.Level)
		}
		if entry.Data["source"] == nil || entry.Data["severity"] == nil {
			t.Errorf("entry %d: missing source/severity fields", i)
		}
	}
}

func TestCollectorCountsErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	collector := core.NewCollector(logger, 16)
	defer collector.Close()

	collector.Emit(core.Diagnostic{Severity: core.SeverityWarning, Message: "warn"})
	if collector.ErrorCount() != 0 {
		t.Errorf("warnings must not count as errors, count %d", collector.ErrorCount())
	}

	collector.Emit(core.Diagnostic{Severity: core.SeverityError, Message: "first"})
	collector.Emit(core.Diagnostic{Severity: core.SeverityError, Message: "second"})
	if collector.ErrorCount() != 2 {
		t.Errorf("expected 2 errors counted, got %d", collector.ErrorCount())
	}
}

func TestCollectorEmitNeverBlocks(t *testing.T) {
	logger, _ := test.NewNullLogger()
	collector := core.NewCollector(logger, 1)
	defer collector.Close()

	done := make(chan struct{})
	go func() {
		// flood far past the buffer from the emitter's side
		for i := 0; i < 10000; i++ {
			collector.Emit(core.Diagnostic{Severity: core.SeverityError, Message: "flood"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}

	if collector.ErrorCount() != 10000 {
		t.Errorf("all errors should be counted even when dropped, got %d", collector.ErrorCount())
	}
}
