package core

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Severity grades a diagnostic record.
type Severity int

// Severities, ordered least to most severe.
const (
	SeverityVerbose Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityVerbose:
		return "verbose"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one record handed over by the driver layer.
type Diagnostic struct {
	Severity Severity
	Source   string
	Message  string
}

// Collector receives diagnostics from driver callbacks and forwards
// them to the log on its own goroutine. The driver may invoke Emit
// from inside any API call, so Emit only enqueues and never blocks.
type Collector struct {
	records chan Diagnostic
	wg      sync.WaitGroup

	errorCount uint64
	dropped    uint64
}

// NewCollector starts a collector draining into logger. The buffer
// size bounds how many records can be pending at once; records beyond
// it are counted and discarded rather than blocking the emitter.
func NewCollector(logger log.FieldLogger, buffer int) *Collector {
	c := &Collector{
		records: make(chan Diagnostic, buffer),
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for record := range c.records {
			entry := logger.WithFields(log.Fields{
				"severity": record.Severity.String(),
				"source":   record.Source,
			})
			switch record.Severity {
			case SeverityError:
				entry.Error(record.Message)
			case SeverityWarning:
				entry.Warn(record.Message)
			case SeverityInfo:
				entry.Info(record.Message)
			default:
				entry.Debug(record.Message)
			}
		}
	}()
	return c
}

// Emit enqueues a record without blocking.
func (c *Collector) Emit(record Diagnostic) {
	if record.Severity == SeverityError {
		atomic.AddUint64(&c.errorCount, 1)
	}
	select {
	case c.records <- record:
	default:
		atomic.AddUint64(&c.dropped, 1)
	}
}

// ErrorCount returns how many error-severity records were emitted,
// including any that were dropped.
func (c *Collector) ErrorCount() uint64 {
	return atomic.LoadUint64(&c.errorCount)
}

// Dropped returns how many records were discarded because the
// buffer was full.
func (c *Collector) Dropped() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

// Close flushes pending records and stops the drain goroutine.
// Emit must not be called after Close.
func (c *Collector) Close() {
	close(c.records)
	c.wg.Wait()
}
