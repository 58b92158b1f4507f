package core

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	log "github.com/sirupsen/logrus"
)

// NewDriver creates a frame loop driver over a renderer and an event
// source. The diagnostics collector may be nil when no validation
// records are expected.
func NewDriver(renderer Renderer, events EventSource, timeService *Time, diagnostics *Collector, failOnValidation bool) *Driver {
	return &Driver{
		renderer:         renderer,
		events:           events,
		time:             timeService,
		diagnostics:      diagnostics,
		failOnValidation: failOnValidation,
	}
}

// Driver runs the frame loop: pump events, draw, pace, repeat. It owns
// the event pump and must run on the thread the window was created on.
type Driver struct {
	renderer         Renderer
	events           EventSource
	time             *Time
	diagnostics      *Collector
	failOnValidation bool

	frames uint64
	busy   time.Duration
}

// Run loops until a close is requested or the renderer fails. A nil
// return means a clean close; the renderer is not destroyed here so
// the caller controls teardown order.
func (d *Driver) Run() error {
	defer d.logStatistics()

	for {
		// pace against the idle ticker while there is nothing to present
		if d.renderer.Ready() {
			<-d.time.FpsTicker().C
		} else {
			<-d.time.EventTicker().C
		}

		var closeRequested bool
		for _, event := range d.events.Poll() {
			switch ev := event.(type) {
			case ResizedEvent:
				d.renderer.Resize(ev.Width, ev.Height)
			case CloseRequestedEvent:
				closeRequested = true
			case RedrawRequestedEvent:
				// the next draw revalidates the swapchain on its own
			}
		}
		if closeRequested {
			log.Debug("close requested, leaving frame loop")
			return nil
		}

		if d.failOnValidation && d.diagnostics != nil {
			if count := d.diagnostics.ErrorCount(); count > 0 {
				return errors.Mark(errors.Newf("validation reported %d error(s)", count), ErrValidationFailure)
			}
		}

		if !d.renderer.Ready() {
			continue
		}

		start := hrtime.Now()
		if err := d.renderer.DrawFrame(); err != nil {
			return err
		}
		d.busy += hrtime.Now() - start
		d.frames++
	}
}

// Frames returns how many frames were drawn so far
func (d *Driver) Frames() uint64 {
	return d.frames
}

func (d *Driver) logStatistics() {
	if d.frames == 0 {
		return
	}
	log.WithFields(log.Fields{
		"frames":         d.frames,
		"avg_frame_time": d.busy / time.Duration(d.frames),
	}).Info("frame loop statistics")
}
