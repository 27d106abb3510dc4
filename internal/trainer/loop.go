package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"curve-gan/internal/display"
	"curve-gan/internal/metrics"
)

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Epochs        int
	BatchSize     int
	NIdeas        int
	ArtComponents int
	HiddenUnits   int
	LRG           float64
	LRD           float64
	DomainMin     float64
	DomainMax     float64
	RedrawEvery   int
	LogEvery      int
	Seed          int64
}

func (c *RunConfig) validate() error {
	if c.Epochs < 0 {
		return errors.New("trainer: epochs must be >= 0")
	}
	if c.BatchSize <= 0 {
		return errors.New("trainer: batch size must be > 0")
	}
	if c.NIdeas <= 0 || c.ArtComponents <= 0 {
		return errors.New("trainer: n_ideas and art_components must be > 0")
	}
	if c.LRG <= 0 || c.LRD <= 0 {
		return errors.New("trainer: learning rates must be > 0")
	}
	if c.RedrawEvery <= 0 {
		c.RedrawEvery = 50
	}
	if c.LogEvery <= 0 {
		c.LogEvery = c.RedrawEvery
	}
	return nil
}

// Run builds a Trainer from cfg and trains it for cfg.Epochs steps.
func Run(ctx context.Context, cfg RunConfig, sink display.Sink) error {
	t, err := New(cfg)
	if err != nil {
		return err
	}
	return t.Run(ctx, sink)
}

// Run executes the fixed number of steps. Every RedrawEvery steps it
// publishes a frame and yields; between redraws nothing reaches the sink. A
// step that was skipped for numeric reasons leaves the displayed values in
// place and marks the next frame stalled. Any other step failure publishes
// an error frame and ends the run.
func (t *Trainer) Run(ctx context.Context, sink display.Sink) error {
	if sink == nil {
		sink = display.Discard
	}
	var window metrics.Window
	var shown Diagnostics
	stale := ""

	for step := 0; step < t.cfg.Epochs; step++ {
		start := time.Now()
		diag, err := t.Step(step)
		if err != nil {
			err = fmt.Errorf("trainer: step %d: %w", step, err)
			t.publish(sink, frameOf(step, shown, display.StatusError, err.Error()))
			return err
		}
		window.Record(time.Since(start), diag.DScore(), diag.Confidence, diag.Skipped)

		if diag.Skipped {
			stale = fmt.Sprintf("step %d skipped: %s", step, diag.Reason)
			log.Printf("step=%d skipped reason=%q", step, diag.Reason)
		} else {
			shown = diag
			stale = ""
		}

		if step%t.cfg.LogEvery == 0 {
			snap := window.Snapshot()
			log.Printf("step=%d d_score=%.4f confidence=%.4f steps_per_sec=%.1f step_ms=%.2f skipped=%d",
				step,
				snap.LastDScore,
				snap.LastConfidence,
				snap.StepsPerSec,
				snap.AvgStepMS,
				snap.Skipped,
			)
		}

		if step%t.cfg.RedrawEvery == 0 {
			status := display.StatusOK
			if stale != "" {
				status = display.StatusStalled
			}
			t.publish(sink, frameOf(step, shown, status, stale))

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			runtime.Gosched()
		}
	}
	return nil
}

func (t *Trainer) publish(sink display.Sink, f display.Frame) {
	if err := sink.Publish(f); err != nil {
		log.Printf("publish step=%d: %v", f.Step, err)
	}
}

func frameOf(step int, d Diagnostics, status display.Status, detail string) display.Frame {
	return display.Frame{
		Step:       step,
		DScore:     d.DScore(),
		Confidence: d.Confidence,
		Curve:      d.Sample,
		Status:     status,
		Detail:     detail,
	}
}
