package metrics

import "time"

// Window accumulates step timings and diagnostics between redraws.
type Window struct {
	steps          int
	skipped        int
	compute        time.Duration
	lastDScore     float64
	lastConfidence float64
}

// Record adds one step to the window. Skipped steps count towards timing but
// leave the last diagnostics in place.
func (w *Window) Record(computeTime time.Duration, dScore, confidence float64, skipped bool) {
	w.steps++
	w.compute += computeTime
	if skipped {
		w.skipped++
		return
	}
	w.lastDScore = dScore
	w.lastConfidence = confidence
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{
		Steps:          w.steps,
		Skipped:        w.skipped,
		LastDScore:     w.lastDScore,
		LastConfidence: w.lastConfidence,
	}
	if w.compute > 0 {
		snap.StepsPerSec = float64(w.steps) / w.compute.Seconds()
	}
	if w.steps > 0 {
		snap.AvgStepMS = (w.compute.Seconds() * 1000) / float64(w.steps)
	}

	w.steps = 0
	w.skipped = 0
	w.compute = 0
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Steps          int
	Skipped        int
	StepsPerSec    float64
	AvgStepMS      float64
	LastDScore     float64
	LastConfidence float64
}
