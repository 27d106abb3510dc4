// Package display is the presentation boundary of the trainer. The training
// loop pushes Frames into a Sink and never reads anything back.
package display

import (
	"errors"
	"fmt"
)

// Status tells the viewer whether the numbers in a frame are current.
type Status int

const (
	StatusOK Status = iota
	// StatusStalled means recent steps were skipped and the values are stale.
	StatusStalled
	// StatusError means the run aborted.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusStalled:
		return "stalled"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name for JSON consumers.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ok":
		*s = StatusOK
	case "stalled":
		*s = StatusStalled
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("display: unknown status %q", b)
	}
	return nil
}

// Frame is one redraw: the sign-negated discriminator loss, the
// discriminator's mean confidence on real samples, and one generated curve.
type Frame struct {
	Step       int       `json:"step"`
	DScore     float64   `json:"d_score"`
	Confidence float64   `json:"confidence"`
	Curve      []float64 `json:"curve"`
	Status     Status    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
}

// Captions renders the two text displays.
func (f Frame) Captions() (score, accuracy string) {
	score = fmt.Sprintf("D score = %.2f (-1.38 for G to converge)", f.DScore)
	accuracy = fmt.Sprintf("D accuracy = %.2f (0.5 for D to converge)", f.Confidence)
	switch f.Status {
	case StatusStalled:
		score += " [stalled: " + f.Detail + "]"
	case StatusError:
		score += " [error: " + f.Detail + "]"
	}
	return score, accuracy
}

// Sink receives frames from the training loop.
type Sink interface {
	Publish(f Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(f Frame) error

// Publish calls fn(f).
func (fn SinkFunc) Publish(f Frame) error { return fn(f) }

// Discard drops every frame.
var Discard Sink = SinkFunc(func(Frame) error { return nil })

type tee []Sink

// Tee fans a frame out to every sink. All sinks are called even when some fail.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

func (t tee) Publish(f Frame) error {
	var errs []error
	for _, s := range t {
		if err := s.Publish(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
