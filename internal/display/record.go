package display

import (
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Frame field numbers in the recorded wire format.
const (
	fieldStep       protowire.Number = 1
	fieldDScore     protowire.Number = 2
	fieldConfidence protowire.Number = 3
	fieldCurve      protowire.Number = 4
	fieldStatus     protowire.Number = 5
	fieldDetail     protowire.Number = 6
)

// Recorder writes every published frame to w as a length-delimited protobuf
// message, so a run's diagnostics can be replayed later.
type Recorder struct {
	w   io.Writer
	buf []byte
}

// NewRecorder returns a Recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Publish appends f to the log.
func (r *Recorder) Publish(f Frame) error {
	msg := AppendFrame(nil, f)
	r.buf = protowire.AppendBytes(r.buf[:0], msg)
	if _, err := r.w.Write(r.buf); err != nil {
		return fmt.Errorf("record frame %d: %w", f.Step, err)
	}
	return nil
}

// AppendFrame appends the wire encoding of f to b.
func AppendFrame(b []byte, f Frame) []byte {
	b = protowire.AppendTag(b, fieldStep, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(f.Step))
	b = protowire.AppendTag(b, fieldDScore, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(f.DScore))
	b = protowire.AppendTag(b, fieldConfidence, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(f.Confidence))
	if len(f.Curve) > 0 {
		packed := make([]byte, 0, 8*len(f.Curve))
		for _, v := range f.Curve {
			packed = protowire.AppendFixed64(packed, math.Float64bits(v))
		}
		b = protowire.AppendTag(b, fieldCurve, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	if f.Status != StatusOK {
		b = protowire.AppendTag(b, fieldStatus, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.Status))
	}
	if f.Detail != "" {
		b = protowire.AppendTag(b, fieldDetail, protowire.BytesType)
		b = protowire.AppendString(b, f.Detail)
	}
	return b
}

// ParseFrame decodes one frame message. Unknown fields are skipped.
func ParseFrame(b []byte) (Frame, error) {
	var f Frame
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return f, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldStep && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return f, protowire.ParseError(n)
			}
			f.Step = int(v)
			b = b[n:]
		case num == fieldDScore && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return f, protowire.ParseError(n)
			}
			f.DScore = math.Float64frombits(v)
			b = b[n:]
		case num == fieldConfidence && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return f, protowire.ParseError(n)
			}
			f.Confidence = math.Float64frombits(v)
			b = b[n:]
		case num == fieldCurve && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return f, protowire.ParseError(n)
			}
			for len(packed) > 0 {
				v, m := protowire.ConsumeFixed64(packed)
				if m < 0 {
					return f, protowire.ParseError(m)
				}
				f.Curve = append(f.Curve, math.Float64frombits(v))
				packed = packed[m:]
			}
			b = b[n:]
		case num == fieldStatus && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return f, protowire.ParseError(n)
			}
			f.Status = Status(v)
			b = b[n:]
		case num == fieldDetail && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return f, protowire.ParseError(n)
			}
			f.Detail = s
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return f, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return f, nil
}

// ReadFrames decodes a log written by Recorder.
func ReadFrames(r io.Reader) ([]Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	var frames []Frame
	for len(data) > 0 {
		msg, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return frames, fmt.Errorf("frame %d: %w", len(frames), protowire.ParseError(n))
		}
		f, err := ParseFrame(msg)
		if err != nil {
			return frames, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
		data = data[n:]
	}
	return frames, nil
}
