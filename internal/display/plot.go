package display

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotSink renders the latest frame to an image file: the generated curve
// between the upper and lower bounds of the real family.
type PlotSink struct {
	Path   string
	Points []float64
	Upper  []float64
	Lower  []float64
	Size   vg.Length
}

// Publish overwrites Path with a chart of f.
func (s *PlotSink) Publish(f Frame) error {
	p := plot.New()
	score, accuracy := f.Captions()
	p.Title.Text = fmt.Sprintf("step %d\n%s\n%s", f.Step, score, accuracy)
	if n := len(s.Points); n > 0 {
		p.X.Min, p.X.Max = s.Points[0], s.Points[n-1]
	}
	p.Y.Min, p.Y.Max = 0, 3

	series := []struct {
		name   string
		ys     []float64
		stroke color.RGBA
		dash   bool
	}{
		{"Generated Painting", f.Curve, color.RGBA{R: 0x4a, G: 0xd6, B: 0x31, A: 0xff}, false},
		{"Upper Bound", s.Upper, color.RGBA{R: 0x74, G: 0xbc, B: 0xff, A: 0xff}, true},
		{"Lower Bound", s.Lower, color.RGBA{R: 0xff, G: 0x93, B: 0x59, A: 0xff}, true},
	}
	for _, sr := range series {
		if len(sr.ys) == 0 {
			continue
		}
		line, err := plotter.NewLine(s.xys(sr.ys))
		if err != nil {
			return fmt.Errorf("plot %s: %w", sr.name, err)
		}
		line.Color = sr.stroke
		if sr.dash {
			line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		}
		p.Add(line)
		p.Legend.Add(sr.name, line)
	}

	size := s.Size
	if size <= 0 {
		size = 6 * vg.Inch
	}
	if err := p.Save(size, size*2/3, s.Path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func (s *PlotSink) xys(ys []float64) plotter.XYs {
	n := len(ys)
	if len(s.Points) < n {
		n = len(s.Points)
	}
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = s.Points[i]
		pts[i].Y = ys[i]
	}
	return pts
}
