package dataset

import (
	"errors"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"curve-gan/internal/autodiff"
)

// PaintingOptions configures the real-sample generator.
type PaintingOptions struct {
	BatchSize     int
	ArtComponents int
	DomainMin     float64
	DomainMax     float64
}

// Paintings produces batches of "real" curves y = a·x² + (a-1), one scale
// a ~ U[1,2) per row, over a fixed grid of evaluation points.
type Paintings struct {
	points *mat.Dense
	xs     []float64
	rng    *rand.Rand
}

// NewPaintings fixes the evaluation points and binds the sampler to rng.
func NewPaintings(opts PaintingOptions, rng *rand.Rand) (*Paintings, error) {
	if opts.BatchSize <= 0 {
		return nil, errors.New("paintings: batch size must be > 0")
	}
	if opts.ArtComponents <= 0 {
		return nil, errors.New("paintings: art components must be > 0")
	}
	if rng == nil {
		return nil, errors.New("paintings: nil rng")
	}
	xs := Linspace(opts.DomainMin, opts.DomainMax, opts.ArtComponents)
	points := mat.NewDense(opts.BatchSize, opts.ArtComponents, nil)
	for i := 0; i < opts.BatchSize; i++ {
		points.SetRow(i, xs)
	}
	return &Paintings{points: points, xs: xs, rng: rng}, nil
}

// Points returns a copy of one row of evaluation points.
func (p *Paintings) Points() []float64 {
	return append([]float64(nil), p.xs...)
}

// Sample draws a fresh batch into the arena.
func (p *Paintings) Sample(a *autodiff.Arena) *mat.Dense {
	rows, cols := p.points.Dims()
	scales := autodiff.Uniform(a, p.rng, rows, 1, 1, 2)
	out := a.Dense(rows, cols)
	for i := 0; i < rows; i++ {
		s := scales.At(i, 0)
		for j := 0; j < cols; j++ {
			x := p.points.At(i, j)
			out.Set(i, j, s*x*x+(s-1))
		}
	}
	return out
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// UpperBound returns 2x²+1, the curve drawn with a = 2.
func UpperBound(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = 2*x*x + 1
	}
	return out
}

// LowerBound returns x², the curve drawn with a = 1.
func LowerBound(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x * x
	}
	return out
}
