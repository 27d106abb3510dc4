package dataset

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"curve-gan/internal/autodiff"
)

func TestPaintingsShapeAndRange(t *testing.T) {
	p, err := NewPaintings(PaintingOptions{BatchSize: 64, ArtComponents: 15, DomainMin: -1, DomainMax: 1}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewPaintings: %v", err)
	}
	arena := autodiff.NewArena()
	for step := 0; step < 20; step++ {
		batch := p.Sample(arena)
		r, c := batch.Dims()
		if r != 64 || c != 15 {
			t.Fatalf("expected 64x15 batch, got %dx%d", r, c)
		}
		for i := 0; i < r; i++ {
			a := batch.At(i, c/2) + 1
			if a < 1 || a >= 2 {
				t.Fatalf("row %d: scale %f outside [1,2)", i, a)
			}
			for j := 0; j < c; j++ {
				v := batch.At(i, j)
				if v < 0 || v > 3 {
					t.Fatalf("value %f outside [0,3]", v)
				}
			}
		}
		arena.Release()
	}
}

func TestPaintingsDrawFreshBatches(t *testing.T) {
	p, err := NewPaintings(PaintingOptions{BatchSize: 4, ArtComponents: 3, DomainMin: -1, DomainMax: 1}, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("NewPaintings: %v", err)
	}
	arena := autodiff.NewArena()
	first := append([]float64(nil), p.Sample(arena).RawMatrix().Data...)
	second := p.Sample(arena).RawMatrix().Data
	if reflect.DeepEqual(first, second) {
		t.Fatal("consecutive batches are identical")
	}
}

func TestLinspaceAndBounds(t *testing.T) {
	xs := Linspace(-1, 1, 5)
	want := []float64{-1, -0.5, 0, 0.5, 1}
	if !reflect.DeepEqual(xs, want) {
		t.Fatalf("Linspace = %v, want %v", xs, want)
	}
	upper := UpperBound(xs)
	lower := LowerBound(xs)
	if upper[0] != 3 || upper[2] != 1 || lower[0] != 1 || lower[2] != 0 {
		t.Fatalf("unexpected bounds upper=%v lower=%v", upper, lower)
	}
	for i := range xs {
		if math.Abs(upper[i]-(2*lower[i]+1)) > 1e-12 {
			t.Fatalf("upper and lower bounds disagree at %d", i)
		}
	}
}
