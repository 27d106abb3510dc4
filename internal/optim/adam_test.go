package optim

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"curve-gan/internal/autodiff"
)

func TestAdamFirstStepMovesByLearningRate(t *testing.T) {
	p := autodiff.NewParam("w", mat.NewDense(1, 3, []float64{1, 1, 1}))
	opt := NewAdam(autodiff.ParamSet{p}, 0.01)
	grads := map[*autodiff.Param]*mat.Dense{
		p: mat.NewDense(1, 3, []float64{0.5, -2, 0}),
	}
	if err := opt.Step(grads); err != nil {
		t.Fatalf("Step: %v", err)
	}
	got := p.Value.RawMatrix().Data
	want := []float64{0.99, 1.01, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Fatalf("w[%d] = %.8f, want %.8f", i, got[i], want[i])
		}
	}
	if opt.Steps() != 1 {
		t.Fatalf("expected 1 step, got %d", opt.Steps())
	}
}

func TestAdamMinimizesQuadratic(t *testing.T) {
	p := autodiff.NewParam("x", mat.NewDense(1, 1, []float64{3}))
	opt := NewAdam(autodiff.ParamSet{p}, 0.1)
	for i := 0; i < 500; i++ {
		x := p.Value.At(0, 0)
		grads := map[*autodiff.Param]*mat.Dense{p: mat.NewDense(1, 1, []float64{2 * x})}
		if err := opt.Step(grads); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if x := p.Value.At(0, 0); math.Abs(x) > 0.25 {
		t.Fatalf("expected x near 0, got %f", x)
	}
}

func TestAdamRejectsNonFiniteWithoutMutating(t *testing.T) {
	p := autodiff.NewParam("w", mat.NewDense(1, 2, []float64{1, 2}))
	opt := NewAdam(autodiff.ParamSet{p}, 0.01)
	grads := map[*autodiff.Param]*mat.Dense{
		p: mat.NewDense(1, 2, []float64{math.NaN(), 1}),
	}
	if err := opt.Step(grads); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	if opt.Steps() != 0 {
		t.Fatalf("step counter advanced on rejected update")
	}
	if got := p.Value.RawMatrix().Data; got[0] != 1 || got[1] != 2 {
		t.Fatalf("parameters changed on rejected update: %v", got)
	}
	if m := opt.m[p]; m[0] != 0 || m[1] != 0 {
		t.Fatalf("moments changed on rejected update: %v", m)
	}
}

func TestAdamRejectsForeignParams(t *testing.T) {
	own := autodiff.NewParam("own", mat.NewDense(1, 1, []float64{1}))
	other := autodiff.NewParam("other", mat.NewDense(1, 1, []float64{1}))
	opt := NewAdam(autodiff.ParamSet{own}, 0.01)
	grads := map[*autodiff.Param]*mat.Dense{other: mat.NewDense(1, 1, []float64{1})}
	if err := opt.Step(grads); !errors.Is(err, ErrForeignParam) {
		t.Fatalf("expected ErrForeignParam, got %v", err)
	}
	if other.Value.At(0, 0) != 1 {
		t.Fatal("foreign parameter was updated")
	}
}
