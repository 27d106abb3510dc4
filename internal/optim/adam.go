// Package optim holds the parameter update rules used by the trainer.
package optim

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"curve-gan/internal/autodiff"
)

var (
	// ErrNonFinite is returned when a gradient holds NaN or ±Inf. The
	// optimizer state is left untouched.
	ErrNonFinite = errors.New("optim: non-finite gradient")
	// ErrForeignParam is returned for a gradient of a parameter the optimizer
	// is not bound to.
	ErrForeignParam = errors.New("optim: parameter not owned by optimizer")
)

// Adam implements Adam with bias correction:
//
//	m = β1·m + (1-β1)·g
//	v = β2·v + (1-β2)·g²
//	w = w - lr · (m/(1-β1^t)) / (√(v/(1-β2^t)) + ε)
//
// The moment estimates belong to a single parameter set and are never reset.
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	step  int

	params autodiff.ParamSet
	m      map[*autodiff.Param][]float64
	v      map[*autodiff.Param][]float64
}

// NewAdam binds an Adam optimizer to params with β1=0.9, β2=0.999, ε=1e-7.
func NewAdam(params autodiff.ParamSet, lr float64) *Adam {
	a := &Adam{
		lr:     lr,
		beta1:  0.9,
		beta2:  0.999,
		eps:    1e-7,
		params: params,
		m:      make(map[*autodiff.Param][]float64, len(params)),
		v:      make(map[*autodiff.Param][]float64, len(params)),
	}
	for _, p := range params {
		a.m[p] = make([]float64, p.Size())
		a.v[p] = make([]float64, p.Size())
	}
	return a
}

// Params returns the parameter set the optimizer updates.
func (a *Adam) Params() autodiff.ParamSet { return a.params }

// LR returns the learning rate.
func (a *Adam) LR() float64 { return a.lr }

// Steps returns the number of applied updates.
func (a *Adam) Steps() int { return a.step }

// Step applies one update from grads. Every gradient is validated before any
// parameter or moment is written.
func (a *Adam) Step(grads map[*autodiff.Param]*mat.Dense) error {
	for p, g := range grads {
		if _, ok := a.m[p]; !ok {
			return fmt.Errorf("%w: %s", ErrForeignParam, p.Name)
		}
		if r, c := g.Dims(); r*c != p.Size() {
			return fmt.Errorf("%w: gradient for %s is %dx%d", autodiff.ErrShape, p.Name, r, c)
		}
		if !autodiff.AllFinite(g.RawMatrix().Data) {
			return fmt.Errorf("%w: %s", ErrNonFinite, p.Name)
		}
	}

	a.step++
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))
	for _, p := range a.params {
		g, ok := grads[p]
		if !ok {
			continue
		}
		w := p.Value.RawMatrix().Data
		m, v := a.m[p], a.v[p]
		for i, gi := range g.RawMatrix().Data {
			m[i] = a.beta1*m[i] + (1-a.beta1)*gi
			v[i] = a.beta2*v[i] + (1-a.beta2)*gi*gi
			w[i] -= a.lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.eps)
		}
	}
	return nil
}
