package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"curve-gan/internal/autodiff"
)

const defaultHidden = 128

// Activation selects the nonlinearity applied after a dense layer.
type Activation int

const (
	Linear Activation = iota
	ReLU
	Sigmoid
)

// Layer describes one dense layer of an MLP.
type Layer struct {
	Units      int
	Activation Activation
}

type dense struct {
	weight *autodiff.Param
	bias   *autodiff.Param
	act    Activation
}

// MLP is a stack of affine transforms with nonlinearities.
type MLP struct {
	name   string
	layers []dense
	params autodiff.ParamSet
}

// NewMLP builds the network with Glorot-uniform kernels and zero biases,
// drawing from rng in layer order.
func NewMLP(name string, inputs int, layers []Layer, rng *rand.Rand) *MLP {
	m := &MLP{name: name}
	fanIn := inputs
	for i, l := range layers {
		limit := math.Sqrt(6 / float64(fanIn+l.Units))
		w := make([]float64, fanIn*l.Units)
		for j := range w {
			w[j] = (rng.Float64()*2 - 1) * limit
		}
		d := dense{
			weight: autodiff.NewParam(fmt.Sprintf("%s/dense_%d/kernel", name, i), mat.NewDense(fanIn, l.Units, w)),
			bias:   autodiff.NewParam(fmt.Sprintf("%s/dense_%d/bias", name, i), mat.NewDense(1, l.Units, nil)),
			act:    l.Activation,
		}
		m.layers = append(m.layers, d)
		m.params = append(m.params, d.weight, d.bias)
		fanIn = l.Units
	}
	return m
}

// NewGenerator maps nIdeas-wide idea vectors to artComponents-long curves.
func NewGenerator(nIdeas, hidden, artComponents int, rng *rand.Rand) *MLP {
	if hidden <= 0 {
		hidden = defaultHidden
	}
	return NewMLP("generator", nIdeas, []Layer{
		{Units: hidden, Activation: ReLU},
		{Units: artComponents, Activation: Linear},
	}, rng)
}

// NewDiscriminator maps curves to the probability that they are real.
func NewDiscriminator(artComponents, hidden int, rng *rand.Rand) *MLP {
	if hidden <= 0 {
		hidden = defaultHidden
	}
	return NewMLP("discriminator", artComponents, []Layer{
		{Units: hidden, Activation: ReLU},
		{Units: 1, Activation: Sigmoid},
	}, rng)
}

// Name returns the name given at construction.
func (m *MLP) Name() string { return m.name }

// Params returns the kernels and biases in layer order.
func (m *MLP) Params() autodiff.ParamSet { return m.params }

// Forward evaluates the network on x. Whether parameters receive gradients is
// decided by the tape's parameter set, not by the model.
func (m *MLP) Forward(t *autodiff.Tape, x *autodiff.Node) *autodiff.Node {
	h := x
	for _, l := range m.layers {
		h = t.AddRow(t.MatMul(h, t.Param(l.weight)), t.Param(l.bias))
		switch l.act {
		case ReLU:
			h = t.ReLU(h)
		case Sigmoid:
			h = t.Sigmoid(h)
		}
	}
	return h
}
