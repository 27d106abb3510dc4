package model

import "curve-gan/internal/autodiff"

// Model is a differentiable function with an enumerable set of parameters.
type Model interface {
	Forward(t *autodiff.Tape, x *autodiff.Node) *autodiff.Node
	Params() autodiff.ParamSet
}
