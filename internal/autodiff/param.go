package autodiff

import "gonum.org/v1/gonum/mat"

// Param is a named weight matrix that persists across steps.
type Param struct {
	Name  string
	Value *mat.Dense
}

// NewParam wraps value as a parameter.
func NewParam(name string, value *mat.Dense) *Param {
	return &Param{Name: name, Value: value}
}

// Size returns the number of scalars held by the parameter.
func (p *Param) Size() int {
	r, c := p.Value.Dims()
	return r * c
}

// ParamSet is an explicit, ordered selection of parameters. Gradients are
// only ever produced for members of the set a Tape was built with.
type ParamSet []*Param

// Contains reports whether p is a member of the set.
func (s ParamSet) Contains(p *Param) bool {
	for _, q := range s {
		if q == p {
			return true
		}
	}
	return false
}

// Snapshot deep-copies every parameter value in set order.
func (s ParamSet) Snapshot() [][]float64 {
	out := make([][]float64, len(s))
	for i, p := range s {
		out[i] = append([]float64(nil), p.Value.RawMatrix().Data...)
	}
	return out
}
