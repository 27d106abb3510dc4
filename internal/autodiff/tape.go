// Package autodiff is the numeric backend of the trainer: step-scoped
// matrices, parameters, and a reverse-mode tape that differentiates a scalar
// loss with respect to an explicit parameter set.
package autodiff

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShape reports operands whose dimensions do not line up.
	ErrShape = errors.New("autodiff: shape mismatch")
	// ErrNonFinite reports a loss that evaluated to NaN or ±Inf.
	ErrNonFinite = errors.New("autodiff: non-finite loss")
)

// Node is a value recorded on a Tape.
type Node struct {
	value    *mat.Dense
	grad     *mat.Dense
	needGrad bool
	backward func(g *mat.Dense)
}

// Value returns the forward value. Arena-owned values are only valid until the
// arena is released.
func (n *Node) Value() *mat.Dense { return n.value }

// Scalar returns the single element of a 1×1 node.
func (n *Node) Scalar() float64 { return n.value.At(0, 0) }

// Tape records operations in evaluation order so Gradients can replay them
// backwards. Parameters outside wrt are recorded as constants. A Tape is
// single-use: build it, evaluate, call Gradients once, drop it.
type Tape struct {
	arena  *Arena
	wrt    ParamSet
	nodes  []*Node
	params map[*Param]*Node
	err    error
}

// NewTape starts a tape that allocates from a and differentiates with respect
// to wrt only. A nil wrt records a pure forward pass.
func NewTape(a *Arena, wrt ParamSet) *Tape {
	return &Tape{
		arena:  a,
		wrt:    wrt,
		params: make(map[*Param]*Node),
	}
}

// Err returns the first error recorded while building the tape.
func (t *Tape) Err() error { return t.err }

func (t *Tape) push(value *mat.Dense, backward func(g *mat.Dense), inputs ...*Node) *Node {
	n := &Node{value: value}
	for _, in := range inputs {
		if in.needGrad {
			n.needGrad = true
			break
		}
	}
	if n.needGrad {
		n.backward = backward
	}
	t.nodes = append(t.nodes, n)
	return n
}

func (t *Tape) fail(format string, args ...any) *Node {
	if t.err == nil {
		t.err = fmt.Errorf("%w: %s", ErrShape, fmt.Sprintf(format, args...))
	}
	return &Node{value: t.arena.Dense(1, 1)}
}

// gradOf returns n's gradient accumulator, allocating it on first use.
func (t *Tape) gradOf(n *Node) []float64 {
	if n.grad == nil {
		r, c := n.value.Dims()
		n.grad = t.arena.Dense(r, c)
	}
	return n.grad.RawMatrix().Data
}

// Constant records m as an input that never receives a gradient.
func (t *Tape) Constant(m *mat.Dense) *Node {
	n := &Node{value: m}
	t.nodes = append(t.nodes, n)
	return n
}

// Param records p. Repeated calls return the same node so gradients from
// every use accumulate.
func (t *Tape) Param(p *Param) *Node {
	if n, ok := t.params[p]; ok {
		return n
	}
	n := &Node{value: p.Value, needGrad: t.wrt.Contains(p)}
	t.params[p] = n
	t.nodes = append(t.nodes, n)
	return n
}

// MatMul returns a·b.
func (t *Tape) MatMul(a, b *Node) *Node {
	ar, ac := a.value.Dims()
	br, bc := b.value.Dims()
	if ac != br {
		return t.fail("matmul %dx%d by %dx%d", ar, ac, br, bc)
	}
	out := t.arena.Dense(ar, bc)
	out.Mul(a.value, b.value)
	return t.push(out, func(g *mat.Dense) {
		if a.needGrad {
			tmp := t.arena.Dense(ar, ac)
			tmp.Mul(g, b.value.T())
			floats.Add(t.gradOf(a), tmp.RawMatrix().Data)
		}
		if b.needGrad {
			tmp := t.arena.Dense(br, bc)
			tmp.Mul(a.value.T(), g)
			floats.Add(t.gradOf(b), tmp.RawMatrix().Data)
		}
	}, a, b)
}

// AddRow adds the 1×c row to every row of a.
func (t *Tape) AddRow(a, row *Node) *Node {
	ar, ac := a.value.Dims()
	rr, rc := row.value.Dims()
	if rr != 1 || rc != ac {
		return t.fail("add row %dx%d to %dx%d", rr, rc, ar, ac)
	}
	out := t.arena.Dense(ar, ac)
	dst := out.RawMatrix().Data
	src := a.value.RawMatrix().Data
	bias := row.value.RawMatrix().Data
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			dst[i*ac+j] = src[i*ac+j] + bias[j]
		}
	}
	return t.push(out, func(g *mat.Dense) {
		gd := g.RawMatrix().Data
		if a.needGrad {
			floats.Add(t.gradOf(a), gd)
		}
		if row.needGrad {
			rg := t.gradOf(row)
			for i := 0; i < ar; i++ {
				floats.Add(rg, gd[i*ac:(i+1)*ac])
			}
		}
	}, a, row)
}

// Add returns the elementwise sum of two equally shaped nodes.
func (t *Tape) Add(a, b *Node) *Node {
	ar, ac := a.value.Dims()
	br, bc := b.value.Dims()
	if ar != br || ac != bc {
		return t.fail("add %dx%d and %dx%d", ar, ac, br, bc)
	}
	out := t.arena.Dense(ar, ac)
	out.Add(a.value, b.value)
	return t.push(out, func(g *mat.Dense) {
		gd := g.RawMatrix().Data
		if a.needGrad {
			floats.Add(t.gradOf(a), gd)
		}
		if b.needGrad {
			floats.Add(t.gradOf(b), gd)
		}
	}, a, b)
}

// unary records an elementwise op. deriv receives the input and output
// element and returns the local derivative.
func (t *Tape) unary(a *Node, f func(x float64) float64, deriv func(x, y float64) float64) *Node {
	r, c := a.value.Dims()
	out := t.arena.Dense(r, c)
	dst := out.RawMatrix().Data
	src := a.value.RawMatrix().Data
	for i, x := range src {
		dst[i] = f(x)
	}
	return t.push(out, func(g *mat.Dense) {
		ag := t.gradOf(a)
		for i, gv := range g.RawMatrix().Data {
			ag[i] += gv * deriv(src[i], dst[i])
		}
	}, a)
}

// ReLU returns max(a, 0).
func (t *Tape) ReLU(a *Node) *Node {
	return t.unary(a,
		func(x float64) float64 { return math.Max(x, 0) },
		func(x, _ float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		})
}

// Sigmoid returns 1/(1+e^-a).
func (t *Tape) Sigmoid(a *Node) *Node {
	return t.unary(a,
		func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
		func(_, y float64) float64 { return y * (1 - y) })
}

// Clamp limits a to [lo, hi]. The gradient is zero where clamping applied.
func (t *Tape) Clamp(a *Node, lo, hi float64) *Node {
	return t.unary(a,
		func(x float64) float64 { return math.Min(math.Max(x, lo), hi) },
		func(x, _ float64) float64 {
			if x < lo || x > hi {
				return 0
			}
			return 1
		})
}

// Log returns the natural logarithm of a.
func (t *Tape) Log(a *Node) *Node {
	return t.unary(a, math.Log, func(x, _ float64) float64 { return 1 / x })
}

// OneMinus returns 1 - a.
func (t *Tape) OneMinus(a *Node) *Node {
	return t.unary(a,
		func(x float64) float64 { return 1 - x },
		func(_, _ float64) float64 { return -1 })
}

// Neg returns -a.
func (t *Tape) Neg(a *Node) *Node {
	r, c := a.value.Dims()
	out := t.arena.Dense(r, c)
	dst := out.RawMatrix().Data
	copy(dst, a.value.RawMatrix().Data)
	floats.Scale(-1, dst)
	return t.push(out, func(g *mat.Dense) {
		floats.Sub(t.gradOf(a), g.RawMatrix().Data)
	}, a)
}

// Mean reduces a to the 1×1 average of its elements.
func (t *Tape) Mean(a *Node) *Node {
	r, c := a.value.Dims()
	n := float64(r * c)
	out := t.arena.Dense(1, 1)
	out.Set(0, 0, floats.Sum(a.value.RawMatrix().Data)/n)
	return t.push(out, func(g *mat.Dense) {
		ag := t.gradOf(a)
		share := g.At(0, 0) / n
		for i := range ag {
			ag[i] += share
		}
	}, a)
}

// Gradients backpropagates from the 1×1 loss and returns the gradient of
// every parameter in the tape's set that the loss depends on. The returned
// matrices are arena-owned.
func (t *Tape) Gradients(loss *Node) (map[*Param]*mat.Dense, error) {
	if t.err != nil {
		return nil, t.err
	}
	if r, c := loss.value.Dims(); r != 1 || c != 1 {
		return nil, fmt.Errorf("%w: loss is %dx%d, want 1x1", ErrShape, r, c)
	}
	if !IsFinite(loss.Scalar()) {
		return nil, ErrNonFinite
	}
	grads := make(map[*Param]*mat.Dense, len(t.wrt))
	if !loss.needGrad {
		return grads, nil
	}
	t.gradOf(loss)[0] = 1
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := t.nodes[i]
		if n.backward == nil || n.grad == nil {
			continue
		}
		n.backward(n.grad)
	}
	for p, n := range t.params {
		if n.needGrad && n.grad != nil {
			grads[p] = n.grad
		}
	}
	return grads, nil
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AllFinite reports whether every element of data is finite.
func AllFinite(data []float64) bool {
	for _, v := range data {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}
