package autodiff

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Uniform fills an arena matrix with draws from U[lo, hi).
func Uniform(a *Arena, rng *rand.Rand, rows, cols int, lo, hi float64) *mat.Dense {
	m := a.Dense(rows, cols)
	data := m.RawMatrix().Data
	for i := range data {
		data[i] = lo + rng.Float64()*(hi-lo)
	}
	return m
}

// Normal fills an arena matrix with standard normal draws.
func Normal(a *Arena, rng *rand.Rand, rows, cols int) *mat.Dense {
	m := a.Dense(rows, cols)
	data := m.RawMatrix().Data
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return m
}
