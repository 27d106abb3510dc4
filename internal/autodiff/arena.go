package autodiff

import "gonum.org/v1/gonum/mat"

// Arena hands out step-scoped matrices backed by pooled buffers.
// Release returns every buffer handed out since the previous Release, so a
// loop that calls Release once per step runs in bounded memory.
type Arena struct {
	free      map[int][][]float64
	live      [][]float64
	allocated int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{free: make(map[int][][]float64)}
}

// Dense returns a zeroed rows×cols matrix owned by the arena. It must not be
// used after the next Release.
func (a *Arena) Dense(rows, cols int) *mat.Dense {
	size := rows * cols
	var buf []float64
	if pool := a.free[size]; len(pool) > 0 {
		buf = pool[len(pool)-1]
		a.free[size] = pool[:len(pool)-1]
		clear(buf)
	} else {
		buf = make([]float64, size)
		a.allocated++
	}
	a.live = append(a.live, buf)
	return mat.NewDense(rows, cols, buf)
}

// Release returns all live buffers to the pool.
func (a *Arena) Release() {
	for _, buf := range a.live {
		a.free[len(buf)] = append(a.free[len(buf)], buf)
	}
	clear(a.live)
	a.live = a.live[:0]
}

// Live reports the number of buffers handed out since the last Release.
func (a *Arena) Live() int { return len(a.live) }

// Allocated reports how many buffers the arena has ever created.
func (a *Arena) Allocated() int { return a.allocated }
