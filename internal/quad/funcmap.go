package quad

import (
	"fmt"

	"github.com/san-kum/quadlab/internal/grid"
)

// AxisSelect picks which grid dimension a density increase applies to.
type AxisSelect int

const (
	Axis0 AxisSelect = iota
	Axis1
	BothAxes
)

// FuncMap caches scalar-field values keyed by grid index pair, bound to one
// grid. Keying on integer indices instead of coordinates sidesteps
// floating-point equality entirely: under the 2^k+1 doubling scheme an old
// index maps to an exact index on any denser grid.
type FuncMap struct {
	grid   grid.Grid
	values map[[2]int]float64
}

func NewFuncMap(g grid.Grid) *FuncMap {
	return &FuncMap{grid: g, values: make(map[[2]int]float64)}
}

func (m *FuncMap) Grid() grid.Grid { return m.grid }

// Len reports how many grid points hold a cached value.
func (m *FuncMap) Len() int { return len(m.values) }

func (m *FuncMap) ValueIsSet(i, j int) bool {
	_, ok := m.values[[2]int{i, j}]
	return ok
}

// Value returns the cached entry at (i, j). Reading an unset coordinate is a
// programming error; callers check ValueIsSet or guarantee prior population.
func (m *FuncMap) Value(i, j int) float64 {
	y, ok := m.values[[2]int{i, j}]
	if !ok {
		panic(fmt.Sprintf("quad: no cached value at grid point (%d,%d)", i, j))
	}
	return y
}

func (m *FuncMap) SetValue(y float64, i, j int) {
	m.values[[2]int{i, j}] = y
}

// IncreaseDensity replaces the grid with a refined one of np points along the
// selected axis (or both). Doubling keeps every old sample location, so each
// cached entry is re-keyed from index i to 2i on a doubled axis and nothing
// is recomputed. Coordinates new to the denser grid stay unset.
func (m *FuncMap) IncreaseDensity(np int, axis AxisSelect) {
	axes := m.grid.Axes
	scale := [2]int{1, 1}
	for dim := 0; dim < 2; dim++ {
		if axis != BothAxes && axis != AxisSelect(dim) {
			continue
		}
		if np == axes[dim].NPoints {
			continue
		}
		axes[dim] = axes[dim].Refined(np)
		scale[dim] = 2
	}
	m.grid = grid.Grid{Axes: axes}

	if scale[0] == 1 && scale[1] == 1 {
		return
	}
	remapped := make(map[[2]int]float64, len(m.values))
	for key, y := range m.values {
		remapped[[2]int{key[0] * scale[0], key[1] * scale[1]}] = y
	}
	m.values = remapped
}
