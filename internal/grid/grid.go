package grid

import "fmt"

// Range is an axis description before a point count is chosen.
type Range struct {
	Min float64
	Max float64
}

// Grid is an ordered pair of axes.
type Grid struct {
	Axes [2]Axis
}

func New(a0, a1 Axis) Grid {
	return Grid{Axes: [2]Axis{a0, a1}}
}

func (g Grid) NPoints(dim int) int      { return g.Axes[dim].NPoints }
func (g Grid) Step(dim int) float64     { return g.Axes[dim].Step() }
func (g Grid) Point(dim, i int) float64 { return g.Axes[dim].Point(i) }

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d points, [%g, %g]x[%g, %g], %s spacing",
		g.Axes[0].NPoints, g.Axes[1].NPoints,
		g.Axes[0].Min, g.Axes[0].Max,
		g.Axes[1].Min, g.Axes[1].Max,
		g.Axes[0].Spacing)
}
