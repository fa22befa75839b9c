package grid

import (
	"fmt"
	"math"
)

// Spacing selects how sample points are distributed between the axis bounds.
type Spacing int

const (
	Linear Spacing = iota
	Loge
)

func (s Spacing) String() string {
	if s == Loge {
		return "loge"
	}
	return "linear"
}

// Axis is one dimension of a uniform grid. The point count is always of the
// form 2^k+1 so that a refinement exactly doubles the resolution and every
// old sample coordinate survives at index 2i on the denser axis.
type Axis struct {
	Min     float64
	Max     float64
	NPoints int
	Spacing Spacing
}

func NewAxis(min, max float64, np int, spacing Spacing) Axis {
	if !(min < max) {
		panic(fmt.Sprintf("grid: invalid axis bounds [%g, %g]", min, max))
	}
	if !ValidPointCount(np) {
		panic(fmt.Sprintf("grid: point count %d is not of the form 2^k+1", np))
	}
	if spacing == Loge && min <= 0 {
		panic(fmt.Sprintf("grid: log spacing requires positive bounds, got min=%g", min))
	}
	return Axis{Min: min, Max: max, NPoints: np, Spacing: spacing}
}

// ValidPointCount reports whether np = 2^k+1 for some k >= 1.
func ValidPointCount(np int) bool {
	return np >= 3 && (np-1)&(np-2) == 0
}

func (a Axis) span() float64 {
	if a.Spacing == Loge {
		return math.Log(a.Max) - math.Log(a.Min)
	}
	return a.Max - a.Min
}

// Step is the sample spacing in the integration variable: x for linear axes,
// ln(x) for log axes.
func (a Axis) Step() float64 {
	return a.span() / float64(a.NPoints-1)
}

// Point returns the physical coordinate of sample i.
func (a Axis) Point(i int) float64 {
	if a.Spacing == Loge {
		return math.Exp(math.Log(a.Min) + float64(i)*a.Step())
	}
	return a.Min + float64(i)*a.Step()
}

// Refined returns an axis with the same bounds and np points. np must be the
// current point count (a no-op) or 2*NPoints-1 (one doubling), so that the
// new sample set is a strict superset of the old one.
func (a Axis) Refined(np int) Axis {
	if np != a.NPoints && np != 2*a.NPoints-1 {
		panic(fmt.Sprintf("grid: cannot refine %d points to %d", a.NPoints, np))
	}
	a.NPoints = np
	return a
}
