package field

import (
	"fmt"
	"math"
	"sort"
)

// Integral is a definite 2-D integral
//
//	∫_x0^x1 ∫_y0^y1 f(x,y) dy dx
//
// with a known value where one exists. The built-in integrals exercise the
// quadrature loop from the CLI and the tests.
type Integral struct {
	Name        string
	Description string
	XMin, XMax  float64
	YMin, YMax  float64
	F           Field
	Value       float64 // NaN when no closed form is tabulated
}

// Constant returns the integral of f(x,y) = alpha over [-1,2]x[0,3].
func Constant(alpha float64) Integral {
	return Integral{
		Name:        "constant",
		Description: fmt.Sprintf("f(x,y) = %g", alpha),
		XMin:        -1, XMax: 2,
		YMin: 0, YMax: 3,
		F:     Func(func(x0, x1 float64) float64 { return alpha }),
		Value: 9 * alpha,
	}
}

// Cubic returns the integral of x^3*y^3 over [0,2]^2. Composite Simpson
// quadrature is exact for cubics, so the loop detects convergence on its
// first error check regardless of grid density.
func Cubic() Integral {
	return Integral{
		Name:        "cubic",
		Description: "f(x,y) = x^3 * y^3",
		XMin:        0, XMax: 2,
		YMin: 0, YMax: 2,
		F:     Func(func(x0, x1 float64) float64 { return x0 * x0 * x0 * x1 * x1 * x1 }),
		Value: 16,
	}
}

// SinProd returns the integral of sin(x)*sin(y) over [0,pi]^2.
func SinProd() Integral {
	return Integral{
		Name:        "sinprod",
		Description: "f(x,y) = sin(x) * sin(y)",
		XMin:        0, XMax: math.Pi,
		YMin: 0, YMax: math.Pi,
		F:     Func(func(x0, x1 float64) float64 { return math.Sin(x0) * math.Sin(x1) }),
		Value: 4,
	}
}

// Gauss returns the integral of exp(-(x^2+y^2)) over [-3,3]^2.
func Gauss() Integral {
	e := math.Erf(3)
	return Integral{
		Name:        "gauss",
		Description: "f(x,y) = exp(-(x^2 + y^2))",
		XMin:        -3, XMax: 3,
		YMin: -3, YMax: 3,
		F:     Func(func(x0, x1 float64) float64 { return math.Exp(-(x0*x0 + x1*x1)) }),
		Value: math.Pi * e * e,
	}
}

// InverseXY returns the integral of 1/(x*y) over [1,e^2]^2. On a log-spaced
// grid the Jacobi-corrected integrand is constant, so this is the natural
// showcase for in-loge integration.
func InverseXY() Integral {
	e2 := math.Exp(2)
	return Integral{
		Name:        "invxy",
		Description: "f(x,y) = 1 / (x * y)",
		XMin:        1, XMax: e2,
		YMin: 1, YMax: e2,
		F:     Func(func(x0, x1 float64) float64 { return 1 / (x0 * x1) }),
		Value: 4,
	}
}

// Oscillator returns a rapidly oscillating integrand with no tabulated value.
// At small iteration budgets it is a reliable way to hit the non-convergence
// path.
func Oscillator() Integral {
	return Integral{
		Name:        "oscillator",
		Description: "f(x,y) = sin(40x) * sin(40y) + 1",
		XMin:        0, XMax: 1,
		YMin: 0, YMax: 1,
		F: Func(func(x0, x1 float64) float64 {
			return math.Sin(40*x0)*math.Sin(40*x1) + 1
		}),
		Value: math.NaN(),
	}
}

// Catalog returns every built-in integral, sorted by name.
func Catalog() []Integral {
	all := []Integral{
		Constant(2.5),
		Cubic(),
		SinProd(),
		Gauss(),
		InverseXY(),
		Oscillator(),
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Lookup finds a built-in integral by name.
func Lookup(name string) (Integral, error) {
	for _, in := range Catalog() {
		if in.Name == name {
			return in, nil
		}
	}
	return Integral{}, fmt.Errorf("unknown field: %s (try: %v)", name, Names())
}

// Names lists the catalog's field names.
func Names() []string {
	cat := Catalog()
	names := make([]string, 0, len(cat))
	for _, in := range cat {
		names = append(names, in.Name)
	}
	return names
}
