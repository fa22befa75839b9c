package field

// Field is a scalar function of two real variables. Implementations must be
// deterministic: the integrator caches values by grid coordinate and assumes
// a repeated evaluation would return the same result.
type Field interface {
	Eval(x0, x1 float64) float64
}

// Func adapts an ordinary function to the Field interface.
type Func func(x0, x1 float64) float64

func (f Func) Eval(x0, x1 float64) float64 { return f(x0, x1) }
