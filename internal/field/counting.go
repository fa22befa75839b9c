package field

// Counting wraps a field and counts evaluations. The integrator promises to
// call an expensive field exactly once per distinct grid coordinate; this
// wrapper is how that promise gets checked.
type Counting struct {
	inner Field
	calls int
}

func NewCounting(f Field) *Counting {
	return &Counting{inner: f}
}

func (c *Counting) Eval(x0, x1 float64) float64 {
	c.calls++
	return c.inner.Eval(x0, x1)
}

func (c *Counting) Calls() int { return c.calls }

func (c *Counting) Reset() { c.calls = 0 }
