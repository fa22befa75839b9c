package quad

// Iteration describes one pass of the convergence loop.
type Iteration struct {
	Index    int     // loop pass, starting at 0
	NP0      int     // axis 0 point count after this pass's refinement
	NP1      int     // axis 1 point count
	Sum      float64 // Simpson estimate for this pass
	PrevSum  float64 // previous pass's estimate
	ErrPct   float64 // relative change, percent; NaN on the baseline pass
	NewEvals int     // field evaluations this pass added to the cache
}

// Observer is notified after every loop pass, converged or not.
type Observer interface {
	OnIteration(it Iteration)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(it Iteration)

func (f ObserverFunc) OnIteration(it Iteration) { f(it) }
