package quad

import "fmt"

// ErrNotConverged reports that the iteration budget ran out before the
// estimate met the requested tolerance. It is fatal by contract: the inputs
// are deterministic, so retrying with the same field, bounds and tolerance
// fails identically. Callers must not treat an unconverged estimate as a
// usable result.
type ErrNotConverged struct {
	ErrEstimate float64 // last relative error estimate, percent
	MaxError    float64 // requested tolerance, percent
	Steps       int     // point count per refined axis at abort
	Iterations  int     // iteration budget that was exhausted
}

func (e *ErrNotConverged) Error() string {
	return fmt.Sprintf(
		"integral did not converge after %d iterations: estimated error %.6g%% (max allowed %.6g%%) at %d integration steps",
		e.Iterations, e.ErrEstimate, e.MaxError, e.Steps)
}
