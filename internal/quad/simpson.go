package quad

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/quadlab/internal/field"
	"github.com/san-kum/quadlab/internal/grid"
)

// Options control the convergence loop.
type Options struct {
	MaxIterations       int     // iteration budget before giving up
	InitialNStep        int     // initial resolution power: first grid has 2^n+1 points per axis
	MaxError            float64 // convergence tolerance, percent
	InLoge              bool    // sample axes uniformly in ln(x) instead of x
	FastDensityIncrease bool    // refine both axes every iteration instead of one at a time
}

func DefaultOptions() Options {
	return Options{
		MaxIterations: 20,
		InitialNStep:  2,
		MaxError:      0.1,
	}
}

func (o Options) validate() error {
	if o.MaxIterations < 2 {
		return fmt.Errorf("max-iterations must be at least 2, got %d", o.MaxIterations)
	}
	if o.InitialNStep < 1 {
		return fmt.Errorf("initial-nstep must be at least 1, got %d", o.InitialNStep)
	}
	if o.MaxError <= 0 {
		return fmt.Errorf("max-error must be positive, got %g", o.MaxError)
	}
	return nil
}

// Result is the outcome of one Integrate call.
type Result struct {
	Value       float64     // converged integral estimate; zero when not converged
	ErrEstimate float64     // last relative error estimate, percent
	Iterations  int         // loop passes executed
	Evaluations int         // distinct grid points the field was evaluated at
	Converged   bool
	Trace       []Iteration // one entry per loop pass
}

// Simpson2D integrates a scalar field over a rectangular domain with the
// composite 2-D Simpson rule, doubling the grid density until two successive
// estimates agree within the configured tolerance.
type Simpson2D struct {
	opts      Options
	logger    *zap.Logger
	observers []Observer
}

func NewSimpson2D(opts Options) *Simpson2D {
	return &Simpson2D{opts: opts, logger: zap.NewNop()}
}

func (s *Simpson2D) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simpson2D) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Integrate runs the refine-evaluate-sum-check loop.
//
// Pass 0 fills the initial 2^InitialNStep+1 per-axis grid and records a
// baseline sum. Every later pass refines the grid (both axes per pass when
// FastDensityIncrease is set, otherwise one axis at a time with both covered
// once per two passes), evaluates the field only at coordinates the cache has
// not seen, recomputes the Simpson sum and compares it against the previous
// one. A relative change below MaxError percent converges; exhausting
// MaxIterations returns *ErrNotConverged along with the partial Result so the
// trace stays available for diagnosis.
func (s *Simpson2D) Integrate(ctx context.Context, f field.Field, x, y grid.Range) (*Result, error) {
	if err := s.opts.validate(); err != nil {
		return nil, err
	}

	spacing := grid.Linear
	if s.opts.InLoge {
		spacing = grid.Loge
	}
	np := 1<<uint(s.opts.InitialNStep) + 1
	fm := NewFuncMap(grid.New(
		grid.NewAxis(x.Min, x.Max, np, spacing),
		grid.NewAxis(y.Min, y.Max, np, spacing),
	))

	res := &Result{}
	n := s.opts.InitialNStep + 1 // next refinement power
	prev := 0.0
	havePrev := false

	for iter := 0; iter < s.opts.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		if iter > 0 {
			switch {
			case s.opts.FastDensityIncrease:
				np = 1<<uint(n) + 1
				n++
				fm.IncreaseDensity(np, BothAxes)
			case (iter-1)%2 == 0:
				// new refinement cycle: axis 0 first, axis 1 catches up
				// on the next pass
				np = 1<<uint(n) + 1
				n++
				fm.IncreaseDensity(np, Axis0)
			default:
				fm.IncreaseDensity(np, Axis1)
			}
		}

		g := fm.Grid()
		s.logger.Info("integration pass",
			zap.Int("iter", iter),
			zap.Stringer("grid", g))

		fresh := s.fill(fm, f)
		res.Evaluations += fresh
		res.Iterations = iter + 1

		sum := simpsonSum(fm)
		it := Iteration{
			Index:    iter,
			NP0:      g.NPoints(0),
			NP1:      g.NPoints(1),
			Sum:      sum,
			PrevSum:  prev,
			ErrPct:   math.NaN(),
			NewEvals: fresh,
		}

		degenerate := false
		if havePrev {
			if sum+prev == 0 {
				// both estimates vanished: the integral is exactly zero
				degenerate = true
				it.ErrPct = 0
			} else {
				it.ErrPct = 200 * math.Abs((sum-prev)/(sum+prev))
				res.ErrEstimate = it.ErrPct
			}
		}
		res.Trace = append(res.Trace, it)
		for _, o := range s.observers {
			o.OnIteration(it)
		}

		s.logger.Info("integral estimate",
			zap.Int("iter", iter),
			zap.Float64("sum", sum),
			zap.Float64("prev", prev),
			zap.Float64("err_pct", it.ErrPct))

		if degenerate {
			res.Value = 0
			res.Converged = true
			return res, nil
		}
		if havePrev && it.ErrPct < s.opts.MaxError {
			res.Value = sum
			res.Converged = true
			s.logger.Info("converged",
				zap.Float64("integral", sum),
				zap.Float64("err_pct", it.ErrPct))
			return res, nil
		}

		prev = sum
		havePrev = true
	}

	ncErr := &ErrNotConverged{
		ErrEstimate: res.ErrEstimate,
		MaxError:    s.opts.MaxError,
		Steps:       np,
		Iterations:  s.opts.MaxIterations,
	}
	s.logger.Error("integral did not converge",
		zap.Float64("err_pct", ncErr.ErrEstimate),
		zap.Float64("max_err_pct", ncErr.MaxError),
		zap.Int("steps", ncErr.Steps))
	return res, ncErr
}

// fill evaluates the field at every grid coordinate the cache has not seen
// and returns the number of fresh evaluations. On log-spaced grids the
// Jacobian of the substitution folds in here, exactly once per value:
// integral { f(x)dx } = integral { x*f(x) dln(x) }.
func (s *Simpson2D) fill(fm *FuncMap, f field.Field) int {
	g := fm.Grid()
	fresh := 0
	for i := 0; i < g.NPoints(0); i++ {
		x0 := g.Point(0, i)
		for j := 0; j < g.NPoints(1); j++ {
			if fm.ValueIsSet(i, j) {
				continue
			}
			x1 := g.Point(1, j)
			y := f.Eval(x0, x1)
			if s.opts.InLoge {
				y *= x0 * x1
			}
			s.logger.Debug("grid point",
				zap.Int("i", i), zap.Int("j", j),
				zap.Float64("x0", x0), zap.Float64("x1", x1),
				zap.Float64("f", y))
			fm.SetValue(y, i, j)
			fresh++
		}
	}
	return fresh
}

// simpsonSum is the tensor-product composite Simpson rule: a weighted 1-D sum
// along axis 1 at every fixed axis-0 index, then the same rule folds those
// partial sums along axis 0. Endpoints carry weight 1/2 and interior points
// alternate 2 and 1 against a common factor 2h/3, the usual 1-4-2-...-4-1
// pattern.
func simpsonSum(fm *FuncMap) float64 {
	g := fm.Grid()
	n0, n1 := g.NPoints(0), g.NPoints(1)
	h0, h1 := g.Step(0), g.Step(1)

	sum1d := make([]float64, n0)
	for i := 0; i < n0; i++ {
		partial := 0.5*fm.Value(i, 0) + 0.5*fm.Value(i, n1-1)
		for j := 1; j < n1-1; j++ {
			partial += fm.Value(i, j) * float64(j%2+1)
		}
		sum1d[i] = partial * 2 * h1 / 3
	}

	total := (sum1d[0] + sum1d[n0-1]) / 2
	for i := 1; i < n0-1; i++ {
		total += sum1d[i] * float64(i%2+1)
	}
	return total * 2 * h0 / 3
}
