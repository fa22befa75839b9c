package quad

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/quadlab/internal/field"
	"github.com/san-kum/quadlab/internal/grid"
)

func TestIntegrate_ConstantField(t *testing.T) {
	for _, fast := range []bool{false, true} {
		opts := DefaultOptions()
		opts.FastDensityIncrease = fast

		s := NewSimpson2D(opts)
		res, err := s.Integrate(context.Background(),
			field.Func(func(x0, x1 float64) float64 { return 2.5 }),
			grid.Range{Min: 0, Max: 2}, grid.Range{Min: -1, Max: 1})
		if err != nil {
			t.Fatalf("fast=%t: unexpected error: %v", fast, err)
		}

		want := 2.5 * 2 * 2
		if math.Abs(res.Value-want) > 1e-12 {
			t.Errorf("fast=%t: expected %v, got %v", fast, want, res.Value)
		}
		if !res.Converged {
			t.Errorf("fast=%t: expected convergence", fast)
		}
		// the baseline pass plus one comparison pass
		if res.Iterations != 2 {
			t.Errorf("fast=%t: expected 2 iterations, got %d", fast, res.Iterations)
		}
	}
}

// Composite Simpson is exact for cubics, so the very first error check sees
// two estimates differing only by floating-point noise.
func TestIntegrate_CubicExact(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxError = 1e-6

	s := NewSimpson2D(opts)
	res, err := s.Integrate(context.Background(),
		field.Func(func(x0, x1 float64) float64 { return x0 * x0 * x0 * x1 * x1 * x1 }),
		grid.Range{Min: 0, Max: 2}, grid.Range{Min: 0, Max: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(res.Value-16) > 1e-9 {
		t.Errorf("expected 16, got %v", res.Value)
	}
	if res.Iterations != 2 {
		t.Errorf("expected convergence on the first check, got %d iterations", res.Iterations)
	}
}

func TestIntegrate_SmoothField(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxError = 1e-3

	e := math.Erf(3)
	want := math.Pi * e * e

	s := NewSimpson2D(opts)
	res, err := s.Integrate(context.Background(),
		field.Func(func(x0, x1 float64) float64 { return math.Exp(-(x0*x0 + x1*x1)) }),
		grid.Range{Min: -3, Max: 3}, grid.Range{Min: -3, Max: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(res.Value-want)/want > 1e-4 {
		t.Errorf("expected %v, got %v", want, res.Value)
	}
}

// The cache must make the evaluation count equal the number of distinct grid
// coordinates ever visited, which under nested refinement is exactly the
// final grid's point count.
func TestIntegrate_NoReevaluation(t *testing.T) {
	for _, fast := range []bool{false, true} {
		opts := DefaultOptions()
		opts.FastDensityIncrease = fast
		opts.MaxError = 1e-3

		counting := field.NewCounting(field.Func(func(x0, x1 float64) float64 {
			return math.Exp(-(x0*x0 + x1*x1))
		}))

		s := NewSimpson2D(opts)
		res, err := s.Integrate(context.Background(), counting,
			grid.Range{Min: -3, Max: 3}, grid.Range{Min: -3, Max: 3})
		if err != nil {
			t.Fatalf("fast=%t: unexpected error: %v", fast, err)
		}

		last := res.Trace[len(res.Trace)-1]
		if want := last.NP0 * last.NP1; counting.Calls() != want {
			t.Errorf("fast=%t: expected %d evaluations (one per final grid point), got %d",
				fast, want, counting.Calls())
		}
		if counting.Calls() != res.Evaluations {
			t.Errorf("fast=%t: result reports %d evaluations, field saw %d",
				fast, res.Evaluations, counting.Calls())
		}
	}
}

// 1/(x*y) is constant after the ln-substitution, so a log-spaced grid nails
// it on the first check; the linear-space run of the same field must agree.
func TestIntegrate_LogSpace(t *testing.T) {
	f := field.Func(func(x0, x1 float64) float64 { return 1 / (x0 * x1) })
	x := grid.Range{Min: 1, Max: math.Exp(2)}

	opts := DefaultOptions()
	opts.InLoge = true
	s := NewSimpson2D(opts)
	logRes, err := s.Integrate(context.Background(), f, x, x)
	if err != nil {
		t.Fatalf("log-space run failed: %v", err)
	}

	if math.Abs(logRes.Value-4) > 1e-9 {
		t.Errorf("expected 4, got %v", logRes.Value)
	}
	if logRes.Iterations != 2 {
		t.Errorf("expected convergence on the first check, got %d iterations", logRes.Iterations)
	}

	opts = DefaultOptions()
	opts.MaxIterations = 30
	opts.InitialNStep = 3
	opts.MaxError = 1e-3
	linRes, err := NewSimpson2D(opts).Integrate(context.Background(), f, x, x)
	if err != nil {
		t.Fatalf("linear-space run failed: %v", err)
	}

	if math.Abs(linRes.Value-logRes.Value)/logRes.Value > 1e-2 {
		t.Errorf("linear %v and log %v estimates disagree", linRes.Value, logRes.Value)
	}
}

func TestIntegrate_ZeroField(t *testing.T) {
	s := NewSimpson2D(DefaultOptions())
	res, err := s.Integrate(context.Background(),
		field.Func(func(x0, x1 float64) float64 { return 0 }),
		grid.Range{Min: 0, Max: 1}, grid.Range{Min: 0, Max: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Value != 0 {
		t.Errorf("expected exactly 0, got %v", res.Value)
	}
	if !res.Converged {
		t.Error("expected the degenerate short-circuit to count as converged")
	}
}

func TestIntegrate_NonConvergence(t *testing.T) {
	opts := Options{
		MaxIterations: 3,
		InitialNStep:  1,
		MaxError:      1e-9,
	}

	s := NewSimpson2D(opts)
	res, err := s.Integrate(context.Background(),
		field.Func(func(x0, x1 float64) float64 {
			return math.Sin(40*x0)*math.Sin(40*x1) + 1
		}),
		grid.Range{Min: 0, Max: 1}, grid.Range{Min: 0, Max: 1})

	var nc *ErrNotConverged
	if !errors.As(err, &nc) {
		t.Fatalf("expected *ErrNotConverged, got %v", err)
	}
	if nc.Iterations != 3 {
		t.Errorf("expected 3 exhausted iterations, got %d", nc.Iterations)
	}
	if nc.ErrEstimate <= opts.MaxError {
		t.Errorf("reported error estimate %v should exceed the tolerance", nc.ErrEstimate)
	}
	if res == nil || len(res.Trace) != 3 {
		t.Fatal("expected the partial trace to survive for diagnosis")
	}
	if res.Converged {
		t.Error("unconverged run must not be marked converged")
	}
	if res.Value != 0 {
		t.Errorf("unconverged run must not expose an estimate, got %v", res.Value)
	}
}

// Sequential refinement covers both axes once per cycle, axis 0 first; fast
// refinement doubles both every pass.
func TestIntegrate_RefinementCadence(t *testing.T) {
	osc := field.Func(func(x0, x1 float64) float64 {
		return math.Sin(40*x0)*math.Sin(40*x1) + 1
	})
	unit := grid.Range{Min: 0, Max: 1}

	opts := Options{MaxIterations: 5, InitialNStep: 1, MaxError: 1e-12}
	res, _ := NewSimpson2D(opts).Integrate(context.Background(), osc, unit, unit)

	wantSeq := [][2]int{{3, 3}, {5, 3}, {5, 5}, {9, 5}, {9, 9}}
	for i, want := range wantSeq {
		got := [2]int{res.Trace[i].NP0, res.Trace[i].NP1}
		if got != want {
			t.Errorf("sequential pass %d: expected grid %v, got %v", i, want, got)
		}
	}

	opts.MaxIterations = 3
	opts.FastDensityIncrease = true
	res, _ = NewSimpson2D(opts).Integrate(context.Background(), osc, unit, unit)

	wantFast := [][2]int{{3, 3}, {5, 5}, {9, 9}}
	for i, want := range wantFast {
		got := [2]int{res.Trace[i].NP0, res.Trace[i].NP1}
		if got != want {
			t.Errorf("fast pass %d: expected grid %v, got %v", i, want, got)
		}
	}
}

func TestIntegrate_ObserverSeesEveryPass(t *testing.T) {
	var seen []Iteration
	s := NewSimpson2D(DefaultOptions())
	s.AddObserver(ObserverFunc(func(it Iteration) { seen = append(seen, it) }))

	res, err := s.Integrate(context.Background(),
		field.Func(func(x0, x1 float64) float64 { return x0 + x1 }),
		grid.Range{Min: 0, Max: 1}, grid.Range{Min: 0, Max: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != len(res.Trace) {
		t.Fatalf("observer saw %d passes, trace has %d", len(seen), len(res.Trace))
	}
	if !math.IsNaN(seen[0].ErrPct) {
		t.Error("baseline pass should report no error estimate")
	}
}

func TestIntegrate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSimpson2D(DefaultOptions())
	_, err := s.Integrate(ctx,
		field.Func(func(x0, x1 float64) float64 { return 1 }),
		grid.Range{Min: 0, Max: 1}, grid.Range{Min: 0, Max: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIntegrate_RejectsBadOptions(t *testing.T) {
	cases := []Options{
		{MaxIterations: 1, InitialNStep: 2, MaxError: 0.1},
		{MaxIterations: 10, InitialNStep: 0, MaxError: 0.1},
		{MaxIterations: 10, InitialNStep: 2, MaxError: 0},
	}
	for i, opts := range cases {
		_, err := NewSimpson2D(opts).Integrate(context.Background(),
			field.Func(func(x0, x1 float64) float64 { return 1 }),
			grid.Range{Min: 0, Max: 1}, grid.Range{Min: 0, Max: 1})
		if err == nil {
			t.Errorf("case %d: expected an options error", i)
		}
	}
}
