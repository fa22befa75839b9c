package grid

import (
	"math"
	"testing"
)

func TestAxis_LinearPoints(t *testing.T) {
	a := NewAxis(0, 1, 5, Linear)

	if got := a.Step(); math.Abs(got-0.25) > 1e-15 {
		t.Errorf("expected step 0.25, got %v", got)
	}
	for i, want := range []float64{0, 0.25, 0.5, 0.75, 1} {
		if got := a.Point(i); math.Abs(got-want) > 1e-15 {
			t.Errorf("point %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestAxis_LogePoints(t *testing.T) {
	a := NewAxis(1, math.Exp(4), 5, Loge)

	if got := a.Step(); math.Abs(got-1) > 1e-12 {
		t.Errorf("expected unit step in ln(x), got %v", got)
	}
	for i := 0; i < 5; i++ {
		want := math.Exp(float64(i))
		if got := a.Point(i); math.Abs(got-want)/want > 1e-12 {
			t.Errorf("point %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestAxis_RefinedKeepsCoordinates(t *testing.T) {
	for _, spacing := range []Spacing{Linear, Loge} {
		a := NewAxis(1, 9, 5, spacing)
		r := a.Refined(9)

		if r.NPoints != 9 {
			t.Fatalf("%v: expected 9 points, got %d", spacing, r.NPoints)
		}
		for i := 0; i < a.NPoints; i++ {
			old, refined := a.Point(i), r.Point(2*i)
			if math.Abs(old-refined) > 1e-12*math.Abs(old) {
				t.Errorf("%v: point %d moved: %v -> %v", spacing, i, old, refined)
			}
		}
	}
}

func TestAxis_RefinedNoOp(t *testing.T) {
	a := NewAxis(0, 1, 5, Linear)
	if got := a.Refined(5); got != a {
		t.Errorf("no-op refinement changed the axis: %+v", got)
	}
}

func TestAxis_RefinedRejectsBadCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a non-doubling point count")
		}
	}()
	NewAxis(0, 1, 5, Linear).Refined(7)
}

func TestValidPointCount(t *testing.T) {
	for _, np := range []int{3, 5, 9, 17, 33, 1025} {
		if !ValidPointCount(np) {
			t.Errorf("expected %d to be valid", np)
		}
	}
	for _, np := range []int{0, 1, 2, 4, 6, 7, 10, 1024} {
		if ValidPointCount(np) {
			t.Errorf("expected %d to be invalid", np)
		}
	}
}

func TestGrid_Accessors(t *testing.T) {
	g := New(
		NewAxis(0, 1, 5, Linear),
		NewAxis(0, 2, 9, Linear),
	)

	if g.NPoints(0) != 5 || g.NPoints(1) != 9 {
		t.Errorf("unexpected point counts: %d, %d", g.NPoints(0), g.NPoints(1))
	}
	if math.Abs(g.Step(1)-0.25) > 1e-15 {
		t.Errorf("expected axis 1 step 0.25, got %v", g.Step(1))
	}
	if math.Abs(g.Point(1, 4)-1) > 1e-15 {
		t.Errorf("expected midpoint 1, got %v", g.Point(1, 4))
	}
}
