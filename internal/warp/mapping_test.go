package warp

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestApplyProjective(t *testing.T) {
	t.Parallel()
	m := Mapping{
		1.13411823, 4.38092511, 9.315785,
		1.37351153, 5.27648111, 1.60252762,
		7.76114426, 9.66312177, 2.61286966,
	}
	got := m.Apply(Point{0, 0})
	if !approx(got.X, 3.56534624, 1e-5) || !approx(got.Y, 0.61332092, 1e-5) {
		t.Fatalf("unexpected warped point %+v", got)
	}
}

func TestFromParamsRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		params []float32
		kind   Kind
	}{
		{[]float32{3, -2}, Translational},
		{[]float32{0.1, 0.05, -0.02, 0.2, 4, 5}, Affine},
		{[]float32{0.1, 0.05, -0.02, 0.2, 4, 5, 0.001, -0.002}, Projective},
	}
	for _, tc := range tests {
		m, kind, err := FromParams(tc.params)
		if err != nil {
			t.Fatalf("FromParams(%v): %v", tc.params, err)
		}
		if kind != tc.kind {
			t.Fatalf("FromParams(%v): expected kind %s, got %s", tc.params, tc.kind, kind)
		}
		if m.Kind() != tc.kind {
			t.Fatalf("Kind() of %v: expected %s, got %s", m, tc.kind, m.Kind())
		}
		got := m.Params(kind)
		if len(got) != len(tc.params) {
			t.Fatalf("Params: expected %d values, got %d", len(tc.params), len(got))
		}
		for i := range got {
			if !approx(float64(got[i]), float64(tc.params[i]), 1e-6) {
				t.Fatalf("Params[%d]: expected %v, got %v", i, tc.params[i], got[i])
			}
		}
	}
}

func TestFromParamsBadCount(t *testing.T) {
	t.Parallel()
	if _, _, err := FromParams([]float32{1, 2, 3}); !errors.Is(err, ErrParamCount) {
		t.Fatalf("expected ErrParamCount, got %v", err)
	}
}

func TestInverseAndCompose(t *testing.T) {
	t.Parallel()
	m, _, err := FromParams([]float32{0.1, 0.05, -0.02, 0.2, 4, 5, 0.001, -0.002})
	if err != nil {
		t.Fatal(err)
	}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	id := m.Compose(nil, &inv)
	if !approx(float64(id[0]), 1, 1e-5) || !approx(float64(id[4]), 1, 1e-5) || !approx(float64(id[2]), 0, 1e-4) {
		t.Fatalf("m·m⁻¹ is not the identity: %v", id)
	}

	if _, err := (Mapping{}).Inverse(); !errors.Is(err, ErrSingular) {
		t.Fatalf("expected ErrSingular for zero matrix, got %v", err)
	}
}

func TestComposeShifts(t *testing.T) {
	t.Parallel()
	a := Shift(1, 2)
	b := Shift(3, -1)
	got := a.Compose(nil, &b)
	if got != Shift(4, 1) {
		t.Fatalf("expected shift(4,1), got %v", got)
	}
	if !Identity().Compose(nil, nil).IsIdentity() {
		t.Fatal("identity composed with nothing should stay identity")
	}
}

func TestRescale(t *testing.T) {
	t.Parallel()
	m := Shift(2, 3).Rescale(0.5)
	p := m.Apply(Point{10, 10})
	// Shift estimated at half resolution doubles at full resolution.
	if !approx(p.X, 14, 1e-5) || !approx(p.Y, 16, 1e-5) {
		t.Fatalf("unexpected rescaled point %+v", p)
	}
}

func TestExtentOfShift(t *testing.T) {
	t.Parallel()
	lo, hi, err := Shift(2, 0).Extent(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	// The destination sees the source two columns to the left.
	if !approx(lo.X, -2, 1e-6) || !approx(hi.X, 2, 1e-6) || !approx(lo.Y, 0, 1e-6) || !approx(hi.Y, 4, 1e-6) {
		t.Fatalf("unexpected extent lo=%+v hi=%+v", lo, hi)
	}
}

func TestMaximumExtent(t *testing.T) {
	t.Parallel()
	maps := []Mapping{Identity(), Shift(-1, 0), Shift(-2, 0)}
	extent, offset, err := MaximumExtent(maps, []Size{{W: 4, H: 4}})
	if err != nil {
		t.Fatal(err)
	}
	if !approx(extent.X, 6, 1e-6) || !approx(extent.Y, 4, 1e-6) {
		t.Fatalf("unexpected extent %+v", extent)
	}
	if offset != Shift(0, 0) {
		t.Fatalf("unexpected offset %v", offset)
	}

	if _, _, err := MaximumExtent(maps, []Size{{4, 4}, {4, 4}}); err == nil {
		t.Fatal("expected error for mismatched sizes")
	}
}

func TestFromCorrespondences(t *testing.T) {
	t.Parallel()
	src := [4]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	dst := [4]Point{{1, 2}, {21, 2}, {21, 22}, {1, 22}}
	m, err := FromCorrespondences(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	for i := range src {
		got := m.Apply(src[i])
		if !approx(got.X, dst[i].X, 1e-4) || !approx(got.Y, dst[i].Y, 1e-4) {
			t.Fatalf("point %d: expected %+v, got %+v", i, dst[i], got)
		}
	}
	if m.Kind() != Affine {
		t.Fatalf("scale+shift should be affine, got %s", m.Kind())
	}

	collinear := [4]Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	if _, err := FromCorrespondences(collinear, dst); err == nil {
		t.Fatal("expected error for degenerate correspondences")
	}
}
