package transform

import (
	"math"
	"testing"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/errors"
)

const tol = 1e-4

func TestCriticalValue(t *testing.T) {
	tests := []struct {
		alpha float64
		want  float64
	}{
		{0.05, 1.95996},
		{0.10, 1.64485},
		{0.01, 2.57583},
		{0.32, 0.99446},
	}

	for _, tt := range tests {
		z, err := CriticalValue(tt.alpha)
		if err != nil {
			t.Fatalf("CriticalValue(%v) error = %v", tt.alpha, err)
		}
		if math.Abs(z-tt.want) > tol {
			t.Errorf("CriticalValue(%v) = %v, want %v", tt.alpha, z, tt.want)
		}
	}
}

func TestCriticalValue_InvalidAlpha(t *testing.T) {
	for _, alpha := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		if _, err := CriticalValue(alpha); !errors.Is(err, errors.ErrCodeInvalidParameter) {
			t.Errorf("CriticalValue(%v) error = %v, want INVALID_PARAMETER", alpha, err)
		}
	}
}

func TestResolveCI_StdErrPath(t *testing.T) {
	tbl := coeff.MustTable(
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
		coeff.NewRow("x2", -0.3).WithStdErr(0.2),
	)

	out, err := ResolveCI(tbl, 0.05)
	if err != nil {
		t.Fatalf("ResolveCI() error = %v", err)
	}

	x1 := out.Row(0)
	if math.Abs(x1.Low-0.304) > 1e-3 || math.Abs(x1.High-0.696) > 1e-3 {
		t.Errorf("x1 bounds = (%v, %v), want (~0.304, ~0.696)", x1.Low, x1.High)
	}
	x2 := out.Row(1)
	if math.Abs(x2.Low-(-0.692)) > 1e-3 || math.Abs(x2.High-0.092) > 1e-3 {
		t.Errorf("x2 bounds = (%v, %v), want (~-0.692, ~0.092)", x2.Low, x2.High)
	}
}

func TestResolveCI_ExactIdentity(t *testing.T) {
	// Derived bounds must satisfy low = est - z*se and high = est + z*se
	// exactly, not approximately.
	est, se := 1.25, 0.4
	tbl := coeff.MustTable(coeff.NewRow("x", est).WithStdErr(se))

	out, err := ResolveCI(tbl, 0.10)
	if err != nil {
		t.Fatalf("ResolveCI() error = %v", err)
	}
	z, _ := CriticalValue(0.10)

	r := out.Row(0)
	if r.Low != est-z*se {
		t.Errorf("Low = %v, want %v", r.Low, est-z*se)
	}
	if r.High != est+z*se {
		t.Errorf("High = %v, want %v", r.High, est+z*se)
	}
}

func TestResolveCI_BoundsPassThrough(t *testing.T) {
	tbl := coeff.MustTable(coeff.NewRow("x", 0.5).WithBounds(0.2, 0.9))

	out, err := ResolveCI(tbl, 0.05)
	if err != nil {
		t.Fatalf("ResolveCI() error = %v", err)
	}
	r := out.Row(0)
	if r.Low != 0.2 || r.High != 0.9 {
		t.Errorf("bounds = (%v, %v), want (0.2, 0.9) unchanged", r.Low, r.High)
	}
}

func TestResolveCI_PlaceholderPassThrough(t *testing.T) {
	tbl := coeff.MustTable(coeff.Placeholder("z", "A", ""))

	out, err := ResolveCI(tbl, 0.05)
	if err != nil {
		t.Fatalf("ResolveCI() error = %v", err)
	}
	r := out.Row(0)
	if !coeff.IsNA(r.Low) || !coeff.IsNA(r.High) {
		t.Errorf("placeholder bounds = (%v, %v), want NA", r.Low, r.High)
	}
}

func TestResolveCI_DoesNotMutateInput(t *testing.T) {
	tbl := coeff.MustTable(coeff.NewRow("x", 0.5).WithStdErr(0.1))

	if _, err := ResolveCI(tbl, 0.05); err != nil {
		t.Fatalf("ResolveCI() error = %v", err)
	}
	if !coeff.IsNA(tbl.Row(0).Low) {
		t.Error("input table was mutated")
	}
}

func TestResolveCI_MissingInterval(t *testing.T) {
	tbl := &coeff.Table{}
	_ = tbl.Append(coeff.NewRow("x", 0.5)) // no stderr, no bounds

	if _, err := ResolveCI(tbl, 0.05); !errors.Is(err, errors.ErrCodeInputFormat) {
		t.Errorf("ResolveCI() error = %v, want INPUT_FORMAT", err)
	}
}
