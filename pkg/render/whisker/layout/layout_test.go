package layout

import (
	"math"
	"testing"

	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/coeff/transform"
)

func orderedTable(t *testing.T, rows ...coeff.Row) (*coeff.Table, transform.Ordering) {
	t.Helper()
	tbl := coeff.MustTable(rows...)
	resolved, err := transform.ResolveCI(tbl, 0.05)
	if err != nil {
		t.Fatalf("ResolveCI() error = %v", err)
	}
	ordered, ord, err := transform.Order(resolved, nil, nil)
	if err != nil {
		t.Fatalf("Order() error = %v", err)
	}
	return ordered, ord
}

func TestBuild_SingleModelPositions(t *testing.T) {
	tbl, ord := orderedTable(t,
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
		coeff.NewRow("x2", -0.3).WithStdErr(0.2),
	)

	l := Build(tbl, ord, Options{})

	if len(l.Marks) != 2 {
		t.Fatalf("marks = %d, want 2", len(l.Marks))
	}
	// First-listed predictor sits at the bottom (y = 0).
	if m := l.Marks[0]; m.Term != "x1" || m.Y != 0 {
		t.Errorf("x1 mark = %+v, want y = 0", m)
	}
	if m := l.Marks[1]; m.Term != "x2" || m.Y != 1 {
		t.Errorf("x2 mark = %+v, want y = 1", m)
	}
}

func TestBuild_DodgedPositionsSymmetric(t *testing.T) {
	tbl, ord := orderedTable(t,
		coeff.NewRow("x1", 0.5).WithStdErr(0.1).WithModel("A"),
		coeff.NewRow("x1", 0.7).WithStdErr(0.1).WithModel("B"),
	)

	l := Build(tbl, ord, Options{})

	if len(l.Marks) != 2 {
		t.Fatalf("marks = %d, want 2", len(l.Marks))
	}
	a, b := l.Marks[0], l.Marks[1]
	if a.Y+b.Y != 0 {
		t.Errorf("dodged positions not symmetric around row center: %v, %v", a.Y, b.Y)
	}
	if a.Y == b.Y {
		t.Error("models share a position; dodging had no effect")
	}
}

func TestBuild_FacetedMode(t *testing.T) {
	tbl, ord := orderedTable(t,
		coeff.NewRow("x1", 0.5).WithStdErr(0.1).WithModel("A"),
		coeff.NewRow("x2", -0.3).WithStdErr(0.2).WithModel("A"),
		coeff.NewRow("x1", 0.6).WithStdErr(0.1).WithModel("B"),
		coeff.NewRow("x2", -0.1).WithStdErr(0.2).WithModel("B"),
	)

	l := Build(tbl, ord, Options{Faceted: true})

	for _, m := range l.Marks {
		if m.Facet != m.TermRow {
			t.Errorf("mark (%s, %s): facet = %d, want term row %d", m.Term, m.Model, m.Facet, m.TermRow)
		}
	}
	// Within a facet, first model occupies the top row.
	for _, m := range l.Marks {
		wantY := float64(len(ord.Models) - 1 - m.ModelRank)
		if m.Y != wantY {
			t.Errorf("mark (%s, %s): y = %v, want %v", m.Term, m.Model, m.Y, wantY)
		}
	}
}

func TestBuild_XRangeIncludesZero(t *testing.T) {
	tbl, ord := orderedTable(t,
		coeff.NewRow("x1", 5.0).WithStdErr(0.5),
	)

	l := Build(tbl, ord, Options{})
	if l.XMin > 0 {
		t.Errorf("XMin = %v, zero reference line outside range", l.XMin)
	}
	if l.XMax < l.Marks[0].High {
		t.Errorf("XMax = %v, whisker end %v outside range", l.XMax, l.Marks[0].High)
	}
}

func TestBuild_PlaceholderExcludedFromRange(t *testing.T) {
	tbl := coeff.MustTable(
		coeff.NewRow("x", 1.0).WithBounds(0.5, 1.5).WithModel("A"),
		coeff.Placeholder("y", "A", ""),
	)
	ordered, ord, err := transform.Order(tbl, nil, nil)
	if err != nil {
		t.Fatalf("Order() error = %v", err)
	}

	l := Build(ordered, ord, Options{})
	if math.IsNaN(l.XMin) || math.IsNaN(l.XMax) {
		t.Errorf("placeholder corrupted range: [%v, %v]", l.XMin, l.XMax)
	}
	var found bool
	for _, m := range l.Marks {
		if m.Placeholder {
			found = true
		}
	}
	if !found {
		t.Error("placeholder mark missing from layout")
	}
}

func TestDodgeOffsets(t *testing.T) {
	tests := []struct {
		k int
		d float64
	}{
		{1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0.3},
	}

	for _, tt := range tests {
		offsets := DodgeOffsets(tt.k, tt.d)
		if len(offsets) != tt.k {
			t.Fatalf("k=%d: len = %d", tt.k, len(offsets))
		}

		// Offsets sum to zero.
		var sum float64
		for _, o := range offsets {
			sum += o
		}
		if math.Abs(sum) > 1e-12 {
			t.Errorf("k=%d: offset sum = %v, want 0", tt.k, sum)
		}

		// Symmetric pairs around zero.
		for i := range offsets {
			if got := offsets[i] + offsets[tt.k-1-i]; math.Abs(got) > 1e-12 {
				t.Errorf("k=%d: offsets[%d]+offsets[%d] = %v, want 0", tt.k, i, tt.k-1-i, got)
			}
		}
	}
}

func TestDodgeOffsets_SingleModelZero(t *testing.T) {
	offsets := DodgeOffsets(1, 0.5)
	if len(offsets) != 1 || offsets[0] != 0 {
		t.Errorf("DodgeOffsets(1) = %v, want [0]", offsets)
	}
}

func TestDodgeOffsets_Deterministic(t *testing.T) {
	a := DodgeOffsets(4, 0.2)
	b := DodgeOffsets(4, 0.2)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("offsets differ across calls: %v vs %v", a, b)
		}
	}
}
