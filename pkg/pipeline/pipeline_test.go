package pipeline

import (
	"math"
	"testing"

	"github.com/plotkit/dotwhisker/pkg/chart"
	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/coeff/tidy"
	"github.com/plotkit/dotwhisker/pkg/errors"
	"github.com/plotkit/dotwhisker/pkg/theme"
)

func twoTermTable(t *testing.T) *coeff.Table {
	t.Helper()
	return coeff.MustTable(
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
		coeff.NewRow("x2", -0.3).WithStdErr(0.2),
	)
}

func twoModelTable(t *testing.T) *coeff.Table {
	t.Helper()
	return coeff.MustTable(
		coeff.NewRow("x", 0.5).WithStdErr(0.1).WithModel("A"),
		coeff.NewRow("y", 0.2).WithStdErr(0.1).WithModel("A"),
		coeff.NewRow("z", -0.4).WithStdErr(0.2).WithModel("A"),
		coeff.NewRow("x", 0.6).WithStdErr(0.1).WithModel("B"),
		coeff.NewRow("y", 0.1).WithStdErr(0.1).WithModel("B"),
	)
}

func TestPlot_EndToEnd(t *testing.T) {
	c, err := Plot(tidy.FromTable(twoTermTable(t)), Options{Alpha: 0.05})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}

	// Display order is the reverse of input order.
	if c.Points[0].Term != "x2" || c.Points[1].Term != "x1" {
		t.Errorf("display order = [%s %s], want [x2 x1]", c.Points[0].Term, c.Points[1].Term)
	}

	x1 := c.Points[1]
	if math.Abs(*x1.Low-0.304) > 1e-3 || math.Abs(*x1.High-0.696) > 1e-3 {
		t.Errorf("x1 bounds = (%v, %v), want (~0.304, ~0.696)", *x1.Low, *x1.High)
	}
	x2 := c.Points[0]
	if math.Abs(*x2.Low-(-0.692)) > 1e-3 || math.Abs(*x2.High-0.092) > 1e-3 {
		t.Errorf("x2 bounds = (%v, %v), want (~-0.692, ~0.092)", *x2.Low, *x2.High)
	}
}

func TestPlot_DefaultAlpha(t *testing.T) {
	c, err := Plot(tidy.FromTable(twoTermTable(t)), Options{})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	if c.Alpha != 0.05 {
		t.Errorf("Alpha = %v, want default 0.05", c.Alpha)
	}
}

func TestPlot_InvalidAlpha(t *testing.T) {
	_, err := Plot(tidy.FromTable(twoTermTable(t)), Options{Alpha: 1.2})
	if !errors.Is(err, errors.ErrCodeInvalidParameter) {
		t.Errorf("Plot() error = %v, want INVALID_PARAMETER", err)
	}
}

func TestPlot_HideIntercept(t *testing.T) {
	tbl := coeff.MustTable(
		coeff.NewRow("(Intercept)", 2.0).WithStdErr(0.5),
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
	)

	c, err := Plot(tidy.FromTable(tbl), Options{HideIntercept: true})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	if len(c.Points) != 1 || c.Points[0].Term != "x1" {
		t.Errorf("points = %+v, want only x1", c.Points)
	}
}

func TestPlot_Relabel(t *testing.T) {
	c, err := Plot(tidy.FromTable(twoTermTable(t)), Options{
		Relabel: map[string]string{"x1": "Education"},
	})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	if c.Points[1].Term != "Education" {
		t.Errorf("relabel not applied: %+v", c.Points)
	}
}

func TestPlot_RelabelWithExplicitOrder(t *testing.T) {
	// Order may be stated in the original names even when relabeling.
	c, err := Plot(tidy.FromTable(twoTermTable(t)), Options{
		TermOrder: []string{"x2", "x1"},
		Relabel:   map[string]string{"x1": "Education"},
	})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	// x2 first in canonical order → renders at the bottom → listed last.
	if c.Points[0].Term != "Education" {
		t.Errorf("points = %+v, want Education on top", c.Points)
	}
}

func TestSecretWeapon(t *testing.T) {
	c, err := SecretWeapon(tidy.FromTable(twoModelTable(t)), "x", Options{})
	if err != nil {
		t.Fatalf("SecretWeapon() error = %v", err)
	}

	if c.Kind != chart.KindSecretWeapon {
		t.Errorf("Kind = %q", c.Kind)
	}
	// Models become the rows.
	if len(c.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(c.Points))
	}
	terms := []string{c.Points[0].Term, c.Points[1].Term}
	if terms[0] != "B" || terms[1] != "A" {
		t.Errorf("model rows = %v, want [B A] (first model at the bottom)", terms)
	}
}

func dodgeGap(c *chart.Chart, term string) float64 {
	var ya, yb float64
	for _, m := range c.Geometry.Marks {
		if m.Term != term {
			continue
		}
		switch m.Model {
		case "A":
			ya = m.Y
		case "B":
			yb = m.Y
		}
	}
	return math.Abs(ya - yb)
}

func TestPlot_ThemeDodgeIncrement(t *testing.T) {
	th := theme.Default()
	th.DodgeIncrement = 0.4

	c, err := Plot(tidy.FromTable(twoModelTable(t)), Options{Theme: th})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	if gap := dodgeGap(c, "x"); math.Abs(gap-0.4) > 1e-9 {
		t.Errorf("dodge gap = %v, want 0.4 from the theme", gap)
	}
}

func TestPlot_DodgeOptionOverridesTheme(t *testing.T) {
	th := theme.Default()
	th.DodgeIncrement = 0.4

	c, err := Plot(tidy.FromTable(twoModelTable(t)), Options{Theme: th, Dodge: 0.2})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	if gap := dodgeGap(c, "x"); math.Abs(gap-0.2) > 1e-9 {
		t.Errorf("dodge gap = %v, want explicit 0.2", gap)
	}
}

func TestSecretWeapon_InsufficientModels(t *testing.T) {
	_, err := SecretWeapon(tidy.FromTable(twoTermTable(t)), "x1", Options{})
	if !errors.Is(err, errors.ErrCodeInsufficientModels) {
		t.Errorf("SecretWeapon() error = %v, want INSUFFICIENT_MODELS", err)
	}
}

func TestSecretWeapon_UnlabeledModelRows(t *testing.T) {
	// "" and "A" count as two distinct models, but an unlabeled row
	// cannot become a term row.
	tbl := coeff.MustTable(
		coeff.NewRow("x", 0.5).WithStdErr(0.1),
		coeff.NewRow("x", 0.6).WithStdErr(0.1).WithModel("A"),
	)
	_, err := SecretWeapon(tidy.FromTable(tbl), "x", Options{})
	if !errors.Is(err, errors.ErrCodeInputFormat) {
		t.Errorf("SecretWeapon() error = %v, want INPUT_FORMAT", err)
	}
}

func TestSecretWeapon_UnknownTerm(t *testing.T) {
	_, err := SecretWeapon(tidy.FromTable(twoModelTable(t)), "nope", Options{})
	if !errors.Is(err, errors.ErrCodeUnknownTerm) {
		t.Errorf("SecretWeapon() error = %v, want UNKNOWN_TERM", err)
	}
}

func TestSmallMultiple_GridCompletion(t *testing.T) {
	// 2 models x 3 terms, model B missing term z: grid has 6 rows, one
	// placeholder for (z, B).
	c, err := SmallMultiple(tidy.FromTable(twoModelTable(t)), Options{})
	if err != nil {
		t.Fatalf("SmallMultiple() error = %v", err)
	}

	if len(c.Points) != 6 {
		t.Fatalf("points = %d, want 6", len(c.Points))
	}
	placeholders := 0
	for _, p := range c.Points {
		if p.Estimate == nil {
			placeholders++
			if p.Term != "z" || p.Model != "B" {
				t.Errorf("unexpected placeholder (%s, %s)", p.Term, p.Model)
			}
		}
	}
	if placeholders != 1 {
		t.Errorf("placeholders = %d, want 1", placeholders)
	}
	if !c.Geometry.Faceted {
		t.Error("small multiple geometry not faceted")
	}
}

func TestSmallMultiple_InsufficientModels(t *testing.T) {
	_, err := SmallMultiple(tidy.FromTable(twoTermTable(t)), Options{})
	if !errors.Is(err, errors.ErrCodeInsufficientModels) {
		t.Errorf("SmallMultiple() error = %v, want INSUFFICIENT_MODELS", err)
	}
}

func TestAddBrackets(t *testing.T) {
	tbl := coeff.MustTable(
		coeff.NewRow("age", 0.5).WithStdErr(0.1),
		coeff.NewRow("gender", 0.2).WithStdErr(0.1),
		coeff.NewRow("income", -0.1).WithStdErr(0.1),
	)
	c, err := Plot(tidy.FromTable(tbl), Options{})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}

	c, err = AddBrackets(c, [][]string{
		{"Demographics", "age", "gender"},
		{"Economics", "income"},
	})
	if err != nil {
		t.Fatalf("AddBrackets() error = %v", err)
	}

	if len(c.Brackets) != 2 {
		t.Fatalf("brackets = %d, want 2", len(c.Brackets))
	}
	demo := c.Brackets[0]
	if demo.Y1 != 0 || demo.Y2 != 1 {
		t.Errorf("Demographics span = [%v, %v], want [0, 1]", demo.Y1, demo.Y2)
	}
}

func TestAddBrackets_UnknownTerm(t *testing.T) {
	c, err := Plot(tidy.FromTable(twoTermTable(t)), Options{})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}

	_, err = AddBrackets(c, [][]string{{"g", "ghost"}})
	if !errors.Is(err, errors.ErrCodeUnknownTerm) {
		t.Errorf("AddBrackets() error = %v, want UNKNOWN_TERM", err)
	}
}

func TestRunner_Stats(t *testing.T) {
	r, err := NewRunner(Options{})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if _, err := r.Plot(tidy.FromTable(twoModelTable(t))); err != nil {
		t.Fatalf("Plot() error = %v", err)
	}

	s := r.Stats()
	if s.Rows != 5 || s.Terms != 3 || s.Models != 2 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestPlot_ModelList(t *testing.T) {
	td := tidy.TidierFunc(func(model any) ([]coeff.Row, error) {
		est := model.(float64)
		return []coeff.Row{coeff.NewRow("x1", est).WithStdErr(0.1)}, nil
	})

	c, err := Plot(tidy.FromModels(0.5, 0.7), Options{Tidier: td})
	if err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	models := map[string]bool{}
	for _, p := range c.Points {
		models[p.Model] = true
	}
	if !models["Model 1"] || !models["Model 2"] {
		t.Errorf("positional model labels missing: %+v", c.Points)
	}
}
