package sink

import (
	"strings"
	"testing"

	"github.com/plotkit/dotwhisker/pkg/chart"
	"github.com/plotkit/dotwhisker/pkg/coeff"
	"github.com/plotkit/dotwhisker/pkg/coeff/transform"
	"github.com/plotkit/dotwhisker/pkg/render/whisker/layout"
	"github.com/plotkit/dotwhisker/pkg/render/whisker/styles"
	"github.com/plotkit/dotwhisker/pkg/theme"
)

func testChart(t *testing.T, kind string, faceted bool, rows ...coeff.Row) *chart.Chart {
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
	if faceted {
		if ordered, err = transform.BuildGrid(ordered, ord); err != nil {
			t.Fatalf("BuildGrid() error = %v", err)
		}
	}
	geom := layout.Build(ordered, ord, layout.Options{Faceted: faceted})
	return chart.New(kind, ordered, geom, 0.05)
}

func TestRenderSVG_WellFormed(t *testing.T) {
	c := testChart(t, chart.KindPlot, false,
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
		coeff.NewRow("x2", -0.3).WithStdErr(0.2),
	)

	svg := string(RenderSVG(c, theme.Default()))

	if !strings.HasPrefix(svg, "<svg xmlns=") {
		t.Errorf("missing svg root: %.60s", svg)
	}
	if !strings.HasSuffix(strings.TrimSpace(svg), "</svg>") {
		t.Error("unterminated svg document")
	}
	for _, term := range []string{"x1", "x2"} {
		if !strings.Contains(svg, ">"+term+"<") {
			t.Errorf("missing term label %q", term)
		}
	}
	if got, want := strings.Count(svg, "<circle"), 2; got != want {
		t.Errorf("dot count = %d, want %d", got, want)
	}
}

func TestRenderSVG_ZeroLine(t *testing.T) {
	c := testChart(t, chart.KindPlot, false,
		coeff.NewRow("x1", 0.5).WithStdErr(0.3),
	)

	svg := string(RenderSVG(c, theme.Default()))
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("zero reference line missing")
	}

	th := theme.Default()
	th.ZeroLine = ""
	svg = string(RenderSVG(c, th))
	if strings.Contains(svg, `stroke-dasharray="4 3"`) {
		t.Error("zero line rendered despite empty ZeroLine")
	}
}

func TestRenderSVG_PlaceholdersSkipped(t *testing.T) {
	c := testChart(t, chart.KindSmallMultiple, true,
		coeff.NewRow("x", 0.5).WithStdErr(0.1).WithModel("A"),
		coeff.NewRow("y", 0.2).WithStdErr(0.1).WithModel("A"),
		coeff.NewRow("x", 0.6).WithStdErr(0.1).WithModel("B"),
	)

	svg := string(RenderSVG(c, theme.Default()))
	// 4 grid cells, 3 real marks: exactly 3 dots.
	if got, want := strings.Count(svg, "<circle"), 3; got != want {
		t.Errorf("dot count = %d, want %d (placeholder must not render)", got, want)
	}
	// Both facet titles render even though B lacks term y.
	for _, facet := range []string{"x", "y"} {
		if !strings.Contains(svg, ">"+facet+"<") {
			t.Errorf("missing facet title %q", facet)
		}
	}
}

func TestRenderSVG_LegendForMultipleModels(t *testing.T) {
	c := testChart(t, chart.KindPlot, false,
		coeff.NewRow("x", 0.5).WithStdErr(0.1).WithModel("ols"),
		coeff.NewRow("x", 0.7).WithStdErr(0.1).WithModel("logit"),
	)

	svg := string(RenderSVG(c, theme.Default()))
	if !strings.Contains(svg, ">ols<") || !strings.Contains(svg, ">logit<") {
		t.Error("legend entries missing")
	}

	svg = string(RenderSVG(c, theme.Default(), WithoutLegend()))
	if strings.Contains(svg, ">ols<") {
		t.Error("legend rendered despite WithoutLegend")
	}
}

func TestRenderSVG_MinimalStyle(t *testing.T) {
	c := testChart(t, chart.KindPlot, false,
		coeff.NewRow("x", 0.5).WithStdErr(0.1),
	)

	classic := RenderSVG(c, theme.Default())
	minimal := RenderSVG(c, theme.Default(), WithStyle(styles.Minimal{}))
	if string(classic) == string(minimal) {
		t.Error("styles produce identical output")
	}
	// Minimal drops whisker caps: fewer line elements.
	if strings.Count(string(minimal), "<line") >= strings.Count(string(classic), "<line") {
		t.Error("minimal style should draw fewer lines than classic")
	}
}

func TestRenderSVG_Deterministic(t *testing.T) {
	c := testChart(t, chart.KindPlot, false,
		coeff.NewRow("x1", 0.5).WithStdErr(0.1).WithModel("A"),
		coeff.NewRow("x1", 0.6).WithStdErr(0.1).WithModel("B"),
	)

	a := RenderSVG(c, theme.Default())
	b := RenderSVG(c, theme.Default())
	if string(a) != string(b) {
		t.Error("same chart rendered differently across calls")
	}
}

func TestRenderSVG_EscapesLabels(t *testing.T) {
	c := testChart(t, chart.KindPlot, false,
		coeff.NewRow("a<b", 0.5).WithStdErr(0.1),
	)

	svg := string(RenderSVG(c, theme.Default()))
	if strings.Contains(svg, ">a<b<") {
		t.Error("unescaped label in SVG output")
	}
	if !strings.Contains(svg, "a&lt;b") {
		t.Error("escaped label missing")
	}
}

func TestRenderSVG_VerticalFlip(t *testing.T) {
	c := testChart(t, chart.KindPlot, false,
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
	)
	c.Vertical = true

	svg := string(RenderSVG(c, theme.Default()))
	if !strings.Contains(svg, "<circle") {
		t.Error("no marks in flipped chart")
	}
}

func TestRenderSVG_VerticalBrackets(t *testing.T) {
	c := testChart(t, chart.KindPlot, false,
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
		coeff.NewRow("x2", -0.3).WithStdErr(0.2),
		coeff.NewRow("x3", 0.1).WithStdErr(0.1),
	)
	c.Vertical = true
	c.Geometry.Brackets = append(c.Geometry.Brackets,
		layout.Bracket{Label: "Group", Y1: 0, Y2: 1})

	svg := string(RenderSVG(c, theme.Default()))

	// With the default 640x420 frame and 3 bands of 168.67px, the
	// bracket over rows 0..1 spans x 110..447.33; the spine runs
	// horizontally below the term labels.
	if !strings.Contains(svg, `<line x1="110.00" y1="402.00" x2="447.33" y2="402.00"`) {
		t.Error("horizontal bracket spine missing in flipped chart")
	}
	if !strings.Contains(svg, ">Group<") {
		t.Error("bracket label missing")
	}
	// The left-edge spine belongs to the horizontal orientation only.
	if strings.Contains(svg, `x1="14.00"`) {
		t.Error("bracket drawn on the left edge in flipped mode")
	}
}

func TestRenderJSON(t *testing.T) {
	c := testChart(t, chart.KindPlot, false,
		coeff.NewRow("x1", 0.5).WithStdErr(0.1),
	)

	data, err := RenderJSON(c)
	if err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}
	back, err := chart.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Kind != chart.KindPlot || len(back.Points) != 1 {
		t.Errorf("round trip lost data: %+v", back)
	}
}
