// Package theme holds the cosmetic parameters of a rendered chart.
//
// Dodge spacing, whisker caps, bracket ticks, fonts, and colors are
// styling choices rather than correctness contracts, so they live in a
// configuration struct with documented defaults instead of package-level
// constants. Themes can be loaded from TOML files to restyle charts
// without code changes.
package theme

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/plotkit/dotwhisker/pkg/errors"
)

// Theme collects every tunable visual parameter.
type Theme struct {
	// Geometry (data units unless noted)
	DodgeIncrement float64 `toml:"dodge_increment"` // 0 = auto 1/(k+1)
	WhiskerCap     float64 `toml:"whisker_cap"`     // cap height as a fraction of the row band
	BracketTickLen float64 `toml:"bracket_tick_len"`
	DotRadius      float64 `toml:"dot_radius"` // pixels

	// Frame (pixels)
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	MarginLeft   float64 `toml:"margin_left"`
	MarginRight  float64 `toml:"margin_right"`
	MarginTop    float64 `toml:"margin_top"`
	MarginBottom float64 `toml:"margin_bottom"`

	// Typography
	FontFamily string  `toml:"font_family"`
	FontSize   float64 `toml:"font_size"`

	// Colors: Palette cycles per model; ZeroLine styles the reference
	// line at estimate zero. Empty ZeroLine disables the line.
	Palette  []string `toml:"palette"`
	ZeroLine string   `toml:"zero_line"`
	Axis     string   `toml:"axis"`
}

// Default returns the built-in theme.
func Default() Theme {
	return Theme{
		DodgeIncrement: 0, // auto
		WhiskerCap:     0.12,
		BracketTickLen: 0.02,
		DotRadius:      3.5,
		Width:          640,
		Height:         420,
		MarginLeft:     110,
		MarginRight:    24,
		MarginTop:      24,
		MarginBottom:   42,
		FontFamily:     "Helvetica, Arial, sans-serif",
		FontSize:       12,
		Palette: []string{
			"#1b6ca8", "#d1495b", "#66a182", "#edae49", "#59594a", "#8d5a97",
		},
		ZeroLine: "#9e9e9e",
		Axis:     "#333333",
	}
}

// Load reads a TOML theme file and overlays it on the defaults, so a
// theme file only needs to name the parameters it changes.
func Load(path string) (Theme, error) {
	t := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "read theme %s", path)
	}
	if err := toml.Unmarshal(data, &t); err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "parse theme %s", path)
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// Validate checks the theme for values that would break layout math.
func (t Theme) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidTheme, "frame must be positive, got %vx%v", t.Width, t.Height)
	}
	if t.DodgeIncrement < 0 {
		return errors.New(errors.ErrCodeInvalidTheme, "dodge_increment must be >= 0, got %v", t.DodgeIncrement)
	}
	if len(t.Palette) == 0 {
		return errors.New(errors.ErrCodeInvalidTheme, "palette must not be empty")
	}
	return nil
}

// Color returns the palette color for a model rank, cycling when there
// are more models than palette entries.
func (t Theme) Color(rank int) string {
	if rank < 0 {
		rank = 0
	}
	return t.Palette[rank%len(t.Palette)]
}
