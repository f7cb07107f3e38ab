// Package render provides visualization rendering for coefficient charts.
//
// # Overview
//
// This package contains the rendering pipeline that transforms ordered
// coefficient tables into visual output. All chart types share one
// geometry model and one SVG generator.
//
// # Whisker Charts
//
// The [whisker] subpackage renders dot-and-whisker charts: one row per
// predictor, a dot at the point estimate and a whisker spanning the
// confidence interval, with models dodged within rows or faceted into
// per-predictor panels.
//
// Key whisker subpackages:
//   - [whisker/layout]: Row positions, dodge offsets, bracket spans
//   - [whisker/sink]: Output formats (SVG, JSON)
//   - [whisker/styles]: Visual styles (classic, minimal)
package render
