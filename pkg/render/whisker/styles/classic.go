// Package styles implements the visual styles available to the SVG sink.
package styles

import (
	"bytes"
	"fmt"
)

// Classic draws filled dots and capped whiskers, the look of a journal
// figure.
type Classic struct{}

// RenderDefs writes nothing; the classic style needs no shared defs.
func (Classic) RenderDefs(buf *bytes.Buffer) {}

// RenderWhisker draws the interval line with perpendicular end caps.
func (Classic) RenderWhisker(buf *bytes.Buffer, w Whisker) {
	if w.Vertical {
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1.5"/>`+"\n",
			w.Y, w.X1, w.Y, w.X2, w.Color)
		if w.Cap > 0 {
			fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1.5"/>`+"\n",
				w.Y-w.Cap, w.X1, w.Y+w.Cap, w.X1, w.Color)
			fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1.5"/>`+"\n",
				w.Y-w.Cap, w.X2, w.Y+w.Cap, w.X2, w.Color)
		}
		return
	}

	fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1.5"/>`+"\n",
		w.X1, w.Y, w.X2, w.Y, w.Color)
	if w.Cap > 0 {
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1.5"/>`+"\n",
			w.X1, w.Y-w.Cap, w.X1, w.Y+w.Cap, w.Color)
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1.5"/>`+"\n",
			w.X2, w.Y-w.Cap, w.X2, w.Y+w.Cap, w.Color)
	}
}

// RenderDot draws a filled circle at the point estimate.
func (Classic) RenderDot(buf *bytes.Buffer, d Dot) {
	fill := d.Color
	if d.Hollow {
		fill = "none"
	}
	fmt.Fprintf(buf, `  <circle id="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="1.2"/>`+"\n",
		d.ID, d.X, d.Y, d.R, fill, d.Color)
}

// RenderBracket draws the spine, end ticks, and a label centered on the
// span. The vertical label is rotated to read along the spine; the
// flipped one sits below it.
func (Classic) RenderBracket(buf *bytes.Buffer, b Bracket) {
	if b.Vertical {
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			b.Y1, b.X, b.Y2, b.X, b.Color)
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			b.Y1, b.X, b.Y1, b.X-b.Tick, b.Color)
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
			b.Y2, b.X, b.Y2, b.X-b.Tick, b.Color)

		cx := (b.Y1 + b.Y2) / 2
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
			cx, b.X+b.FontSize+2, b.Font, b.FontSize, b.Color, escape(b.Label))
		return
	}

	fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
		b.X, b.Y1, b.X, b.Y2, b.Color)
	fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
		b.X, b.Y1, b.X+b.Tick, b.Y1, b.Color)
	fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"/>`+"\n",
		b.X, b.Y2, b.X+b.Tick, b.Y2, b.Color)

	cy := (b.Y1 + b.Y2) / 2
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" transform="rotate(-90 %.2f %.2f)" text-anchor="middle" font-family="%s" font-size="%.1f" fill="%s">%s</text>`+"\n",
		b.X-6, cy, b.X-6, cy, b.Font, b.FontSize, b.Color, escape(b.Label))
}

// Minimal draws uncapped whiskers and smaller dots: a sparse look for
// dense multi-model charts.
type Minimal struct{}

func (Minimal) RenderDefs(buf *bytes.Buffer) {}

func (Minimal) RenderWhisker(buf *bytes.Buffer, w Whisker) {
	w.Cap = 0
	Classic{}.RenderWhisker(buf, w)
}

func (Minimal) RenderDot(buf *bytes.Buffer, d Dot) {
	d.R = d.R * 0.75
	Classic{}.RenderDot(buf, d)
}

func (Minimal) RenderBracket(buf *bytes.Buffer, b Bracket) {
	Classic{}.RenderBracket(buf, b)
}

// escape sanitizes text content for inline SVG.
func escape(s string) string {
	var out bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			out.WriteString("&amp;")
		case '<':
			out.WriteString("&lt;")
		case '>':
			out.WriteString("&gt;")
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

// Escape exposes SVG text escaping to the sink for axis labels.
func Escape(s string) string { return escape(s) }
