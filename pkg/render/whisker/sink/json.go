package sink

import "github.com/plotkit/dotwhisker/pkg/chart"

// RenderJSON serializes a chart for consumption by an external charting
// layer: the final tidy table, aesthetic mapping, and annotation
// instructions in one document.
func RenderJSON(c *chart.Chart) ([]byte, error) {
	return c.Marshal()
}
