// Package cache provides artifact caching for rendered charts.
//
// Rendering is deterministic: the same coefficient table, assembly
// options, and theme always produce the same SVG or JSON bytes. The
// cache exploits that by keying artifacts on content hashes, so both
// the CLI (file backend) and the server (redis backend) can skip the
// whole pipeline on a hit.
//
// Keys form a two-level hierarchy. A chart key covers the table content
// plus assembly options (kind, alpha, ordering, dodge); an artifact key
// covers a chart hash plus output options (format, style, theme). The
// Keyer interface produces both so a server can scope them per tenant.
package cache

import (
	"context"
	"time"
)

// Cache stores rendered artifacts keyed by content hash.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ChartKeyOpts are the assembly options that affect a chart's content.
// Two requests with the same table hash and the same ChartKeyOpts yield
// the same chart.
type ChartKeyOpts struct {
	Kind          string   `json:"kind"`
	Alpha         float64  `json:"alpha"`
	TermOrder     []string `json:"term_order,omitempty"`
	ModelOrder    []string `json:"model_order,omitempty"`
	HideIntercept bool     `json:"hide_intercept,omitempty"`
	Vertical      bool     `json:"vertical,omitempty"`
	Dodge         float64  `json:"dodge,omitempty"`
}

// ArtifactKeyOpts are the output options that affect rendered bytes for
// a fixed chart.
type ArtifactKeyOpts struct {
	Format    string `json:"format"` // "svg" or "json"
	Style     string `json:"style,omitempty"`
	ThemeHash string `json:"theme_hash,omitempty"`
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// ChartKey generates a key for an assembled chart given the hash of
	// its input table and the assembly options.
	ChartKey(tableHash string, opts ChartKeyOpts) string

	// ArtifactKey generates a key for rendered output given the hash of
	// the chart and the output options.
	ArtifactKey(chartHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ChartKey generates a key of the form chart:<hash>.
func (k *DefaultKeyer) ChartKey(tableHash string, opts ChartKeyOpts) string {
	return hashKey("chart", tableHash, opts)
}

// ArtifactKey generates a key of the form artifact:<hash>.
func (k *DefaultKeyer) ArtifactKey(chartHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", chartHash, opts)
}
