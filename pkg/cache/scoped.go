package cache

// ScopedKeyer wraps a Keyer with a prefix, giving different server
// tenants or deployments separate cache namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every
// generated key. A nil inner keyer falls back to the default.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ChartKey generates a prefixed chart key.
func (k *ScopedKeyer) ChartKey(tableHash string, opts ChartKeyOpts) string {
	return k.prefix + k.inner.ChartKey(tableHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(chartHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(chartHash, opts)
}
