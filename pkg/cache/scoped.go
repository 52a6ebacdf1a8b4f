package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects can share
// one cache backend without seeing each other's reports.
//
// Example usage:
//
//	// Per-project keys on a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:web:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ReportKey generates a prefixed report key.
func (k *ScopedKeyer) ReportKey(graphHash, configHash string) string {
	return k.prefix + k.inner.ReportKey(graphHash, configHash)
}

// ReportIDKey generates a prefixed report ID key.
func (k *ScopedKeyer) ReportIDKey(id string) string {
	return k.prefix + k.inner.ReportIDKey(id)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(viewHash, opts)
}
