package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating applications or
// versions that share one backend such as a Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "slngraph:")
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(dotHash, opts)
}
