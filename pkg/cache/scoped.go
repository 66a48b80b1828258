package cache

// ScopedKeyer wraps a Keyer with a prefix so several servers or users can
// share one backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "masonry:")
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

func (k *ScopedKeyer) LayoutKey(tilesHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(tilesHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
