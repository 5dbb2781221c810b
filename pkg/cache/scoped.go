package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several servers or
// users can share one backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "sheetcalc:")
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

// ValuesKey generates a prefixed key for computed values.
func (k *ScopedKeyer) ValuesKey(workbookHash string) string {
	return k.prefix + k.inner.ValuesKey(workbookHash)
}

// GraphKey generates a prefixed key for a rendered graph.
func (k *ScopedKeyer) GraphKey(workbookHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(workbookHash, opts)
}
