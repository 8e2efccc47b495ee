package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// deployments can share one Redis without seeing each other's entries.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "floorcad:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) DrawingKey(planHash string, opts DrawingKeyOpts) string {
	return k.prefix + k.inner.DrawingKey(planHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(drawingHash, opts)
}
