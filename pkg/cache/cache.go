// Package cache provides content-addressed caching for compiled drawings and
// rendered artifacts.
//
// Compilation and rendering are pure, so their results can be reused
// whenever the same floor plan is compiled with the same options. Keys are
// derived from a SHA-256 hash of the canonical input by a [Keyer]:
//
//	drawing:<hash(plan, compile options)>      compiled drawing JSON
//	artifact:<hash(drawing, render options)>   rendered DXF/SVG/JSON bytes
//
// Three backends implement [Cache]:
//
//   - [FileCache]: JSON entries below a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the server
//   - [NullCache]: disables caching
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	DrawingTTL  = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache stores opaque byte values by key.
//
// Get reports a miss with ok == false and a nil error. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
