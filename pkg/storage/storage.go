// Package storage persists rendered drawings under caller-chosen ids.
//
// Every compiled drawing is keyed by a drawing id and a format ("dxf",
// "svg", "json"). The server generates a UUID when the caller brings none.
// Backends:
//
//   - [FileStore]: one file per artifact, named <id>.<format>
//   - [MemoryStore]: process-local map, for tests and one-shot servers
//   - [RedisStore]: one key per artifact, drawing:{id}:{format}, with a TTL
//   - [MongoStore]: one document per id and format, upserted
//   - [SQLiteStore]: one row per id and format in a single database file
//
// All backends validate ids with [errors.ValidateDrawingID] and report a
// missing artifact with an [errors.ErrCodeNotFound] error. Backend failures
// surface as [errors.ErrCodeSinkFailure]; network backends additionally mark
// connection and timeout failures with [cache.Retryable].
package storage

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/matzehuels/floorcad/pkg/cache"
	"github.com/matzehuels/floorcad/pkg/errors"
)

// Artifact is one stored rendering of a drawing.
type Artifact struct {
	ID        string    `json:"id" bson:"id"`
	Format    string    `json:"format" bson:"format"`
	Data      []byte    `json:"data" bson:"data"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ContentType returns the MIME type of the artifact.
func (a *Artifact) ContentType() string { return ContentType(a.Format) }

// Filename returns the download name, e.g. floor_plan_42.dxf.
func (a *Artifact) Filename() string { return "floor_plan_" + a.ID + "." + a.Format }

// Store persists artifacts. Implementations are safe for concurrent use.
type Store interface {
	// Put stores a, replacing any artifact with the same id and format.
	Put(ctx context.Context, a *Artifact) error
	// Get returns the artifact for id and format.
	Get(ctx context.Context, id, format string) (*Artifact, error)
	// List returns the formats stored for id in sorted order. An unknown id
	// yields an empty list.
	List(ctx context.Context, id string) ([]string, error)
	// Delete removes every artifact of id.
	Delete(ctx context.Context, id string) error
	Close() error
}

// ContentType maps an artifact format to its MIME type.
func ContentType(format string) string {
	switch format {
	case "dxf":
		return "application/dxf"
	case "svg":
		return "image/svg+xml"
	case "json":
		return "application/json"
	}
	return "application/octet-stream"
}

// ValidateFormat checks that format is a short lowercase token usable in file
// names and keys.
func ValidateFormat(format string) error {
	if format == "" || len(format) > 16 {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid artifact format %q", format)
	}
	for _, r := range format {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid artifact format %q", format)
		}
	}
	return nil
}

func validateKey(id, format string) error {
	if err := errors.ValidateDrawingID(id); err != nil {
		return err
	}
	return ValidateFormat(format)
}

func validateArtifact(a *Artifact) error {
	if a == nil {
		return errors.New(errors.ErrCodeInvalidInput, "artifact is required")
	}
	return validateKey(a.ID, a.Format)
}

func notFound(id, format string) error {
	return errors.New(errors.ErrCodeNotFound, "no %s artifact for drawing %q", format, id)
}

func sinkFailure(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeSinkFailure, err, format, args...)
}

// backendFailure reports err as a sink failure, marked retryable when
// transient is set. The SINK_FAILURE code stays reachable through Unwrap.
func backendFailure(err error, transient bool, format string, args ...any) error {
	failure := sinkFailure(err, format, args...)
	if transient {
		return cache.Retryable(failure)
	}
	return failure
}

// isNetworkError reports connection and timeout failures. Context
// cancellation is never one.
func isNetworkError(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) ||
		stderrors.Is(err, io.EOF) ||
		stderrors.Is(err, io.ErrUnexpectedEOF) ||
		stderrors.Is(err, syscall.ECONNREFUSED) ||
		stderrors.Is(err, syscall.ECONNRESET)
}
