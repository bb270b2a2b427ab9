// Package snapshot persists serialized HTML of a rendered tree.
//
// The server's POST /snapshot handler writes the mirror's current HTML to a
// Store and GET /snapshot/{key} reads it back. Two stores exist: an
// in-memory one for development and tests, and an S3 one for anything that
// must outlive the process.
package snapshot

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/ripple/internal/config"
	"github.com/vango-dev/ripple/internal/errors"
)

// Store reads and writes snapshots by key.
type Store interface {
	// Put stores html under key, replacing any previous snapshot.
	Put(ctx context.Context, key string, html []byte) error

	// Get returns the snapshot stored under key. A missing key is reported
	// as E502.
	Get(ctx context.Context, key string) ([]byte, error)
}

// NewKey returns a fresh snapshot key: a sortable UTC timestamp followed by
// a random suffix.
func NewKey(now time.Time) string {
	return now.UTC().Format("20060102T150405Z") + "-" + uuid.NewString()[:8]
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidKey reports whether key is safe to use as an object name.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Open builds the store cfg selects. It returns a nil Store for the none
// backend.
func Open(cfg config.SnapshotConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMemory, "":
		return NewMemoryStore(), nil
	case config.BackendS3:
		return NewS3Store(NewS3Client(cfg), cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, errors.New(errors.ErrConfigInvalid).
			WithDetail("snapshot.backend: unknown backend " + cfg.Backend)
	}
}

func missing(key string) error {
	return errors.New(errors.ErrSnapshotMissing).WithDetail(key)
}
