// Package store persists extracted metadata and the download history. The
// core pipeline only reads and writes through these interfaces and never
// assumes exclusive access; concurrent writers are resolved last-write-wins
// with the ladder merge rule.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
)

// ErrNotFound is returned for lookups of absent records.
var ErrNotFound = errors.New("store: not found")

// MetadataStore caches VideoMetadata keyed by URL, at most one record per URL.
type MetadataStore interface {
	Get(ctx context.Context, url string) (*media.VideoMetadata, error)
	Put(ctx context.Context, meta *media.VideoMetadata) error
	// Merge folds incoming quality options into the cached record's ladder.
	// Merging against an absent record is a no-op.
	Merge(ctx context.Context, url string, incoming media.Ladder) error
}

// HistoryRecord is one resolved download, appended by the request layer.
type HistoryRecord struct {
	ID         uuid.UUID         `json:"id"`
	URL        string            `json:"url"`
	Platform   platform.Platform `json:"platform"`
	Title      string            `json:"title"`
	Quality    string            `json:"quality"`
	Container  string            `json:"container"`
	ResolvedAt time.Time         `json:"resolved_at"`
}

// HistoryStore keeps the download history, newest first.
type HistoryStore interface {
	Append(ctx context.Context, rec HistoryRecord) error
	List(ctx context.Context) ([]HistoryRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context) error
}
