// Package media holds the domain model shared by the extraction, resolution
// and streaming layers: platforms, quality ladders, metadata records and the
// error taxonomy.
package media

import "github.com/abdullahdev00/video-downloader/internal/platform"

// VideoMetadata is the descriptive record for one media URL. It is created on
// first successful extraction and may later be enriched in the background once
// a more authoritative probe completes.
type VideoMetadata struct {
	URL          string            `json:"url"`
	Platform     platform.Platform `json:"platform"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	Duration     string            `json:"duration"`
	Uploader     string            `json:"uploader"`
	ViewCount    int64             `json:"view_count,omitempty"`
	Qualities    Ladder            `json:"qualities"`

	// Synthetic marks a placeholder record produced by the classified
	// fallback when extraction was blocked upstream.
	Synthetic bool `json:"synthetic,omitempty"`
}

// ResolvedDownload is the ephemeral outcome of link resolution. It drives a
// single streaming request and is never persisted.
type ResolvedDownload struct {
	MediaURL  string
	Quality   string
	Container string

	// Sample is set when the resolver degraded to the configured sample
	// media URL instead of failing.
	Sample bool
}
