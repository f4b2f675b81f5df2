package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/abdullahdev00/video-downloader/internal/fetch"
	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/utils/format"
)

// oEmbed endpoints per platform; %s receives the url-encoded media URL.
var oembedEndpoints = map[platform.Platform]string{
	platform.YouTube:     "https://www.youtube.com/oembed?format=json&url=%s",
	platform.TikTok:      "https://www.tiktok.com/oembed?url=%s",
	platform.Vimeo:       "https://vimeo.com/api/oembed.json?url=%s",
	platform.Dailymotion: "https://www.dailymotion.com/services/oembed?format=json&url=%s",
}

type oembedBody struct {
	Title        string  `json:"title"`
	AuthorName   string  `json:"author_name"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Duration     float64 `json:"duration"` // Vimeo only
}

// probeOEmbed issues a single bounded-timeout request to the platform's public
// oEmbed endpoint. The probe cannot see real streams, so a success carries the
// generic quality ladder.
func (e *Extractor) probeOEmbed(ctx context.Context, mediaURL string, plat platform.Platform) (*media.VideoMetadata, error) {
	endpoint, ok := oembedEndpoints[plat]
	if !ok {
		return nil, errTierSkipped
	}

	probeCtx, cancel := context.WithTimeout(ctx, e.Opts.probeTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet,
		fmt.Sprintf(endpoint, url.QueryEscape(mediaURL)), nil)
	if err != nil {
		return nil, err
	}
	fetch.BrowserHeaders(req, "")

	resp, err := e.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oembed status %d", resp.StatusCode)
	}

	var body oembedBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("oembed decode: %w", err)
	}
	if body.Title == "" {
		return nil, fmt.Errorf("oembed response carries no title")
	}

	meta := &media.VideoMetadata{
		URL:          mediaURL,
		Platform:     plat,
		Title:        body.Title,
		ThumbnailURL: body.ThumbnailURL,
		Uploader:     body.AuthorName,
		Qualities:    media.GenericLadder(),
	}
	if body.Duration > 0 {
		meta.Duration = format.Duration(body.Duration)
	}
	return meta, nil
}
