package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/abdullahdev00/video-downloader/internal/fetch"
	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/utils/format"
)

var stripTags = bluemonday.StrictPolicy()

// probeScrape fetches the page markup and extracts metadata from social
// preview tags, with embedded JSON-LD blobs as a secondary source. Applies to
// platforms without an oEmbed endpoint.
func (e *Extractor) probeScrape(ctx context.Context, mediaURL string, plat platform.Platform) (*media.VideoMetadata, error) {
	if plat.HasOEmbed() {
		return nil, errTierSkipped
	}

	timeout := e.Opts.probeTimeout()
	if timeout < 5*time.Second {
		timeout = 5 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	fetch.BrowserHeaders(req, plat.Referer())

	resp, err := e.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scrape parse: %w", err)
	}

	meta := &media.VideoMetadata{
		URL:       mediaURL,
		Platform:  plat,
		Qualities: media.GenericLadder(),
	}

	meta.Title = cleanText(metaContent(doc, "og:title", "twitter:title"))
	if meta.Title == "" {
		meta.Title = cleanText(doc.Find("title").First().Text())
	}
	meta.Description = cleanText(metaContent(doc, "og:description", "twitter:description"))
	meta.ThumbnailURL = metaContent(doc, "og:image", "twitter:image")
	meta.Uploader = cleanText(metaContent(doc, "og:site_name", "twitter:creator"))

	applyJSONLD(doc, meta)

	if meta.Title == "" {
		return nil, fmt.Errorf("scrape found no usable markup")
	}
	return meta, nil
}

// metaContent returns the first non-empty content attribute among the given
// property/name keys.
func metaContent(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, key, key)
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

type jsonLD struct {
	Type     string          `json:"@type"`
	Name     string          `json:"name"`
	Duration string          `json:"duration"` // ISO 8601, e.g. PT1M30S
	Author   json.RawMessage `json:"author"`
}

// applyJSONLD fills gaps from an embedded VideoObject blob when present.
func applyJSONLD(doc *goquery.Document, meta *media.VideoMetadata) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var blob jsonLD
		if err := json.Unmarshal([]byte(s.Text()), &blob); err != nil {
			return true
		}
		if !strings.EqualFold(blob.Type, "VideoObject") {
			return true
		}
		if meta.Title == "" && blob.Name != "" {
			meta.Title = cleanText(blob.Name)
		}
		if meta.Duration == "" && blob.Duration != "" {
			if secs := parseISODuration(blob.Duration); secs > 0 {
				meta.Duration = format.Duration(secs)
			}
		}
		if meta.Uploader == "" {
			meta.Uploader = cleanText(authorName(blob.Author))
		}
		return false
	})
}

func authorName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Name
	}
	return ""
}

// parseISODuration handles the PT#H#M#S shapes JSON-LD uses.
func parseISODuration(d string) float64 {
	d = strings.TrimPrefix(strings.ToUpper(d), "PT")
	var total, cur float64
	for _, r := range d {
		switch {
		case r >= '0' && r <= '9':
			cur = cur*10 + float64(r-'0')
		case r == 'H':
			total += cur * 3600
			cur = 0
		case r == 'M':
			total += cur * 60
			cur = 0
		case r == 'S':
			total += cur
			cur = 0
		default:
			return 0
		}
	}
	return total
}

func cleanText(s string) string {
	return strings.TrimSpace(stripTags.Sanitize(s))
}
