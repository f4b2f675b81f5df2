package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abdullahdev00/video-downloader/internal/fetch"
	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/utils/filename"
)

// passthroughHeaders are mirrored from the upstream response when present.
var passthroughHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Range",
}

// streamDirect fetches the resolved media URL and relays its body. The
// caller's Range header is forwarded verbatim so seeks resume from the right
// offset upstream instead of re-reading the whole file.
func (p *Proxy) streamDirect(ctx context.Context, w http.ResponseWriter, req Request, resolved *media.ResolvedDownload, plat platform.Platform, res *Result) error {
	res.DirectURL = resolved.MediaURL

	upstream, err := p.fetchUpstream(ctx, resolved.MediaURL, plat, req.RangeHeader)
	if err != nil {
		return err
	}

	// Some CDNs omit Content-Length on unbounded requests but answer a
	// ranged request with a Content-Range that carries the total size.
	if upstream.Header.Get("Content-Length") == "" && req.RangeHeader == "" {
		retried, rerr := p.fetchUpstream(ctx, resolved.MediaURL, plat, "bytes=0-")
		if rerr == nil {
			upstream.Body.Close()
			upstream = retried
		}
	}
	defer upstream.Body.Close()

	h := w.Header()
	for _, name := range passthroughHeaders {
		if v := upstream.Header.Get(name); v != "" {
			h.Set(name, v)
		}
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/octet-stream")
	}
	h.Set("Accept-Ranges", "bytes")

	name := filename.ForDownload(p.title(ctx, req.URL), resolved.MediaURL, upstream.Header.Get("Content-Type"), resolved.Container)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	status := http.StatusOK
	if upstream.StatusCode == http.StatusPartialContent {
		if req.RangeHeader != "" {
			status = http.StatusPartialContent
		} else {
			// The bytes=0- retry covers the whole file; answer as a plain
			// 200 and derive the length from the range total.
			h.Del("Content-Range")
			if total := totalFromContentRange(upstream.Header.Get("Content-Range")); total != "" {
				h.Set("Content-Length", total)
			}
		}
	}
	beginBody(w, req.StartToken, status)

	slog.Info("relaying direct fetch",
		"url", req.URL,
		"platform", plat,
		"quality", resolved.Quality,
		"upstreamStatus", upstream.StatusCode)

	return relay(ctx, w, upstream.Body, res)
}

// totalFromContentRange pulls the total size out of "bytes 0-99/100".
func totalFromContentRange(v string) string {
	_, total, ok := strings.Cut(v, "/")
	if !ok || total == "*" {
		return ""
	}
	return total
}

// fetchUpstream issues one GET against the media URL with browser headers and
// the platform referer. Non-success statuses come back as UpstreamFetchError
// so the handler can still pick a response code.
func (p *Proxy) fetchUpstream(ctx context.Context, mediaURL string, plat platform.Platform, rangeHeader string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, &media.UpstreamFetchError{URL: mediaURL, Cause: err}
	}
	fetch.BrowserHeaders(httpReq, plat.Referer())
	if rangeHeader != "" {
		httpReq.Header.Set("Range", rangeHeader)
	}

	resp, err := p.HTTP.Do(httpReq)
	if err != nil {
		return nil, &media.UpstreamFetchError{URL: mediaURL, Cause: err}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, &media.UpstreamFetchError{URL: mediaURL, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
