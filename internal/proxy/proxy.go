// Package proxy relays resolved media bytes to the caller. It is the only
// component with a real state machine: a request resolves a download link,
// routes to a direct upstream fetch or a transcode through the external tool,
// and then relays bytes. Failures can only change the response before the
// first body byte; after that they are logged and the connection is closed.
package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/abdullahdev00/video-downloader/internal/fetch"
	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/ytdlp"
)

// State labels the proxy's progress through one streaming request.
type State string

const (
	StateResolving   State = "resolving"
	StateDirectFetch State = "direct_fetch"
	StateTranscode   State = "transcode"
	StateRelaying    State = "relaying"
	StateDone        State = "done"
	StateError       State = "error"
)

// startCookieName carries the caller-supplied token back as a short-lived
// cookie the instant body bytes begin flowing. This is the transfer-start
// handshake: an external caller can observe genuine transfer start without
// inspecting response bytes.
const startCookieName = "downloadStarted"

// LinkResolver resolves a direct media URL for a quality/container pair.
type LinkResolver interface {
	Resolve(ctx context.Context, url, quality, container string) (*media.ResolvedDownload, error)
}

// ToolClient is the slice of the external tool the transcode path consumes.
type ToolClient interface {
	DownloadVideo(ctx context.Context, timeout time.Duration, url, dest, formatSelector, container string, extraArgs ...string) (*ytdlp.Result, error)
	DownloadAudio(ctx context.Context, timeout time.Duration, url, dest, audioFormat string, extraArgs ...string) (*ytdlp.Result, error)
}

// MetadataCache is the read-only slice of the store used for filenames.
type MetadataCache interface {
	Get(ctx context.Context, url string) (*media.VideoMetadata, error)
}

// Options tune the proxy.
type Options struct {
	// TmpDir receives transcode temp files. Empty means os.TempDir().
	TmpDir string
	// TranscodeTimeout bounds the tool's download-and-remux run. Default 10m.
	TranscodeTimeout time.Duration
}

func (o Options) transcodeTimeout() time.Duration {
	if o.TranscodeTimeout <= 0 {
		return 10 * time.Minute
	}
	return o.TranscodeTimeout
}

// Proxy streams resolved media to callers.
type Proxy struct {
	Resolver LinkResolver
	Tool     ToolClient
	HTTP     fetch.Doer
	Cache    MetadataCache
	ToolArgs func(platform.Platform) []string
	Opts     Options
}

// Request is one streaming request.
type Request struct {
	URL         string
	Quality     string
	Container   string
	RangeHeader string
	StartToken  string
	// Compat forces the compatibility transcode: a widely-playable
	// video+audio codec pair muxed into the requested container.
	Compat bool
}

func (r Request) audioOnly() bool {
	return r.Quality == media.AudioOnlyLabel || r.Container == "mp3"
}

// Result reports how a streaming request ended. It exists for observability
// and tests; callers must treat the response as already written whenever
// BytesSent is non-zero.
type Result struct {
	State       State
	BytesSent   int64
	DirectURL   string
	TempFile    string
	Interrupted error
}

// Stream drives one request through the state machine, writing the response
// to w. An error return always means no body bytes were written; failures
// after the first byte are recorded on the Result and logged.
func (p *Proxy) Stream(ctx context.Context, w http.ResponseWriter, req Request) (*Result, error) {
	res := &Result{State: StateResolving}

	resolved, err := p.Resolver.Resolve(ctx, req.URL, req.Quality, req.Container)
	if err != nil {
		res.State = StateError
		return res, err
	}

	plat, _ := platform.Resolve(req.URL)

	switch {
	case resolved.Sample:
		// The resolver degraded to the sample clip, which is a plain HTTPS
		// asset. Running the tool against the original URL again would just
		// hit the same auth wall, so the sample always relays directly.
		res.State = StateDirectFetch
		err = p.streamDirect(ctx, w, req, resolved, plat, res)
	case req.audioOnly() || req.Compat || plat.NeedsTranscode():
		res.State = StateTranscode
		err = p.streamTranscode(ctx, w, req, resolved, plat, res)
	default:
		res.State = StateDirectFetch
		err = p.streamDirect(ctx, w, req, resolved, plat, res)
	}

	if err != nil {
		if res.BytesSent > 0 {
			// Headers and bytes are out; the status is immutable. Log and
			// let the connection drop.
			ie := &media.StreamInterruptedError{BytesWritten: res.BytesSent, Cause: err}
			res.Interrupted = ie
			slog.Warn("stream interrupted mid-relay", "url", req.URL, "error", ie)
			res.State = StateDone
			return res, nil
		}
		res.State = StateError
		return res, err
	}

	res.State = StateDone
	return res, nil
}

// title returns the cached title for the URL, for the attachment filename.
func (p *Proxy) title(ctx context.Context, url string) string {
	if p.Cache == nil {
		return ""
	}
	meta, err := p.Cache.Get(ctx, url)
	if err != nil || meta == nil {
		return ""
	}
	return meta.Title
}

// setStartCookie attaches the transfer-start cookie. It must run before the
// response header is written or the handshake is lost.
func setStartCookie(w http.ResponseWriter, token string) {
	if token == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     startCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   60,
		SameSite: http.SameSiteLaxMode,
	})
}

// beginBody sets the transfer-start cookie and writes the response header.
// Everything that must happen before the first body byte goes through here.
func beginBody(w http.ResponseWriter, token string, status int) {
	setStartCookie(w, token)
	w.WriteHeader(status)
}

// relay copies src to w until EOF, cancellation or error, tracking bytes.
func relay(ctx context.Context, w http.ResponseWriter, src io.Reader, res *Result) error {
	res.State = StateRelaying

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 64<<10)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			res.BytesSent += int64(wn)
			if werr != nil {
				return werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return nil
			}
			return rerr
		}
	}
}
