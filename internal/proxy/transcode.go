package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/utils/filename"
)

// compatSelector asks the tool for a widely-playable codec pair. Used when
// the caller forces compatibility or the platform only serves segmented
// streams that browsers cannot play as raw files.
const compatSelector = "bv*[vcodec^=avc1]+ba[acodec^=mp4a]/b[ext=mp4]/b"

var containerContentTypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
}

// streamTranscode downloads and remuxes through the external tool into a
// temp file, then serves the completed file. The temp file is removed on
// every exit path, success or not.
func (p *Proxy) streamTranscode(ctx context.Context, w http.ResponseWriter, req Request, resolved *media.ResolvedDownload, plat platform.Platform, res *Result) error {
	container := resolved.Container
	if container == "" {
		container = "mp4"
	}
	if req.audioOnly() {
		container = "mp3"
	}

	tmpDir := p.Opts.TmpDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	dest := filepath.Join(tmpDir, "vdl-"+uuid.NewString()+"."+container)
	defer os.Remove(dest)
	res.TempFile = dest

	var extraArgs []string
	if p.ToolArgs != nil {
		extraArgs = p.ToolArgs(plat)
	}

	tctx, cancel := context.WithTimeout(ctx, p.Opts.transcodeTimeout())
	defer cancel()

	slog.Info("transcoding",
		"url", req.URL,
		"platform", plat,
		"container", container,
		"audioOnly", req.audioOnly())

	if req.audioOnly() {
		toolRes, err := p.Tool.DownloadAudio(tctx, p.Opts.transcodeTimeout(), req.URL, dest, "mp3", extraArgs...)
		if err != nil {
			return &media.TranscodeError{Diagnostic: "tool did not start", Cause: err}
		}
		if !toolRes.Ok() {
			return &media.TranscodeError{Diagnostic: toolRes.StderrTail(5)}
		}
	} else {
		toolRes, err := p.Tool.DownloadVideo(tctx, p.Opts.transcodeTimeout(), req.URL, dest, compatSelector, container, extraArgs...)
		if err != nil {
			return &media.TranscodeError{Diagnostic: "tool did not start", Cause: err}
		}
		if !toolRes.Ok() {
			return &media.TranscodeError{Diagnostic: toolRes.StderrTail(5)}
		}
	}

	f, err := os.Open(dest)
	if err != nil {
		return &media.TranscodeError{Diagnostic: "output file missing after tool run", Cause: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &media.TranscodeError{Diagnostic: "output file unreadable", Cause: err}
	}

	h := w.Header()
	if ct, ok := containerContentTypes[container]; ok {
		h.Set("Content-Type", ct)
	}
	name := filename.ForDownload(p.title(ctx, req.URL), req.URL, h.Get("Content-Type"), container)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	setStartCookie(w, req.StartToken)

	// ServeContent handles Range and Content-Length against the completed
	// file; the counting wrapper keeps BytesSent honest for the Result.
	res.State = StateRelaying
	http.ServeContent(&countingWriter{ResponseWriter: w, res: res}, serveRequest(req.RangeHeader), name, info.ModTime(), f)
	return nil
}

// serveRequest rebuilds the minimal request ServeContent needs to honor a
// caller Range against the transcoded file.
func serveRequest(rangeHeader string) *http.Request {
	r := &http.Request{Method: http.MethodGet, Header: http.Header{}}
	if rangeHeader != "" {
		r.Header.Set("Range", rangeHeader)
	}
	return r
}

type countingWriter struct {
	http.ResponseWriter
	res *Result
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.ResponseWriter.Write(b)
	c.res.BytesSent += int64(n)
	return n, err
}
