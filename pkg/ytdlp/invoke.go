package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Record models the common fields of the tool's per-video JSON output. The
// full JSON line is preserved in Raw for callers that need format details.
type Record struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Uploader  string   `json:"uploader"`
	Channel   string   `json:"channel"`
	Duration  float64  `json:"duration"`
	Thumbnail string   `json:"thumbnail"`
	ViewCount int64    `json:"view_count"`
	Formats   []Format `json:"formats"`

	Raw json.RawMessage `json:"-"`
}

// Format is one declared stream in a Record.
type Format struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Height         int     `json:"height"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Protocol       string  `json:"protocol"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	TBR            float64 `json:"tbr"`
}

// SizeBytes returns the declared or approximated size, zero when unknown.
func (f Format) SizeBytes() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

// DumpJSON runs the tool in metadata-dump mode (--dump-json --skip-download)
// and returns the first real record from its line-oriented output. An
// invocation may emit auxiliary JSON lines (playlist shells, warnings encoded
// as JSON); lines without a title or id are skipped.
func (c *Client) DumpJSON(ctx context.Context, timeout time.Duration, url string, extraArgs ...string) (*Record, *Result, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil, fmt.Errorf("ytdlp: url is required")
	}

	args := []string{"--dump-json", "--skip-download", "--no-warnings", "--no-playlist"}
	args = append(args, extraArgs...)
	args = append(args, url)

	res, err := c.Run(ctx, timeout, args...)
	if err != nil {
		return nil, nil, err
	}
	if !res.Ok() {
		return nil, res, nil
	}

	rec, perr := FirstRecord(res.Stdout)
	if perr != nil {
		return nil, res, perr
	}
	return rec, res, nil
}

// FirstRecord scans line-oriented JSON output and returns the first line that
// looks like a real video record (carries a title or id).
func FirstRecord(stdout []byte) (*Record, error) {
	for _, line := range bytes.Split(stdout, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Title == "" && rec.ID == "" {
			continue
		}
		rec.Raw = append(json.RawMessage(nil), line...)
		return &rec, nil
	}
	return nil, fmt.Errorf("ytdlp: no video record in output")
}

// GetURL runs the tool in direct-URL mode (-f <selector> --get-url) and
// returns the first URL it prints. A non-zero exit comes back as the Result
// with an empty URL so callers can classify stderr.
func (c *Client) GetURL(ctx context.Context, timeout time.Duration, url, formatSelector string, extraArgs ...string) (string, *Result, error) {
	if strings.TrimSpace(url) == "" {
		return "", nil, fmt.Errorf("ytdlp: url is required")
	}

	args := []string{"--get-url", "--no-warnings", "--no-playlist"}
	if formatSelector != "" {
		args = append(args, "-f", formatSelector)
	}
	args = append(args, extraArgs...)
	args = append(args, url)

	res, err := c.Run(ctx, timeout, args...)
	if err != nil {
		return "", nil, err
	}
	if !res.Ok() {
		return "", res, nil
	}

	// The tool may print one URL per selected stream; take the first.
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http") {
			return line, res, nil
		}
	}
	return "", res, fmt.Errorf("ytdlp: empty url output")
}

// DownloadVideo runs the tool in download-and-remux mode, writing the result
// to dest. Used by the transcode path; dest must be a unique temp path.
func (c *Client) DownloadVideo(ctx context.Context, timeout time.Duration, url, dest, formatSelector, container string, extraArgs ...string) (*Result, error) {
	if strings.TrimSpace(url) == "" || strings.TrimSpace(dest) == "" {
		return nil, fmt.Errorf("ytdlp: url and dest are required")
	}

	args := []string{
		"-o", dest,
		"--no-warnings",
		"--no-playlist",
		"--no-part",
	}
	if formatSelector != "" {
		args = append(args, "-f", formatSelector)
	}
	if container != "" {
		args = append(args, "--remux-video", container)
	}
	args = append(args, extraArgs...)
	args = append(args, url)

	return c.Run(ctx, timeout, args...)
}

// DownloadAudio runs the tool in audio-extraction mode, writing the result
// to dest.
func (c *Client) DownloadAudio(ctx context.Context, timeout time.Duration, url, dest, audioFormat string, extraArgs ...string) (*Result, error) {
	if strings.TrimSpace(url) == "" || strings.TrimSpace(dest) == "" {
		return nil, fmt.Errorf("ytdlp: url and dest are required")
	}
	if audioFormat == "" {
		audioFormat = "mp3"
	}

	args := []string{
		"-o", dest,
		"--no-warnings",
		"--no-playlist",
		"--no-part",
		"-x",
		"--audio-format", audioFormat,
		"-f", "bestaudio/best",
	}
	args = append(args, extraArgs...)
	args = append(args, url)

	return c.Run(ctx, timeout, args...)
}
