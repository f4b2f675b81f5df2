// Package resolve turns a media URL plus a requested quality and container
// into a concrete fetchable media URL, invoking the external tool with a
// format selector expression and a layered retry policy keyed off stderr
// signatures.
package resolve

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/ytdlp"
)

// ToolClient is the slice of the external tool this package consumes.
type ToolClient interface {
	GetURL(ctx context.Context, timeout time.Duration, url, formatSelector string, extraArgs ...string) (string, *ytdlp.Result, error)
}

// Options tune the resolver.
type Options struct {
	// ToolTimeout bounds each tool invocation. Default 60s.
	ToolTimeout time.Duration
	// SampleFallback substitutes SampleURL when an auth-walled platform
	// defeats every retry.
	SampleFallback bool
	// SampleURL is the clearly-labeled sample clip used for degradation.
	SampleURL string
}

func (o Options) toolTimeout() time.Duration {
	if o.ToolTimeout <= 0 {
		return time.Minute
	}
	return o.ToolTimeout
}

// Resolver resolves direct download URLs.
type Resolver struct {
	Tool     ToolClient
	ToolArgs func(platform.Platform) []string
	Opts     Options
}

// Resolve obtains a direct media URL for the requested quality/container.
// The retry ladder runs at most one retry per failure class:
// a format-unavailable failure retries with the maximally permissive
// selector, a platform parse failure retries on the generic extraction path,
// and auth-walled platforms degrade to the sample clip when configured.
func (r *Resolver) Resolve(ctx context.Context, url, quality, container string) (*media.ResolvedDownload, error) {
	plat, err := platform.Resolve(url)
	if err != nil {
		return nil, err
	}

	var extra []string
	if r.ToolArgs != nil {
		extra = r.ToolArgs(plat)
	}

	selector := BuildSelector(plat, quality, container)
	mediaURL, res, err := r.Tool.GetURL(ctx, r.Opts.toolTimeout(), url, selector, extra...)
	if err != nil {
		return nil, err
	}
	if mediaURL != "" {
		return &media.ResolvedDownload{MediaURL: mediaURL, Quality: quality, Container: container}, nil
	}

	stderr := strings.ToLower(string(res.Stderr))
	switch {
	case strings.Contains(stderr, "requested format is not available") ||
		strings.Contains(stderr, "no video formats found"):
		slog.Info("requested format unavailable, retrying permissive", "url", url, "quality", quality)
		mediaURL, res, err = r.Tool.GetURL(ctx, r.Opts.toolTimeout(), url, permissiveSelector, extra...)

	case isParseFailure(stderr):
		slog.Info("extractor parse failure, retrying generic path", "url", url, "platform", plat)
		genericArgs := append(append([]string(nil), extra...), "--force-generic-extractor")
		mediaURL, res, err = r.Tool.GetURL(ctx, r.Opts.toolTimeout(), url, selector, genericArgs...)
	}
	if err != nil {
		return nil, err
	}
	if mediaURL != "" {
		return &media.ResolvedDownload{MediaURL: mediaURL, Quality: quality, Container: container}, nil
	}

	if plat.AuthWalled() && r.Opts.SampleFallback && r.Opts.SampleURL != "" {
		slog.Info("resolution blocked on auth-walled platform, serving sample clip", "url", url, "platform", plat)
		return &media.ResolvedDownload{MediaURL: r.Opts.SampleURL, Quality: quality, Container: container, Sample: true}, nil
	}

	return nil, &media.LinkResolutionError{
		URL:        url,
		Quality:    quality,
		Diagnostic: res.StderrTail(5),
	}
}

// isParseFailure matches stderr shapes produced when one platform's metadata
// cannot be parsed by its dedicated extractor.
func isParseFailure(stderr string) bool {
	for _, sig := range []string{
		"failed to parse json",
		"unable to extract",
		"cannot parse data",
		"unable to download webpage",
	} {
		if strings.Contains(stderr, sig) {
			return true
		}
	}
	return false
}
