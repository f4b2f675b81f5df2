// Package extract produces VideoMetadata for a URL through a tiered strategy:
// a lightweight oEmbed probe, a page-scrape probe, an external-tool probe, and
// a classified synthetic fallback. Tiers are an explicit ordered list; the
// first success short-circuits the chain.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abdullahdev00/video-downloader/internal/fetch"
	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/internal/store"
	"github.com/abdullahdev00/video-downloader/internal/tasks"
	"github.com/abdullahdev00/video-downloader/pkg/ytdlp"
)

// errTierSkipped marks a tier that does not apply to the platform.
var errTierSkipped = errors.New("extract: tier not applicable")

// Options tune probe budgets and the degradation policy.
type Options struct {
	// ProbeTimeout bounds the oEmbed and scrape probes. Default 4s.
	ProbeTimeout time.Duration
	// ToolTimeout bounds the external tool probe. Default 60s.
	ToolTimeout time.Duration
	// SampleFallback enables the synthetic placeholder result when
	// extraction is blocked upstream.
	SampleFallback bool
}

func (o Options) probeTimeout() time.Duration {
	if o.ProbeTimeout <= 0 {
		return 4 * time.Second
	}
	return o.ProbeTimeout
}

func (o Options) toolTimeout() time.Duration {
	if o.ToolTimeout <= 0 {
		return time.Minute
	}
	return o.ToolTimeout
}

// ToolClient is the slice of the external tool this package consumes.
type ToolClient interface {
	DumpJSON(ctx context.Context, timeout time.Duration, url string, extraArgs ...string) (*ytdlp.Record, *ytdlp.Result, error)
}

// Extractor resolves metadata for supported media URLs.
type Extractor struct {
	HTTP  fetch.Doer
	Tool  ToolClient
	Store store.MetadataStore
	Tasks *tasks.Runner
	Opts  Options
}

type tier struct {
	name string
	// light tiers return the generic ladder; the tool tier returns the
	// real one and is also the enrichment source.
	light bool
	run   func(ctx context.Context, url string, plat platform.Platform) (*media.VideoMetadata, error)
}

func (e *Extractor) tiers() []tier {
	return []tier{
		{name: "oembed", light: true, run: e.probeOEmbed},
		{name: "scrape", light: true, run: e.probeScrape},
		{name: "tool", run: e.probeTool},
	}
}

// Extract returns metadata for url, consulting the cache first. After a
// light-tier success the authoritative tool probe is kicked off in the
// background; its results are merged into the cache and never awaited.
func (e *Extractor) Extract(ctx context.Context, url string) (*media.VideoMetadata, error) {
	plat, err := platform.Resolve(url)
	if err != nil {
		return nil, err
	}

	if e.Store != nil {
		if cached, err := e.Store.Get(ctx, url); err == nil {
			slog.Debug("metadata cache hit", "url", url)
			return cached, nil
		}
	}

	var lastErr error
	for _, t := range e.tiers() {
		meta, err := t.run(ctx, url, plat)
		if err != nil {
			if errors.Is(err, errTierSkipped) {
				continue
			}
			if ctx.Err() != nil {
				// Caller abandoned the request; no further tiers.
				return nil, ctx.Err()
			}
			slog.Debug("metadata tier failed", "tier", t.name, "url", url, "error", err)
			lastErr = err
			continue
		}

		e.cache(ctx, meta)
		if t.light {
			e.enrichLater(url, plat)
		}
		return meta, nil
	}

	// Every tier failed. If the tool's diagnostics point at an auth or
	// privacy wall, degrade to a labeled placeholder instead of failing.
	var bf *blockedError
	if errors.As(lastErr, &bf) && e.Opts.SampleFallback {
		slog.Info("extraction blocked, serving synthetic metadata", "url", url, "reason", bf.reason)
		return syntheticMetadata(url, plat), nil
	}

	diag := ""
	if bf != nil {
		diag = bf.reason
	}
	return nil, &media.ExtractionFailedError{URL: url, Diagnostic: diag, Cause: lastErr}
}

func (e *Extractor) cache(ctx context.Context, meta *media.VideoMetadata) {
	if e.Store == nil {
		return
	}
	if err := e.Store.Put(ctx, meta); err != nil {
		slog.Warn("metadata cache write failed", "url", meta.URL, "error", err)
	}
}

// enrichLater schedules the tool probe without blocking the caller. Failures
// are swallowed; a later request simply keeps the generic ladder.
func (e *Extractor) enrichLater(url string, plat platform.Platform) {
	if e.Tasks == nil || e.Store == nil {
		return
	}
	e.Tasks.Submit("enrich "+url, func(ctx context.Context) error {
		meta, err := e.probeTool(ctx, url, plat)
		if err != nil {
			return err
		}
		return e.Store.Merge(ctx, url, meta.Qualities)
	})
}
