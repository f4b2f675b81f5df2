package resolve

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
	"github.com/abdullahdev00/video-downloader/pkg/ytdlp"
)

type scriptedCall struct {
	url      string
	selector string
	res      *ytdlp.Result
}

type scriptedTool struct {
	t     *testing.T
	calls []scriptedCall
	seen  [][]string // selector + extra args per call
}

func (s *scriptedTool) GetURL(ctx context.Context, timeout time.Duration, url, formatSelector string, extraArgs ...string) (string, *ytdlp.Result, error) {
	if len(s.calls) == 0 {
		s.t.Fatalf("unexpected extra GetURL call (selector %q)", formatSelector)
	}
	next := s.calls[0]
	s.calls = s.calls[1:]
	s.seen = append(s.seen, append([]string{formatSelector}, extraArgs...))
	return next.url, next.res, nil
}

func TestResolve_SuccessFirstTry(t *testing.T) {
	tool := &scriptedTool{t: t, calls: []scriptedCall{
		{url: "https://cdn.example.com/v.mp4", res: &ytdlp.Result{}},
	}}
	r := &Resolver{Tool: tool}

	got, err := r.Resolve(context.Background(), "https://youtu.be/abc123", "1080p HD", "mp4")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/v.mp4", got.MediaURL)
	require.False(t, got.Sample)

	// The selector must encode the height ceiling and preferred container.
	sel := tool.seen[0][0]
	require.Contains(t, sel, "height<=1080")
	require.Contains(t, sel, "ext=mp4")
}

func TestResolve_FormatUnavailableRetriesOncePermissive(t *testing.T) {
	tool := &scriptedTool{t: t, calls: []scriptedCall{
		{url: "", res: &ytdlp.Result{ExitCode: 1, Stderr: []byte("ERROR: Requested format is not available")}},
		{url: "https://cdn.example.com/fallback.mp4", res: &ytdlp.Result{}},
	}}
	r := &Resolver{Tool: tool}

	got, err := r.Resolve(context.Background(), "https://youtu.be/abc123", "4K (2160p)", "mp4")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/fallback.mp4", got.MediaURL)

	require.Len(t, tool.seen, 2, "exactly one retry")
	require.Equal(t, permissiveSelector, tool.seen[1][0])
}

func TestResolve_ParseFailureRetriesGenericExtractor(t *testing.T) {
	tool := &scriptedTool{t: t, calls: []scriptedCall{
		{url: "", res: &ytdlp.Result{ExitCode: 1, Stderr: []byte("ERROR: [vimeo] Failed to parse JSON")}},
		{url: "https://cdn.example.com/generic.mp4", res: &ytdlp.Result{}},
	}}
	r := &Resolver{Tool: tool}

	got, err := r.Resolve(context.Background(), "https://vimeo.com/12345", "720p HD", "mp4")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/generic.mp4", got.MediaURL)

	require.Len(t, tool.seen, 2)
	require.Contains(t, tool.seen[1], "--force-generic-extractor")
}

func TestResolve_AuthWalledDegradesToSample(t *testing.T) {
	tool := &scriptedTool{t: t, calls: []scriptedCall{
		{url: "", res: &ytdlp.Result{ExitCode: 1, Stderr: []byte("ERROR: Requested format is not available")}},
		{url: "", res: &ytdlp.Result{ExitCode: 1, Stderr: []byte("ERROR: login required")}},
	}}
	r := &Resolver{Tool: tool, Opts: Options{
		SampleFallback: true,
		SampleURL:      "https://samples.example.com/sample.mp4",
	}}

	got, err := r.Resolve(context.Background(), "https://www.instagram.com/reel/xyz/", "720p HD", "mp4")
	require.NoError(t, err)
	require.True(t, got.Sample)
	require.Equal(t, "https://samples.example.com/sample.mp4", got.MediaURL)
}

func TestResolve_FailureCarriesDiagnostic(t *testing.T) {
	tool := &scriptedTool{t: t, calls: []scriptedCall{
		{url: "", res: &ytdlp.Result{ExitCode: 1, Stderr: []byte("ERROR: something exploded")}},
	}}
	r := &Resolver{Tool: tool, Opts: Options{SampleFallback: true, SampleURL: "x"}}

	_, err := r.Resolve(context.Background(), "https://youtu.be/abc123", "720p HD", "mp4")
	var lre *media.LinkResolutionError
	require.ErrorAs(t, err, &lre)
	require.Contains(t, lre.Diagnostic, "something exploded")
}

func TestResolve_UnsupportedURL(t *testing.T) {
	r := &Resolver{Tool: &scriptedTool{t: t}}
	_, err := r.Resolve(context.Background(), "https://example.com/v", "720p HD", "mp4")
	require.ErrorIs(t, err, platform.ErrUnsupported)
}

func TestBuildSelector(t *testing.T) {
	sel := BuildSelector(platform.YouTube, "1080p HD", "mp4")
	parts := strings.Split(sel, "/")
	require.GreaterOrEqual(t, len(parts), 4)
	require.Contains(t, parts[0], "height<=1080")
	require.Contains(t, parts[0], "ext=mp4")
	require.Equal(t, "best", parts[len(parts)-1])

	require.Equal(t, audioSelector, BuildSelector(platform.YouTube, media.AudioOnlyLabel, "mp3"))

	sparse := BuildSelector(platform.Reddit, "720p HD", "mp4")
	require.Contains(t, sparse, "protocol^=http")
	require.NotContains(t, sparse, "ext=mp4")

	require.Equal(t, "best[ext=mp4]/best", BuildSelector(platform.YouTube, "best", "mp4"))
}
