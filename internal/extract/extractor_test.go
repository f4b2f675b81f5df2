package extract

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/store"
	"github.com/abdullahdev00/video-downloader/internal/tasks"
	"github.com/abdullahdev00/video-downloader/pkg/ytdlp"
)

type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type fakeTool struct {
	rec *ytdlp.Record
	res *ytdlp.Result
	err error

	calls int
}

func (f *fakeTool) DumpJSON(ctx context.Context, timeout time.Duration, url string, extraArgs ...string) (*ytdlp.Record, *ytdlp.Result, error) {
	f.calls++
	return f.rec, f.res, f.err
}

func TestExtract_OEmbedFastPath(t *testing.T) {
	httpClient := doerFunc(func(req *http.Request) (*http.Response, error) {
		require.Contains(t, req.URL.String(), "youtube.com/oembed")
		return jsonResponse(200, `{"title":"Example","author_name":"Channel","thumbnail_url":"https://i.ytimg.com/vi/abc/hq.jpg"}`), nil
	})

	tool := &fakeTool{err: errors.New("must not be called synchronously")}
	e := &Extractor{HTTP: httpClient, Tool: tool, Store: store.NewMemory(), Opts: Options{}}

	meta, err := e.Extract(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
	require.Equal(t, "Example", meta.Title)
	require.Equal(t, "Channel", meta.Uploader)
	require.Len(t, meta.Qualities, 7)
	require.Equal(t, "unknown", meta.Qualities[0].SizeEstimate())
	require.Zero(t, tool.calls)
}

func TestExtract_CacheHitSkipsProbes(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Put(context.Background(), &media.VideoMetadata{
		URL:   "https://youtu.be/abc123",
		Title: "Cached",
	}))

	e := &Extractor{
		HTTP:  doerFunc(func(*http.Request) (*http.Response, error) { t.Fatal("probe issued"); return nil, nil }),
		Tool:  &fakeTool{err: errors.New("no")},
		Store: st,
	}

	meta, err := e.Extract(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
	require.Equal(t, "Cached", meta.Title)
}

func TestExtract_Tier1TimeoutFallsThroughToTool(t *testing.T) {
	httpClient := doerFunc(func(req *http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})
	tool := &fakeTool{
		rec: &ytdlp.Record{
			ID: "abc123", Title: "Real Title", Duration: 95, Uploader: "Someone",
			Formats: []ytdlp.Format{
				{FormatID: "137", Ext: "mp4", Height: 1080, VCodec: "avc1", ACodec: "none", Filesize: 120 << 20},
				{FormatID: "136", Ext: "mp4", Height: 720, VCodec: "avc1", ACodec: "none", Filesize: 60 << 20},
				{FormatID: "251", Ext: "webm", Height: 0, VCodec: "none", ACodec: "opus", TBR: 160, Filesize: 4 << 20},
			},
		},
		res: &ytdlp.Result{},
	}

	e := &Extractor{HTTP: httpClient, Tool: tool, Store: store.NewMemory()}

	meta, err := e.Extract(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
	require.Equal(t, "Real Title", meta.Title)
	require.Equal(t, "1:35", meta.Duration)

	// Real ladder, not the fixed placeholder set.
	require.Len(t, meta.Qualities, 3)
	opt, ok := meta.Qualities.Find("1080p HD")
	require.True(t, ok)
	require.EqualValues(t, 120<<20, opt.SizeBytes)
	require.Equal(t, media.AudioOnlyLabel, meta.Qualities[len(meta.Qualities)-1].Label)
	require.EqualValues(t, 4<<20, meta.Qualities[len(meta.Qualities)-1].SizeBytes)
}

func TestExtract_BlockedYieldsSyntheticWhenEnabled(t *testing.T) {
	httpClient := doerFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(500, "{}"), nil
	})
	tool := &fakeTool{
		res: &ytdlp.Result{ExitCode: 1, Stderr: []byte("ERROR: [instagram] Login required to access this content")},
	}

	e := &Extractor{HTTP: httpClient, Tool: tool, Store: store.NewMemory(), Opts: Options{SampleFallback: true}}

	meta, err := e.Extract(context.Background(), "https://www.instagram.com/reel/xyz/")
	require.NoError(t, err)
	require.True(t, meta.Synthetic)
	require.Contains(t, meta.Title, "Sample Video")
	require.Len(t, meta.Qualities, 7)
}

func TestExtract_BlockedFailsWhenFallbackDisabled(t *testing.T) {
	httpClient := doerFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(500, "{}"), nil
	})
	tool := &fakeTool{
		res: &ytdlp.Result{ExitCode: 1, Stderr: []byte("ERROR: Private video. Sign in to confirm your identity")},
	}

	e := &Extractor{HTTP: httpClient, Tool: tool, Store: store.NewMemory(), Opts: Options{SampleFallback: false}}

	_, err := e.Extract(context.Background(), "https://www.instagram.com/reel/xyz/")
	var ef *media.ExtractionFailedError
	require.ErrorAs(t, err, &ef)
}

func TestExtract_UnclassifiedToolFailurePropagates(t *testing.T) {
	httpClient := doerFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(500, "{}"), nil
	})
	tool := &fakeTool{
		res: &ytdlp.Result{ExitCode: 2, Stderr: []byte("ERROR: some unrelated crash")},
	}

	e := &Extractor{HTTP: httpClient, Tool: tool, Store: store.NewMemory(), Opts: Options{SampleFallback: true}}

	_, err := e.Extract(context.Background(), "https://vimeo.com/12345")
	var ef *media.ExtractionFailedError
	require.ErrorAs(t, err, &ef)
}

func TestExtract_LightTierTriggersBackgroundEnrichment(t *testing.T) {
	httpClient := doerFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"title":"Example","author_name":"Channel"}`), nil
	})
	tool := &fakeTool{
		rec: &ytdlp.Record{
			ID: "abc123", Title: "Example",
			Formats: []ytdlp.Format{
				{FormatID: "137", Ext: "mp4", Height: 1080, VCodec: "avc1", ACodec: "none", Filesize: 99 << 20},
			},
		},
		res: &ytdlp.Result{},
	}

	st := store.NewMemory()
	runner := tasks.New(5 * time.Second)
	e := &Extractor{HTTP: httpClient, Tool: tool, Store: st, Tasks: runner}

	_, err := e.Extract(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)

	runner.Close(5 * time.Second)
	require.Equal(t, 1, tool.calls)

	cached, err := st.Get(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
	opt, ok := cached.Qualities.Find("1080p HD")
	require.True(t, ok)
	require.EqualValues(t, 99<<20, opt.SizeBytes, "enrichment must merge the real size into the cache")
}

func TestExtract_UnsupportedPlatform(t *testing.T) {
	e := &Extractor{}
	_, err := e.Extract(context.Background(), "https://example.com/video")
	require.Error(t, err)
}

func TestParseISODuration(t *testing.T) {
	require.EqualValues(t, 90, parseISODuration("PT1M30S"))
	require.EqualValues(t, 3600, parseISODuration("PT1H"))
	require.EqualValues(t, 0, parseISODuration("garbage"))
}
