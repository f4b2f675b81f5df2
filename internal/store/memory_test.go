package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
)

func TestMemory_MetadataRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Get(ctx, "https://youtu.be/abc")
	require.ErrorIs(t, err, ErrNotFound)

	meta := &media.VideoMetadata{
		URL:       "https://youtu.be/abc",
		Platform:  platform.YouTube,
		Title:     "Example",
		Qualities: media.GenericLadder(),
	}
	require.NoError(t, m.Put(ctx, meta))

	got, err := m.Get(ctx, "https://youtu.be/abc")
	require.NoError(t, err)
	require.Equal(t, "Example", got.Title)
	require.Len(t, got.Qualities, 7)

	// The returned record is a copy; mutating it must not leak back.
	got.Qualities[0].SizeBytes = 999
	again, err := m.Get(ctx, "https://youtu.be/abc")
	require.NoError(t, err)
	require.Zero(t, again.Qualities[0].SizeBytes)
}

func TestMemory_MergeAbsentIsNoop(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Merge(context.Background(), "https://youtu.be/none", media.GenericLadder()))
}

func TestMemory_MergeAppliesLadderRule(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, &media.VideoMetadata{
		URL:       "https://youtu.be/abc",
		Qualities: media.GenericLadder(),
	}))
	require.NoError(t, m.Merge(ctx, "https://youtu.be/abc", media.Ladder{
		{Label: "1080p HD", Container: "mp4", SizeBytes: 42 << 20},
	}))

	got, err := m.Get(ctx, "https://youtu.be/abc")
	require.NoError(t, err)
	opt, ok := got.Qualities.Find("1080p HD")
	require.True(t, ok)
	require.EqualValues(t, 42<<20, opt.SizeBytes)
}

func TestMemory_HistoryNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	base := time.Now()
	ids := make([]uuid.UUID, 3)
	for i := 0; i < 3; i++ {
		ids[i] = uuid.New()
		require.NoError(t, m.Append(ctx, HistoryRecord{
			ID:         ids[i],
			URL:        "https://youtu.be/abc",
			ResolvedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, ids[2], list[0].ID)
	require.Equal(t, ids[0], list[2].ID)

	require.NoError(t, m.Delete(ctx, ids[1]))
	require.True(t, errors.Is(m.Delete(ctx, ids[1]), ErrNotFound))

	require.NoError(t, m.Clear(ctx))
	list, err = m.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
