package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/abdullahdev00/video-downloader/internal/media"
)

// Memory is the in-process store used when no database DSN is configured,
// and by tests.
type Memory struct {
	mu      sync.RWMutex
	meta    map[string]media.VideoMetadata
	history map[uuid.UUID]HistoryRecord
}

func NewMemory() *Memory {
	return &Memory{
		meta:    make(map[string]media.VideoMetadata),
		history: make(map[uuid.UUID]HistoryRecord),
	}
}

func (m *Memory) Get(ctx context.Context, url string) (*media.VideoMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.meta[url]
	if !ok {
		return nil, ErrNotFound
	}
	out := rec
	out.Qualities = append(media.Ladder(nil), rec.Qualities...)
	return &out, nil
}

func (m *Memory) Put(ctx context.Context, meta *media.VideoMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := *meta
	rec.Qualities = append(media.Ladder(nil), meta.Qualities...)
	m.meta[meta.URL] = rec
	return nil
}

func (m *Memory) Merge(ctx context.Context, url string, incoming media.Ladder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.meta[url]
	if !ok {
		return nil
	}
	rec.Qualities = rec.Qualities.Merge(incoming...)
	m.meta[url] = rec
	return nil
}

func (m *Memory) Append(ctx context.Context, rec HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[rec.ID] = rec
	return nil
}

func (m *Memory) List(ctx context.Context) ([]HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]HistoryRecord, 0, len(m.history))
	for _, rec := range m.history {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ResolvedAt.After(out[j].ResolvedAt)
	})
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.history[id]; !ok {
		return ErrNotFound
	}
	delete(m.history, id)
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = make(map[uuid.UUID]HistoryRecord)
	return nil
}
