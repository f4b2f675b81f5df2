package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/abdullahdev00/video-downloader/internal/media"
	"github.com/abdullahdev00/video-downloader/internal/platform"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Postgres implements MetadataStore and HistoryStore on a pgx pool. Metadata
// bodies are stored as JSONB so the ladder merge rule stays in Go.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects with retry and pings until the database answers.
func OpenPostgres(ctx context.Context, dsn string, retries int) (*Postgres, error) {
	if retries <= 0 {
		retries = 10
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open pool: %w", err)
	}

	for i := 0; i < retries; i++ {
		if err := pool.Ping(ctx); err == nil {
			return &Postgres{pool: pool}, nil
		} else {
			// Golden ratio backoff, same shape as a fibonacci ramp.
			sleep := time.Duration(float64(i)*1.61803398875) * time.Second
			slog.Warn("could not ping database, retrying", "in", sleep, "error", err)
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				pool.Close()
				return nil, ctx.Err()
			}
		}
	}
	pool.Close()
	return nil, fmt.Errorf("store: could not connect to database after %d retries", retries)
}

func (p *Postgres) Close() { p.pool.Close() }

// Migrate runs the embedded goose migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	stdDb := stdlib.OpenDBFromPool(p.pool)
	defer stdDb.Close()

	return goose.UpContext(ctx, stdDb, "migrations")
}

func (p *Postgres) Get(ctx context.Context, url string) (*media.VideoMetadata, error) {
	var body []byte
	err := p.pool.QueryRow(ctx,
		`SELECT metadata FROM videos WHERE url = $1`, url).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get metadata: %w", err)
	}

	var meta media.VideoMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("store: decode metadata: %w", err)
	}
	return &meta, nil
}

func (p *Postgres) Put(ctx context.Context, meta *media.VideoMetadata) error {
	body, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("store: encode metadata: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO videos (url, platform, title, metadata, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (url) DO UPDATE
		SET platform = EXCLUDED.platform,
		    title = EXCLUDED.title,
		    metadata = EXCLUDED.metadata,
		    updated_at = now()`,
		meta.URL, string(meta.Platform), meta.Title, body)
	if err != nil {
		return fmt.Errorf("store: put metadata: %w", err)
	}
	return nil
}

func (p *Postgres) Merge(ctx context.Context, url string, incoming media.Ladder) error {
	// Read-modify-write; last write wins by design, the merge rule keeps
	// concurrent writers convergent.
	meta, err := p.Get(ctx, url)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	meta.Qualities = meta.Qualities.Merge(incoming...)
	return p.Put(ctx, meta)
}

func (p *Postgres) Append(ctx context.Context, rec HistoryRecord) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO history (id, url, platform, title, quality, container, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.URL, string(rec.Platform), rec.Title, rec.Quality, rec.Container, rec.ResolvedAt)
	if err != nil {
		return fmt.Errorf("store: append history: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context) ([]HistoryRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, url, platform, title, quality, container, resolved_at
		FROM history ORDER BY resolved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		var plat string
		if err := rows.Scan(&rec.ID, &rec.URL, &plat, &rec.Title, &rec.Quality, &rec.Container, &rec.ResolvedAt); err != nil {
			return nil, fmt.Errorf("store: scan history: %w", err)
		}
		rec.Platform = platform.Platform(plat)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("store: clear history: %w", err)
	}
	return nil
}
