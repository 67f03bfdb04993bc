package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/meta-collector/internal/storage/models"
)

// PageCacheRepository stores raw HTTP responses.
type PageCacheRepository interface {
	// Get returns the cached page for key, or nil if absent.
	Get(ctx context.Context, key string) (*models.CachedPage, error)

	// Put inserts or replaces a cached page.
	Put(ctx context.Context, page *models.CachedPage) error

	// Prune deletes pages fetched before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

type pageCacheRepository struct {
	db DBTX
}

// NewPageCacheRepository creates a new page cache repository.
func NewPageCacheRepository(db DBTX) PageCacheRepository {
	return &pageCacheRepository{db: db}
}

func (r *pageCacheRepository) Get(ctx context.Context, key string) (*models.CachedPage, error) {
	query := `SELECT cache_key, url, status_code, body, fetched_at FROM page_cache WHERE cache_key = ?`

	page := &models.CachedPage{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&page.Key, &page.URL, &page.StatusCode, &page.Body, &page.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached page: %w", err)
	}

	return page, nil
}

func (r *pageCacheRepository) Put(ctx context.Context, page *models.CachedPage) error {
	query := `
		INSERT INTO page_cache (cache_key, url, status_code, body, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			url = excluded.url,
			status_code = excluded.status_code,
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`

	_, err := r.db.ExecContext(ctx, query, page.Key, page.URL, page.StatusCode, page.Body, page.FetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to store cached page: %w", err)
	}

	return nil
}

func (r *pageCacheRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM page_cache WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune page cache: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned pages: %w", err)
	}
	return n, nil
}
