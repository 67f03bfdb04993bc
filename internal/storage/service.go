package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/meta-collector/internal/storage/models"
	"github.com/ramonehamilton/meta-collector/internal/storage/repository"
)

// Service groups the repositories backed by one database.
type Service struct {
	db         *DB
	collection repository.CollectionRepository
	pages      repository.PageCacheRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:         db,
		collection: repository.NewCollectionRepository(db.Conn()),
		pages:      repository.NewPageCacheRepository(db.Conn()),
	}
}

// Collection returns the owned card repository.
func (s *Service) Collection() repository.CollectionRepository { return s.collection }

// Pages returns the HTTP page cache repository.
func (s *Service) Pages() repository.PageCacheRepository { return s.pages }

// ReplaceCollection atomically swaps the stored collection for versions.
func (s *Service) ReplaceCollection(ctx context.Context, versions []models.OwnedVersion) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		repo := repository.NewCollectionRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		for _, v := range versions {
			if err := repo.AddVersion(ctx, v.Identity, v.CardName, v.SetCode); err != nil {
				return fmt.Errorf("import %s: %w", v.CardName, err)
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}
