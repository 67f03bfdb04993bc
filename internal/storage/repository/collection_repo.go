package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ramonehamilton/meta-collector/internal/storage/models"
)

// CollectionRepository handles the owned card versions.
type CollectionRepository interface {
	// AddVersion records one owned copy of a card.
	AddVersion(ctx context.Context, identity, cardName, setCode string) error

	// RemoveVersion deletes one owned copy. An empty setCode removes the most
	// recently added copy of any printing. It reports whether a row was removed.
	RemoveVersion(ctx context.Context, identity, setCode string) (bool, error)

	// GetCard returns the owned copies of one card, or nil if none are owned.
	GetCard(ctx context.Context, identity string) (*models.OwnedCard, error)

	// GetAll returns every owned card ordered by identity.
	GetAll(ctx context.Context) ([]*models.OwnedCard, error)

	// Clear deletes every owned copy.
	Clear(ctx context.Context) error
}

// collectionRepository is the concrete implementation of CollectionRepository.
type collectionRepository struct {
	db DBTX
}

// NewCollectionRepository creates a new collection repository.
func NewCollectionRepository(db DBTX) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) AddVersion(ctx context.Context, identity, cardName, setCode string) error {
	query := `
		INSERT INTO collection_versions (identity, card_name, set_code, added_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, identity, cardName, strings.ToUpper(setCode), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add card version: %w", err)
	}

	return nil
}

func (r *collectionRepository) RemoveVersion(ctx context.Context, identity, setCode string) (bool, error) {
	query := `SELECT id FROM collection_versions WHERE identity = ? AND set_code = ? ORDER BY id DESC LIMIT 1`
	args := []any{identity, strings.ToUpper(setCode)}
	if setCode == "" {
		query = `SELECT id FROM collection_versions WHERE identity = ? ORDER BY id DESC LIMIT 1`
		args = args[:1]
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find card version: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM collection_versions WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("failed to remove card version: %w", err)
	}

	return true, nil
}

func (r *collectionRepository) GetCard(ctx context.Context, identity string) (*models.OwnedCard, error) {
	cards, err := r.query(ctx, `
		SELECT identity, card_name, set_code FROM collection_versions
		WHERE identity = ?
		ORDER BY id
	`, identity)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	return cards[0], nil
}

func (r *collectionRepository) GetAll(ctx context.Context) ([]*models.OwnedCard, error) {
	return r.query(ctx, `
		SELECT identity, card_name, set_code FROM collection_versions
		ORDER BY id
	`)
}

func (r *collectionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM collection_versions`); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	return nil
}

// query groups version rows by identity. The first name seen for an
// identity is kept as its display name.
func (r *collectionRepository) query(ctx context.Context, query string, args ...any) ([]*models.OwnedCard, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byIdentity := make(map[string]*models.OwnedCard)
	for rows.Next() {
		var identity, name, setCode string
		if err := rows.Scan(&identity, &name, &setCode); err != nil {
			return nil, fmt.Errorf("failed to scan card version: %w", err)
		}

		card, ok := byIdentity[identity]
		if !ok {
			card = &models.OwnedCard{Identity: identity, CardName: name}
			byIdentity[identity] = card
		}
		card.Quantity++
		if setCode != "" {
			card.SetCodes = append(card.SetCodes, setCode)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection: %w", err)
	}

	result := make([]*models.OwnedCard, 0, len(byIdentity))
	for _, card := range byIdentity {
		result = append(result, card)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Identity < result[j].Identity })

	return result, nil
}
