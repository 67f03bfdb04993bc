package collection

import (
	"context"
	"fmt"
	"strings"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/storage"
	"github.com/ramonehamilton/meta-collector/internal/storage/models"
)

// Store persists the collection in the sqlite database, one row per owned
// copy.
type Store struct {
	storage *storage.Service
}

// NewStore creates a store over an open storage service.
func NewStore(s *storage.Service) *Store {
	return &Store{storage: s}
}

// Load reads the stored collection. Rows are already grouped by identity,
// so policy only matters for legacy rows stored under different spellings.
func (s *Store) Load(ctx context.Context, policy DuplicatePolicy) (*Collection, error) {
	owned, err := s.storage.Collection().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	entries := make([]Entry, 0, len(owned))
	for _, card := range owned {
		entries = append(entries, Entry{Name: card.CardName, Quantity: card.Quantity, SetCodes: card.SetCodes})
	}
	return New(entries, policy), nil
}

// Add records one owned copy and returns the new owned quantity.
func (s *Store) Add(ctx context.Context, name, setCode string) (int, error) {
	id := cards.IdentityOf(name)
	if id == "" {
		return 0, fmt.Errorf("card name is required")
	}

	repo := s.storage.Collection()
	if err := repo.AddVersion(ctx, string(id), strings.TrimSpace(name), setCode); err != nil {
		return 0, err
	}
	return s.quantity(ctx, id)
}

// Remove deletes one owned copy, of setCode if given. It returns the new
// owned quantity and whether a copy was removed.
func (s *Store) Remove(ctx context.Context, name, setCode string) (int, bool, error) {
	id := cards.IdentityOf(name)
	removed, err := s.storage.Collection().RemoveVersion(ctx, string(id), setCode)
	if err != nil {
		return 0, false, err
	}
	qty, err := s.quantity(ctx, id)
	return qty, removed, err
}

func (s *Store) quantity(ctx context.Context, id cards.Identity) (int, error) {
	card, err := s.storage.Collection().GetCard(ctx, string(id))
	if err != nil {
		return 0, err
	}
	if card == nil {
		return 0, nil
	}
	return card.Quantity, nil
}

// Import replaces the stored collection with entries, resolving duplicates
// with policy. It returns the imported collection.
func (s *Store) Import(ctx context.Context, entries []Entry, policy DuplicatePolicy) (*Collection, error) {
	c := New(entries, policy)

	var versions []models.OwnedVersion
	for _, e := range c.Entries() {
		id := string(e.Identity())
		for i := range e.Quantity {
			set := ""
			if i < len(e.SetCodes) {
				set = e.SetCodes[i]
			}
			versions = append(versions, models.OwnedVersion{Identity: id, CardName: e.Name, SetCode: set})
		}
	}

	if err := s.storage.ReplaceCollection(ctx, versions); err != nil {
		return nil, fmt.Errorf("failed to import collection: %w", err)
	}
	return c, nil
}

// List returns the stored cards with their printings.
func (s *Store) List(ctx context.Context) ([]*models.OwnedCard, error) {
	return s.storage.Collection().GetAll(ctx)
}
