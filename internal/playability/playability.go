// Package playability scores how central each card is to a meta corpus.
package playability

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/meta"
)

// DefaultCopyCap is a playset.
const DefaultCopyCap = 4

// Scores is an immutable snapshot of normalized playability scores.
type Scores struct {
	byID map[cards.Identity]float64
	max  float64
}

// Compute scores every card of corpus. Each deck adds
// weight × min(copies, copyCap) to the cards it plays; totals are then
// divided by the largest total, so the top card scores exactly 1. When the
// largest total is zero every score is zero.
//
// A deck with a non-positive weight, or a non-positive copyCap, is a
// ConfigurationError.
func Compute(corpus *meta.Corpus, copyCap int) (*Scores, error) {
	if copyCap < 1 {
		return nil, errs.Configuration("copy_cap", fmt.Sprint(copyCap), "must be at least 1")
	}

	totals := make(map[cards.Identity]float64)
	if corpus == nil {
		return &Scores{byID: totals}, nil
	}

	for _, deck := range corpus.Decks() {
		if !(deck.Weight > 0) {
			return nil, errs.Configuration("deck weight", deck.Name, fmt.Sprintf("must be positive, got %v", deck.Weight))
		}
		for _, e := range deck.Entries {
			totals[e.Identity] += deck.Weight * float64(min(e.Copies, copyCap))
		}
	}

	var top float64
	for _, total := range totals {
		top = max(top, total)
	}

	for id, total := range totals {
		if top == 0 {
			totals[id] = 0
			continue
		}
		totals[id] = total / top
	}

	s := &Scores{byID: totals}
	if top > 0 {
		s.max = 1
	}
	return s, nil
}

// Of returns the score of id, zero for cards outside the corpus.
func (s *Scores) Of(id cards.Identity) float64 {
	if s == nil {
		return 0
	}
	return s.byID[id]
}

// Len returns the number of scored cards.
func (s *Scores) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byID)
}

// Max returns the highest score: 1, or 0 for an empty or all-zero corpus.
func (s *Scores) Max() float64 {
	if s == nil {
		return 0
	}
	return s.max
}

// Identities returns the scored cards in lexical order.
func (s *Scores) Identities() []cards.Identity {
	if s == nil {
		return nil
	}
	ids := make([]cards.Identity, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
