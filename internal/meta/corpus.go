// Package meta gathers competitive decklists for a format and turns them
// into a validated corpus of weighted decks.
package meta

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/format"
)

// DeckEntry is a card and its copy count inside one deck.
type DeckEntry struct {
	Identity cards.Identity
	Copies   int
}

// Deck is a weighted decklist. Higher weight means more influence.
type Deck struct {
	Name    string
	Source  string
	Format  format.Format
	Weight  float64
	Entries []DeckEntry
}

// Copies returns how many copies of id the deck plays.
func (d Deck) Copies(id cards.Identity) int {
	for _, e := range d.Entries {
		if e.Identity == id {
			return e.Copies
		}
	}
	return 0
}

// RawCard is a card line as published by a source.
type RawCard struct {
	Name     string
	Quantity int
}

// RawDeck is a decklist before name resolution. Main deck and sideboard
// are both listed in Cards.
type RawDeck struct {
	Name   string
	Source string
	Weight float64
	Cards  []RawCard
}

// Corpus is the immutable set of decks for one format.
type Corpus struct {
	format   format.Format
	decks    []Deck
	catalog  *cards.Catalog
	warnings []errs.ValidationWarning
}

// NewCorpus wraps already resolved decks. Use Ingest for provider data.
func NewCorpus(f format.Format, catalog *cards.Catalog, decks []Deck) *Corpus {
	return &Corpus{format: f, decks: decks, catalog: catalog}
}

// Ingest resolves raw decks against catalog. Cards that are unknown or not
// legal in f are dropped with a warning. Repeated lines for one card are
// summed. A deck with a non-positive weight is a ConfigurationError.
func Ingest(f format.Format, catalog *cards.Catalog, raw []RawDeck) (*Corpus, error) {
	corpus := &Corpus{format: f, catalog: catalog}

	for _, rd := range raw {
		if !(rd.Weight > 0) {
			return nil, errs.Configuration("deck weight", rd.Name, fmt.Sprintf("must be positive, got %v", rd.Weight))
		}

		deck := Deck{Name: rd.Name, Source: rd.Source, Format: f, Weight: rd.Weight}
		index := make(map[cards.Identity]int)

		for _, rc := range rd.Cards {
			if rc.Quantity < 1 {
				corpus.warn(errs.WarnInvalidQuantity, rc.Name, fmt.Sprintf("quantity %d in %s", rc.Quantity, rd.Name))
				continue
			}

			info, ok := catalog.LookupName(rc.Name)
			if !ok {
				corpus.warn(errs.WarnUnresolvedCard, rc.Name, "not in catalog, listed in "+rd.Name)
				continue
			}
			if !info.LegalIn(f.LegalityKey()) {
				corpus.warn(errs.WarnNotLegal, rc.Name, "not legal in "+f.String()+", listed in "+rd.Name)
				continue
			}

			if i, seen := index[info.Identity]; seen {
				deck.Entries[i].Copies += rc.Quantity
				continue
			}
			index[info.Identity] = len(deck.Entries)
			deck.Entries = append(deck.Entries, DeckEntry{Identity: info.Identity, Copies: rc.Quantity})
		}

		corpus.decks = append(corpus.decks, deck)
	}

	return corpus, nil
}

func (c *Corpus) warn(kind errs.WarningKind, subject, message string) {
	c.warnings = append(c.warnings, errs.ValidationWarning{Kind: kind, Subject: subject, Message: message})
}

// Format returns the corpus format.
func (c *Corpus) Format() format.Format { return c.format }

// Catalog returns the catalog the corpus was resolved against.
func (c *Corpus) Catalog() *cards.Catalog { return c.catalog }

// Decks returns the decks in ingestion order.
func (c *Corpus) Decks() []Deck {
	out := make([]Deck, len(c.decks))
	copy(out, c.decks)
	return out
}

// Len returns the number of decks.
func (c *Corpus) Len() int { return len(c.decks) }

// Warnings returns the problems recorded during ingestion.
func (c *Corpus) Warnings() []errs.ValidationWarning {
	out := make([]errs.ValidationWarning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Identities returns every card referenced by any deck, sorted.
func (c *Corpus) Identities() []cards.Identity {
	seen := make(map[cards.Identity]bool)
	var ids []cards.Identity
	for _, d := range c.decks {
		for _, e := range d.Entries {
			if !seen[e.Identity] {
				seen[e.Identity] = true
				ids = append(ids, e.Identity)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Names returns the distinct card names referenced by raw decks, in first
// seen order. It is the lookup list for a scoped catalog fetch.
func Names(raw []RawDeck) []string {
	seen := make(map[cards.Identity]bool)
	var names []string
	for _, rd := range raw {
		for _, rc := range rd.Cards {
			id := cards.IdentityOf(rc.Name)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			names = append(names, rc.Name)
		}
	}
	return names
}
