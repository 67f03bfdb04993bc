// Package collection holds the user's owned cards: the immutable Collection
// value the engines consume, file loaders, the sqlite backed store and a
// file watcher.
package collection

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/errs"
)

// DuplicatePolicy decides what happens when an identity is listed twice.
type DuplicatePolicy string

const (
	// Overwrite keeps the last entry for an identity.
	Overwrite DuplicatePolicy = "overwrite"
	// Accumulate sums the quantities of every entry for an identity.
	Accumulate DuplicatePolicy = "accumulate"
)

// ParseDuplicatePolicy validates a policy name. Empty means Overwrite.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", Overwrite:
		return Overwrite, nil
	case Accumulate:
		return Accumulate, nil
	default:
		return "", errs.Configuration("collection.duplicates", s, "expected overwrite or accumulate")
	}
}

// Entry is one owned card line from an input source.
type Entry struct {
	Name     string
	Quantity int
	SetCodes []string // printings, when known; may be shorter than Quantity
}

// Identity returns the card identity of the entry.
func (e Entry) Identity() cards.Identity {
	return cards.IdentityOf(e.Name)
}

type owned struct {
	name     string
	quantity int
	setCodes []string
}

// Collection maps card identities to owned quantities. It is never
// modified after New returns.
type Collection struct {
	cards    map[cards.Identity]owned
	warnings []errs.ValidationWarning
}

// Empty returns a collection that owns nothing.
func Empty() *Collection {
	return &Collection{cards: make(map[cards.Identity]owned)}
}

// New builds a collection from entries. Every repeated identity is
// reported as a duplicate and resolved with policy. Negative quantities are
// dropped with a warning.
func New(entries []Entry, policy DuplicatePolicy) *Collection {
	c := Empty()

	for _, e := range entries {
		id := e.Identity()
		if id == "" {
			continue
		}
		if e.Quantity < 0 {
			c.warn(errs.WarnInvalidQuantity, e.Name, fmt.Sprintf("owned quantity %d", e.Quantity))
			continue
		}

		prev, seen := c.cards[id]
		if !seen {
			c.cards[id] = owned{name: e.Name, quantity: e.Quantity, setCodes: append([]string(nil), e.SetCodes...)}
			continue
		}

		c.warn(errs.WarnDuplicateEntry, e.Name, fmt.Sprintf("listed more than once, %s applied", policy))
		if policy == Accumulate {
			prev.quantity += e.Quantity
			prev.setCodes = append(prev.setCodes, e.SetCodes...)
			c.cards[id] = prev
			continue
		}
		c.cards[id] = owned{name: e.Name, quantity: e.Quantity, setCodes: append([]string(nil), e.SetCodes...)}
	}

	return c
}

func (c *Collection) warn(kind errs.WarningKind, subject, message string) {
	c.warnings = append(c.warnings, errs.ValidationWarning{Kind: kind, Subject: subject, Message: message})
}

// Owned returns the owned quantity of id, zero when unknown.
func (c *Collection) Owned(id cards.Identity) int {
	if c == nil {
		return 0
	}
	return c.cards[id].quantity
}

// Name returns the name the card was listed under.
func (c *Collection) Name(id cards.Identity) string {
	if c == nil {
		return ""
	}
	return c.cards[id].name
}

// SetCodes returns the known printings of id.
func (c *Collection) SetCodes(id cards.Identity) []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.cards[id].setCodes...)
}

// Len returns the number of distinct cards.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.cards)
}

// Total returns the number of owned copies.
func (c *Collection) Total() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, o := range c.cards {
		total += o.quantity
	}
	return total
}

// Identities returns every identity in lexical order.
func (c *Collection) Identities() []cards.Identity {
	if c == nil {
		return nil
	}
	ids := make([]cards.Identity, 0, len(c.cards))
	for id := range c.cards {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Entries returns the resolved collection as entries, ordered by identity.
func (c *Collection) Entries() []Entry {
	ids := c.Identities()
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		o := c.cards[id]
		out = append(out, Entry{Name: o.name, Quantity: o.quantity, SetCodes: append([]string(nil), o.setCodes...)})
	}
	return out
}

// Warnings returns the problems found while building the collection.
func (c *Collection) Warnings() []errs.ValidationWarning {
	if c == nil {
		return nil
	}
	return append([]errs.ValidationWarning(nil), c.warnings...)
}
