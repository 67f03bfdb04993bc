// Package wishlist reconciles a collection against a meta corpus and ranks
// the missing cards.
package wishlist

import (
	"sort"
	"strings"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/collection"
	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/meta"
	"github.com/ramonehamilton/meta-collector/internal/playability"
)

// RequiredPolicy decides how many copies of a card the meta requires.
type RequiredPolicy string

const (
	// RequireMax is the most copies any single deck plays: enough for the
	// best deck.
	RequireMax RequiredPolicy = "max"
	// RequireSum adds the copies of every deck.
	RequireSum RequiredPolicy = "sum"
)

// ParseRequiredPolicy validates a policy name. Empty means RequireMax.
func ParseRequiredPolicy(s string) (RequiredPolicy, error) {
	switch RequiredPolicy(strings.ToLower(s)) {
	case "", RequireMax:
		return RequireMax, nil
	case RequireSum:
		return RequireSum, nil
	default:
		return "", errs.Configuration("meta.required_policy", s, "expected max or sum")
	}
}

// Options configures reconciliation.
type Options struct {
	Policy RequiredPolicy
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{Policy: RequireMax}
}

// Row is one card of the wishlist or catalog view.
type Row struct {
	Identity cards.Identity
	Name     string
	ManaCost string
	TypeLine string
	Colors   []string
	ImageURI string
	Required int
	Owned    int
	Deficit  int
	Score    float64
}

// IsLand reports whether the row's type line names a land.
func (r Row) IsLand() bool {
	return strings.Contains(r.TypeLine, "Land")
}

// Build returns the cards the collection lacks, most important first:
// score descending, then deficit descending, then identity ascending. Rows
// with nothing missing are left out. The result is recomputed from scratch
// on every call.
func Build(owned *collection.Collection, corpus *meta.Corpus, scores *playability.Scores, opts Options) []Row {
	all := rows(owned, corpus, scores, opts)

	missing := all[:0]
	for _, r := range all {
		if r.Deficit > 0 {
			missing = append(missing, r)
		}
	}

	sort.SliceStable(missing, func(i, j int) bool {
		a, b := missing[i], missing[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Deficit != b.Deficit {
			return a.Deficit > b.Deficit
		}
		return a.Identity < b.Identity
	})
	return missing
}

// Catalog returns every card of the corpus, owned or not, ordered without
// regard to the collection: score descending, then required descending,
// then identity ascending.
func Catalog(owned *collection.Collection, corpus *meta.Corpus, scores *playability.Scores, opts Options) []Row {
	all := rows(owned, corpus, scores, opts)

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Required != b.Required {
			return a.Required > b.Required
		}
		return a.Identity < b.Identity
	})
	return all
}

func rows(owned *collection.Collection, corpus *meta.Corpus, scores *playability.Scores, opts Options) []Row {
	if corpus == nil {
		return nil
	}

	required := make(map[cards.Identity]int)
	for _, deck := range corpus.Decks() {
		for _, e := range deck.Entries {
			switch opts.Policy {
			case RequireSum:
				required[e.Identity] += e.Copies
			default:
				required[e.Identity] = max(required[e.Identity], e.Copies)
			}
		}
	}

	catalog := corpus.Catalog()
	out := make([]Row, 0, len(required))
	for id, req := range required {
		have := owned.Owned(id)
		r := Row{
			Identity: id,
			Name:     string(id),
			Required: req,
			Owned:    have,
			Deficit:  max(0, req-have),
			Score:    scores.Of(id),
		}
		if info, ok := catalog.Lookup(id); ok {
			r.Name = info.Name
			r.ManaCost = info.ManaCost
			r.TypeLine = info.TypeLine
			r.Colors = info.Colors
			r.ImageURI = info.ImageURI
		}
		out = append(out, r)
	}
	return out
}

// ExportLine is one "To Wishlist" entry.
type ExportLine struct {
	Name    string
	Deficit int
	Score   float64
}

// Export turns wishlist rows into export lines, keeping their order.
func Export(rows []Row) []ExportLine {
	lines := make([]ExportLine, 0, len(rows))
	for _, r := range rows {
		if r.Deficit <= 0 {
			continue
		}
		lines = append(lines, ExportLine{Name: r.Name, Deficit: r.Deficit, Score: r.Score})
	}
	return lines
}
