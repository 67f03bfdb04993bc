// Package deckcheck compares a single decklist with the collection.
package deckcheck

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/collection"
	"github.com/ramonehamilton/meta-collector/internal/deckimport"
	"github.com/ramonehamilton/meta-collector/internal/fetch"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// Status summarizes how much of a card is owned.
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
	StatusMissing  Status = "missing"
)

// Line is one card of a checked deck.
type Line struct {
	Identity cards.Identity
	Name     string
	Owned    int
	Count    int
}

// Missing returns how many more copies the deck needs.
func (l Line) Missing() int {
	return max(0, l.Count-l.Owned)
}

// Status returns the ownership status of the line.
func (l Line) Status() Status {
	switch m := l.Missing(); {
	case m == 0:
		return StatusComplete
	case m < l.Count:
		return StatusPartial
	default:
		return StatusMissing
	}
}

// Report is the result of a deck check, ordered by identity.
type Report struct {
	Lines []Line
}

// Check compares deck with owned. Basic lands always count as owned, and
// repeated lines for a card are summed.
func Check(deck *deckimport.ParsedDeck, owned *collection.Collection) Report {
	index := make(map[cards.Identity]int)
	var report Report

	for _, c := range deck.Cards() {
		id := cards.IdentityOf(c.Name)
		if id == "" {
			continue
		}
		if i, ok := index[id]; ok {
			report.Lines[i].Count += c.Quantity
			continue
		}
		index[id] = len(report.Lines)
		report.Lines = append(report.Lines, Line{Identity: id, Name: c.Name, Owned: owned.Owned(id), Count: c.Quantity})
	}

	for i, l := range report.Lines {
		if cards.IsBasicLand(l.Identity) {
			report.Lines[i].Owned = l.Count
		}
	}

	sort.Slice(report.Lines, func(i, j int) bool { return report.Lines[i].Identity < report.Lines[j].Identity })
	return report
}

// CheckText parses a decklist and checks it.
func CheckText(text string, owned *collection.Collection) (Report, error) {
	result, err := deckimport.NewParser(nil).Parse(text)
	if err != nil {
		return Report{}, fmt.Errorf("failed to parse decklist: %w", err)
	}
	return Check(result.Deck, owned), nil
}

// Complete reports whether every card is owned.
func (r Report) Complete() bool {
	for _, l := range r.Lines {
		if l.Missing() > 0 {
			return false
		}
	}
	return true
}

// Wishlist returns the missing copies as export lines.
func (r Report) Wishlist() []wishlist.ExportLine {
	var lines []wishlist.ExportLine
	for _, l := range r.Lines {
		if m := l.Missing(); m > 0 {
			lines = append(lines, wishlist.ExportLine{Name: l.Name, Deficit: m})
		}
	}
	return lines
}

// FetchDeck downloads a published decklist page, such as an MTGTop8 deck,
// and reads its card lines:
//
//	<div class="deck_line hover_tr">4 <span class="L14">Lightning Bolt</span></div>
func FetchDeck(ctx context.Context, fetcher *fetch.Client, url string) (*deckimport.ParsedDeck, error) {
	body, err := fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse deck page: %w", err)
	}

	var lines []string
	doc.Find("div.deck_line.hover_tr").Each(func(_ int, line *goquery.Selection) {
		lines = append(lines, strings.Join(strings.Fields(line.Text()), " "))
	})
	if len(lines) == 0 {
		return nil, fmt.Errorf("no deck lines found on %s", url)
	}

	result := deckimport.NewParser(nil).ParsePlainText(strings.Join(lines, "\n"))
	if !result.Deck.ParsedOK {
		return nil, fmt.Errorf("failed to parse deck lines: %s", strings.Join(result.Deck.Errors, "; "))
	}
	return result.Deck, nil
}
