// Package deckimport parses decklists in Arena export and plain text form.
package deckimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ramonehamilton/meta-collector/internal/cards"
)

// Board names.
const (
	BoardMain      = "main"
	BoardSideboard = "sideboard"
)

// ParsedCard represents a single card line in a decklist.
type ParsedCard struct {
	Quantity int
	Name     string
	SetCode  string // Optional, extracted from formats like "4 Lightning Bolt (M21) 123"
	Board    string // BoardMain or BoardSideboard
}

// ParsedDeck represents a decklist parsed from text.
type ParsedDeck struct {
	Name      string
	Mainboard []*ParsedCard
	Sideboard []*ParsedCard
	ParsedOK  bool
	Errors    []string
	Warnings  []string
}

// Cards returns mainboard then sideboard cards.
func (d *ParsedDeck) Cards() []*ParsedCard {
	all := make([]*ParsedCard, 0, len(d.Mainboard)+len(d.Sideboard))
	all = append(all, d.Mainboard...)
	return append(all, d.Sideboard...)
}

// Parser parses decklists and optionally resolves names against a catalog.
type Parser struct {
	catalog *cards.Catalog
}

// NewParser creates a parser. catalog may be nil.
func NewParser(catalog *cards.Catalog) *Parser {
	return &Parser{
		catalog: catalog,
	}
}

// ParseResult contains the result of parsing a decklist.
type ParseResult struct {
	Deck       *ParsedDeck
	Identities map[string]cards.Identity // resolved card names
	Warnings   []string
}

var (
	// Group 1: quantity, Group 2: card name, Group 3: set code (optional), Group 4: collector number (optional)
	arenaRegex = regexp.MustCompile(`^(\d+)\s+([^(]+?)(?:\s+\(([A-Za-z0-9]+)\)(?:\s+(\S+))?)?$`)
	// "4 Card Name" or "4x Card Name"
	leadingQtyRegex = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)
	// "Card Name x4"
	trailingQtyRegex = regexp.MustCompile(`^(.+?)\s+x(\d+)$`)
)

// Parse attempts to parse decklist text.
// It tries Arena format first, then falls back to plain text.
func (p *Parser) Parse(input string) (*ParseResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty decklist")
	}

	if result := p.ParseArenaFormat(input); result.Deck.ParsedOK && len(result.Deck.Warnings) == 0 {
		return result, nil
	}

	if result := p.ParsePlainText(input); result.Deck.ParsedOK {
		return result, nil
	}

	return nil, fmt.Errorf("unable to parse decklist")
}

// ParseArenaFormat parses the Arena deck export format.
// Format example:
//
//	Deck
//	4 Lightning Bolt (M21) 123
//	2 Shock (M21) 124
//
//	2 Duress (M21) 95
//
// The empty line (or a "Sideboard" header) separates mainboard from sideboard.
func (p *Parser) ParseArenaFormat(input string) *ParseResult {
	result := newResult()

	board := BoardMain
	seenCard := false

	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)

		switch strings.ToLower(line) {
		case "deck", "companion", "commander":
			continue
		case "sideboard":
			board = BoardSideboard
			continue
		case "":
			if seenCard {
				board = BoardSideboard
			}
			continue
		}

		matches := arenaRegex.FindStringSubmatch(line)
		if matches == nil {
			result.Deck.Warnings = append(result.Deck.Warnings,
				fmt.Sprintf("Line %d: Could not parse '%s'", i+1, line))
			continue
		}

		quantity, err := strconv.Atoi(matches[1])
		if err != nil || quantity < 1 {
			result.Deck.Warnings = append(result.Deck.Warnings,
				fmt.Sprintf("Line %d: Invalid quantity '%s'", i+1, matches[1]))
			continue
		}

		seenCard = true
		p.add(result, &ParsedCard{
			Quantity: quantity,
			Name:     strings.TrimSpace(matches[2]),
			SetCode:  strings.ToUpper(matches[3]),
			Board:    board,
		})
	}

	finish(result)
	return result
}

// ParsePlainText parses simple text card lists.
// Format examples:
//   - "4 Lightning Bolt"
//   - "4x Lightning Bolt"
//   - "Lightning Bolt x4"
//   - "SB: 2 Duress"
func (p *Parser) ParsePlainText(input string) *ParseResult {
	result := newResult()
	board := BoardMain

	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "sideboard") {
			board = BoardSideboard
			continue
		}

		lineBoard := board
		if rest, ok := strings.CutPrefix(line, "SB:"); ok {
			line = strings.TrimSpace(rest)
			lineBoard = BoardSideboard
		}

		quantity, name, ok := parseQuantityLine(line)
		if !ok {
			result.Deck.Warnings = append(result.Deck.Warnings,
				fmt.Sprintf("Line %d: Could not parse '%s'", i+1, line))
			continue
		}
		if quantity < 1 {
			result.Deck.Warnings = append(result.Deck.Warnings,
				fmt.Sprintf("Line %d: Invalid quantity %d", i+1, quantity))
			continue
		}

		p.add(result, &ParsedCard{
			Quantity: quantity,
			Name:     name,
			Board:    lineBoard,
		})
	}

	finish(result)
	return result
}

func parseQuantityLine(line string) (int, string, bool) {
	if matches := leadingQtyRegex.FindStringSubmatch(line); matches != nil {
		if q, err := strconv.Atoi(matches[1]); err == nil {
			return q, strings.TrimSpace(matches[2]), true
		}
	}
	if matches := trailingQtyRegex.FindStringSubmatch(line); matches != nil {
		if q, err := strconv.Atoi(matches[2]); err == nil {
			return q, strings.TrimSpace(matches[1]), true
		}
	}
	return 0, "", false
}

func newResult() *ParseResult {
	return &ParseResult{
		Deck: &ParsedDeck{
			Mainboard: make([]*ParsedCard, 0),
			Sideboard: make([]*ParsedCard, 0),
			ParsedOK:  true,
		},
		Identities: make(map[string]cards.Identity),
	}
}

func (p *Parser) add(result *ParseResult, card *ParsedCard) {
	if card.Board == BoardMain {
		result.Deck.Mainboard = append(result.Deck.Mainboard, card)
	} else {
		result.Deck.Sideboard = append(result.Deck.Sideboard, card)
	}

	if p.catalog == nil {
		return
	}
	if info, ok := p.catalog.LookupName(card.Name); ok {
		result.Identities[card.Name] = info.Identity
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Card '%s' not found in catalog", card.Name))
	}
}

func finish(result *ParseResult) {
	if len(result.Deck.Mainboard) == 0 && len(result.Deck.Sideboard) == 0 {
		result.Deck.ParsedOK = false
		result.Deck.Errors = append(result.Deck.Errors, "No cards found in decklist")
	}
}
