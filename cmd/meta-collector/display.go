package main

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/meta-collector/internal/deckcheck"
	"github.com/ramonehamilton/meta-collector/internal/storage/models"
)

var statusMarks = map[deckcheck.Status]string{
	deckcheck.StatusComplete: "✓",
	deckcheck.StatusPartial:  "◐",
	deckcheck.StatusMissing:  "✗",
}

// displayCheckReport prints a deck check, then the missing cards.
func displayCheckReport(report deckcheck.Report) {
	if len(report.Lines) == 0 {
		fmt.Println("No cards found in the decklist.")
		return
	}

	fmt.Println("\nDeck Check")
	fmt.Println("==========")
	fmt.Println()

	for _, l := range report.Lines {
		fmt.Printf("%s %2d/%-2d %s\n", statusMarks[l.Status()], min(l.Owned, l.Count), l.Count, l.Name)
	}

	missing := report.Wishlist()
	if len(missing) == 0 {
		fmt.Println("\n✓ You own every card of this deck.")
		return
	}

	total := 0
	for _, m := range missing {
		total += m.Deficit
	}
	fmt.Printf("\nMissing (%d cards)\n", total)
	fmt.Println("-------")
	for _, m := range missing {
		fmt.Printf("%d %s\n", m.Deficit, m.Name)
	}
}

// displayCollection prints the stored collection with its printings.
func displayCollection(owned []*models.OwnedCard) {
	if len(owned) == 0 {
		fmt.Println("The collection is empty.")
		fmt.Println("Run 'collection import <file>' or 'collection add <name>' to add cards.")
		return
	}

	total := 0
	for _, c := range owned {
		total += c.Quantity
	}

	fmt.Println("\nCollection")
	fmt.Println("==========")
	fmt.Printf("%d cards, %d copies\n\n", len(owned), total)

	for _, c := range owned {
		sets := ""
		if codes := nonEmpty(c.SetCodes); len(codes) > 0 {
			sets = " (" + strings.ToUpper(strings.Join(codes, ", ")) + ")"
		}
		fmt.Printf("%3d %s%s\n", c.Quantity, c.CardName, sets)
	}
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
