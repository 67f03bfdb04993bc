package cards

import (
	"strings"

	"github.com/google/uuid"
)

// Legality is a Scryfall legality value.
type Legality string

const (
	Legal      Legality = "legal"
	NotLegal   Legality = "not_legal"
	Restricted Legality = "restricted"
	Banned     Legality = "banned"
)

// Playable reports whether decks may include the card.
func (l Legality) Playable() bool {
	return l == Legal || l == Restricted
}

// Info holds the printable attributes of a card.
type Info struct {
	Identity   Identity
	Name       string
	ManaCost   string
	TypeLine   string
	Types      []string
	Colors     []string
	Legalities map[string]Legality
	ScryfallID uuid.UUID
	SetCode    string
	ImageURI   string
}

// NewInfo fills Identity and Types from name and typeLine.
func NewInfo(name, typeLine string) Info {
	return Info{
		Identity: IdentityOf(name),
		Name:     name,
		TypeLine: typeLine,
		Types:    TypesOf(typeLine),
	}
}

// TypesOf splits the front face of a type line into its supertypes and
// card types, dropping subtypes.
func TypesOf(typeLine string) []string {
	front := FrontFace(typeLine)
	if i := strings.Index(front, "—"); i >= 0 {
		front = front[:i]
	} else if i := strings.Index(front, " - "); i >= 0 {
		front = front[:i]
	}
	return strings.Fields(front)
}

// HasType reports whether the card has the given supertype or card type.
func (i Info) HasType(t string) bool {
	for _, have := range i.Types {
		if strings.EqualFold(have, t) {
			return true
		}
	}
	return false
}

// IsLand reports whether the card is a land.
func (i Info) IsLand() bool { return i.HasType("Land") }

// IsColorless reports whether the card has no color.
func (i Info) IsColorless() bool { return len(i.Colors) == 0 }

// IsMulticolor reports whether the card has two or more colors.
func (i Info) IsMulticolor() bool { return len(i.Colors) > 1 }

// LegalIn reports whether the card may be played in the format with the
// given Scryfall legality key.
func (i Info) LegalIn(formatKey string) bool {
	return i.Legalities[formatKey].Playable()
}
