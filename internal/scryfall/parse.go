package scryfall

import (
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/ramonehamilton/meta-collector/internal/cards"
)

// parseCard converts a Scryfall card object. Multi-faced cards take their
// missing top-level fields from the front face.
func parseCard(card gjson.Result) cards.Info {
	name := card.Get("name").String()
	info := cards.NewInfo(name, card.Get("type_line").String())

	front := card.Get("card_faces.0")

	info.ManaCost = card.Get("mana_cost").String()
	if info.ManaCost == "" {
		info.ManaCost = front.Get("mana_cost").String()
	}

	colors := card.Get("colors")
	if !colors.Exists() {
		colors = front.Get("colors")
	}
	for _, c := range colors.Array() {
		info.Colors = append(info.Colors, c.String())
	}

	info.ImageURI = card.Get("image_uris.normal").String()
	if info.ImageURI == "" {
		info.ImageURI = front.Get("image_uris.normal").String()
	}

	if id, err := uuid.Parse(card.Get("id").String()); err == nil {
		info.ScryfallID = id
	}
	info.SetCode = card.Get("set").String()

	info.Legalities = make(map[string]cards.Legality)
	card.Get("legalities").ForEach(func(format, legality gjson.Result) bool {
		info.Legalities[format.String()] = cards.Legality(legality.String())
		return true
	})

	return info
}
