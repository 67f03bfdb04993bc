package wishlist

// Progress counts owned against required copies for a group of cards.
// Owned copies beyond the requirement do not count.
type Progress struct {
	Label string
	Owned int
	Total int
}

// Percent returns the completed share of the group, 0 to 100.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Owned) * 100 / float64(p.Total)
}

// Colors in WUBRG order.
var Colors = []struct {
	Code string
	Name string
}{
	{"W", "white"},
	{"U", "blue"},
	{"B", "black"},
	{"R", "red"},
	{"G", "green"},
}

// Stats summarizes collection progress over the top cards of catalog,
// which must be in Catalog order.
func Stats(catalog []Row) []Progress {
	stats := []Progress{
		top(catalog, "Top 20", 20, func(Row) bool { return true }),
		top(catalog, "Top 50", 50, func(Row) bool { return true }),
		top(catalog, "Top 150", 150, func(Row) bool { return true }),
	}

	for _, c := range Colors {
		stats = append(stats, top(catalog, "Top 20 "+c.Name, 20, func(r Row) bool {
			return len(r.Colors) == 1 && r.Colors[0] == c.Code
		}))
	}

	return append(stats,
		top(catalog, "Top 10 colorless", 10, func(r Row) bool { return len(r.Colors) == 0 }),
		top(catalog, "Top 20 multicolor", 20, func(r Row) bool { return len(r.Colors) > 1 }),
		top(catalog, "Top 10 lands", 10, Row.IsLand),
	)
}

func top(rows []Row, label string, n int, keep func(Row) bool) Progress {
	p := Progress{Label: label}
	taken := 0
	for _, r := range rows {
		if taken == n {
			break
		}
		if !keep(r) {
			continue
		}
		taken++
		p.Owned += min(r.Owned, r.Required)
		p.Total += r.Required
	}
	return p
}
