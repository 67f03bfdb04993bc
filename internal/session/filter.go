package session

import (
	"regexp"
	"strings"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// matcher reports whether a row matches a query. Queries are matched
// against the display name and type line, ignoring case and accents. A
// query with pattern syntax is tried as a regular expression first and
// falls back to a literal substring when it does not compile.
func matcher(query string) func(wishlist.Row) bool {
	if query == "" {
		return func(wishlist.Row) bool { return true }
	}

	folded := cards.Fold(query)
	literal := func(r wishlist.Row) bool {
		return strings.Contains(cards.Fold(r.Name), folded) || strings.Contains(cards.Fold(r.TypeLine), folded)
	}

	if regexp.QuoteMeta(query) == query {
		return literal
	}
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return literal
	}
	return func(r wishlist.Row) bool {
		return re.MatchString(r.Name) || re.MatchString(cards.Fold(r.Name)) || re.MatchString(r.TypeLine)
	}
}

// filterRows returns the indexes of the rows of ds matching query.
func (s State) filterRows(ds Dataset, query string) []int {
	match := matcher(query)
	rows := s.data.rows(ds)
	out := make([]int, 0, len(rows))
	for i, r := range rows {
		if match(r) {
			out = append(out, i)
		}
	}
	return out
}
