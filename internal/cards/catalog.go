package cards

import (
	"sort"

	"github.com/ramonehamilton/meta-collector/internal/errs"
)

// Catalog is a deduplicated, immutable set of cards.
type Catalog struct {
	byID  map[Identity]Info
	order []Identity
}

// NewCatalog builds a catalog from infos. The first info for an identity
// wins; later ones are reported as warnings.
func NewCatalog(infos []Info) (*Catalog, []errs.ValidationWarning) {
	c := &Catalog{byID: make(map[Identity]Info, len(infos))}
	var warnings []errs.ValidationWarning

	for _, info := range infos {
		if info.Identity == "" {
			info.Identity = IdentityOf(info.Name)
		}
		if info.Types == nil && info.TypeLine != "" {
			info.Types = TypesOf(info.TypeLine)
		}
		if _, exists := c.byID[info.Identity]; exists {
			warnings = append(warnings, errs.ValidationWarning{
				Kind:    errs.WarnDuplicateCard,
				Subject: info.Name,
				Message: "card already in catalog, keeping first",
			})
			continue
		}
		c.byID[info.Identity] = info
		c.order = append(c.order, info.Identity)
	}

	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	return c, warnings
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Lookup returns the card with identity id.
func (c *Catalog) Lookup(id Identity) (Info, bool) {
	if c == nil {
		return Info{}, false
	}
	info, ok := c.byID[id]
	return info, ok
}

// LookupName resolves a raw card name.
func (c *Catalog) LookupName(name string) (Info, bool) {
	return c.Lookup(IdentityOf(name))
}

// Legal reports whether id resolves and is playable in the format.
func (c *Catalog) Legal(id Identity, formatKey string) bool {
	info, ok := c.Lookup(id)
	return ok && info.LegalIn(formatKey)
}

// Identities returns every identity in lexical order.
func (c *Catalog) Identities() []Identity {
	if c == nil {
		return nil
	}
	out := make([]Identity, len(c.order))
	copy(out, c.order)
	return out
}

// All returns every card ordered by identity.
func (c *Catalog) All() []Info {
	if c == nil {
		return nil
	}
	out := make([]Info, len(c.order))
	for i, id := range c.order {
		out[i] = c.byID[id]
	}
	return out
}
