package cart

import (
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Key identifies a cart line: the menu item plus its canonical selection.
type Key string

// ResolveKey derives the composite key for an item and its customizations.
//
// Groups are sorted by name and options within a group are sorted, so the key
// does not depend on the order in which the customer picked them. Repeated
// entries for one group are folded together and repeated options count once.
// Names are escaped before joining: "dumplings?Sauce=Chili%2CSoy&Spice=Hot".
// Without customizations the key is the item id alone.
func ResolveKey(itemID string, c Customizations) Key {
	id := url.PathEscape(itemID)

	groups := make(map[string][]string, len(c))
	for _, s := range c {
		if len(s.Options) > 0 {
			groups[s.Group] = append(groups[s.Group], s.Options...)
		}
	}
	if len(groups) == 0 {
		return Key(id)
	}
	names := slices.Sorted(maps.Keys(groups))

	var b strings.Builder
	b.WriteString(id)
	b.WriteByte('?')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		opts := slices.Clone(groups[name])
		slices.Sort(opts)
		opts = slices.Compact(opts)
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		for j, opt := range opts {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(url.QueryEscape(opt))
		}
	}
	return Key(b.String())
}
