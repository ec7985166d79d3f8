package cart

import (
	"fmt"
	"slices"
	"strings"
)

// Selection holds the options chosen within one option group, in the order the
// customer picked them.
type Selection struct {
	Group   string   `json:"group"`
	Options []string `json:"options"`
}

// Customizations maps option-group names to the chosen options. Groups keep the
// order in which they were picked; identity never depends on that order.
type Customizations []Selection

// Empty reports whether no option is selected in any group.
func (c Customizations) Empty() bool {
	for _, s := range c {
		if len(s.Options) > 0 {
			return false
		}
	}
	return true
}

// Options returns the options chosen for group, or nil.
func (c Customizations) Options(group string) []string {
	for _, s := range c {
		if s.Group == group {
			return s.Options
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c Customizations) Clone() Customizations {
	if c == nil {
		return nil
	}
	out := make(Customizations, len(c))
	for i, s := range c {
		out[i] = Selection{Group: s.Group, Options: slices.Clone(s.Options)}
	}
	return out
}

// Normalize checks the selection shape and returns a copy without empty groups.
// Group names must be unique and non-empty, and every group is a set of
// non-empty option names.
func (c Customizations) Normalize() (Customizations, error) {
	var out Customizations
	groups := make(map[string]struct{}, len(c))
	for _, s := range c {
		if s.Group == "" {
			return nil, fmt.Errorf("%w: empty group name", ErrInvalidCustomization)
		}
		if _, dup := groups[s.Group]; dup {
			return nil, fmt.Errorf("%w: group %q selected twice", ErrInvalidCustomization, s.Group)
		}
		groups[s.Group] = struct{}{}

		seen := make(map[string]struct{}, len(s.Options))
		for _, opt := range s.Options {
			if opt == "" {
				return nil, fmt.Errorf("%w: empty option in group %q", ErrInvalidCustomization, s.Group)
			}
			if _, dup := seen[opt]; dup {
				return nil, fmt.Errorf("%w: option %q selected twice in group %q", ErrInvalidCustomization, opt, s.Group)
			}
			seen[opt] = struct{}{}
		}
		if len(s.Options) == 0 {
			continue
		}
		out = append(out, Selection{Group: s.Group, Options: slices.Clone(s.Options)})
	}
	return out, nil
}

// FormatCustomizations renders selections for display, one group per entry in
// the order they were picked: "Spice: Mild", "Toppings: Egg, Scallion".
func FormatCustomizations(c Customizations) []string {
	var out []string
	for _, s := range c {
		if len(s.Options) == 0 {
			continue
		}
		out = append(out, s.Group+": "+strings.Join(s.Options, ", "))
	}
	return out
}
