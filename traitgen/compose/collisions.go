package compose

import (
	"slices"

	"github.com/samber/lo"

	"github.com/tisoft/java-traits/internal/errors"
)

// Forward is one method of the generated superclass and the trait whose
// delegate implements it.
type Forward struct {
	Trait  *TraitElement
	Index  int // position of Trait in the host's trait list
	Method Method
}

// declarers maps each method name to the traits declaring it, in trait
// order, and returns the names in first-declaration order.
func declarers(h *HostClass) (map[string][]*TraitElement, []string) {
	byName := make(map[string][]*TraitElement)
	var order []string
	for _, t := range h.Traits {
		for _, m := range t.Methods {
			list, seen := byName[m.Name]
			if !seen {
				order = append(order, m.Name)
			}
			if !slices.Contains(list, t) {
				byName[m.Name] = append(list, t)
			}
		}
	}
	return byName, order
}

// ResolveMethods decides, for every method name declared by the host's
// traits, which trait's delegate implements it.
//
// A name declared by one trait belongs to that trait. A name declared by
// several traits needs a prefer entry naming one of them; the first
// unresolved name in declaration order fails with a conflict error. A
// prefer entry for a name that does not collide, or naming a trait that
// does not declare it, is a conflict error too.
//
// The result lists every method of every owning trait, in trait order then
// declaration order. Overloads of a preferred name declared by a losing
// trait are not forwarded.
func ResolveMethods(h *HostClass) ([]Forward, error) {
	byName, order := declarers(h)

	owner := make(map[string]*TraitElement, len(byName))
	for _, name := range order {
		traits := byName[name]
		if len(traits) == 1 {
			owner[name] = traits[0]
			continue
		}
		preferred, ok := h.Prefer[name]
		if !ok || !slices.Contains(traits, preferred) {
			return nil, errors.Conflict(name, traitNames(traits))
		}
		owner[name] = preferred
	}

	preferred := lo.Keys(h.Prefer)
	slices.Sort(preferred)
	for _, name := range preferred {
		traits := byName[name]
		switch {
		case len(traits) == 0:
			return nil, errors.Conflictf("prefer entry for method %s: no trait of %s declares it", name, h.Name)
		case !h.Prefer[name].Declares(name):
			return nil, errors.Conflictf("prefer entry for method %s names %s, which does not declare it",
				name, h.Prefer[name].Name)
		case len(traits) == 1:
			return nil, errors.Conflictf("prefer entry for method %s names %s, but only %s declares it",
				name, h.Prefer[name].Name, traits[0].Name)
		}
	}

	var out []Forward
	for i, t := range h.Traits {
		for _, m := range t.Methods {
			if owner[m.Name] == t {
				out = append(out, Forward{Trait: t, Index: i, Method: m})
			}
		}
	}
	return out, nil
}

func traitNames(traits []*TraitElement) []string {
	return lo.Map(traits, func(t *TraitElement, _ int) string { return t.Name.String() })
}
