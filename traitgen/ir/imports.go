package ir

import (
	"slices"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// NewImportSet returns an empty import accumulator.
func NewImportSet() *set.Set[ClassName] {
	return set.New[ClassName](8)
}

// GatherImports adds to acc every declared name reachable from types through
// type arguments, extends and super bounds and array components. The root
// object type is never added. Primitive names are added; the emitter decides
// whether a name needs an import line.
//
// Bound graphs are assumed acyclic. A cyclic graph does not terminate.
func GatherImports(acc *set.Set[ClassName], types ...TypeName) {
	for _, t := range types {
		gather(acc, t)
	}
}

func gather(acc *set.Set[ClassName], t TypeName) {
	switch x := t.(type) {
	case nil:
	case *DeclaredTypeName:
		// Arrays reference their component type, which is x itself without
		// dimensions, so no separate step is needed.
		if cn := x.ClassName(); cn != ObjectClass {
			acc.Insert(cn)
		}
		for _, a := range x.TypeArgs {
			gather(acc, a)
		}
	case *GenericName:
		for _, b := range x.ExtendsBounds {
			gather(acc, b)
		}
		gather(acc, x.SuperBound)
	}
}

// SortedImports returns the names in acc ordered by qualified name.
func SortedImports(acc *set.Set[ClassName]) []ClassName {
	out := acc.Slice()
	slices.SortFunc(out, func(a, b ClassName) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}
