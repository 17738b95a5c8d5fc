package ir

// Substitution maps a generic name occurrence to its replacement. Returning
// nil keeps the occurrence.
type Substitution func(g *GenericName) TypeName

// Substitute returns a copy of t in which every generic name is replaced by
// fn's result. Array dimensions of a replaced occurrence are carried over to
// the replacement, so T[] with T := String becomes String[]. Bounds of a
// kept generic are substituted too. The input is never modified.
func Substitute(t TypeName, fn Substitution) TypeName {
	switch x := t.(type) {
	case nil:
		return nil
	case *DeclaredTypeName:
		c := *x
		c.TypeArgs = SubstituteList(x.TypeArgs, fn)
		return &c
	case *GenericName:
		if r := fn(x); r != nil {
			return withDims(r.Clone(), x.Array)
		}
		c := *x
		c.ExtendsBounds = SubstituteList(x.ExtendsBounds, fn)
		c.SuperBound = Substitute(x.SuperBound, fn)
		return &c
	default:
		panic("ir: unknown TypeName variant")
	}
}

// SubstituteList applies Substitute to each element. Nil stays nil.
func SubstituteList(list []TypeName, fn Substitution) []TypeName {
	if list == nil {
		return nil
	}
	out := make([]TypeName, len(list))
	for i, t := range list {
		out[i] = Substitute(t, fn)
	}
	return out
}

// withDims adds the dimensions of an occurrence to a freshly cloned
// replacement. The replacement is owned by the caller.
func withDims(t TypeName, occ Array) TypeName {
	if occ.Depth == 0 {
		return t
	}
	switch x := t.(type) {
	case *DeclaredTypeName:
		x.Depth += occ.Depth
		x.VarArgs = occ.VarArgs
	case *GenericName:
		x.Depth += occ.Depth
		x.VarArgs = occ.VarArgs
	}
	return t
}

// Walk calls fn for t and every type reachable from it through type
// arguments and bounds, depth first. Returning false from fn skips the
// children of that node.
func Walk(t TypeName, fn func(TypeName) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch x := t.(type) {
	case *DeclaredTypeName:
		for _, a := range x.TypeArgs {
			Walk(a, fn)
		}
	case *GenericName:
		for _, b := range x.ExtendsBounds {
			Walk(b, fn)
		}
		Walk(x.SuperBound, fn)
	}
}

// Generics returns the qualified names of the non-wildcard generics
// referenced by t, in first-occurrence order.
func Generics(t TypeName) []string {
	var out []string
	seen := map[string]bool{}
	Walk(t, func(n TypeName) bool {
		if g, ok := n.(*GenericName); ok && !g.IsWildcard() {
			name := g.QualifiedName()
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
		return true
	})
	return out
}
