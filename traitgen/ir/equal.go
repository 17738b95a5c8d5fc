package ir

// Equal reports whether a and b are structurally equal.
//
// Declared names are equal when package, simple name and type arguments are
// equal; array dimensions are not compared. Generic names are equal when
// their qualified names, extends bounds and super bound are equal. Nil is
// equal only to nil.
func Equal(a, b TypeName) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *DeclaredTypeName:
		y, ok := b.(*DeclaredTypeName)
		if !ok {
			return false
		}
		return x.Package == y.Package && x.Simple == y.Simple && equalList(x.TypeArgs, y.TypeArgs, Equal)
	case *GenericName:
		y, ok := b.(*GenericName)
		if !ok {
			return false
		}
		return x.QualifiedName() == y.QualifiedName() &&
			equalList(x.ExtendsBounds, y.ExtendsBounds, Equal) &&
			Equal(x.SuperBound, y.SuperBound)
	default:
		return false
	}
}

// StrictEqual is Equal plus array dimensions, applied recursively to type
// arguments and bounds. It is the comparison used for method signatures.
func StrictEqual(a, b TypeName) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Dims() != b.Dims() {
		return false
	}
	switch x := a.(type) {
	case *DeclaredTypeName:
		y, ok := b.(*DeclaredTypeName)
		if !ok {
			return false
		}
		return x.Package == y.Package && x.Simple == y.Simple && equalList(x.TypeArgs, y.TypeArgs, StrictEqual)
	case *GenericName:
		y, ok := b.(*GenericName)
		if !ok {
			return false
		}
		return x.QualifiedName() == y.QualifiedName() &&
			equalList(x.ExtendsBounds, y.ExtendsBounds, StrictEqual) &&
			StrictEqual(x.SuperBound, y.SuperBound)
	default:
		return false
	}
}

func equalList(a, b []TypeName, eq func(a, b TypeName) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}
