package ir

import "strings"

// WildcardName is the name of the unconstrained wildcard.
const WildcardName = "?"

// QualifierSeparator joins a qualifier and a generic name.
const QualifierSeparator = "_"

// GenericName is a type variable (T, K, V) or a wildcard (?), with optional
// bounds. In a declaration the bounds constrain the variable; in a usage
// only wildcard bounds are significant.
type GenericName struct {
	Array

	// Name is the declared name, or "?" for a wildcard.
	Name string

	// Qualifier disambiguates identically named generics pulled from
	// different traits into one scope. Never set on a wildcard.
	Qualifier string

	// ExtendsBounds are the upper bounds, in order. Nil means absent.
	ExtendsBounds []TypeName

	// SuperBound is the lower bound. Nil means absent.
	SuperBound TypeName
}

// Kind returns KindGeneric.
func (g *GenericName) Kind() Kind { return KindGeneric }

func (*GenericName) sealed() {}

// Generic returns a type variable with optional upper bounds.
func Generic(name string, extends ...TypeName) *GenericName {
	g := &GenericName{Name: name}
	if len(extends) > 0 {
		g.ExtendsBounds = extends
	}
	return g
}

// Wildcard returns a new unconstrained wildcard. Each call returns a
// distinct value so that erased positions never share storage.
func Wildcard() *GenericName {
	return &GenericName{Name: WildcardName}
}

// WildcardExtends returns "? extends bound".
func WildcardExtends(bound TypeName) *GenericName {
	return &GenericName{Name: WildcardName, ExtendsBounds: []TypeName{bound}}
}

// WildcardSuper returns "? super bound".
func WildcardSuper(bound TypeName) *GenericName {
	return &GenericName{Name: WildcardName, SuperBound: bound}
}

// IsWildcard returns true if g is a wildcard.
func (g *GenericName) IsWildcard() bool {
	return g.Name == WildcardName
}

// QualifiedName returns the effective name: "Q_T" when qualified, else the
// plain name. Wildcards are never qualified.
func (g *GenericName) QualifiedName() string {
	if g.Qualifier != "" && !g.IsWildcard() {
		return g.Qualifier + QualifierSeparator + g.Name
	}
	return g.Name
}

// HasExtendsBound returns true if g has at least one upper bound.
func (g *GenericName) HasExtendsBound() bool {
	return len(g.ExtendsBounds) > 0
}

// HasSuperBound returns true if g has a lower bound.
func (g *GenericName) HasSuperBound() bool {
	return g.SuperBound != nil
}

// Clone returns a deep copy of g. Absent bounds stay absent.
func (g *GenericName) Clone() TypeName {
	return g.CloneGeneric()
}

// CloneGeneric is Clone with a concrete result type.
func (g *GenericName) CloneGeneric() *GenericName {
	c := *g
	c.ExtendsBounds = cloneList(g.ExtendsBounds)
	if g.SuperBound != nil {
		c.SuperBound = g.SuperBound.Clone()
	}
	return &c
}

// Qualified returns a copy of g carrying qualifier q. Wildcards are returned
// unqualified; an existing qualifier is replaced.
func (g *GenericName) Qualified(q string) *GenericName {
	c := g.CloneGeneric()
	if !c.IsWildcard() {
		c.Qualifier = q
	}
	return c
}

// Ref returns a usage reference to g: same effective name, no bounds.
func (g *GenericName) Ref() *GenericName {
	if g.IsWildcard() {
		return g.CloneGeneric()
	}
	return &GenericName{Name: g.Name, Qualifier: g.Qualifier}
}

// String renders g with its bounds, e.g. "T extends java.lang.Number & java.io.Serializable".
func (g *GenericName) String() string {
	var b strings.Builder
	b.WriteString(g.QualifiedName())
	if g.HasExtendsBound() {
		b.WriteString(" extends ")
		for i, bound := range g.ExtendsBounds {
			if i > 0 {
				b.WriteString(" & ")
			}
			b.WriteString(bound.String())
		}
	}
	if g.HasSuperBound() {
		b.WriteString(" super ")
		b.WriteString(g.SuperBound.String())
	}
	b.WriteString(g.Suffix())
	return b.String()
}
