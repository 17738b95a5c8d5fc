// Package compose computes and emits the units that give a host class the
// behavior of every trait it declares: one interface per trait, one delegate
// per (trait, host) pair and one generated superclass per host.
package compose

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/ir"
	"github.com/tisoft/java-traits/traitgen/java"
)

// Param is a method parameter.
type Param struct {
	Name string
	Type ir.TypeName
}

// Method is a method declared by a trait.
type Method struct {
	Name     string
	Return   ir.TypeName
	Params   []Param
	Throws   []ir.TypeName
	Generics []*ir.GenericName

	// Abstract methods have no implementation in the trait; the host class
	// provides them.
	Abstract bool
}

// Signature returns the collision key of m.
func (m Method) Signature() ir.MethodSignature {
	ret := m.Return
	if ret == nil {
		ret = ir.Void()
	}
	return ir.MethodSignature{
		Name:   m.Name,
		Return: ret,
		Args:   lo.Map(m.Params, func(p Param, _ int) ir.TypeName { return p.Type }),
	}
}

// ParamName returns the name of parameter i, inventing one if the
// declaration left it empty.
func (m Method) ParamName(i int) string {
	if n := m.Params[i].Name; n != "" {
		return n
	}
	return "arg" + strconv.Itoa(i)
}

// Types returns every type referenced by m, for import gathering.
func (m Method) Types() []ir.TypeName {
	out := m.Signature().Types()
	out = append(out, m.Throws...)
	for _, g := range m.Generics {
		out = append(out, g)
	}
	return out
}

// TraitElement is a trait as seen by the engine. It is built once per round
// and not modified afterwards.
type TraitElement struct {
	Name           ir.ClassName
	TypeParameters []*ir.GenericName
	Methods        []Method
}

// HasTypeParameters returns true if the trait is generic.
func (t *TraitElement) HasTypeParameters() bool {
	return len(t.TypeParameters) > 0
}

// Type returns the trait type parameterized with its own type parameters.
func (t *TraitElement) Type() *ir.DeclaredTypeName {
	return t.Name.Type(refs(t.TypeParameters)...)
}

// Declares returns true if the trait declares a method called name.
func (t *TraitElement) Declares(name string) bool {
	return lo.ContainsBy(t.Methods, func(m Method) bool { return m.Name == name })
}

// Validate rejects traits the engine cannot compose: an empty name, a
// method without a name or named by a reserved word, malformed types, and
// two methods with equal signatures.
func (t *TraitElement) Validate() error {
	if t.Name.Simple == "" {
		return errors.Configurationf("trait has no name")
	}
	declared := make(map[string]bool, len(t.TypeParameters))
	for _, g := range t.TypeParameters {
		declared[g.QualifiedName()] = true
	}
	for i, m := range t.Methods {
		if m.Name == "" {
			return errors.Configurationf("trait %s: method %d has no name", t.Name, i)
		}
		if java.IsReserved(m.Name) {
			return errors.Configurationf("trait %s: method name %s is a reserved word", t.Name, m.Name)
		}
		if err := m.check(declared); err != nil {
			return errors.Wrapf(err, "trait %s: method %s", t.Name, m.Name)
		}
		sig := m.Signature()
		for _, prev := range t.Methods[:i] {
			if prev.Signature().Equal(sig) {
				return errors.Configurationf("trait %s declares %s twice", t.Name, sig)
			}
		}
	}
	return nil
}

// check validates the types of m. Only the last parameter may be varargs,
// and it needs at least one array dimension. Every generic must be declared
// by the trait or by m.
func (m Method) check(traitGenerics map[string]bool) error {
	var last ir.TypeName
	for i, p := range m.Params {
		if p.Type == nil {
			return errors.Configurationf("parameter %d has no type", i)
		}
		last = p.Type
	}
	scope := make(map[string]bool, len(traitGenerics)+len(m.Generics))
	for name := range traitGenerics {
		scope[name] = true
	}
	for _, g := range m.Generics {
		scope[g.QualifiedName()] = true
	}

	for _, root := range m.Types() {
		var bad error
		ir.Walk(root, func(n ir.TypeName) bool {
			switch d := n.Dims(); {
			case !d.VarArgs:
			case n != last:
				bad = errors.Configurationf("%s: only the last parameter can be varargs", n)
			case d.Depth < 1:
				bad = errors.Configurationf("%s: varargs without an array dimension", n)
			}
			return bad == nil
		})
		if bad != nil {
			return bad
		}
		for _, g := range ir.Generics(root) {
			if !scope[g] {
				return errors.Resolutionf("type parameter %s is not declared", g)
			}
		}
	}
	return nil
}

// HostClass is one annotated class to compose. It is consumed by a single
// Compose call.
type HostClass struct {
	Name   ir.ClassName
	Traits []*TraitElement

	// DesiredSuperclass is the superclass of the generated superclass. Nil
	// means the root object type.
	DesiredSuperclass ir.TypeName

	// Prefer maps a colliding method name to the trait whose delegate wins.
	Prefer map[string]*TraitElement
}

// Superclass returns DesiredSuperclass, defaulting to the root object type.
func (h *HostClass) Superclass() ir.TypeName {
	if h.DesiredSuperclass == nil {
		return ir.Object()
	}
	return h.DesiredSuperclass
}

func refs(params []*ir.GenericName) []ir.TypeName {
	if len(params) == 0 {
		return nil
	}
	return lo.Map(params, func(g *ir.GenericName, _ int) ir.TypeName { return g.Ref() })
}
