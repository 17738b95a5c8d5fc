package compose

import (
	"slices"

	"github.com/tisoft/java-traits/traitgen/ir"
)

// Plan is the resolved layout of one host class: generated names, the
// composed type parameter list and the forwarding table.
type Plan struct {
	Host       *HostClass
	Superclass ir.ClassName
	Forwards   []Forward

	naming Naming
	keys   []string
	params [][]*ir.GenericName
}

func newPlan(h *HostClass, naming Naming, forwards []Forward) *Plan {
	p := &Plan{
		Host:       h,
		Superclass: naming.Superclass(h.Name),
		Forwards:   forwards,
		naming:     naming,
		keys:       traitKeys(h.Traits),
	}
	p.params = make([][]*ir.GenericName, len(h.Traits))
	for i, t := range h.Traits {
		sub := p.qualifier(i, nil)
		for _, g := range t.TypeParameters {
			q := &ir.GenericName{
				Name:          g.Name,
				Qualifier:     p.keys[i],
				ExtendsBounds: ir.SubstituteList(g.ExtendsBounds, sub),
				SuperBound:    ir.Substitute(g.SuperBound, sub),
			}
			p.params[i] = append(p.params[i], q)
		}
	}
	return p
}

// Key returns the identifier of trait i: its simple name, with an index
// suffix when another trait of the host shares the simple name.
func (p *Plan) Key(i int) string { return p.keys[i] }

// TypeParameters returns the generated superclass's type parameters: every
// trait's parameters in trait order, qualified with the trait key.
func (p *Plan) TypeParameters() []*ir.GenericName {
	var out []*ir.GenericName
	for _, ps := range p.params {
		out = append(out, ps...)
	}
	return out
}

// QualifiedParams returns the qualified type parameters of trait i.
func (p *Plan) QualifiedParams(i int) []*ir.GenericName {
	return p.params[i]
}

// SuperclassType returns the generated superclass parameterized with its
// own type parameters.
func (p *Plan) SuperclassType() *ir.DeclaredTypeName {
	return p.Superclass.Type(refs(p.TypeParameters())...)
}

// InterfaceType returns the interface of trait i as implemented by the
// generated superclass.
func (p *Plan) InterfaceType(i int) *ir.DeclaredTypeName {
	return p.naming.Interface(p.Host.Traits[i].Name).Type(refs(p.params[i])...)
}

// Delegate returns the delegate name of trait i.
func (p *Plan) Delegate(i int) ir.ClassName {
	return p.naming.Delegate(p.Host.Traits[i].Name, p.Host.Name)
}

// DelegateType returns the delegate of trait i as held by the generated
// superclass.
func (p *Plan) DelegateType(i int) *ir.DeclaredTypeName {
	return p.Delegate(i).Type(refs(p.params[i])...)
}

// DelegateField returns the name of the generated superclass's field
// holding the delegate of trait i.
func (p *Plan) DelegateField(i int) string {
	return delegateFieldPrefix + p.keys[i]
}

// DelegateInstanceType returns the type through which the delegate of
// trait i calls back into the generated superclass. Trait i's own
// parameters stay open; every parameter of another trait is erased to a
// wildcard of its own, so unrelated traits' generics are never coupled.
func (p *Plan) DelegateInstanceType(i int) *ir.DeclaredTypeName {
	var args []ir.TypeName
	for j, t := range p.Host.Traits {
		if j == i {
			args = append(args, refs(t.TypeParameters)...)
			continue
		}
		for range t.TypeParameters {
			args = append(args, ir.Wildcard())
		}
	}
	return p.Superclass.Type(args...)
}

// qualifier returns the substitution that renames trait i's own type
// parameters to their qualified form. Names in shadow, the generics of a
// method, are left alone.
func (p *Plan) qualifier(i int, shadow []*ir.GenericName) ir.Substitution {
	own := p.Host.Traits[i].TypeParameters
	key := p.keys[i]
	return func(g *ir.GenericName) ir.TypeName {
		if g.IsWildcard() || g.Qualifier != "" {
			return nil
		}
		isName := func(o *ir.GenericName) bool { return o.Name == g.Name }
		if slices.ContainsFunc(shadow, isName) || !slices.ContainsFunc(own, isName) {
			return nil
		}
		return &ir.GenericName{Name: g.Name, Qualifier: key}
	}
}

// Qualify rewrites m, declared by trait i, into the generated superclass's
// scope.
func (p *Plan) Qualify(i int, m Method) Method {
	sub := p.qualifier(i, m.Generics)
	out := Method{
		Name:     m.Name,
		Return:   ir.Substitute(m.Return, sub),
		Throws:   ir.SubstituteList(m.Throws, sub),
		Abstract: m.Abstract,
	}
	for _, g := range m.Generics {
		out.Generics = append(out.Generics, ir.Substitute(g, sub).(*ir.GenericName))
	}
	for _, prm := range m.Params {
		out.Params = append(out.Params, Param{Name: prm.Name, Type: ir.Substitute(prm.Type, sub)})
	}
	return out
}
