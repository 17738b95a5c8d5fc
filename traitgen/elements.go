package traitgen

import (
	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/compose"
	"github.com/tisoft/java-traits/traitgen/discovery"
	"github.com/tisoft/java-traits/traitgen/ir"
)

// TraitFromElement builds the engine's view of a trait element.
func TraitFromElement(e discovery.Element) (*compose.TraitElement, error) {
	if e.Kind != discovery.KindTrait {
		return nil, errors.Configurationf("%s is a %s, not a trait", e.Name, e.Kind)
	}
	name, err := ir.ParseQualifiedName(e.Name)
	if err != nil {
		return nil, err
	}
	params, err := ir.ParseTypeParameters(e.TypeParameters, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "trait %s", e.Name)
	}
	t := &compose.TraitElement{Name: name, TypeParameters: params}
	scope := ir.NewScope(params...)
	for _, d := range e.Methods {
		m, err := methodFromDecl(d, scope)
		if err != nil {
			return nil, errors.Wrapf(err, "trait %s: method %s", e.Name, d.Name)
		}
		t.Methods = append(t.Methods, m)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func methodFromDecl(d discovery.MethodDecl, scope ir.Scope) (compose.Method, error) {
	generics, err := ir.ParseTypeParameters(d.Generics, scope)
	if err != nil {
		return compose.Method{}, err
	}
	scope = scope.With(generics...)
	m := compose.Method{Name: d.Name, Generics: generics, Abstract: d.Abstract}
	if d.Returns != "" {
		if m.Return, err = ir.Parse(d.Returns, scope); err != nil {
			return compose.Method{}, err
		}
	}
	for _, p := range d.Params {
		typ, err := ir.Parse(p.Type, scope)
		if err != nil {
			return compose.Method{}, errors.Wrapf(err, "parameter %s", p.Name)
		}
		m.Params = append(m.Params, compose.Param{Name: p.Name, Type: typ})
	}
	for _, s := range d.Throws {
		typ, err := ir.Parse(s, scope)
		if err != nil {
			return compose.Method{}, err
		}
		m.Throws = append(m.Throws, typ)
	}
	return m, nil
}

// HostSpecFromElement decodes the annotation of a host element. Trait and
// superclass references without a package refer to the host's package.
func HostSpecFromElement(e discovery.Element) (compose.HostSpec, error) {
	var spec compose.HostSpec
	if e.Kind != discovery.KindHost {
		return spec, errors.Configurationf("only a class can be annotated: %s is a %s", e.Name, e.Kind)
	}
	name, err := ir.ParseQualifiedName(e.Name)
	if err != nil {
		return spec, err
	}
	spec.Name = name

	cfg, err := discovery.DecodeHostConfig(e.Annotation)
	if err != nil {
		return spec, errors.Wrapf(err, "host %s", e.Name)
	}
	for _, ref := range cfg.Traits {
		tn, err := ir.ParseQualifiedName(e.Qualify(ref))
		if err != nil {
			return spec, errors.Wrapf(err, "host %s: trait", e.Name)
		}
		spec.Traits = append(spec.Traits, tn)
	}
	if cfg.DesiredSuperclass != "" {
		sup, err := ir.Parse(e.Qualify(cfg.DesiredSuperclass), nil)
		if err != nil {
			return spec, errors.Wrapf(err, "host %s: desiredSuperclass", e.Name)
		}
		if _, ok := sup.(*ir.DeclaredTypeName); !ok || sup.Dims().IsArray() {
			return spec, errors.Configurationf("host %s: desiredSuperclass %s is not a class", e.Name, sup)
		}
		spec.DesiredSuperclass = sup
	}
	for _, p := range cfg.Prefer {
		target, err := ir.ParseQualifiedName(e.Qualify(p.Target))
		if err != nil {
			return spec, errors.Wrapf(err, "host %s: prefer entry for %s", e.Name, p.Method)
		}
		spec.Prefer = append(spec.Prefer, compose.Preference{Method: p.Method, Target: target})
	}
	return spec, nil
}
