// Package traittest provides helpers for building discovered elements and
// checking generated Java source in tests.
// It only depends on the discovery package, so any package can import it.
package traittest

import (
	"strings"
	"testing"
	"unicode"

	"github.com/tisoft/java-traits/traitgen/discovery"
)

// ElementBuilder helps construct discovery elements with a fluent API.
type ElementBuilder struct {
	elem   discovery.Element
	traits []any
	prefer []any
	super  string
}

// Trait starts a trait element with a qualified name.
func Trait(name string, typeParams ...string) *ElementBuilder {
	return &ElementBuilder{elem: discovery.Element{
		Kind:           discovery.KindTrait,
		Name:           name,
		TypeParameters: typeParams,
	}}
}

// Host starts a host element with a qualified name.
func Host(name string) *ElementBuilder {
	return &ElementBuilder{elem: discovery.Element{Kind: discovery.KindHost, Name: name}}
}

// Method adds a concrete method. Params are "type name" pairs; a param
// without a name is given none.
func (b *ElementBuilder) Method(returns, name string, params ...string) *ElementBuilder {
	b.elem.Methods = append(b.elem.Methods, discovery.MethodDecl{
		Name:    name,
		Returns: returns,
		Params:  paramDecls(params),
	})
	return b
}

// Abstract adds an abstract method.
func (b *ElementBuilder) Abstract(returns, name string, params ...string) *ElementBuilder {
	b.Method(returns, name, params...)
	b.elem.Methods[len(b.elem.Methods)-1].Abstract = true
	return b
}

// Throws sets the throws clause of the last added method.
func (b *ElementBuilder) Throws(types ...string) *ElementBuilder {
	if n := len(b.elem.Methods); n > 0 {
		b.elem.Methods[n-1].Throws = append(b.elem.Methods[n-1].Throws, types...)
	}
	return b
}

// Uses adds traits to a host annotation.
func (b *ElementBuilder) Uses(traits ...string) *ElementBuilder {
	for _, t := range traits {
		b.traits = append(b.traits, t)
	}
	return b
}

// Extends sets the desired superclass of a host.
func (b *ElementBuilder) Extends(super string) *ElementBuilder {
	b.super = super
	return b
}

// Prefer adds a collision resolution to a host annotation.
func (b *ElementBuilder) Prefer(target, method string) *ElementBuilder {
	b.prefer = append(b.prefer, map[string]any{"target": target, "method": method})
	return b
}

// At sets the source position.
func (b *ElementBuilder) At(file string, line int) *ElementBuilder {
	b.elem.Pos = discovery.Pos{File: file, Line: line}
	return b
}

// Build returns the element. A host gets an annotation even when empty.
func (b *ElementBuilder) Build() discovery.Element {
	e := b.elem
	e.Methods = append([]discovery.MethodDecl(nil), b.elem.Methods...)
	if e.Kind == discovery.KindHost {
		raw := map[string]any{}
		if b.traits != nil {
			raw["traits"] = append([]any(nil), b.traits...)
		}
		if b.super != "" {
			raw["desiredSuperclass"] = b.super
		}
		if b.prefer != nil {
			raw["prefer"] = append([]any(nil), b.prefer...)
		}
		e.Annotation = discovery.NewAnnotation(raw)
	}
	return e
}

func paramDecls(params []string) []discovery.ParamDecl {
	var out []discovery.ParamDecl
	for _, p := range params {
		p = strings.TrimSpace(p)
		if i := strings.LastIndexByte(p, ' '); i > 0 && isIdent(p[i+1:]) {
			out = append(out, discovery.ParamDecl{Type: strings.TrimSpace(p[:i]), Name: p[i+1:]})
			continue
		}
		out = append(out, discovery.ParamDecl{Type: p})
	}
	return out
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// Elements builds each builder in order.
func Elements(bs ...*ElementBuilder) []discovery.Element {
	out := make([]discovery.Element, len(bs))
	for i, b := range bs {
		out[i] = b.Build()
	}
	return out
}

// AssertLines checks that src contains each line, ignoring leading and
// trailing whitespace on both sides.
func AssertLines(t testing.TB, src string, lines ...string) {
	t.Helper()
	have := make(map[string]bool)
	for _, l := range strings.Split(src, "\n") {
		have[strings.TrimSpace(l)] = true
	}
	for _, want := range lines {
		if !have[strings.TrimSpace(want)] {
			t.Errorf("missing line %q in:\n%s", want, src)
		}
	}
}

// AssertNoLine checks that no line of src contains substr.
func AssertNoLine(t testing.TB, src, substr string) {
	t.Helper()
	for i, l := range strings.Split(src, "\n") {
		if strings.Contains(l, substr) {
			t.Errorf("line %d contains %q: %s", i+1, substr, l)
		}
	}
}
