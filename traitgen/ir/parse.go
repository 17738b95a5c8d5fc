package ir

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tisoft/java-traits/internal/errors"
)

// Scope resolves bare identifiers to the generic names in scope. A nil Scope
// is empty.
type Scope map[string]*GenericName

// NewScope returns a scope holding params under their declared names.
func NewScope(params ...*GenericName) Scope {
	s := make(Scope, len(params))
	for _, p := range params {
		s[p.Name] = p
	}
	return s
}

// With returns a copy of s extended with params.
func (s Scope) With(params ...*GenericName) Scope {
	out := make(Scope, len(s)+len(params))
	for k, v := range s {
		out[k] = v
	}
	for _, p := range params {
		out[p.Name] = p
	}
	return out
}

// Parse parses a type reference such as
//
//	java.util.Map<K, java.util.List<? extends java.lang.Number>>[]
//
// A bare identifier found in scope is a generic name; any other name is a
// declared name, with an empty package when it has no dots (int, boolean).
// Errors are configuration errors.
func Parse(s string, scope Scope) (TypeName, error) {
	p := &parser{src: s, scope: scope}
	p.next()
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string, scope Scope) TypeName {
	t, err := Parse(s, scope)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTypeParameter parses a type parameter declaration such as
// "T extends java.lang.Comparable<T> & java.io.Serializable". The parameter
// itself is in scope within its own bounds.
func ParseTypeParameter(s string, scope Scope) (*GenericName, error) {
	p := &parser{src: s}
	p.next()
	if p.tok.kind != tokIdent || strings.Contains(p.tok.text, ".") {
		return nil, p.errorf("expected type parameter name")
	}
	g := &GenericName{Name: p.tok.text}
	p.scope = scope.With(g)
	p.next()
	if p.tok.kind == tokIdent && p.tok.text == "extends" {
		p.next()
		bounds, err := p.parseBounds()
		if err != nil {
			return nil, err
		}
		g.ExtendsBounds = bounds
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return g, nil
}

// ParseTypeParameters parses an ordered parameter list. All names are in
// scope for every bound, so "A extends B, B" is accepted.
func ParseTypeParameters(decls []string, outer Scope) ([]*GenericName, error) {
	names := make([]*GenericName, len(decls))
	for i, d := range decls {
		name, _, _ := strings.Cut(strings.TrimSpace(d), " ")
		names[i] = &GenericName{Name: name}
	}
	scope := outer.With(names...)
	out := make([]*GenericName, len(decls))
	for i, d := range decls {
		g, err := ParseTypeParameter(d, scope)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokPunct
	tokEllipsis
	tokInvalid
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type parser struct {
	src   string
	off   int
	tok   token
	scope Scope
}

func (p *parser) errorf(format string, args ...any) error {
	return errors.WithDetailf(
		errors.Configurationf("invalid type %q: "+format, append([]any{p.src}, args...)...),
		"at offset %d", p.tok.pos)
}

func (p *parser) next() {
	for p.off < len(p.src) && p.src[p.off] == ' ' {
		p.off++
	}
	start := p.off
	if p.off >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}
	c, size := utf8.DecodeRuneInString(p.src[p.off:])
	switch {
	case strings.HasPrefix(p.src[p.off:], "..."):
		p.off += 3
		p.tok = token{kind: tokEllipsis, text: "...", pos: start}
	case strings.ContainsRune("<>,[]?&", c):
		p.off += size
		p.tok = token{kind: tokPunct, text: string(c), pos: start}
	case isIdentRune(c, true):
		for p.off < len(p.src) {
			r, n := utf8.DecodeRuneInString(p.src[p.off:])
			if isIdentRune(r, false) {
				p.off += n
				continue
			}
			// A dot continues a qualified name unless it starts "...".
			if r == '.' && !strings.HasPrefix(p.src[p.off:], "...") {
				p.off += n
				continue
			}
			break
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.off], pos: start}
	default:
		p.off += size
		p.tok = token{kind: tokInvalid, text: string(c), pos: start}
	}
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || r == '$' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}

func (p *parser) punct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *parser) parseType() (TypeName, error) {
	if p.punct("?") {
		return p.parseWildcard()
	}
	if p.tok.kind != tokIdent {
		if p.tok.kind == tokEOF {
			return nil, p.errorf("unexpected end of input")
		}
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	name := p.tok.text
	p.next()

	var t TypeName
	if g, ok := p.scope[name]; ok {
		t = g.Ref()
	} else {
		cn, err := ParseQualifiedName(name)
		if err != nil {
			return nil, err
		}
		d := cn.Type()
		if p.punct("<") {
			p.next()
			args, err := p.parseList(">")
			if err != nil {
				return nil, err
			}
			d.TypeArgs = args
		}
		t = d
	}
	dims, err := p.parseDims()
	if err != nil {
		return nil, err
	}
	return withDims(t, dims), nil
}

func (p *parser) parseWildcard() (TypeName, error) {
	p.next()
	w := Wildcard()
	if p.tok.kind != tokIdent {
		return w, nil
	}
	switch p.tok.text {
	case "extends":
		p.next()
		bounds, err := p.parseBounds()
		if err != nil {
			return nil, err
		}
		w.ExtendsBounds = bounds
	case "super":
		p.next()
		bound, err := p.parseType()
		if err != nil {
			return nil, err
		}
		w.SuperBound = bound
	default:
		return nil, p.errorf("unexpected %q after wildcard", p.tok.text)
	}
	return w, nil
}

func (p *parser) parseBounds() ([]TypeName, error) {
	var bounds []TypeName
	for {
		b, err := p.parseType()
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, b)
		if !p.punct("&") {
			return bounds, nil
		}
		p.next()
	}
}

func (p *parser) parseList(closing string) ([]TypeName, error) {
	var list []TypeName
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		list = append(list, t)
		switch {
		case p.punct(","):
			p.next()
		case p.punct(closing):
			p.next()
			return list, nil
		default:
			return nil, p.errorf("expected , or %s", closing)
		}
	}
}

func (p *parser) parseDims() (Array, error) {
	var a Array
	for p.punct("[") {
		p.next()
		if !p.punct("]") {
			return a, p.errorf("expected ]")
		}
		p.next()
		a.Depth++
	}
	if p.tok.kind == tokEllipsis {
		p.next()
		a.Depth++
		a.VarArgs = true
	}
	return a, nil
}
