// Package java emits Java source text for one top-level type per session.
//
// An Emitter is a forward-only state machine:
//
//	PhasePackage -> PhaseImports -> PhaseTypeHeader -> PhaseTypeBody -> PhaseClosed
//
// Calling an operation outside its phase returns an emission_state error.
// Such an error is always a defect in the caller, never bad input.
//
// Each Emitter owns its known-names table and must not be shared between
// goroutines.
package java

import (
	"bytes"
	"strings"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/ir"
)

// Phase is the state of an emission session.
type Phase int

const (
	PhasePackage    Phase = iota // Nothing written yet
	PhaseImports                 // Package written, imports may follow
	PhaseTypeHeader              // Type declaration open, header clauses may follow
	PhaseTypeBody                // Header finished, members may follow
	PhaseClosed                  // Type closed, content final
)

func (p Phase) String() string {
	switch p {
	case PhasePackage:
		return "PACKAGE"
	case PhaseImports:
		return "IMPORTS"
	case PhaseTypeHeader:
		return "TYPE_HEADER"
	case PhaseTypeBody:
		return "TYPE_BODY"
	case PhaseClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// TypeKind selects between a class and an interface declaration.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
)

func (k TypeKind) String() string {
	if k == KindInterface {
		return "interface"
	}
	return "class"
}

// Modifier is a declaration modifier keyword.
type Modifier string

const (
	Public    Modifier = "public"
	Protected Modifier = "protected"
	Private   Modifier = "private"
	Abstract  Modifier = "abstract"
	Static    Modifier = "static"
	Final     Modifier = "final"
)

// Param is a method or constructor parameter.
type Param struct {
	Type ir.TypeName
	Name string
}

// FieldDecl declares a field, optionally initialized.
type FieldDecl struct {
	Modifiers []Modifier
	Type      ir.TypeName
	Name      string
	Init      Expr
}

// MethodDecl declares a method or, when Constructor is set, a constructor
// named after the type being emitted. A method without a body is written
// with a terminating semicolon; Abstract adds the modifier on classes.
type MethodDecl struct {
	Modifiers   []Modifier
	Generics    []*ir.GenericName
	Return      ir.TypeName
	Name        string
	Params      []Param
	Throws      []ir.TypeName
	Body        []Stmt
	Abstract    bool
	Constructor bool
}

// Config configures emitted formatting.
type Config struct {
	// Indent is one level of indentation. Defaults to four spaces.
	Indent string
}

// Emitter writes one top-level Java type.
type Emitter struct {
	buf    bytes.Buffer
	config Config
	phase  Phase
	names  *Names

	kind        TypeKind
	simple      string
	generics    bool
	superclass  bool
	interfaces  bool
	members     int
	lastWasFunc bool
}

// NewEmitter returns an emitter in PhasePackage.
func NewEmitter(cfg Config) *Emitter {
	if cfg.Indent == "" {
		cfg.Indent = "    "
	}
	return &Emitter{config: cfg, names: NewNames("")}
}

// Phase returns the current phase.
func (e *Emitter) Phase() Phase { return e.phase }

// Names returns the session's known-names table.
func (e *Emitter) Names() *Names { return e.names }

func (e *Emitter) expect(op string, want Phase) error {
	if e.phase != want {
		return errors.EmissionStatef("%s requires phase %s, emitter is in %s", op, want, e.phase)
	}
	return nil
}

// WritePackage writes the package clause. An empty package is the default
// package and writes nothing.
func (e *Emitter) WritePackage(pkg string) error {
	if err := e.expect("WritePackage", PhasePackage); err != nil {
		return err
	}
	e.names = NewNames(pkg)
	if pkg != "" {
		e.buf.WriteString("package ")
		e.buf.WriteString(pkg)
		e.buf.WriteString(";\n\n")
	}
	e.phase = PhaseImports
	return nil
}

// WriteImports registers names in order and writes an import line for each
// name that owns its simple name and is not implicitly in scope. It may be
// called more than once before BeginType.
func (e *Emitter) WriteImports(names ...ir.ClassName) error {
	if err := e.expect("WriteImports", PhaseImports); err != nil {
		return err
	}
	wrote := false
	for _, cn := range names {
		if e.names.Registered(cn) || !e.names.Register(cn) {
			continue
		}
		if e.names.NeedsImport(cn) {
			e.buf.WriteString("import ")
			e.buf.WriteString(cn.String())
			e.buf.WriteString(";\n")
			wrote = true
		}
	}
	if wrote {
		e.buf.WriteByte('\n')
	}
	return nil
}

// BeginType opens the type declaration "modifiers kind name".
func (e *Emitter) BeginType(kind TypeKind, name string, modifiers ...Modifier) error {
	if err := e.expect("BeginType", PhaseImports); err != nil {
		return err
	}
	e.kind = kind
	e.simple = name
	writeModifiers(&e.buf, modifiers)
	e.buf.WriteString(kind.String())
	e.buf.WriteByte(' ')
	e.buf.WriteString(name)
	e.phase = PhaseTypeHeader
	return nil
}

// AppendGenerics writes the type parameter list. It must precede the
// superclass and interfaces and may be called once.
func (e *Emitter) AppendGenerics(params ...*ir.GenericName) error {
	if err := e.expect("AppendGenerics", PhaseTypeHeader); err != nil {
		return err
	}
	if e.generics || e.superclass || e.interfaces {
		return errors.EmissionStatef("AppendGenerics after type parameters, superclass or interfaces of %s", e.simple)
	}
	e.generics = true
	e.buf.WriteString(e.typeParams(params))
	return nil
}

// AddSuperclass writes the extends clause of a class.
func (e *Emitter) AddSuperclass(t ir.TypeName) error {
	if err := e.expect("AddSuperclass", PhaseTypeHeader); err != nil {
		return err
	}
	if e.kind != KindClass {
		return errors.EmissionStatef("AddSuperclass on %s %s", e.kind, e.simple)
	}
	if e.superclass || e.interfaces {
		return errors.EmissionStatef("AddSuperclass after superclass or interfaces of %s", e.simple)
	}
	e.superclass = true
	e.buf.WriteString(" extends ")
	e.buf.WriteString(e.TypeString(t))
	return nil
}

// AddInterfaces writes the implements clause of a class, or the extends
// clause of an interface. An empty list writes nothing.
func (e *Emitter) AddInterfaces(types ...ir.TypeName) error {
	if err := e.expect("AddInterfaces", PhaseTypeHeader); err != nil {
		return err
	}
	if e.interfaces {
		return errors.EmissionStatef("AddInterfaces called twice on %s", e.simple)
	}
	e.interfaces = true
	if len(types) == 0 {
		return nil
	}
	if e.kind == KindInterface {
		e.buf.WriteString(" extends ")
	} else {
		e.buf.WriteString(" implements ")
	}
	for i, t := range types {
		if i > 0 {
			e.buf.WriteString(", ")
		}
		e.buf.WriteString(e.TypeString(t))
	}
	return nil
}

// FinishTypeHeader opens the type body.
func (e *Emitter) FinishTypeHeader() error {
	if err := e.expect("FinishTypeHeader", PhaseTypeHeader); err != nil {
		return err
	}
	e.buf.WriteString(" {\n")
	e.phase = PhaseTypeBody
	return nil
}

// WriteField writes a field declaration.
func (e *Emitter) WriteField(f FieldDecl) error {
	if err := e.expect("WriteField", PhaseTypeBody); err != nil {
		return err
	}
	if e.lastWasFunc {
		e.buf.WriteByte('\n')
	}
	e.buf.WriteString(e.config.Indent)
	writeModifiers(&e.buf, f.Modifiers)
	e.buf.WriteString(e.TypeString(f.Type))
	e.buf.WriteByte(' ')
	e.buf.WriteString(f.Name)
	if f.Init != nil {
		e.buf.WriteString(" = ")
		e.buf.WriteString(e.ExprString(f.Init))
	}
	e.buf.WriteString(";\n")
	e.members++
	e.lastWasFunc = false
	return nil
}

// WriteMethod writes a method or constructor.
func (e *Emitter) WriteMethod(m MethodDecl) error {
	if err := e.expect("WriteMethod", PhaseTypeBody); err != nil {
		return err
	}
	if e.members > 0 {
		e.buf.WriteByte('\n')
	}
	indent := e.config.Indent
	e.buf.WriteString(indent)
	mods := m.Modifiers
	if m.Abstract && e.kind == KindClass {
		mods = append(append([]Modifier(nil), mods...), Abstract)
	}
	writeModifiers(&e.buf, mods)
	if len(m.Generics) > 0 {
		e.buf.WriteString(e.typeParams(m.Generics))
		e.buf.WriteByte(' ')
	}
	if m.Constructor {
		e.buf.WriteString(e.simple)
	} else {
		ret := m.Return
		if ret == nil {
			ret = ir.Void()
		}
		e.buf.WriteString(e.TypeString(ret))
		e.buf.WriteByte(' ')
		e.buf.WriteString(m.Name)
	}
	e.buf.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			e.buf.WriteString(", ")
		}
		e.buf.WriteString(e.TypeString(p.Type))
		e.buf.WriteByte(' ')
		e.buf.WriteString(p.Name)
	}
	e.buf.WriteByte(')')
	if len(m.Throws) > 0 {
		e.buf.WriteString(" throws ")
		for i, t := range m.Throws {
			if i > 0 {
				e.buf.WriteString(", ")
			}
			e.buf.WriteString(e.TypeString(t))
		}
	}

	if m.Abstract || (e.kind == KindInterface && m.Body == nil) {
		e.buf.WriteString(";\n")
	} else {
		e.buf.WriteString(" {\n")
		for _, s := range m.Body {
			e.buf.WriteString(indent)
			e.buf.WriteString(indent)
			if s.Return {
				e.buf.WriteString("return ")
			}
			e.buf.WriteString(e.ExprString(s.Expr))
			e.buf.WriteString(";\n")
		}
		e.buf.WriteString(indent)
		e.buf.WriteString("}\n")
	}
	e.members++
	e.lastWasFunc = true
	return nil
}

// Close closes the type declaration. The content is final afterwards.
func (e *Emitter) Close() error {
	if err := e.expect("Close", PhaseTypeBody); err != nil {
		return err
	}
	e.buf.WriteString("}\n")
	e.phase = PhaseClosed
	return nil
}

// Bytes returns the emitted source. It fails unless the session is closed,
// so a partial unit can never be taken for a finished one.
func (e *Emitter) Bytes() ([]byte, error) {
	if err := e.expect("Bytes", PhaseClosed); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// TypeString renders a type usage against the session's known names.
// Bounds are written for wildcards only.
func (e *Emitter) TypeString(t ir.TypeName) string {
	var b strings.Builder
	e.writeType(&b, t, false)
	return b.String()
}

// ExprString renders an expression against the session's known names.
func (e *Emitter) ExprString(x Expr) string {
	var b strings.Builder
	x.render(e, &b)
	return b.String()
}

func (e *Emitter) writeType(b *strings.Builder, t ir.TypeName, decl bool) {
	switch x := t.(type) {
	case *ir.DeclaredTypeName:
		b.WriteString(e.names.Render(x.ClassName()))
		if len(x.TypeArgs) > 0 {
			b.WriteByte('<')
			for i, a := range x.TypeArgs {
				if i > 0 {
					b.WriteString(", ")
				}
				e.writeType(b, a, false)
			}
			b.WriteByte('>')
		}
		b.WriteString(x.Suffix())
	case *ir.GenericName:
		b.WriteString(x.QualifiedName())
		if decl || x.IsWildcard() {
			if x.HasExtendsBound() {
				b.WriteString(" extends ")
				for i, bound := range x.ExtendsBounds {
					if i > 0 {
						b.WriteString(" & ")
					}
					e.writeType(b, bound, false)
				}
			}
			if x.HasSuperBound() {
				b.WriteString(" super ")
				e.writeType(b, x.SuperBound, false)
			}
		}
		b.WriteString(x.Suffix())
	}
}

func (e *Emitter) typeParams(params []*ir.GenericName) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('<')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		e.writeType(&b, p, true)
	}
	b.WriteByte('>')
	return b.String()
}

func writeModifiers(buf *bytes.Buffer, mods []Modifier) {
	for _, m := range mods {
		buf.WriteString(string(m))
		buf.WriteByte(' ')
	}
}
