package java

import (
	"strings"

	"github.com/tisoft/java-traits/traitgen/ir"
)

// Expr is an expression in a generated method body. The set is closed:
// *Ref, *Assign, *StaticCall, *Call and *New.
type Expr interface {
	render(e *Emitter, b *strings.Builder)
	sealed()
}

// Ref references a field, local or parameter. With Receiver set it renders
// "receiver.name"; with Static set it renders "Type.name" using the
// session's name shortening; otherwise just "name".
type Ref struct {
	Receiver Expr
	Static   ir.ClassName
	Name     string
}

// Assign renders "target = value".
type Assign struct {
	Target Expr
	Value  Expr
}

// StaticCall renders "Type.method(args)".
type StaticCall struct {
	Type   ir.ClassName
	Method string
	Args   []Expr
}

// Call renders "receiver.method(args)", or "method(args)" without a
// receiver. Method "super" or "this" with no receiver is a constructor call.
type Call struct {
	Receiver Expr
	Method   string
	Args     []Expr
}

// New renders "new Type<args>(args)".
type New struct {
	Type ir.TypeName
	Args []Expr
}

// Stmt is one statement: an expression, optionally returned.
type Stmt struct {
	Expr   Expr
	Return bool
}

// This refers to the current instance.
func This() *Ref { return &Ref{Name: "this"} }

// Field returns a reference to a field of the current instance.
func Field(name string) *Ref { return &Ref{Receiver: This(), Name: name} }

// Local returns an unqualified reference.
func Local(name string) *Ref { return &Ref{Name: name} }

// Refs returns unqualified references to names, for argument lists.
func Refs(names ...string) []Expr {
	out := make([]Expr, len(names))
	for i, n := range names {
		out[i] = Local(n)
	}
	return out
}

func (*Ref) sealed()        {}
func (*Assign) sealed()     {}
func (*StaticCall) sealed() {}
func (*Call) sealed()       {}
func (*New) sealed()        {}

func (r *Ref) render(e *Emitter, b *strings.Builder) {
	switch {
	case r.Receiver != nil:
		r.Receiver.render(e, b)
		b.WriteByte('.')
	case !r.Static.IsZero():
		b.WriteString(e.names.Render(r.Static))
		b.WriteByte('.')
	}
	b.WriteString(r.Name)
}

func (a *Assign) render(e *Emitter, b *strings.Builder) {
	a.Target.render(e, b)
	b.WriteString(" = ")
	a.Value.render(e, b)
}

func (c *StaticCall) render(e *Emitter, b *strings.Builder) {
	b.WriteString(e.names.Render(c.Type))
	b.WriteByte('.')
	b.WriteString(c.Method)
	renderArgs(e, b, c.Args)
}

func (c *Call) render(e *Emitter, b *strings.Builder) {
	if c.Receiver != nil {
		c.Receiver.render(e, b)
		b.WriteByte('.')
	}
	b.WriteString(c.Method)
	renderArgs(e, b, c.Args)
}

func (n *New) render(e *Emitter, b *strings.Builder) {
	b.WriteString("new ")
	b.WriteString(e.TypeString(n.Type))
	renderArgs(e, b, n.Args)
}

func renderArgs(e *Emitter, b *strings.Builder, args []Expr) {
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.render(e, b)
	}
	b.WriteByte(')')
}
