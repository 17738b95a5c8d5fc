// Package ir defines the type-reference model used to analyze traits and to
// emit the generated units. A TypeName is either a declared (class or
// primitive) name or a generic name; the set is closed.
package ir

import "strings"

// Kind identifies the variant of a TypeName.
type Kind int

const (
	KindDeclared Kind = iota // Class, interface or primitive name, optionally parameterized
	KindGeneric              // Type variable or wildcard
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDeclared:
		return "Declared"
	case KindGeneric:
		return "Generic"
	default:
		return "Unknown"
	}
}

// TypeName is a reference to a type. Implementations are *DeclaredTypeName
// and *GenericName; operations switch exhaustively over both.
//
// Values are shared freely between traits, signatures and emitted units.
// Callers must not mutate a TypeName they did not create; use Clone to get
// an independent copy.
type TypeName interface {
	// Kind returns the variant for type switching.
	Kind() Kind

	// Dims returns the array dimensions of this reference.
	Dims() Array

	// Clone returns a value-equal copy that shares no storage with the receiver.
	Clone() TypeName

	// String renders the fully-qualified form, for diagnostics.
	String() string

	// Ensure only types in this package can implement TypeName.
	sealed()
}

// Array describes the array dimensions of a type reference.
// VarArgs means the outermost dimension is written as "..." and requires
// Depth >= 1. Parse never produces a violation; Suffix renders one as a
// plain type, so hand-built values must be validated by their user.
type Array struct {
	Depth   int
	VarArgs bool
}

// Dims returns the array dimensions.
func (a Array) Dims() Array { return a }

// IsArray returns true if the reference has at least one dimension.
func (a Array) IsArray() bool { return a.Depth > 0 }

// Suffix renders the dimensions as "[]" pairs, the last one as "..." for varargs.
func (a Array) Suffix() string {
	if a.Depth <= 0 {
		return ""
	}
	if a.VarArgs {
		return strings.Repeat("[]", a.Depth-1) + "..."
	}
	return strings.Repeat("[]", a.Depth)
}

// ClassName is the identity of a declared name without type arguments or
// array dimensions. It is comparable and is used as the element of import
// sets and as the key of registries.
type ClassName struct {
	// Package is the dotted package name. Empty for primitives and void.
	Package string

	// Simple is the simple name, including any enclosing class prefix.
	Simple string
}

// String returns the qualified name.
func (c ClassName) String() string {
	if c.Package == "" {
		return c.Simple
	}
	return c.Package + "." + c.Simple
}

// IsZero returns true if the name is empty.
func (c ClassName) IsZero() bool {
	return c.Package == "" && c.Simple == ""
}

// Type returns a DeclaredTypeName for c with the given type arguments.
func (c ClassName) Type(args ...TypeName) *DeclaredTypeName {
	return &DeclaredTypeName{Package: c.Package, Simple: c.Simple, TypeArgs: args}
}

// ObjectClass is the universal root object type. It is always in scope and
// never gathered as an import.
var ObjectClass = ClassName{Package: "java.lang", Simple: "Object"}

// LangPackage is the package whose names are implicitly in scope.
const LangPackage = "java.lang"

// Object returns a new reference to the root object type.
func Object() *DeclaredTypeName {
	return ObjectClass.Type()
}

// Void returns a new reference to the void pseudo-type.
func Void() *DeclaredTypeName {
	return &DeclaredTypeName{Simple: "void"}
}
