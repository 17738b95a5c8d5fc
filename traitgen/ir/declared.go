package ir

import (
	"strings"

	"github.com/tisoft/java-traits/internal/errors"
)

// DeclaredTypeName is a reference to a class, interface or primitive type,
// optionally parameterized and optionally an array.
type DeclaredTypeName struct {
	Array

	// Package is the dotted package name. Empty for primitives and void.
	Package string

	// Simple is the simple name.
	Simple string

	// TypeArgs are the type arguments of a parameterized reference, in order.
	// Nil for a raw or non-generic reference.
	TypeArgs []TypeName
}

// Kind returns KindDeclared.
func (d *DeclaredTypeName) Kind() Kind { return KindDeclared }

func (*DeclaredTypeName) sealed() {}

// ClassName returns the identity of d without type arguments or dimensions.
func (d *DeclaredTypeName) ClassName() ClassName {
	return ClassName{Package: d.Package, Simple: d.Simple}
}

// IsPrimitive returns true for package-less names such as int or void.
func (d *DeclaredTypeName) IsPrimitive() bool {
	return d.Package == ""
}

// IsVoid returns true for the void pseudo-type.
func (d *DeclaredTypeName) IsVoid() bool {
	return d.Package == "" && d.Simple == "void" && d.Depth == 0
}

// Clone returns a deep copy of d.
func (d *DeclaredTypeName) Clone() TypeName {
	return d.CloneDeclared()
}

// CloneDeclared is Clone with a concrete result type.
func (d *DeclaredTypeName) CloneDeclared() *DeclaredTypeName {
	c := *d
	c.TypeArgs = cloneList(d.TypeArgs)
	return &c
}

// WithArgs returns a copy of d parameterized with args.
func (d *DeclaredTypeName) WithArgs(args ...TypeName) *DeclaredTypeName {
	c := d.CloneDeclared()
	c.TypeArgs = args
	return c
}

// String renders the fully-qualified form, e.g. "java.util.List<java.lang.String>[]".
func (d *DeclaredTypeName) String() string {
	var b strings.Builder
	b.WriteString(d.ClassName().String())
	writeArgs(&b, d.TypeArgs)
	b.WriteString(d.Suffix())
	return b.String()
}

// NewDeclared builds a DeclaredTypeName from a qualified name such as
// "java.util.List". An empty name is a configuration error.
func NewDeclared(qualified string, args ...TypeName) (*DeclaredTypeName, error) {
	cn, err := ParseQualifiedName(qualified)
	if err != nil {
		return nil, err
	}
	return cn.Type(args...), nil
}

// MustDeclared is like NewDeclared but panics on error. For literals in tests
// and package-level variables.
func MustDeclared(qualified string, args ...TypeName) *DeclaredTypeName {
	d, err := NewDeclared(qualified, args...)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseQualifiedName splits a dotted name into package and simple name at
// the last separator before any generic or array suffix. The suffix itself
// is discarded: "java.util.Map<K, V>[]" yields {java.util, Map}.
func ParseQualifiedName(qualified string) (ClassName, error) {
	name := strings.TrimSpace(qualified)
	if i := strings.IndexAny(name, "<["); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimSuffix(name, "...")
	if name == "" {
		return ClassName{}, errors.Configurationf("empty type name %q", qualified)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return ClassName{}, errors.Configurationf("malformed type name %q", qualified)
	}
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return ClassName{Simple: name}, nil
	}
	return ClassName{Package: name[:dot], Simple: name[dot+1:]}, nil
}

func cloneList(list []TypeName) []TypeName {
	if list == nil {
		return nil
	}
	out := make([]TypeName, len(list))
	for i, t := range list {
		out[i] = t.Clone()
	}
	return out
}

func writeArgs(b *strings.Builder, args []TypeName) {
	if len(args) == 0 {
		return
	}
	b.WriteByte('<')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte('>')
}
