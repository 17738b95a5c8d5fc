// Package discovery supplies the elements a generation round works on:
// trait declarations and annotated host classes, with their methods and
// annotation values. It also carries diagnostics back to the user.
//
// The engine consumes the Collaborator interface only. This package ships
// a manifest-backed implementation (TOML, YAML or txtar archives of either)
// and Static, a literal one for tests.
package discovery

import (
	"context"
	"fmt"
	"strings"
)

// Kind says whether an element declares a trait or a host class.
type Kind string

const (
	KindTrait Kind = "trait"
	KindHost  Kind = "host"
)

// Pos is a source location. Line is 0 when the format does not report one.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	switch {
	case p.File == "":
		return "-"
	case p.Line > 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return p.File
	}
}

// ParamDecl is a method parameter as written in a manifest.
type ParamDecl struct {
	Name string `toml:"name" yaml:"name"`
	Type string `toml:"type" yaml:"type" validate:"required"`
}

// MethodDecl is a method as written in a manifest. Types are fully
// qualified type strings, see ir.Parse.
type MethodDecl struct {
	Name     string      `toml:"name" yaml:"name" validate:"required"`
	Returns  string      `toml:"returns" yaml:"returns"`
	Params   []ParamDecl `toml:"params" yaml:"params" validate:"dive"`
	Throws   []string    `toml:"throws" yaml:"throws"`
	Generics []string    `toml:"generics" yaml:"generics"`
	Abstract bool        `toml:"abstract" yaml:"abstract"`
}

// Element is one discovered declaration.
type Element struct {
	Kind Kind

	// Name is the qualified name, e.g. com.example.traits.Rectangular.
	Name string

	// TypeParameters are declarations such as "T extends java.lang.Number".
	TypeParameters []string

	Methods []MethodDecl

	// Annotation holds the host class configuration. Empty for traits.
	Annotation Annotation

	Pos Pos
}

// Package returns the package part of Name.
func (e Element) Package() string {
	if i := strings.LastIndexByte(e.Name, '.'); i >= 0 {
		return e.Name[:i]
	}
	return ""
}

// Qualify resolves a type reference written in e's compilation unit: a
// name without a package refers to e's package.
func (e Element) Qualify(ref string) string {
	ref = strings.TrimSpace(ref)
	if hasPackage(ref) || e.Package() == "" {
		return ref
	}
	return e.Package() + "." + ref
}

// hasPackage reports whether the type named by ref, ignoring its type
// arguments and array suffix, is written with a package.
func hasPackage(ref string) bool {
	if i := strings.IndexAny(ref, "<["); i >= 0 {
		ref = ref[:i]
	}
	return strings.Contains(ref, ".")
}

// Collaborator is the engine's view of the host toolchain.
type Collaborator interface {
	// Elements returns the declarations visible in the current round.
	Elements(ctx context.Context) ([]Element, error)

	Reporter
}
