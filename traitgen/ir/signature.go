package ir

import "strings"

// MethodSignature identifies a method for collision detection: two methods
// from different traits are the same method iff their signatures are Equal.
type MethodSignature struct {
	Name   string
	Return TypeName
	Args   []TypeName
}

// Equal compares name, return type and argument types, including array
// depth, varargs and nested type arguments.
func (s MethodSignature) Equal(o MethodSignature) bool {
	return s.Name == o.Name &&
		StrictEqual(s.Return, o.Return) &&
		equalList(s.Args, o.Args, StrictEqual)
}

// Clone returns a deep copy of s.
func (s MethodSignature) Clone() MethodSignature {
	c := MethodSignature{Name: s.Name, Args: cloneList(s.Args)}
	if s.Return != nil {
		c.Return = s.Return.Clone()
	}
	return c
}

// Types returns every type referenced by s, return type first.
func (s MethodSignature) Types() []TypeName {
	out := make([]TypeName, 0, len(s.Args)+1)
	if s.Return != nil {
		out = append(out, s.Return)
	}
	return append(out, s.Args...)
}

// String renders "ret name(arg, ...)".
func (s MethodSignature) String() string {
	var b strings.Builder
	if s.Return != nil {
		b.WriteString(s.Return.String())
		b.WriteByte(' ')
	}
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}
