package java

import "github.com/tisoft/java-traits/traitgen/ir"

// Names is the known-names table of one emission session. It maps a simple
// name to the qualified names registered under it, in registration order.
// The first registration owns the simple name; every later name sharing it
// renders fully qualified.
type Names struct {
	pkg   string
	known map[string][]ir.ClassName
}

// NewNames returns an empty table for a file in package pkg.
func NewNames(pkg string) *Names {
	return &Names{pkg: pkg, known: make(map[string][]ir.ClassName)}
}

// Register records cn and reports whether it owns its simple name.
// Registering a name twice is a no-op.
func (n *Names) Register(cn ir.ClassName) bool {
	list := n.known[cn.Simple]
	for _, k := range list {
		if k == cn {
			return list[0] == cn
		}
	}
	n.known[cn.Simple] = append(list, cn)
	return len(list) == 0
}

// Registered reports whether cn has been registered.
func (n *Names) Registered(cn ir.ClassName) bool {
	for _, k := range n.known[cn.Simple] {
		if k == cn {
			return true
		}
	}
	return false
}

// Owner returns the name that owns simple, if any.
func (n *Names) Owner(simple string) (ir.ClassName, bool) {
	list := n.known[simple]
	if len(list) == 0 {
		return ir.ClassName{}, false
	}
	return list[0], true
}

// NeedsImport reports whether cn gets an import line: it must own its simple
// name and live outside the default package, java.lang and the file's own
// package.
func (n *Names) NeedsImport(cn ir.ClassName) bool {
	if cn.Package == "" || cn.Package == ir.LangPackage || cn.Package == n.pkg {
		return false
	}
	owner, ok := n.Owner(cn.Simple)
	return ok && owner == cn
}

// Render returns the shortest unambiguous spelling of cn.
func (n *Names) Render(cn ir.ClassName) string {
	if cn.Package == "" {
		return cn.Simple
	}
	owner, ok := n.Owner(cn.Simple)
	if ok {
		if owner == cn {
			return cn.Simple
		}
		return cn.String()
	}
	// Unregistered names are in scope implicitly only from java.lang or the
	// file's own package.
	if cn.Package == ir.LangPackage || cn.Package == n.pkg {
		return cn.Simple
	}
	return cn.String()
}
