package compose

import (
	"strconv"

	"github.com/tisoft/java-traits/traitgen/ir"
)

// Naming derives generated type and member names.
type Naming struct {
	// SuperclassSuffix is appended to the host name: FootballField -> FootballFieldGen.
	SuperclassSuffix string `toml:"superclass_suffix" validate:"required,javaident"`

	// InterfacePrefix is prepended to the trait name: Rectangular -> IRectangular.
	InterfacePrefix string `toml:"interface_prefix" validate:"required,javaident"`

	// DelegateSeparator joins trait and host: Rectangular__FootballFieldDelegate.
	DelegateSeparator string `toml:"delegate_separator" validate:"required,javaident"`

	// DelegateSuffix ends every delegate name.
	DelegateSuffix string `toml:"delegate_suffix" validate:"required,javaident"`
}

// Fixed member names of generated units.
const (
	delegateFieldPrefix   = "delegate"
	delegateInstanceField = "delegateInstance"
)

// DefaultNaming returns the standard naming scheme.
func DefaultNaming() Naming {
	return Naming{
		SuperclassSuffix:  "Gen",
		InterfacePrefix:   "I",
		DelegateSeparator: "__",
		DelegateSuffix:    "Delegate",
	}
}

// WithDefaults returns n with empty fields taken from DefaultNaming.
func (n Naming) WithDefaults() Naming {
	d := DefaultNaming()
	if n.SuperclassSuffix == "" {
		n.SuperclassSuffix = d.SuperclassSuffix
	}
	if n.InterfacePrefix == "" {
		n.InterfacePrefix = d.InterfacePrefix
	}
	if n.DelegateSeparator == "" {
		n.DelegateSeparator = d.DelegateSeparator
	}
	if n.DelegateSuffix == "" {
		n.DelegateSuffix = d.DelegateSuffix
	}
	return n
}

// Superclass returns the generated superclass name of host.
func (n Naming) Superclass(host ir.ClassName) ir.ClassName {
	return ir.ClassName{Package: host.Package, Simple: host.Simple + n.SuperclassSuffix}
}

// Interface returns the generated interface name of trait.
func (n Naming) Interface(trait ir.ClassName) ir.ClassName {
	return ir.ClassName{Package: trait.Package, Simple: n.InterfacePrefix + trait.Simple}
}

// Delegate returns the name of the delegate of trait scoped to host. It
// lives in the trait's package.
func (n Naming) Delegate(trait, host ir.ClassName) ir.ClassName {
	return ir.ClassName{
		Package: trait.Package,
		Simple:  trait.Simple + n.DelegateSeparator + host.Simple + n.DelegateSuffix,
	}
}

// traitKeys returns one identifier per trait, used as generic qualifier and
// delegate field suffix. Traits sharing a simple name get an index suffix
// from the second occurrence on.
func traitKeys(traits []*TraitElement) []string {
	keys := make([]string, len(traits))
	count := make(map[string]int, len(traits))
	used := make(map[string]bool, len(traits))
	for i, t := range traits {
		key := t.Name.Simple
		for used[key] {
			count[t.Name.Simple]++
			key = t.Name.Simple + strconv.Itoa(count[t.Name.Simple]+1)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}
