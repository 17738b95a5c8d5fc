package compose

import (
	"slices"
	"strings"
	"sync"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/ir"
)

// Registry is the global trait registry. Traits registered in one round are
// visible to every later round. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	traits map[ir.ClassName]*TraitElement
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{traits: make(map[ir.ClassName]*TraitElement)}
}

// Register adds t after validating it. It reports false if a trait with
// the same name is already registered; the first registration is kept.
func (r *Registry) Register(t *TraitElement) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.traits[t.Name]; ok {
		return false, nil
	}
	r.traits[t.Name] = t
	return true, nil
}

// Lookup returns the trait called name, or a resolution error.
func (r *Registry) Lookup(name ir.ClassName) (*TraitElement, error) {
	r.mu.RLock()
	t, ok := r.traits[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Resolutionf("trait %s not found in registry", name)
	}
	return t, nil
}

// Len returns the number of registered traits.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.traits)
}

// Names returns the registered trait names ordered by qualified name.
func (r *Registry) Names() []ir.ClassName {
	r.mu.RLock()
	out := make([]ir.ClassName, 0, len(r.traits))
	for n := range r.traits {
		out = append(out, n)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b ir.ClassName) int { return strings.Compare(a.String(), b.String()) })
	return out
}

// Preference names the trait whose delegate implements a colliding method.
type Preference struct {
	Method string
	Target ir.ClassName
}

// HostSpec is a host class before trait resolution.
type HostSpec struct {
	Name              ir.ClassName
	Traits            []ir.ClassName
	DesiredSuperclass ir.TypeName
	Prefer            []Preference
}

// Resolve looks up every trait named by spec and returns the host class.
// An empty or duplicated trait list and a duplicated prefer entry are
// configuration errors; an unknown trait is a resolution error.
func (r *Registry) Resolve(spec HostSpec) (*HostClass, error) {
	if len(spec.Traits) == 0 {
		return nil, errors.Configurationf("host %s declares no traits", spec.Name)
	}
	h := &HostClass{
		Name:              spec.Name,
		DesiredSuperclass: spec.DesiredSuperclass,
		Prefer:            make(map[string]*TraitElement, len(spec.Prefer)),
	}
	seen := make(map[ir.ClassName]bool, len(spec.Traits))
	for _, name := range spec.Traits {
		if seen[name] {
			return nil, errors.Configurationf("host %s declares trait %s twice", spec.Name, name)
		}
		seen[name] = true
		t, err := r.Lookup(name)
		if err != nil {
			return nil, errors.Wrapf(err, "host %s", spec.Name)
		}
		h.Traits = append(h.Traits, t)
	}
	for _, p := range spec.Prefer {
		if p.Method == "" {
			return nil, errors.Configurationf("host %s: prefer entry for %s has no method", spec.Name, p.Target)
		}
		if _, dup := h.Prefer[p.Method]; dup {
			return nil, errors.Configurationf("host %s: more than one prefer entry for method %s", spec.Name, p.Method)
		}
		t, err := r.Lookup(p.Target)
		if err != nil {
			return nil, errors.Wrapf(err, "host %s: prefer entry for method %s", spec.Name, p.Method)
		}
		h.Prefer[p.Method] = t
	}
	return h, nil
}
