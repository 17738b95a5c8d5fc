package compose

import (
	"go.uber.org/zap"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/internal/logging"
	"github.com/tisoft/java-traits/traitgen/ir"
	"github.com/tisoft/java-traits/traitgen/java"
)

// UnitKind identifies what a generated unit is for.
type UnitKind int

const (
	UnitInterface  UnitKind = iota // Mirrors a trait's methods
	UnitDelegate                   // Trait behavior scoped to one host
	UnitSuperclass                 // Superclass of a host, forwarding to delegates
)

func (k UnitKind) String() string {
	switch k {
	case UnitInterface:
		return "interface"
	case UnitDelegate:
		return "delegate"
	case UnitSuperclass:
		return "superclass"
	default:
		return "unknown"
	}
}

// Unit is one generated top-level type.
type Unit struct {
	Name   ir.ClassName
	Kind   UnitKind
	Source []byte
}

// Config configures a Composer.
type Config struct {
	Naming Naming
	Java   java.Config
	Logger *zap.SugaredLogger
}

// Composer turns traits and host classes into units. It holds no per-host
// state and may be used from several goroutines.
type Composer struct {
	naming Naming
	java   java.Config
	log    *zap.SugaredLogger
}

// NewComposer returns a Composer. Zero fields of cfg take their defaults.
func NewComposer(cfg Config) *Composer {
	return &Composer{
		naming: cfg.Naming.WithDefaults(),
		java:   cfg.Java,
		log:    logging.Component(cfg.Logger, "compose"),
	}
}

// Naming returns the naming scheme in use.
func (c *Composer) Naming() Naming { return c.naming }

// Plan resolves the host's method collisions and generic layout without
// emitting anything.
func (c *Composer) Plan(h *HostClass) (*Plan, error) {
	forwards, err := ResolveMethods(h)
	if err != nil {
		return nil, errors.Wrapf(err, "host %s", h.Name)
	}
	for _, f := range forwards {
		c.log.Debugw("method resolved",
			logging.FieldHost, h.Name.String(),
			logging.FieldMethod, f.Method.Name,
			logging.FieldTrait, f.Trait.Name.String())
	}
	return newPlan(h, c.naming, forwards), nil
}

// Interface emits the interface of trait t. It declares t's type
// parameters and every method of t, abstract or not.
func (c *Composer) Interface(t *TraitElement) (Unit, error) {
	name := c.naming.Interface(t.Name)
	var types []ir.TypeName
	for _, g := range t.TypeParameters {
		types = append(types, g)
	}
	for _, m := range t.Methods {
		types = append(types, m.Types()...)
	}

	src, err := c.emit(name, types, func(e *java.Emitter) error {
		if err := e.BeginType(java.KindInterface, name.Simple, java.Public); err != nil {
			return err
		}
		if t.HasTypeParameters() {
			if err := e.AppendGenerics(t.TypeParameters...); err != nil {
				return err
			}
		}
		if err := e.FinishTypeHeader(); err != nil {
			return err
		}
		for _, m := range t.Methods {
			if err := e.WriteMethod(methodDecl(m, nil)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Unit{}, err
	}
	return Unit{Name: name, Kind: UnitInterface, Source: src}, nil
}

// Compose emits every unit of host h: one delegate per trait in trait
// order, then the generated superclass. Any error aborts the whole host.
func (c *Composer) Compose(h *HostClass) ([]Unit, error) {
	plan, err := c.Plan(h)
	if err != nil {
		return nil, err
	}
	units := make([]Unit, 0, len(h.Traits)+1)
	for i := range h.Traits {
		u, err := c.delegate(plan, i)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	u, err := c.superclass(plan)
	if err != nil {
		return nil, err
	}
	return append(units, u), nil
}

func (c *Composer) delegate(p *Plan, i int) (Unit, error) {
	t := p.Host.Traits[i]
	name := p.Delegate(i)
	instance := p.DelegateInstanceType(i)

	types := []ir.TypeName{t.Type(), instance}
	for _, g := range t.TypeParameters {
		types = append(types, g)
	}
	var abstract []Method
	for _, m := range t.Methods {
		if m.Abstract {
			abstract = append(abstract, m)
			types = append(types, m.Types()...)
		}
	}

	src, err := c.emit(name, types, func(e *java.Emitter) error {
		if err := e.BeginType(java.KindClass, name.Simple, java.Public); err != nil {
			return err
		}
		if t.HasTypeParameters() {
			if err := e.AppendGenerics(t.TypeParameters...); err != nil {
				return err
			}
		}
		if err := e.AddSuperclass(t.Type()); err != nil {
			return err
		}
		if err := e.FinishTypeHeader(); err != nil {
			return err
		}
		if err := e.WriteField(java.FieldDecl{
			Modifiers: []java.Modifier{java.Private, java.Final},
			Type:      instance,
			Name:      delegateInstanceField,
		}); err != nil {
			return err
		}
		if err := e.WriteMethod(java.MethodDecl{
			Modifiers:   []java.Modifier{java.Public},
			Constructor: true,
			Params:      []java.Param{{Type: instance, Name: delegateInstanceField}},
			Body: []java.Stmt{
				{Expr: &java.Call{Method: "super"}},
				{Expr: &java.Assign{Target: java.Field(delegateInstanceField), Value: java.Local(delegateInstanceField)}},
			},
		}); err != nil {
			return err
		}
		for _, m := range abstract {
			if err := e.WriteMethod(methodDecl(m, java.Local(delegateInstanceField))); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Unit{}, err
	}
	return Unit{Name: name, Kind: UnitDelegate, Source: src}, nil
}

func (c *Composer) superclass(p *Plan) (Unit, error) {
	h := p.Host
	name := p.Superclass
	params := p.TypeParameters()

	types := []ir.TypeName{h.Superclass()}
	for _, g := range params {
		types = append(types, g)
	}
	ifaces := make([]ir.TypeName, len(h.Traits))
	for i := range h.Traits {
		ifaces[i] = p.InterfaceType(i)
		types = append(types, ifaces[i], p.DelegateType(i))
	}
	var forwards []Method
	var targets []int
	for _, f := range p.Forwards {
		if f.Method.Abstract {
			continue
		}
		m := p.Qualify(f.Index, f.Method)
		forwards = append(forwards, m)
		targets = append(targets, f.Index)
		types = append(types, m.Types()...)
	}

	src, err := c.emit(name, types, func(e *java.Emitter) error {
		if err := e.BeginType(java.KindClass, name.Simple, java.Public, java.Abstract); err != nil {
			return err
		}
		if len(params) > 0 {
			if err := e.AppendGenerics(params...); err != nil {
				return err
			}
		}
		if err := e.AddSuperclass(h.Superclass()); err != nil {
			return err
		}
		if err := e.AddInterfaces(ifaces...); err != nil {
			return err
		}
		if err := e.FinishTypeHeader(); err != nil {
			return err
		}

		ctor := []java.Stmt{{Expr: &java.Call{Method: "super"}}}
		for i := range h.Traits {
			if err := e.WriteField(java.FieldDecl{
				Modifiers: []java.Modifier{java.Private, java.Final},
				Type:      p.DelegateType(i),
				Name:      p.DelegateField(i),
			}); err != nil {
				return err
			}
			ctor = append(ctor, java.Stmt{Expr: &java.Assign{
				Target: java.Local(p.DelegateField(i)),
				Value:  &java.New{Type: p.DelegateType(i), Args: []java.Expr{java.This()}},
			}})
		}
		if err := e.WriteMethod(java.MethodDecl{
			Modifiers:   []java.Modifier{java.Public},
			Constructor: true,
			Body:        ctor,
		}); err != nil {
			return err
		}
		for k, m := range forwards {
			if err := e.WriteMethod(methodDecl(m, java.Local(p.DelegateField(targets[k])))); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Unit{}, err
	}
	return Unit{Name: name, Kind: UnitSuperclass, Source: src}, nil
}

// emit runs one emission session for the unit called name. The unit's own
// name is registered before the gathered imports so that it owns its
// simple name.
func (c *Composer) emit(name ir.ClassName, types []ir.TypeName, body func(e *java.Emitter) error) ([]byte, error) {
	acc := ir.NewImportSet()
	ir.GatherImports(acc, types...)
	acc.Remove(name)

	e := java.NewEmitter(c.java)
	if err := e.WritePackage(name.Package); err != nil {
		return nil, err
	}
	if err := e.WriteImports(name); err != nil {
		return nil, err
	}
	if err := e.WriteImports(ir.SortedImports(acc)...); err != nil {
		return nil, err
	}
	if err := body(e); err != nil {
		return nil, errors.Wrapf(err, "emit %s", name)
	}
	if err := e.Close(); err != nil {
		return nil, err
	}
	return e.Bytes()
}

// methodDecl converts m into a declaration. With a target, the body calls
// the same method on target with the same arguments; without one, the
// declaration has no body.
func methodDecl(m Method, target java.Expr) java.MethodDecl {
	d := java.MethodDecl{
		Generics: m.Generics,
		Return:   m.Return,
		Name:     m.Name,
		Throws:   m.Throws,
	}
	args := make([]java.Expr, len(m.Params))
	for i, p := range m.Params {
		name := java.Identifier(m.ParamName(i))
		d.Params = append(d.Params, java.Param{Type: p.Type, Name: name})
		args[i] = java.Local(name)
	}
	if target == nil {
		return d
	}
	d.Modifiers = []java.Modifier{java.Public}
	call := &java.Call{Receiver: target, Method: m.Name, Args: args}
	d.Body = []java.Stmt{{Expr: call, Return: !isVoid(m.Return)}}
	return d
}

func isVoid(t ir.TypeName) bool {
	if t == nil {
		return true
	}
	d, ok := t.(*ir.DeclaredTypeName)
	return ok && d.IsVoid()
}
