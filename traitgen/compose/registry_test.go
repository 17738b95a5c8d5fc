package compose

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/ir"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	added, err := r.Register(rectangular())
	require.NoError(t, err)
	assert.True(t, added)

	added, err = r.Register(&TraitElement{Name: cn("com.example.traits.Rectangular")})
	require.NoError(t, err)
	assert.False(t, added, "first registration wins")

	got, err := r.Lookup(cn("com.example.traits.Rectangular"))
	require.NoError(t, err)
	assert.Len(t, got.Methods, 4)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRegisterInvalid(t *testing.T) {
	tests := []struct {
		name  string
		trait *TraitElement
	}{
		{"no name", &TraitElement{}},
		{"unnamed method", &TraitElement{Name: cn("a.T"), Methods: []Method{{Return: ir.Void()}}}},
		{"duplicate signature", &TraitElement{Name: cn("a.T"), Methods: []Method{
			{Name: "m", Params: []Param{{Name: "a", Type: prim("int")}}},
			{Name: "m", Return: ir.Void(), Params: []Param{{Name: "b", Type: prim("int")}}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry().Register(tt.trait)
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
		})
	}
}

func TestTraitValidateTypes(t *testing.T) {
	varargs := func(depth int) ir.TypeName {
		return &ir.DeclaredTypeName{Simple: "int", Array: ir.Array{Depth: depth, VarArgs: true}}
	}
	x := ir.Generic("X")
	tests := []struct {
		name   string
		method Method
		code   errors.Code
		want   string
	}{
		{"reserved name", Method{Name: "class"}, errors.CodeConfiguration, "reserved word"},
		{"varargs without dimension", Method{Name: "m", Params: []Param{{Type: varargs(0)}}},
			errors.CodeConfiguration, "varargs without an array dimension"},
		{"varargs before last", Method{Name: "m", Params: []Param{{Type: varargs(1)}, {Type: prim("int")}}},
			errors.CodeConfiguration, "only the last parameter"},
		{"varargs return", Method{Name: "m", Return: varargs(1)}, errors.CodeConfiguration, "only the last parameter"},
		{"varargs type argument", Method{Name: "m", Params: []Param{{Type: ir.MustDeclared("java.util.List", varargs(1))}}},
			errors.CodeConfiguration, "only the last parameter"},
		{"parameter without type", Method{Name: "m", Params: []Param{{Name: "a"}}}, errors.CodeConfiguration, "has no type"},
		{"undeclared generic", Method{Name: "m", Return: ir.Generic("Y")}, errors.CodeResolution, "Y is not declared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trait := &TraitElement{Name: cn("a.T"), TypeParameters: []*ir.GenericName{x}, Methods: []Method{tt.method}}
			err := trait.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	ok := &TraitElement{Name: cn("a.T"), TypeParameters: []*ir.GenericName{x}, Methods: []Method{{
		Name:     "m",
		Generics: []*ir.GenericName{ir.Generic("R", x.Ref())},
		Return:   ir.Generic("R"),
		Params:   []Param{{Type: x.Ref()}, {Type: varargs(1)}},
	}}}
	assert.NoError(t, ok.Validate())
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"b.Z", "a.Y", "a.X"} {
		_, err := r.Register(&TraitElement{Name: cn(n)})
		require.NoError(t, err)
	}
	assert.Equal(t, []ir.ClassName{cn("a.X"), cn("a.Y"), cn("b.Z")}, r.Names())
}

func TestRegistryConcurrentLookup(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(rectangular())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Lookup(cn("com.example.traits.Rectangular"))
			_, _ = r.Register(&TraitElement{Name: cn("x.Other")})
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, r.Len())
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	h, t1, t2 := twoTraits(nil)
	for _, tr := range []*TraitElement{t1, t2} {
		_, err := r.Register(tr)
		require.NoError(t, err)
	}

	got, err := r.Resolve(HostSpec{
		Name:   h.Name,
		Traits: []ir.ClassName{t1.Name, t2.Name},
		Prefer: []Preference{{Method: "m", Target: t2.Name}},
	})
	require.NoError(t, err)
	assert.Equal(t, []*TraitElement{t1, t2}, got.Traits)
	assert.Same(t, t2, got.Prefer["m"])
	assert.Equal(t, "java.lang.Object", got.Superclass().String())

	tests := []struct {
		name string
		spec HostSpec
		code errors.Code
	}{
		{"no traits", HostSpec{Name: h.Name}, errors.CodeConfiguration},
		{"duplicate trait", HostSpec{Name: h.Name, Traits: []ir.ClassName{t1.Name, t1.Name}}, errors.CodeConfiguration},
		{"unknown trait", HostSpec{Name: h.Name, Traits: []ir.ClassName{cn("a.Missing")}}, errors.CodeResolution},
		{"unknown prefer target", HostSpec{
			Name:   h.Name,
			Traits: []ir.ClassName{t1.Name},
			Prefer: []Preference{{Method: "m", Target: cn("a.Missing")}},
		}, errors.CodeResolution},
		{"duplicate prefer", HostSpec{
			Name:   h.Name,
			Traits: []ir.ClassName{t1.Name, t2.Name},
			Prefer: []Preference{{Method: "m", Target: t1.Name}, {Method: "m", Target: t2.Name}},
		}, errors.CodeConfiguration},
		{"prefer without method", HostSpec{
			Name:   h.Name,
			Traits: []ir.ClassName{t1.Name},
			Prefer: []Preference{{Target: t1.Name}},
		}, errors.CodeConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.spec)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}
