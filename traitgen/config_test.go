package traitgen

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/compose"
	"github.com/tisoft/java-traits/traitgen/discovery"
	"github.com/tisoft/java-traits/traitgen/ir"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
	assert.Equal(t, compose.DefaultNaming(), cfg.Naming)
	assert.Equal(t, "    ", cfg.Indent)
	require.NoError(t, Config{}.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"negative workers", Config{Workers: -1}, "Workers: must be at least 0"},
		{"bad prefix", Config{Naming: compose.Naming{InterfacePrefix: "I-"}}, "InterfacePrefix: failed javaident validation"},
		{"newline indent", Config{Indent: "\n"}, "Indent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	cfg, err := LoadConfig(write("ok.toml", "workers = 3\nindent = \"\\t\"\n\n[naming]\nsuperclass_suffix = \"Base\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "\t", cfg.Indent)
	assert.Equal(t, "Base", cfg.Naming.SuperclassSuffix)
	assert.Empty(t, cfg.Naming.InterfacePrefix, "defaults are applied by the processor")

	_, err = LoadConfig(write("unknown.toml", "wrokers = 3\n"))
	assert.ErrorContains(t, err, "unknown key wrokers")

	_, err = LoadConfig(write("invalid.toml", "workers = -2\n"))
	assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
}

func TestCustomNaming(t *testing.T) {
	res, err := FromManifests(fixture).
		Naming(compose.Naming{SuperclassSuffix: "Base", InterfacePrefix: "Has"}).
		Indent("\t").
		Reporter(&discovery.Collector{}).
		Generate()
	require.NoError(t, err)
	gen, ok := res.File("com/example/classes/FootballFieldBase.java")
	require.True(t, ok)
	assert.Contains(t, string(gen.Content), "public abstract class FootballFieldBase extends Object implements HasRectangular {\n\tprivate final")
}

func TestTraitFromElement(t *testing.T) {
	e := discovery.Element{
		Kind:           discovery.KindTrait,
		Name:           "p.Sorted",
		TypeParameters: []string{"X extends java.lang.Comparable<X>"},
		Methods: []discovery.MethodDecl{{
			Name:     "pick",
			Returns:  "X",
			Generics: []string{"Y extends X"},
			Params:   []discovery.ParamDecl{{Name: "items", Type: "java.util.List<? extends Y>"}, {Type: "int..."}},
			Throws:   []string{"java.io.IOException"},
			Abstract: true,
		}},
	}
	tr, err := TraitFromElement(e)
	require.NoError(t, err)
	assert.Equal(t, ir.ClassName{Package: "p", Simple: "Sorted"}, tr.Name)
	require.Len(t, tr.TypeParameters, 1)
	assert.Equal(t, "X extends java.lang.Comparable<X>", tr.TypeParameters[0].String())

	m := tr.Methods[0]
	assert.True(t, m.Abstract)
	assert.Equal(t, "X pick(java.util.List<? extends Y>, int...)", m.Signature().String())
	assert.Equal(t, "arg1", m.ParamName(1))
	assert.Equal(t, "java.io.IOException", m.Throws[0].String())

	bad := e
	bad.Methods = []discovery.MethodDecl{{Name: "f", Returns: "java.util.List<"}}
	_, err = TraitFromElement(bad)
	assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
	assert.ErrorContains(t, err, "method f")

	_, err = TraitFromElement(discovery.Element{Kind: discovery.KindHost, Name: "p.H"})
	assert.ErrorContains(t, err, "not a trait")
}

func TestHostSpecFromElement(t *testing.T) {
	host := func(raw map[string]any) discovery.Element {
		return discovery.Element{Kind: discovery.KindHost, Name: "com.example.Host", Annotation: discovery.NewAnnotation(raw)}
	}

	spec, err := HostSpecFromElement(host(map[string]any{
		"traits":            []any{"Local", "other.Remote"},
		"desiredSuperclass": "java.util.AbstractList<java.lang.String>",
		"prefer":            []any{map[string]any{"target": "Local", "method": "m"}},
	}))
	require.NoError(t, err)
	assert.Equal(t, []ir.ClassName{{Package: "com.example", Simple: "Local"}, {Package: "other", Simple: "Remote"}}, spec.Traits)
	assert.Equal(t, "java.util.AbstractList<java.lang.String>", spec.DesiredSuperclass.String())
	assert.Equal(t, []compose.Preference{{Method: "m", Target: ir.ClassName{Package: "com.example", Simple: "Local"}}}, spec.Prefer)

	_, err = HostSpecFromElement(host(map[string]any{"traits": []any{"a.T"}, "desiredSuperclass": "a.Base[]"}))
	assert.ErrorContains(t, err, "is not a class")

	_, err = HostSpecFromElement(discovery.Element{Kind: discovery.KindTrait, Name: "a.T"})
	assert.ErrorContains(t, err, "only a class can be annotated")
}
