package traitgen

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/compose"
	"github.com/tisoft/java-traits/traitgen/discovery"
	"github.com/tisoft/java-traits/traitgen/sink"
	"github.com/tisoft/java-traits/traitgen/traittest"
)

const fixture = "testdata/football.txtar"

func paths(files []OutputFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func stored(m *sink.Memory) []string {
	var out []string
	for p := range m.Files() {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func TestGenerateFromManifests(t *testing.T) {
	var diags discovery.Collector
	res, err := FromManifests(fixture).Workers(2).Reporter(&diags).Generate()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"com/example/classes/FootballFieldGen.java",
		"com/example/traits/INamed.java",
		"com/example/traits/IRectangular.java",
		"com/example/traits/Rectangular__FootballFieldDelegate.java",
	}, paths(res.Files), "files:\n%# v", pretty.Formatter(res.Files))
	assert.Equal(t, 4, res.TypesGenerated)
	assert.Equal(t, 1, res.Round)

	gen, ok := res.File("com/example/classes/FootballFieldGen.java")
	require.True(t, ok)
	assert.Equal(t, "com.example.classes.FootballField", gen.Element)
	assert.Equal(t, compose.UnitSuperclass, gen.Kind)
	assert.Equal(t, int64(len(gen.Content)), gen.Size)
	src := string(gen.Content)
	assert.Contains(t, src, "public abstract class FootballFieldGen extends Object implements IRectangular {")
	assert.Contains(t, src, "return delegateRectangular.getArea();")
	assert.NotContains(t, src, "getWidth", "abstract methods are left to the host class")

	iface, ok := res.File("com/example/traits/INamed.java")
	require.True(t, ok)
	assert.Equal(t, "com.example.traits.Named", iface.Element)

	require.Len(t, res.Failures, 3)
	got := make(map[string]errors.Code)
	for _, f := range res.Failures {
		got[f.Element] = f.Code()
	}
	assert.Equal(t, map[string]errors.Code{
		"com.example.classes.Clash":   errors.CodeConflict,
		"com.example.classes.Empty":   errors.CodeConfiguration,
		"com.example.classes.Missing": errors.CodeResolution,
	}, got)
	assert.Equal(t, "com.example.classes.Clash", res.Failures[0].Element)
	assert.Equal(t, discovery.Pos{File: fixture + "/classes/hosts.yaml", Line: 9}, res.Failures[0].Pos)
	assert.False(t, res.OK())
	assert.ErrorContains(t, res.Err(), "method getArea is declared by multiple traits")

	assert.Equal(t, 3, diags.Errors())
}

func TestRoundsShareRegistry(t *testing.T) {
	out := sink.NewMemory()
	p, err := NewProcessor(Config{Workers: 1}, out)
	require.NoError(t, err)
	ctx := context.Background()

	trait := traittest.Trait("a.Greeter").Method("java.lang.String", "greet", "java.lang.String who").Build()
	host := traittest.Host("b.Hello").Uses("a.Greeter").Build()

	var diags discovery.Collector
	res, err := p.Round(ctx, &discovery.Static{Items: []discovery.Element{trait}, Reporter: &diags})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/IGreeter.java"}, paths(res.Files))
	assert.Equal(t, 1, p.Registry().Len())

	res, err = p.Round(ctx, &discovery.Static{Items: []discovery.Element{trait, host}, Reporter: &diags})
	require.NoError(t, err)
	assert.True(t, res.OK(), "%v", res.Err())
	assert.Equal(t, 2, res.Round)
	assert.Equal(t, []string{"a/Greeter__HelloDelegate.java", "b/HelloGen.java"}, paths(res.Files))
	traittest.AssertLines(t, string(out.Files()["b/HelloGen.java"]),
		"public String greet(String who) {",
		"return delegateGreeter.greet(who);",
	)

	require.Len(t, diags.Diagnostics(), 1)
	warn := diags.Diagnostics()[0]
	assert.Equal(t, discovery.SeverityWarning, warn.Severity)
	assert.Contains(t, warn.Message, "already registered")
}

// failingSink fails every write whose path matches suffix.
type failingSink struct {
	*sink.Memory
	suffix string
}

func (s failingSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if strings.HasSuffix(path, s.suffix) {
		return errors.New("disk full")
	}
	return s.Memory.WriteFile(ctx, path, content)
}

func TestCommitFailureWithdrawsHostUnits(t *testing.T) {
	out := failingSink{Memory: sink.NewMemory(), suffix: "Gen.java"}
	res, err := FromManifests(fixture).ToSink(out)
	require.NoError(t, err)

	assert.Equal(t, []string{"com/example/traits/INamed.java", "com/example/traits/IRectangular.java"}, paths(res.Files))
	assert.Equal(t, []string{"com/example/traits/INamed.java", "com/example/traits/IRectangular.java"}, stored(out.Memory),
		"the delegate written before the failing superclass is withdrawn")

	var io *Failure
	for i := range res.Failures {
		if res.Failures[i].Element == "com.example.classes.FootballField" {
			io = &res.Failures[i]
		}
	}
	require.NotNil(t, io)
	assert.Equal(t, errors.CodeIO, io.Code())
	assert.ErrorContains(t, io, "disk full")
}

func TestToDir(t *testing.T) {
	dir := t.TempDir()
	res, err := FromManifests(fixture).ToDir(dir)
	require.NoError(t, err)
	for _, f := range res.Files {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Path)))
		require.NoError(t, err)
		assert.Equal(t, f.Size, int64(len(data)))
		assert.Nil(t, f.Content, "content is only kept for in-memory generation")
	}

	// A second run replaces the files.
	again, err := FromManifests(fixture).ToDir(dir)
	require.NoError(t, err)
	assert.Equal(t, paths(res.Files), paths(again.Files))
}

func TestToDirKeepExisting(t *testing.T) {
	dir := t.TempDir()
	first, err := FromManifests(fixture).Reporter(&discovery.Collector{}).KeepExisting(true).ToDir(dir)
	require.NoError(t, err)
	require.Len(t, first.Files, 4)
	iface := filepath.Join(dir, "com", "example", "traits", "IRectangular.java")
	before, err := os.ReadFile(iface)
	require.NoError(t, err)

	second, err := FromManifests(fixture).Reporter(&discovery.Collector{}).KeepExisting(true).ToDir(dir)
	require.NoError(t, err)
	assert.Empty(t, second.Files)
	// The three broken hosts, plus the two interfaces and FootballField.
	require.Len(t, second.Failures, 6)
	for _, f := range second.Failures {
		if f.Element == "com.example.classes.FootballField" || strings.HasPrefix(f.Element, "com.example.traits.") {
			assert.Equal(t, errors.CodeIO, f.Code(), f.Element)
			assert.ErrorContains(t, f, "already exists")
		}
	}

	after, err := os.ReadFile(iface)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	for _, f := range first.Files {
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(f.Path)))
		assert.NoError(t, err, "%s survives the refused run", f.Path)
	}
}

func TestSameSimpleNameHostsShareDelegatePath(t *testing.T) {
	var diags discovery.Collector
	res, err := FromElements(traittest.Elements(
		traittest.Trait("p.T").Method("int", "size"),
		traittest.Host("a.Field").Uses("p.T"),
		traittest.Host("b.Field").Uses("p.T").At("b.toml", 7),
	)...).Reporter(&diags).Generate()
	require.NoError(t, err)

	assert.Equal(t, []string{"a/FieldGen.java", "p/IT.java", "p/T__FieldDelegate.java"}, paths(res.Files))
	delegate, ok := res.File("p/T__FieldDelegate.java")
	require.True(t, ok)
	assert.Equal(t, "a.Field", delegate.Element)
	assert.Contains(t, string(delegate.Content), "FieldGen")

	require.Len(t, res.Failures, 1)
	f := res.Failures[0]
	assert.Equal(t, "b.Field", f.Element)
	assert.Equal(t, errors.CodeConfiguration, f.Code())
	assert.ErrorContains(t, f, "p/T__FieldDelegate.java is also generated for a.Field")
	assert.Equal(t, "b.toml:7", f.Pos.String())
	assert.Equal(t, 1, diags.Errors())
}

func TestOwnershipSpansRounds(t *testing.T) {
	out := sink.NewMemory()
	p, err := NewProcessor(Config{Workers: 2}, out)
	require.NoError(t, err)
	ctx := context.Background()
	trait := traittest.Trait("p.T").Method("int", "size").Build()

	res, err := p.Round(ctx, &discovery.Static{Items: []discovery.Element{trait, traittest.Host("a.Field").Uses("p.T").Build()}})
	require.NoError(t, err)
	require.True(t, res.OK(), "%v", res.Err())

	// The same host may regenerate its files; another host may not take them.
	res, err = p.Round(ctx, &discovery.Static{Items: traittest.Elements(
		traittest.Host("a.Field").Uses("p.T"),
		traittest.Host("b.Field").Uses("p.T"),
	)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/FieldGen.java", "p/T__FieldDelegate.java"}, paths(res.Files))
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "b.Field", res.Failures[0].Element)
	assert.NotContains(t, out.Files(), "b/FieldGen.java")
}

func TestRoundErrors(t *testing.T) {
	t.Run("discovery failure", func(t *testing.T) {
		_, err := FromManifests("testdata/missing.toml").Generate()
		require.Error(t, err)
		assert.Equal(t, errors.CodeIO, errors.CodeOf(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := FromElements(discovery.Element{Kind: discovery.KindTrait, Name: "a.T"}).Context(ctx).Generate()
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unknown element kind", func(t *testing.T) {
		res, err := FromElements(discovery.Element{Kind: "enum", Name: "a.E"}).Reporter(&discovery.Collector{}).Generate()
		require.NoError(t, err)
		require.Len(t, res.Failures, 1)
		assert.Equal(t, errors.CodeConfiguration, res.Failures[0].Code())
	})

	t.Run("nil sink", func(t *testing.T) {
		_, err := NewProcessor(Config{}, nil)
		assert.Equal(t, errors.CodeConfiguration, errors.CodeOf(err))
	})
}

func TestConcurrentHosts(t *testing.T) {
	builders := []*traittest.ElementBuilder{traittest.Trait("t.Counter").Method("long", "count")}
	for _, name := range []string{"h.A", "h.B", "h.C", "h.D", "h.E", "h.F", "h.G", "h.H"} {
		builders = append(builders, traittest.Host(name).Uses("t.Counter"))
	}
	builders = append(builders, traittest.Host("h.Broken").Uses("t.Nope"))
	elems := traittest.Elements(builders...)

	res, err := FromElements(elems...).Workers(4).Reporter(&discovery.Collector{}).Generate()
	require.NoError(t, err)
	// One interface, and a delegate and superclass per healthy host.
	assert.Equal(t, 1+2*8, res.TypesGenerated)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "h.Broken", res.Failures[0].Element)
	assert.Equal(t, errors.CodeResolution, res.Failures[0].Code())

	again, err := FromElements(elems...).Workers(1).Reporter(&discovery.Collector{}).Generate()
	require.NoError(t, err)
	assert.Equal(t, paths(res.Files), paths(again.Files), "output does not depend on scheduling")
}
