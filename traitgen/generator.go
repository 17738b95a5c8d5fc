package traitgen

import (
	"context"

	"go.uber.org/zap"

	"github.com/tisoft/java-traits/traitgen/compose"
	"github.com/tisoft/java-traits/traitgen/discovery"
	"github.com/tisoft/java-traits/traitgen/sink"
)

// Generator provides a fluent API for one-shot generation.
// Create with FromManifests() or FromElements() and configure with method
// chaining.
//
// Example:
//
//	traitgen.FromManifests("./src/main/traits").
//	    Workers(4).
//	    ToDir("./build/generated")
type Generator struct {
	paths    []string
	elems    []discovery.Element
	cfg      Config
	reporter discovery.Reporter
	ctx      context.Context
	keep     bool
}

// FromManifests creates a Generator over manifest files or directories.
func FromManifests(paths ...string) *Generator {
	return &Generator{paths: paths}
}

// FromElements creates a Generator over already discovered elements.
func FromElements(elems ...discovery.Element) *Generator {
	return &Generator{elems: elems}
}

// Workers bounds the number of host classes composed concurrently.
func (g *Generator) Workers(n int) *Generator {
	g.cfg.Workers = n
	return g
}

// Naming overrides the generated name affixes. Empty fields keep their
// defaults.
func (g *Generator) Naming(n compose.Naming) *Generator {
	g.cfg.Naming = n
	return g
}

// Indent sets one level of indentation in generated sources.
func (g *Generator) Indent(s string) *Generator {
	g.cfg.Indent = s
	return g
}

// Logger sets the logger for progress and failures.
func (g *Generator) Logger(l *zap.SugaredLogger) *Generator {
	g.cfg.Logger = l
	return g
}

// Reporter sets where element diagnostics go. The default logs them.
func (g *Generator) Reporter(r discovery.Reporter) *Generator {
	g.reporter = r
	return g
}

// Config replaces the whole configuration.
func (g *Generator) Config(cfg Config) *Generator {
	g.cfg = cfg
	return g
}

// Context sets the context of the generation round.
func (g *Generator) Context(ctx context.Context) *Generator {
	g.ctx = ctx
	return g
}

// KeepExisting makes ToDir fail the elements whose files already exist
// instead of replacing them.
func (g *Generator) KeepExisting(keep bool) *Generator {
	g.keep = keep
	return g
}

// ToDir generates files into dir, replacing existing ones unless
// KeepExisting is set. This is a terminal operation that writes files to
// disk.
func (g *Generator) ToDir(dir string) (*Result, error) {
	out := sink.NewDir(dir)
	out.Keep = g.keep
	return g.run(out)
}

// ToSink generates files into out.
func (g *Generator) ToSink(out sink.OutputSink) (*Result, error) {
	return g.run(out)
}

// Generate returns generated files in memory without writing to disk.
// The sources are in the Content of Result.Files.
func (g *Generator) Generate() (*Result, error) {
	mem := sink.NewMemory()
	res, err := g.run(mem)
	if res != nil {
		files := mem.Files()
		for i := range res.Files {
			res.Files[i].Content = files[res.Files[i].Path]
		}
	}
	return res, err
}

func (g *Generator) run(out sink.OutputSink) (*Result, error) {
	p, err := NewProcessor(g.cfg, out)
	if err != nil {
		return nil, err
	}
	ctx := g.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return p.Round(ctx, g.collaborator())
}

func (g *Generator) collaborator() discovery.Collaborator {
	r := g.reporter
	if r == nil {
		r = discovery.NewLogReporter(g.cfg.Logger)
	}
	if len(g.paths) > 0 {
		return discovery.NewManifests(r, g.paths...)
	}
	return &discovery.Static{Items: g.elems, Reporter: r}
}
