package gen

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tisoft/java-traits/cmd/traitgen/internal/cli"
	"github.com/tisoft/java-traits/internal/watch"
	"github.com/tisoft/java-traits/traitgen"
	"github.com/tisoft/java-traits/traitgen/discovery"
)

type Cmd struct {
	Manifests   []string `arg:"" help:"Manifest files or directories (TOML, YAML, txtar)." type:"path"`
	Out         string   `help:"Output directory for generated sources." short:"o" required:""`
	Workers     int      `help:"Host classes composed concurrently (default: number of CPUs)."`
	Watch       bool     `help:"Watch the manifests and regenerate on change." short:"w"`
	NoOverwrite bool     `help:"Fail instead of replacing generated files that already exist." name:"no-overwrite"`

	stdout io.Writer `kong:"-"`
}

func (c *Cmd) Run(g *cli.Globals) error {
	log := g.Logger()
	defer func() { _ = log.Sync() }()

	cfg, err := g.LoadConfig(log, c.Workers)
	if err != nil {
		return err
	}
	outDir, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	run := func(ctx context.Context) error {
		res, err := traitgen.FromManifests(c.Manifests...).
			Config(cfg).
			Reporter(discovery.NewLogReporter(log)).
			Context(ctx).
			KeepExisting(c.NoOverwrite).
			ToDir(outDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out(), "✓ %d types generated in %s\n", res.TypesGenerated, outDir)
		if !res.OK() {
			return fmt.Errorf("%d element(s) failed", len(res.Failures))
		}
		return nil
	}

	if !c.Watch {
		return run(context.Background())
	}

	ctx, stop := cli.SignalContext()
	defer stop()
	w, err := watch.New(c.Manifests, watch.Options{Filter: discovery.IsManifest, Logger: log})
	if err != nil {
		return err
	}
	defer w.Close()
	log.Infow("watching for changes", "paths", c.Manifests)
	return w.Run(ctx, run)
}

func (c *Cmd) out() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}
