package check

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tisoft/java-traits/cmd/traitgen/internal/cli"
	"github.com/tisoft/java-traits/traitgen"
	"github.com/tisoft/java-traits/traitgen/discovery"
)

type Cmd struct {
	Manifests []string `arg:"" help:"Manifest files or directories (TOML, YAML, txtar)." type:"path"`
	Workers   int      `help:"Host classes composed concurrently (default: number of CPUs)."`
	Report    bool     `help:"Print the round result as JSON on stdout."`

	stdout io.Writer `kong:"-"`
}

// Run composes every host in memory and reports failures without writing
// any file.
func (c *Cmd) Run(g *cli.Globals) error {
	log := g.Logger()
	defer func() { _ = log.Sync() }()

	cfg, err := g.LoadConfig(log, c.Workers)
	if err != nil {
		return err
	}
	res, err := traitgen.FromManifests(c.Manifests...).
		Config(cfg).
		Reporter(discovery.NewLogReporter(log)).
		Generate()
	if err != nil {
		return err
	}

	out := c.stdout
	if out == nil {
		out = os.Stdout
	}
	if c.Report {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "✓ %d types would be generated\n", res.TypesGenerated)
		for _, f := range res.Failures {
			fmt.Fprintf(out, "✗ %s\n", f.Error())
		}
	}
	if !res.OK() {
		return fmt.Errorf("%d element(s) failed", len(res.Failures))
	}
	return nil
}
