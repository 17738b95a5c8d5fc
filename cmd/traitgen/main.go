package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/tisoft/java-traits/cmd/traitgen/internal/check"
	"github.com/tisoft/java-traits/cmd/traitgen/internal/cli"
	"github.com/tisoft/java-traits/cmd/traitgen/internal/gen"
)

type CLI struct {
	cli.Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate trait interfaces, delegates and superclasses."`
	Check   check.Cmd  `cmd:"" help:"Compose every host class without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	app := &CLI{}
	ctx := kong.Parse(app,
		kong.Name("traitgen"),
		kong.Description("Generate Java trait composition sources from trait manifests."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&app.Globals)
	ctx.FatalIfErrorf(err)
}
