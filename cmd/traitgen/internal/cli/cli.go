// Package cli holds the flags and setup shared by the traitgen commands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tisoft/java-traits/internal/logging"
	"github.com/tisoft/java-traits/traitgen"
)

// Globals are the flags accepted by every command.
type Globals struct {
	Verbose int    `help:"Increase log verbosity (-v info, -vv debug)." short:"v" type:"counter"`
	JSON    bool   `help:"Log as JSON." name:"json"`
	Config  string `help:"TOML configuration file." short:"c" type:"existingfile"`
}

// Logger builds the logger selected by the flags.
func (g *Globals) Logger() *zap.SugaredLogger {
	return logging.New(g.Verbose, g.JSON)
}

// LoadConfig reads the configuration file, if any, and applies the logger.
// A positive workers value overrides the file.
func (g *Globals) LoadConfig(log *zap.SugaredLogger, workers int) (traitgen.Config, error) {
	var cfg traitgen.Config
	if g.Config != "" {
		var err error
		if cfg, err = traitgen.LoadConfig(g.Config); err != nil {
			return cfg, err
		}
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	cfg.Logger = log
	return cfg, cfg.Validate()
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
