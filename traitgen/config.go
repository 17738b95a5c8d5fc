package traitgen

import (
	"runtime"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/compose"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Name affixes end up inside generated identifiers.
	_ = v.RegisterValidation("javaident", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	})
	_ = v.RegisterValidation("indent", func(fl validator.FieldLevel) bool {
		return strings.Trim(fl.Field().String(), " \t") == ""
	})
	return v
}

// Config holds the configuration for a Processor. The zero value is usable:
// every zero field takes its default.
type Config struct {
	// Workers bounds the number of host classes composed at once.
	// Default: runtime.GOMAXPROCS(0).
	Workers int `toml:"workers" validate:"gte=0"`

	// Naming overrides the generated name affixes.
	Naming compose.Naming `toml:"naming"`

	// Indent is one level of indentation in generated sources.
	// Default: four spaces.
	Indent string `toml:"indent" validate:"indent"`

	// Logger receives progress and per-host failures. Default: no-op.
	Logger *zap.SugaredLogger `toml:"-" validate:"-"`
}

// WithDefaults returns a copy of c with zero fields filled in.
func (c Config) WithDefaults() Config {
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	c.Naming = c.Naming.WithDefaults()
	if c.Indent == "" {
		c.Indent = "    "
	}
	return c
}

// Validate applies defaults and checks the result.
func (c Config) Validate() error {
	return errors.FromValidation(validate.Struct(c.WithDefaults()), "config")
}

// LoadConfig reads a TOML configuration file:
//
//	workers = 4
//	indent = "  "
//
//	[naming]
//	superclass_suffix = "Base"
func LoadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Configurationf("%s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.Configurationf("%s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, path)
	}
	return cfg, nil
}
