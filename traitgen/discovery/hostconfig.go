package discovery

import (
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/tisoft/java-traits/internal/errors"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	// Misspelled annotation parameters must not be silently dropped.
	schemaDecoder.IgnoreUnknownKeys(false)
}

// PreferEntry names the trait that wins a method collision.
type PreferEntry struct {
	Target string `schema:"target" validate:"required"`
	Method string `schema:"method"`
}

// HostConfig is the decoded host class annotation.
type HostConfig struct {
	Traits            []string      `schema:"traits" validate:"required,min=1,dive,required"`
	DesiredSuperclass string        `schema:"desiredSuperclass"`
	Prefer            []PreferEntry `schema:"prefer" validate:"dive"`
}

// DecodeHostConfig decodes and validates a host annotation. Every failure
// is a configuration error.
func DecodeHostConfig(a Annotation) (HostConfig, error) {
	var cfg HostConfig
	values := a.Values()
	if len(values["desiredSuperclass"]) > 1 {
		return cfg, errors.Configurationf("host annotation: desiredSuperclass takes a single value, got %d", len(values["desiredSuperclass"]))
	}
	if err := schemaDecoder.Decode(&cfg, values); err != nil {
		return cfg, errors.Configurationf("host annotation: %v", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, errors.FromValidation(err, "host annotation")
	}
	return cfg, nil
}
