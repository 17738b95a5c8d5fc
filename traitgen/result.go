package traitgen

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/traitgen/compose"
	"github.com/tisoft/java-traits/traitgen/discovery"
	"github.com/tisoft/java-traits/traitgen/ir"
)

// OutputFile is one committed unit.
type OutputFile struct {
	Path string           `json:"path"`
	Type ir.ClassName     `json:"-"`
	Kind compose.UnitKind `json:"-"`

	// Element is the trait or host class the unit was generated for.
	Element string `json:"element"`

	Size int64 `json:"size"`

	// Content is only set for in-memory generation (Generator.Generate).
	Content []byte `json:"-"`
}

func (f OutputFile) MarshalJSON() ([]byte, error) {
	type plain OutputFile
	return json.Marshal(struct {
		plain
		Type string `json:"type"`
		Kind string `json:"kind"`
	}{plain(f), f.Type.String(), f.Kind.String()})
}

// Failure is an element that produced no output.
type Failure struct {
	Element string
	Kind    discovery.Kind
	Pos     discovery.Pos
	Err     error
}

// Code returns the error taxonomy code of the failure.
func (f Failure) Code() errors.Code { return errors.CodeOf(f.Err) }

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", f.Pos, f.Kind, f.Element, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"element": f.Element,
		"kind":    f.Kind,
		"pos":     f.Pos.String(),
		"code":    f.Code(),
		"message": f.Err.Error(),
	})
}

// Result summarizes one round. Files and Failures are sorted, so two
// rounds over the same input compare equal.
type Result struct {
	Round          int           `json:"round"`
	Files          []OutputFile  `json:"files"`
	Failures       []Failure     `json:"failures"`
	TypesGenerated int           `json:"types_generated"`
	Duration       time.Duration `json:"duration_ns"`
}

// OK returns true if no element failed.
func (r *Result) OK() bool { return len(r.Failures) == 0 }

// Err joins all failures, or returns nil.
func (r *Result) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// File returns the committed file at path.
func (r *Result) File(path string) (OutputFile, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return OutputFile{}, false
}
