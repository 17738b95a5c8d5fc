// Package errors provides error handling for traitgen.
//
// It re-exports github.com/cockroachdb/errors for wrapping, hints and stack
// traces, and defines the generator's error taxonomy:
//
//   - configuration: a malformed or empty required annotation value
//   - resolution: a trait reference that is not in the trait registry
//   - conflict: a method collision without a resolving prefer entry
//   - emission_state: the source emitter was called out of phase (an engine bug)
//   - io: the artifact sink failed
//
// Usage:
//
//	if len(traits) == 0 {
//	    return errors.Configurationf("host %s declares no traits", host)
//	}
//
//	if errors.CodeOf(err) == errors.CodeConflict {
//	    // report against the host class and continue with its siblings
//	}
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	crdb "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing hints and details
var (
	WithHint       = crdb.WithHint
	WithHintf      = crdb.WithHintf
	WithDetail     = crdb.WithDetail
	WithDetailf    = crdb.WithDetailf
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenDetails = crdb.FlattenDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Code is a machine-readable error category.
type Code string

const (
	CodeConfiguration Code = "configuration"
	CodeResolution    Code = "resolution"
	CodeConflict      Code = "conflict"
	CodeEmissionState Code = "emission_state"
	CodeIO            Code = "io"
)

// Error is a categorized generator error.
type Error struct {
	Code    Code
	Message string
	Details map[string]any

	// cause is set for IO errors that wrap a sink failure.
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// WithDetail returns a new Error with the key-value pair added to details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// Configurationf reports a malformed or missing configuration value.
func Configurationf(format string, args ...any) error {
	return crdb.WithStack(&Error{Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)})
}

// Resolutionf reports a reference that could not be resolved.
func Resolutionf(format string, args ...any) error {
	return crdb.WithStack(&Error{Code: CodeResolution, Message: fmt.Sprintf(format, args...)})
}

// Conflict reports a method declared by more than one trait with no usable
// prefer entry. The trait names are listed in declaration order.
func Conflict(method string, traits []string) error {
	err := &Error{
		Code:    CodeConflict,
		Message: fmt.Sprintf("method %s is declared by multiple traits: %s", method, strings.Join(traits, ", ")),
		Details: map[string]any{"method": method, "traits": traits},
	}
	return crdb.WithHintf(crdb.WithStack(err),
		"add a prefer entry {method: %q, target: <one of %s>} to the host class", method, strings.Join(traits, ", "))
}

// Conflictf reports an inconsistent collision configuration that is not a
// plain unresolved collision, such as a prefer entry for a method that does
// not collide.
func Conflictf(format string, args ...any) error {
	return crdb.WithStack(&Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)})
}

// EmissionStatef reports a phase-ordering violation in the source emitter.
// It always indicates a defect in the caller, never bad input.
func EmissionStatef(format string, args ...any) error {
	return crdb.WithAssertionFailure(crdb.WithStack(&Error{Code: CodeEmissionState, Message: fmt.Sprintf(format, args...)}))
}

// IO wraps a sink failure.
func IO(cause error, format string, args ...any) error {
	return crdb.WithStack(&Error{Code: CodeIO, Message: fmt.Sprintf(format, args...), cause: cause})
}

// CodeOf returns the taxonomy code of err, or "" if err is not categorized.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if crdb.As(err, &e) {
		return e.Code
	}
	return ""
}

// DetailsOf returns the structured details of a categorized error.
func DetailsOf(err error) map[string]any {
	var e *Error
	if crdb.As(err, &e) {
		return e.Details
	}
	return nil
}

// Join combines errors into one, dropping nils. The messages are sorted so
// that errors collected from concurrent workers render deterministically.
func Join(errs ...error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return kept[0]
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Error() < kept[j].Error() })
	return stderrors.Join(kept...)
}

// FromValidation converts a validator/v10 failure into a configuration
// error whose details map each failing field to a readable message. Other
// errors are wrapped as configuration errors unchanged.
func FromValidation(err error, subject string) error {
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !crdb.As(err, &valErrs) {
		return crdb.WithStack(&Error{Code: CodeConfiguration, Message: fmt.Sprintf("%s: %v", subject, err)})
	}
	details := make(map[string]any, len(valErrs))
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msg := formatValidationError(ve)
		details[ve.Namespace()] = msg
		messages = append(messages, ve.Namespace()+": "+msg)
	}
	return crdb.WithStack(&Error{
		Code:    CodeConfiguration,
		Message: subject + ": " + strings.Join(messages, "; "),
		Details: details,
	})
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		if ve.Kind().String() == "slice" {
			return fmt.Sprintf("must have at least %s element(s)", ve.Param())
		}
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
