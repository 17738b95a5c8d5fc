package discovery

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tisoft/java-traits/internal/errors"
	"github.com/tisoft/java-traits/internal/logging"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic is a message attached to a source element.
type Diagnostic struct {
	Severity Severity
	Pos      Pos

	// Element is the qualified name of the element the message is about.
	Element string

	Message string
	Code    errors.Code
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// ErrorDiagnostic builds an error diagnostic for err against e.
func ErrorDiagnostic(e Element, err error) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Pos:      e.Pos,
		Element:  e.Name,
		Message:  err.Error(),
		Code:     errors.CodeOf(err),
	}
}

// Reporter receives diagnostics. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Report(d Diagnostic)
}

// LogReporter writes diagnostics to a zap logger.
type LogReporter struct {
	log *zap.SugaredLogger
}

// NewLogReporter returns a reporter logging under the "diagnostics" name.
func NewLogReporter(log *zap.SugaredLogger) *LogReporter {
	return &LogReporter{log: logging.Component(log, "diagnostics")}
}

func (r *LogReporter) Report(d Diagnostic) {
	kv := []any{"pos", d.Pos.String()}
	if d.Element != "" {
		kv = append(kv, "element", d.Element)
	}
	if d.Code != "" {
		kv = append(kv, logging.FieldErrorCode, string(d.Code))
	}
	switch d.Severity {
	case SeverityError:
		r.log.Errorw(d.Message, kv...)
	case SeverityWarning:
		r.log.Warnw(d.Message, kv...)
	default:
		r.log.Infow(d.Message, kv...)
	}
}

// Collector keeps diagnostics in memory.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.diags...)
}

// Errors returns the number of error diagnostics.
func (c *Collector) Errors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Reset drops all collected diagnostics.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = nil
}

// Tee forwards each diagnostic to every reporter.
type Tee []Reporter

func (t Tee) Report(d Diagnostic) {
	for _, r := range t {
		if r != nil {
			r.Report(d)
		}
	}
}
