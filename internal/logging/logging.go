// Package logging builds the zap loggers used by traitgen.
//
// Libraries in this module never log through a global; they accept a
// *zap.SugaredLogger and default to a no-op logger. Only the CLI calls New.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldComponent = "component"
	FieldRound     = "round"
	FieldHost      = "host"
	FieldTrait     = "trait"
	FieldMethod    = "method"
	FieldFile      = "file"
	FieldCount     = "count"
	FieldError     = "error"
	FieldErrorCode = "error_code"
	FieldDuration  = "duration_ms"
)

// Verbosity levels for the -v flag count.
const (
	VerbosityQuiet = 0 // warnings and errors
	VerbosityInfo  = 1 // -v: + one line per generated unit
	VerbosityDebug = 2 // -vv: + per-method resolution details
)

// VerbosityToLevel maps a -v flag count to a zap level.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New returns a logger writing to stderr. JSON output is for machine
// consumption (CI); the console encoder is for humans.
func New(verbosity int, jsonOutput bool) *zap.SugaredLogger {
	return NewWithWriter(os.Stderr, verbosity, jsonOutput)
}

// NewWithWriter is like New but writes to w.
func NewWithWriter(w io.Writer, verbosity int, jsonOutput bool) *zap.SugaredLogger {
	var enc zapcore.Encoder
	if jsonOutput {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), VerbosityToLevel(verbosity))
	return zap.New(core).Sugar()
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns l, or a no-op logger if l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Nop()
	}
	return l
}

// Component returns a named child logger.
func Component(l *zap.SugaredLogger, name string) *zap.SugaredLogger {
	return OrNop(l).Named(name)
}
