// Package aspidlog wraps go.uber.org/zap for the interpreter's internal
// operational logging — lexer/parser/binder/evaluator stage timings and
// REPL session lifecycle events. This is distinct from internal/diag's
// user-facing language diagnostics: aspidlog is operator-facing
// instrumentation, silent by default, raised to debug level by the
// CLI's -v flag.
package aspidlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a *zap.Logger with the stage-timing/session-lifecycle
// helpers the rest of the interpreter calls into, so call sites never
// import zap directly.
type Logger struct {
	base *zap.Logger
}

// New builds a Logger writing to standard error at info level, or
// debug level when verbose is true (the CLI's -v flag).
func New(verbose bool) *Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "" // timestamps add noise to REPL session logs

	logger, err := cfg.Build()
	if err != nil {
		// zap.NewDevelopmentConfig().Build() only fails on a malformed
		// encoder/output config, which this constructor never produces.
		logger = zap.NewNop()
	}
	return &Logger{base: logger}
}

// Nop returns a Logger that discards everything, for callers (tests,
// library embedding) that don't want log output.
func Nop() *Logger { return &Logger{base: zap.NewNop()} }

func (l *Logger) Sync() error { return l.base.Sync() }

// StageTiming logs how long a front-end stage (lex, parse, bind, eval)
// took processing one unit of input, at debug level.
func (l *Logger) StageTiming(stage string, nanos int64) {
	l.base.Debug("stage timing", zap.String("stage", stage), zap.Int64("nanos", nanos))
}

// SessionStarted logs a session beginning at debug level, recording
// whether configuration loading succeeded (defaults count as success
// when no config file exists).
func (l *Logger) SessionStarted(configLoaded bool) {
	l.base.Debug("repl session started", zap.Bool("config_loaded", configLoaded))
}

// SessionEnded logs a session ending after evaluating n statements, at
// debug level.
func (l *Logger) SessionEnded(statementCount int) {
	l.base.Debug("repl session ended", zap.Int("statement_count", statementCount))
}

// DiagnosticRaised logs a binder/runtime diagnostic at debug level —
// the operator-facing echo of something internal/diag already showed
// the user on stderr.
func (l *Logger) DiagnosticRaised(kind, message string) {
	l.base.Debug("diagnostic raised", zap.String("kind", kind), zap.String("message", message))
}
