// Package logx provides the structured, key-value logging surface used
// throughout this module. It wraps log15 behind the same
// Info/Debug/Warn/Error/Crit shape go-ethereum's own log package exposes,
// so call sites read the same whether the message is a routine rotation
// event or a crash-only invariant failure.
package logx

import (
	"os"
	"sync"

	"github.com/inconshreveable/log15"
)

// Logger is the shared logging interface threaded through component
// constructors (apqc.New, qrm.New, qvm.New, sequencer.New, ...).
type Logger = log15.Logger

var (
	root     log15.Logger
	rootOnce sync.Once
)

func logger() log15.Logger {
	rootOnce.Do(func() {
		root = log15.New()
		root.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
	})
	return root
}

// SetLevel adjusts the minimum level emitted by the root logger.
func SetLevel(lvl log15.Lvl) {
	logger().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
}

// New returns a child logger carrying a fixed set of context key-values,
// e.g. logx.New("component", "apqc").
func New(ctx ...interface{}) log15.Logger {
	return logger().New(ctx...)
}

func Debug(msg string, ctx ...interface{}) { logger().Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { logger().Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { logger().Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { logger().Error(msg, ctx...) }

// Crit logs at the highest severity. It does not exit the process — callers
// raising an invariant violation are expected to panic themselves (see
// qrm.InvariantBroken) so the crash site and the log line stay together.
func Crit(msg string, ctx ...interface{}) { logger().Crit(msg, ctx...) }
