package log

import (
	"fmt"
	"io"
	"strings"

	tmlog "github.com/tendermint/tendermint/libs/log"
)

// Logger interface is compatible with Tendermint logger
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})

	With(keyvals ...interface{}) Logger
}

const (
	// FormatPlain prints key=value lines.
	FormatPlain = "plain"
	// FormatJSON prints one JSON object per line.
	FormatJSON = "json"
)

// NewLogger returns a Tendermint backed Logger writing to w.
// Level is one of debug, info, error or none.
func NewLogger(w io.Writer, format, level string) (Logger, error) {
	var base tmlog.Logger
	switch strings.ToLower(format) {
	case "", FormatPlain:
		base = tmlog.NewTMLogger(tmlog.NewSyncWriter(w))
	case FormatJSON:
		base = tmlog.NewTMJSONLogger(tmlog.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
	opt, err := tmlog.AllowLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	return Wrap(tmlog.NewFilter(base, opt)), nil
}

// Wrap adapts a Tendermint logger.
func Wrap(l tmlog.Logger) Logger {
	return tmLogger{l: l}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return Wrap(tmlog.NewNopLogger())
}

type tmLogger struct {
	l tmlog.Logger
}

func (t tmLogger) Debug(msg string, keyvals ...interface{}) { t.l.Debug(msg, keyvals...) }
func (t tmLogger) Info(msg string, keyvals ...interface{})  { t.l.Info(msg, keyvals...) }
func (t tmLogger) Error(msg string, keyvals ...interface{}) { t.l.Error(msg, keyvals...) }

func (t tmLogger) With(keyvals ...interface{}) Logger {
	return tmLogger{l: t.l.With(keyvals...)}
}
