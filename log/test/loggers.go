package test

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rollkit/disputes/log"
)

// TestLogger forwards log lines to testing.T.
type TestLogger struct {
	mtx     sync.Mutex
	T       *testing.T
	keyvals []interface{}
}

var _ log.Logger = &TestLogger{}

// NewTestLogger returns a TestLogger bound to t.
func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{T: t}
}

func (t *TestLogger) Debug(msg string, keyvals ...interface{}) {
	t.T.Helper()
	t.log("DEBUG: "+msg, keyvals)
}

func (t *TestLogger) Info(msg string, keyvals ...interface{}) {
	t.T.Helper()
	t.log("INFO:  "+msg, keyvals)
}

func (t *TestLogger) Error(msg string, keyvals ...interface{}) {
	t.T.Helper()
	t.log("ERROR: "+msg, keyvals)
}

func (t *TestLogger) With(keyvals ...interface{}) log.Logger {
	return &TestLogger{T: t.T, keyvals: append(append([]interface{}{}, t.keyvals...), keyvals...)}
}

func (t *TestLogger) log(msg string, keyvals []interface{}) {
	t.T.Helper()
	t.mtx.Lock()
	defer t.mtx.Unlock()
	args := append([]interface{}{msg}, t.keyvals...)
	t.T.Log(append(args, keyvals...)...)
}

// MockLogger records log lines so tests can assert on them.
type MockLogger struct {
	mtx                             sync.Mutex
	DebugLines, InfoLines, ErrLines []string
}

var _ log.Logger = &MockLogger{}

func (t *MockLogger) Debug(msg string, keyvals ...interface{}) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.DebugLines = append(t.DebugLines, fmt.Sprint(append([]interface{}{msg}, keyvals...)...))
}

func (t *MockLogger) Info(msg string, keyvals ...interface{}) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.InfoLines = append(t.InfoLines, fmt.Sprint(append([]interface{}{msg}, keyvals...)...))
}

func (t *MockLogger) Error(msg string, keyvals ...interface{}) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.ErrLines = append(t.ErrLines, fmt.Sprint(append([]interface{}{msg}, keyvals...)...))
}

// With returns the same MockLogger; context key/values are not recorded.
func (t *MockLogger) With(keyvals ...interface{}) log.Logger {
	return t
}

// Contains reports whether any recorded line at any level contains s.
func (t *MockLogger) Contains(s string) bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	for _, lines := range [][]string{t.DebugLines, t.InfoLines, t.ErrLines} {
		for _, l := range lines {
			if strings.Contains(l, s) {
				return true
			}
		}
	}
	return false
}
