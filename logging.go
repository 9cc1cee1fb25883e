package particles

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is what Host and the gpu runtime write progress and failures to.
// Debug output covers per-step dispatch and slot traffic.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// DefaultLogger writes debug and info lines to one stream and warnings and
// errors to another, each tagged with the configured prefix.
type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	l := &DefaultLogger{debug: debug, prefix: prefix}
	l.SetOutput(os.Stdout, os.Stderr)
	return l
}

// NewLogger builds the logger described by the [log] config section.
func NewLogger(cfg LogConfig) *DefaultLogger {
	return NewDefaultLogger(cfg.Prefix, cfg.Debug)
}

// SetOutput redirects both streams. Timestamps are kept.
func (l *DefaultLogger) SetOutput(out, errOut io.Writer) {
	flags := log.LstdFlags | log.Lmicroseconds
	l.mu.Lock()
	l.out = log.New(out, "", flags)
	l.err = log.New(errOut, "", flags)
	l.mu.Unlock()
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) logf(lv level, format string, args ...any) {
	l.mu.Lock()
	if lv == levelDebug && !l.debug {
		l.mu.Unlock()
		return
	}
	dst := l.out
	if lv >= levelWarn {
		dst = l.err
	}
	prefix := l.prefix
	l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if prefix != "" {
		dst.Printf("[%s] %s: %s", prefix, levelNames[lv], msg)
		return
	}
	dst.Printf("%s: %s", levelNames[lv], msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.logf(levelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.logf(levelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.logf(levelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.logf(levelError, format, args...) }

// NewNopLogger discards everything; NewHost uses it when given nil.
func NewNopLogger() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
