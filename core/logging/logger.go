package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel maps a config value such as "debug" to a level.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "", "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return WARN, fmt.Errorf("unknown log level %q", name)
}

type sink struct {
	mu  sync.Mutex
	out io.Writer
}

// Logger writes levelled lines with key/value pairs.
type Logger struct {
	level  LogLevel
	prefix string
	sink   *sink
	now    func() time.Time
}

// NewLogger creates a logger writing to stderr.
func NewLogger(level LogLevel, prefix string) *Logger {
	return NewLoggerTo(os.Stderr, level, prefix)
}

// NewLoggerTo creates a logger writing to out.
func NewLoggerTo(out io.Writer, level LogLevel, prefix string) *Logger {
	return &Logger{
		level:  level,
		prefix: prefix,
		sink:   &sink{out: out},
		now:    time.Now,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, ERROR+1, "")
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.level
}

// format renders "[ts] LEVEL [prefix] message k=v ..."
func (l *Logger) format(level LogLevel, message string, args ...interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s ", l.now().Format("2006-01-02 15:04:05"), level)
	if l.prefix != "" {
		fmt.Fprintf(&b, "[%s] ", l.prefix)
	}
	b.WriteString(message)

	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v=<missing_value>", args[i])
		}
	}
	return b.String()
}

func (l *Logger) log(level LogLevel, message string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	line := l.format(level, message, args...)
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	fmt.Fprintln(l.sink.out, line)
}

func (l *Logger) Debug(message string, args ...interface{}) {
	l.log(DEBUG, message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.log(INFO, message, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.log(WARN, message, args...)
}

func (l *Logger) Error(message string, args ...interface{}) {
	l.log(ERROR, message, args...)
}

// WithPrefix returns a logger sharing this one's output under another prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{
		level:  l.level,
		prefix: prefix,
		sink:   l.sink,
		now:    l.now,
	}
}

var defaultLogger = NewLogger(WARN, "")

// Default returns the process-wide logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefaultLevel sets the level of the process-wide logger. Loggers
// derived from it afterwards inherit the level.
func SetDefaultLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}
