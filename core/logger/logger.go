package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorGray   = "\033[90m"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) color() string {
	switch l {
	case DEBUG:
		return ColorGray
	case INFO:
		return ColorBlue
	case WARN:
		return ColorYellow
	case ERROR:
		return ColorRed
	case FATAL:
		return ColorPurple
	default:
		return ColorReset
	}
}

// sink is one destination for log lines. Extra sinks such as log files never
// get escape codes.
type sink struct {
	w       io.Writer
	colored bool
}

type ColoredLogger struct {
	mu      sync.RWMutex
	verbose bool
	color   bool
	sinks   []sink
	now     func() time.Time
	exit    func(int)
}

var globalLogger = newColoredLogger(os.Stdout)

func newColoredLogger(w io.Writer) *ColoredLogger {
	return &ColoredLogger{
		color: true,
		sinks: []sink{{w: w, colored: true}},
		now:   time.Now,
		exit:  os.Exit,
	}
}

func SetVerbose(verbose bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.verbose = verbose
}

// SetColor toggles escape codes on the primary output.
func SetColor(enabled bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.color = enabled
}

// SetOutput replaces every sink with w.
func SetOutput(w io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.sinks = []sink{{w: w, colored: true}}
}

// AddOutput duplicates every log line into w without colors.
func AddOutput(w io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.sinks = append(globalLogger.sinks, sink{w: w})
}

func removeOutput(w io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	kept := globalLogger.sinks[:0]
	for _, s := range globalLogger.sinks {
		if s.w != w {
			kept = append(kept, s)
		}
	}
	globalLogger.sinks = kept
}

// OpenLogFile appends log lines to the file at path. The returned func detaches
// the file from the logger and closes it.
func OpenLogFile(path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	AddOutput(f)
	return func() error {
		removeOutput(f)
		return f.Close()
	}, nil
}

func (cl *ColoredLogger) format(level LogLevel, message string, colored bool) string {
	timestamp := cl.now().Format("06-01-02 15:04:05")
	if !colored {
		return fmt.Sprintf("[%s] %-5s %s\n", timestamp, level.String(), message)
	}
	return fmt.Sprintf(
		"%s[%s]%s %s%-5s%s %s\n",
		ColorGray, timestamp, ColorReset,
		level.color(), level.String(), ColorReset,
		message,
	)
}

func (cl *ColoredLogger) log(level LogLevel, format string, args ...interface{}) {
	cl.mu.RLock()
	if level == DEBUG && !cl.verbose {
		cl.mu.RUnlock()
		return
	}
	message := fmt.Sprintf(format, args...)
	for _, s := range cl.sinks {
		io.WriteString(s.w, cl.format(level, message, s.colored && cl.color))
	}
	exit := cl.exit
	cl.mu.RUnlock()

	if level == FATAL {
		exit(1)
	}
}

func Debug(format string, args ...interface{}) {
	globalLogger.log(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	globalLogger.log(INFO, format, args...)
}

func Warn(format string, args ...interface{}) {
	globalLogger.log(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.log(ERROR, format, args...)
}

func Fatal(format string, args ...interface{}) {
	globalLogger.log(FATAL, format, args...)
}
