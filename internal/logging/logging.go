package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level classifies a log line.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSuccess:
		return "SUCCESS"
	default:
		return "UNKNOWN"
	}
}

var levelStyles = map[Level]lipgloss.Style{
	LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
	LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04")),
	LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true),
	LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")),
}

// Logger writes one "[timestamp] [LEVEL] message" line per event to an
// append-only log file and mirrors it to the console.
type Logger struct {
	mu      sync.Mutex
	file    io.Writer
	console io.Writer
	closer  io.Closer
	styled  bool
	now     func() time.Time
}

// New returns a logger writing plain lines to out. Used by tests and as
// a fallback when no log file is configured.
func New(out io.Writer) *Logger {
	return &Logger{file: out, now: time.Now}
}

// Open creates a logger appending to path and mirroring styled lines to
// stdout. The parent directory is created if needed.
func Open(path string) (*Logger, error) {
	if path == "" {
		return &Logger{console: os.Stdout, styled: true, now: time.Now}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return &Logger{file: f, console: os.Stdout, closer: f, styled: true, now: time.Now}, nil
}

// Close releases the underlying log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := l.now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)

	if l.file != nil {
		_, _ = fmt.Fprintf(l.file, "[%s] [%s] %s\n", timestamp, level, msg)
	}
	if l.console != nil {
		tag := "[" + level.String() + "]"
		if l.styled {
			tag = levelStyles[level].Render(tag)
		}
		_, _ = fmt.Fprintf(l.console, "[%s] %s %s\n", timestamp, tag, msg)
	}
}

// Info logs an informational event.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an operation failure.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Success logs a completed recovery step.
func (l *Logger) Success(format string, args ...any) {
	l.log(LevelSuccess, format, args...)
}
