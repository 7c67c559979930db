// Package applog is the process-wide, concurrency-safe file logger: the
// one side channel spec.md §5 allows every core package to call into
// regardless of how many sessions run concurrently.
package applog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes timestamped, leveled lines to a single run-scoped log
// file. The zero value silently discards every line; construct with New
// or Get.
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

var (
	instance *Logger
	once     sync.Once
)

// Get returns the singleton process logger, opening its log file under
// the OS user-cache directory on first use.
func Get() *Logger {
	once.Do(func() {
		l, err := New(defaultLogPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "applog: %v (logging disabled)\n", err)
			l = &Logger{}
		}
		instance = l
	})
	return instance
}

// New opens (creating parent directories as needed) a log file at path.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("applog: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("applog: open log file: %w", err)
	}
	return &Logger{file: f, writer: bufio.NewWriter(f)}, nil
}

func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, "phd-reader", "logs", fmt.Sprintf("phd-reader_%s.log", timestamp))
}

func (l *Logger) write(level, format string, args ...any) {
	if l == nil || l.writer == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().Format("2006/01/02 15:04:05")
	fmt.Fprintf(l.writer, "%s [%s] %s\n", ts, level, fmt.Sprintf(format, args...))
	l.writer.Flush()
}

func (l *Logger) Debugf(format string, args ...any) { l.write("D", format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.write("W", format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.write("E", format, args...) }

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.Flush()
	return l.file.Close()
}
