package logger

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu  sync.RWMutex
	std = newLogger(os.Stdout, log.InfoLevel)
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Formatter:       log.JSONFormatter,
		Level:           level,
	})
}

// Init replaces the process logger. An unknown level falls back to info.
func Init(w io.Writer, level string) {
	if w == nil {
		w = os.Stdout
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	l := newLogger(w, lvl)

	mu.Lock()
	std = l
	mu.Unlock()

	l.Info("logger initialized", "level", lvl.String())
}

// Default returns the underlying logger, e.g. for libraries that want a Printf/Fatalf sink.
func Default() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

func Debug(msg string, fields map[string]any) {
	Default().Debug(msg, keyvals(fields)...)
}

func Info(msg string, fields map[string]any) {
	Default().Info(msg, keyvals(fields)...)
}

func Warn(msg string, fields map[string]any) {
	Default().Warn(msg, keyvals(fields)...)
}

func Error(msg string, fields map[string]any) {
	Default().Error(msg, keyvals(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	Default().Error(msg, keyvals(fields)...)
	os.Exit(1)
}

// keyvals flattens fields in key order so output is stable.
func keyvals(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}
