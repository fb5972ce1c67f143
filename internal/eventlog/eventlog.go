// Package eventlog writes the append-only simplegit.log event file.
package eventlog

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger accepts one message per call. Implementations must never fail the caller.
type Logger interface {
	Log(msg string)
}

// Logf formats a message and hands it to l.
func Logf(l Logger, format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

type nopLogger struct{}

func (nopLogger) Log(string) {}

// Nop discards every message.
var Nop Logger = nopLogger{}

// FileLogger appends timestamped lines to a log file through zap.
type FileLogger struct {
	file *os.File
	zl   *zap.Logger
}

// Open opens path in append mode, creating it if needed.
func Open(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open event log %s: %w", path, err)
	}
	return &FileLogger{file: f, zl: newZap(f)}, nil
}

func newZap(w io.Writer) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.InfoLevel)
	// Write errors are dropped so a full disk never aborts an operation.
	return zap.New(core, zap.ErrorOutput(zapcore.AddSync(io.Discard)))
}

// Log implements Logger.
func (l *FileLogger) Log(msg string) {
	if l == nil || l.zl == nil {
		return
	}
	l.zl.Info(msg)
}

// Close flushes and closes the log file.
func (l *FileLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = l.zl.Sync()
	return l.file.Close()
}
