// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr in format ("json" or "console").
// Verbose enables debug output, including one line per request.
func New(format string, verbose bool) (*zap.Logger, error) {
	return NewWithWriter(os.Stderr, format, verbose)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, format string, verbose bool) (*zap.Logger, error) {
	if format != "json" && format != "console" {
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(newEncoder(format), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
