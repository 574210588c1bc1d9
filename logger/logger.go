// Package logger - Builds the zap logger used for diagnostics.
package logger

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr.
//
// Arguments:
//   - level: The minimum level, e.g. "warn".
//   - debug: Forces the debug level and adds caller information.
//
// Returns:
//   - *zap.Logger: The logger.
//   - error: An error if the level is unknown.
func New(level string, debug bool) (*zap.Logger, error) {
	return NewWithWriter(os.Stderr, level, debug)
}

// NewWithWriter returns a console logger writing to w.
//
// Arguments:
//   - w: The destination.
//   - level: The minimum level, e.g. "warn".
//   - debug: Forces the debug level and adds caller information.
//
// Returns:
//   - *zap.Logger: The logger.
//   - error: An error if the level is unknown.
func NewWithWriter(w io.Writer, level string, debug bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if debug {
		lvl = zapcore.DebugLevel
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		lvl,
	)

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if debug {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...), nil
}
