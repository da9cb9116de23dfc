package logger

import (
	"os"
	"time"

	"github.com/leandrodaf/midiengine/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of Uber's zap. Unlike a
// generic app logger, every call site in this module logs a handful of
// numeric/byte fields alongside a message (a discarded-byte count, a
// status byte, a chunk size) rather than freeform key/value pairs, so
// Field() builds a real zap.Field directly instead of boxing the value
// in a map to be marshaled later.
type ZapLogger struct {
	logger *zap.Logger
	level  contracts.LogLevel
}

// NewZapLogger creates a production-configured zap-backed logger.
func NewZapLogger() contracts.Logger {
	logger, _ := zap.NewProduction()
	return &ZapLogger{logger: logger, level: contracts.InfoLevel}
}

// NewNopLogger returns a logger that discards everything, for tests and
// library embedders that don't want codec diagnostics on stderr.
func NewNopLogger() contracts.Logger {
	return &ZapLogger{logger: zap.NewNop(), level: contracts.FatalLevel}
}

// Info logs a message at the INFO level.
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level.
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level.
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level.
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application.
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
	os.Exit(1)
}

// Field returns a fresh Field builder.
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel sets the minimum logging level.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level = level
}

// SetDestination is a no-op for ZapLogger; zap's production config already
// owns its output sink.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	threshold := zapcore.InfoLevel
	switch z.level {
	case contracts.DebugLevel:
		threshold = zapcore.DebugLevel
	case contracts.WarnLevel:
		threshold = zapcore.WarnLevel
	case contracts.ErrorLevel:
		threshold = zapcore.ErrorLevel
	case contracts.FatalLevel:
		threshold = zapcore.FatalLevel
	}
	if level < threshold {
		return
	}

	zfs := toZapFields(fields)
	switch level {
	case zapcore.InfoLevel:
		z.logger.Info(msg, zfs...)
	case zapcore.ErrorLevel:
		z.logger.Error(msg, zfs...)
	case zapcore.DebugLevel:
		z.logger.Debug(msg, zfs...)
	case zapcore.WarnLevel:
		z.logger.Warn(msg, zfs...)
	case zapcore.FatalLevel:
		z.logger.Fatal(msg, zfs...)
	}
}

// toZapFields unwraps each contracts.Field into the zap.Field it was
// built from. A value that didn't come from this package's own Field()
// (a test double's stand-in, say) is skipped rather than causing a panic.
func toZapFields(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(zapField); ok && zf.set {
			out = append(out, zf.field)
		}
	}
	return out
}

// zapField implements contracts.Field, each call producing one concrete
// zap.Field (zap.Int, zap.String, ...) rather than an interface{} value
// to be type-switched and marshaled at log time.
type zapField struct {
	field zap.Field
	set   bool
}

func (f zapField) Bool(key string, val bool) contracts.Field {
	return zapField{zap.Bool(key, val), true}
}

func (f zapField) Int(key string, val int) contracts.Field {
	return zapField{zap.Int(key, val), true}
}

func (f zapField) Float64(key string, val float64) contracts.Field {
	return zapField{zap.Float64(key, val), true}
}

func (f zapField) String(key string, val string) contracts.Field {
	return zapField{zap.String(key, val), true}
}

func (f zapField) Time(key string, val time.Time) contracts.Field {
	return zapField{zap.Time(key, val), true}
}

func (f zapField) Int64(key string, val int64) contracts.Field {
	return zapField{zap.Int64(key, val), true}
}

func (f zapField) Error(key string, val error) contracts.Field {
	return zapField{zap.NamedError(key, val), true}
}

func (f zapField) Uint64(key string, val uint64) contracts.Field {
	return zapField{zap.Uint64(key, val), true}
}

func (f zapField) Uint8(key string, val uint8) contracts.Field {
	return zapField{zap.Uint8(key, val), true}
}
