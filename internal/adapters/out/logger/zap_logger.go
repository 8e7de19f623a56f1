package logger

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suchimauz/cist-schedule-api/internal/core/ports/out"
)

type ZapLogger struct {
	zap           *zap.Logger
	defaultFields out.LogFields
	module        string
}

// NewZapLogger собирает zap-логгер: format "console" для разработки, иначе JSON
func NewZapLogger(level, format, timezone string) (*ZapLogger, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	var zapCfg zap.Config
	switch format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)

	// Время в таймзоне приложения
	zapCfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format("2006-01-02 15:04:05.000"))
	}

	z, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return NewFromZap(z), nil
}

func NewFromZap(z *zap.Logger) *ZapLogger {
	return &ZapLogger{
		zap:           z,
		defaultFields: make(out.LogFields),
	}
}

// NewNopLogger для тестов
func NewNopLogger() *ZapLogger {
	return NewFromZap(zap.NewNop())
}

func (l *ZapLogger) Zap() *zap.Logger {
	return l.zap
}

func (l *ZapLogger) Sync() error {
	return l.zap.Sync()
}

func (l *ZapLogger) WithFields(fields out.LogFields) out.LoggerPort {
	newLogger := &ZapLogger{
		zap:           l.zap,
		defaultFields: make(out.LogFields, len(l.defaultFields)+len(fields)),
		module:        l.module,
	}

	for k, v := range l.defaultFields {
		newLogger.defaultFields[k] = v
	}
	for k, v := range fields {
		newLogger.defaultFields[k] = v
	}

	return newLogger
}

func (l *ZapLogger) WithModule(module string) out.LoggerPort {
	return &ZapLogger{
		zap:           l.zap,
		defaultFields: l.defaultFields,
		module:        module,
	}
}

func (l *ZapLogger) Debug(event string, fields out.LogFields) {
	l.log(out.LogLevelDebug, event, fields)
}

func (l *ZapLogger) Info(event string, fields out.LogFields) {
	l.log(out.LogLevelInfo, event, fields)
}

func (l *ZapLogger) Warn(event string, fields out.LogFields) {
	l.log(out.LogLevelWarn, event, fields)
}

func (l *ZapLogger) Error(event string, fields out.LogFields) {
	l.log(out.LogLevelError, event, fields)
}

func (l *ZapLogger) log(level out.LogLevel, event string, fields out.LogFields) {
	module := l.module
	if module == "" {
		module = "unknown"
	}

	merged := make(out.LogFields, len(l.defaultFields)+len(fields))
	for k, v := range l.defaultFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zapFields := make([]zap.Field, 0, len(keys)+1)
	zapFields = append(zapFields, zap.String("module", module))
	for _, k := range keys {
		zapFields = append(zapFields, zap.Any(k, merged[k]))
	}

	switch level {
	case out.LogLevelDebug:
		l.zap.Debug(event, zapFields...)
	case out.LogLevelInfo:
		l.zap.Info(event, zapFields...)
	case out.LogLevelWarn:
		l.zap.Warn(event, zapFields...)
	default:
		l.zap.Error(event, zapFields...)
	}
}
