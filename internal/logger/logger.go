package logger

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"`
	// FilePath switches output from stderr to a rotating file.
	FilePath   string `koanf:"file_path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

type Logger struct {
	l *zap.SugaredLogger
}

func New(conf Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(conf.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", conf.Level, err)
	}

	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder

	switch conf.Encoding {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(encoderConf)
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConf)
	default:
		return nil, fmt.Errorf("unsupported log encoding %q", conf.Encoding)
	}

	sink := zapcore.Lock(os.Stderr)

	if conf.FilePath != "" {
		//nolint:exhaustruct
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.FilePath,
			MaxSize:    conf.MaxSizeMB,
			MaxBackups: conf.MaxBackups,
		})
	}

	core := zapcore.NewCore(encoder, sink, level)

	return &Logger{l: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}, nil
}

// NewNop returns a logger that drops everything. Used by tests.
func NewNop() *Logger {
	return &Logger{l: zap.NewNop().Sugar()}
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l: l.l.With(keysAndValues...)}
}

func (l *Logger) LogErrorf(format string, v ...any) {
	l.l.Errorf(format, v...)
}

func (l *Logger) LogWarn(format string, v ...any) {
	l.l.Warnf(format, v...)
}

func (l *Logger) LogInfo(format string, v ...any) {
	l.l.Infof(format, v...)
}

func (l *Logger) LogDebug(format string, v ...any) {
	l.l.Debugf(format, v...)
}

func (l *Logger) Infow(msg string, keysAndValues ...any) {
	l.l.Infow(msg, keysAndValues...)
}

// StdLogger adapts the logger for APIs that want a *log.Logger, such as
// http.Server.ErrorLog.
func (l *Logger) StdLogger() *log.Logger {
	std, err := zap.NewStdLogAt(l.l.Desugar(), zap.ErrorLevel)
	if err != nil {
		return log.Default()
	}

	return std
}

func (l *Logger) Sync() {
	_ = l.l.Sync()
}
