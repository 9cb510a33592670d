package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Service string
	Level   string
	// File, when set, receives a copy of every line and is rotated by size.
	File      string
	MaxSizeMB int
	MaxAgeDay int
	// Stdout overrides os.Stdout, mostly for tests.
	Stdout io.Writer
}

func buildLumberjackSyncer(o Options) *lumberjack.Logger {
	maxSize, maxAge := o.MaxSizeMB, o.MaxAgeDay
	if maxSize <= 0 {
		maxSize = 100
	}
	if maxAge <= 0 {
		maxAge = 7
	}
	return &lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    maxSize,
		MaxBackups: 7,
		MaxAge:     maxAge,
	}
}

// New builds a JSON logger tagged with the service name.
func New(o Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(o.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", o.Level, err)
	}

	var stdout io.Writer = os.Stdout
	if o.Stdout != nil {
		stdout = o.Stdout
	}
	syncer := zapcore.AddSync(stdout)
	if o.File != "" {
		syncer = zapcore.NewMultiWriteSyncer(syncer, zapcore.AddSync(buildLumberjackSyncer(o)))
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), syncer, level)

	return zap.New(core, zap.AddCaller(), zap.Fields(zap.String("service", o.Service))), nil
}
