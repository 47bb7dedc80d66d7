package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wippyai/structwire/codec"
	"github.com/wippyai/structwire/schema"
)

// setupLogging installs a debug logger on the library packages when
// --verbose or --log-file is given. Without either they stay silent.
func (o *options) setupLogging() error {
	var cores []zapcore.Core
	if o.verbose {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zap.DebugLevel))
	}
	if o.logFile != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   o.logFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		})
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, w, zap.DebugLevel))
	}
	if len(cores) == 0 {
		return nil
	}

	o.logger = zap.New(zapcore.NewTee(cores...))
	schema.SetLogger(o.logger.Named("schema"))
	codec.SetLogger(o.logger.Named("codec"))
	return nil
}
