package util

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger builds the console logger used across the client. Unknown
// levels fall back to info.
func NewZapLogger(levelName string) *zap.SugaredLogger {
	stdout := zapcore.AddSync(os.Stdout)

	lvl, err := zapcore.ParseLevel(levelName)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	level := zap.NewAtomicLevelAt(lvl)

	developmentCfg := zap.NewDevelopmentEncoderConfig()
	developmentCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(developmentCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, stdout, level),
	)

	return zap.New(core).Sugar()
}
