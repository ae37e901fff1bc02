package util

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a LOG_LEVEL value to a zap level; unknown values fall back to info.
func ParseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zap.InfoLevel
	}
	return lvl
}

// NewLogger builds a JSON logger on stdout. A non-empty logPath also appends
// every entry to that file, creating its directory if needed.
func NewLogger(logPath string, level zapcore.Level) (*zap.Logger, error) {
	encoder := zapcore.NewJSONEncoder(encoderConfig())
	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}

	if logPath != "" {
		file, err := openAppend(logPath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, file)
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return zap.New(core, zap.AddCaller()), nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}
