package internal

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LevelSet map[zapcore.Level]bool

func (ls LevelSet) Enabled(l zapcore.Level) bool {
	return ls[l]
}

// InitLogger installs the global logger. Info (and debug, when enabled) goes to
// stdout; warnings and errors always go to stderr.
func InitLogger(debug bool) {
	levels := LevelSet{zapcore.InfoLevel: true}
	if debug {
		levels[zapcore.DebugLevel] = true
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "",
		LevelKey:       "level",
		CallerKey:      "",
		FunctionKey:    "",
		StacktraceKey:  "",
		MessageKey:     "msg",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	stdoutCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.LevelEnablerFunc(levels.Enabled))
	stderrCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.WarnLevel
	}))

	zap.ReplaceGlobals(zap.New(zapcore.NewTee(stdoutCore, stderrCore)))
}
