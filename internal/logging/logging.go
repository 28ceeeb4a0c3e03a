// Package logging builds the zap logger used by the executors. Logs go
// to a rotating file in the state dir so normal CLI output stays clean;
// --verbose tees the same events to stderr.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mmr-tortoise/forest/internal/config"
)

// Options configures logger construction.
type Options struct {
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      zapcore.Level
	Verbose    bool
}

// DefaultOptions returns file-logging options rooted in the state dir.
func DefaultOptions(verbose bool) (Options, error) {
	stateDir, err := config.StateDir()
	if err != nil {
		return Options{}, err
	}
	return Options{
		FilePath:   filepath.Join(stateDir, "git-forest.log"),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 30,
		Level:      zapcore.InfoLevel,
		Verbose:    verbose,
	}, nil
}

// New builds a logger writing JSON to a rotating file. With Verbose a
// console core on stderr is added at debug level.
func New(opts Options) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
		return nil, err
	}

	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), fileSink, opts.Level),
	}

	if opts.Verbose {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(os.Stderr),
			zapcore.DebugLevel,
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// NewForCLI builds the standard CLI logger; failures fall back to a
// no-op logger so logging problems never block a lifecycle command.
func NewForCLI(verbose bool) *zap.Logger {
	opts, err := DefaultOptions(verbose)
	if err != nil {
		return zap.NewNop()
	}
	logger, err := New(opts)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
