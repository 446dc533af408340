package logger

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	current atomic.Pointer[zap.Logger]
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	current.Store(zap.NewNop())
}

// Options controls how the global logger is built.
type Options struct {
	Level string
	// Format is "json" (default) or "console".
	Format string
	// Service, when set, is attached to every entry.
	Service string
}

// Init installs a JSON logger at the given level.
func Init(lvl string) error {
	return InitWithOptions(Options{Level: lvl})
}

// InitWithOptions builds and installs the global logger. An unknown level falls back to info.
func InitWithOptions(opts Options) error {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "json":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return fmt.Errorf("logger: unsupported format %q", opts.Format)
	}

	SetLevel(opts.Level)
	cfg.Level = level

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logger: build: %w", err)
	}
	if opts.Service != "" {
		built = built.With(zap.String("service", opts.Service))
	}
	Replace(built)
	return nil
}

// SetLevel changes the level of the logger built by InitWithOptions without rebuilding it.
func SetLevel(lvl string) {
	parsed, err := zapcore.ParseLevel(strings.TrimSpace(lvl))
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	level.SetLevel(parsed)
}

// Replace swaps the global logger; nil installs a no-op logger. Tests use it with observers.
func Replace(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// Logger returns the global logger.
func Logger() *zap.Logger {
	return current.Load()
}

// Sync flushes buffered entries.
func Sync() error {
	return Logger().Sync()
}

// WithModule returns a child logger tagged with module.
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}
