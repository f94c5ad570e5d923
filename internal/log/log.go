package log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// This package keeps a small key-value logging surface
// (Info(msg, k, v, ...), Error(msg, err, k, v, ...)) so call sites stay
// terse, while encoding/leveling is delegated to zap.

var (
	mu     sync.Mutex
	logger *zap.SugaredLogger
)

// Init configures the global logger.
//
//   - level:  "debug" | "info" | "warn" | "error"
//   - format: "json" (production encoder) | "console"
//
// Init may be called again to reconfigure (e.g. after config load); callers
// that never call Init get a console logger at info level.
func Init(level, format string) error {
	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
	}

	lv, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log: invalid level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lv)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("log: build failed: %w", err)
	}

	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
	return nil
}

func get() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		l, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			fmt.Fprintln(os.Stderr, "log: fallback logger init failed:", err)
			l = zap.NewNop()
		}
		logger = l.Sugar()
	}
	return logger
}

func Debug(msg string, kv ...any) {
	get().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	get().Infow(msg, kv...)
}

func Warn(msg string, kv ...any) {
	get().Warnw(msg, kv...)
}

// Error logs msg with err prepended to the key-value list.
func Error(msg string, err error, kv ...any) {
	extended := append([]any{"err", err}, kv...)
	get().Errorw(msg, extended...)
}

// Sync flushes buffered log entries. Safe to call on shutdown even if Init
// was never called.
func Sync() {
	_ = get().Sync()
}
