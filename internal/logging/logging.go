// Package logging provides categorized logging for cotreflect.
// Each subsystem logs through a named category so a single run can be
// traced across the gateway, the pipeline, and the snapshot store.
// Logging is controlled by the debug_mode setting in the user config;
// when disabled only warnings and errors are emitted.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config resolution
	CategoryAPI      Category = "api"      // Model backend calls
	CategoryPipeline Category = "pipeline" // Reflection pipeline runs
	CategoryStore    Category = "store"    // Snapshot store operations
)

// Config controls the logging backend.
type Config struct {
	// DebugMode enables debug-level output. Off by default.
	DebugMode bool `json:"debug_mode"`
	// Dir is the directory log files are written to. Empty means stderr.
	Dir string `json:"dir,omitempty"`
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop().Sugar()
	byCat   = map[Category]*zap.SugaredLogger{}
	logFile *os.File
)

// Init configures the process-wide logger. Safe to call once at startup;
// before Init all logging is a no-op, which keeps tests quiet.
func Init(cfg Config) error {
	level := zapcore.WarnLevel
	if cfg.DebugMode {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	sink := zapcore.AddSync(os.Stderr)
	var f *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(filepath.Join(cfg.Dir, "cotreflect.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.AddSync(f)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level)

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	root = zap.New(core).Sugar()
	byCat = map[Category]*zap.SugaredLogger{}
	return nil
}

// Get returns the logger for a category.
func Get(cat Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := byCat[cat]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := byCat[cat]; ok {
		return l
	}
	l := root.Named(string(cat))
	byCat[cat] = l
	return l
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}

// Convenience helpers mirroring the category constants.

func Boot(format string, args ...interface{})     { Get(CategoryBoot).Infof(format, args...) }
func API(format string, args ...interface{})      { Get(CategoryAPI).Infof(format, args...) }
func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debugf(format, args...) }
func Pipeline(format string, args ...interface{}) { Get(CategoryPipeline).Infof(format, args...) }
func PipelineDebug(format string, args ...interface{}) {
	Get(CategoryPipeline).Debugf(format, args...)
}
func Store(format string, args ...interface{})      { Get(CategoryStore).Infof(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debugf(format, args...) }
