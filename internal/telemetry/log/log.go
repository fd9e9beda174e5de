// Copyright 2025 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is the process-wide structured logger: a package-level
// zap.SugaredLogger wired to either stdout or a rotating file, matching
// the Infow/Errorw/Warnw call-site style used throughout this codebase.
package log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger
)

func init() {
	logger = build("stdout", "", zapcore.InfoLevel, 0, 0, 0)
}

// Config controls where and how the logger writes.
type Config struct {
	// Output is "stdout" or "file". Any other value falls back to stdout.
	Output string
	// FilePath is the rotating log file path, used when Output == "file".
	FilePath   string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init (re)configures the package-level logger. Call it once at process
// startup, before any component logs.
func Init(cfg Config) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelOrDefault(cfg.Level))); err != nil {
		return fmt.Errorf("log: parse level %q: %w", cfg.Level, err)
	}

	mu.Lock()
	defer mu.Unlock()
	logger = build(cfg.Output, cfg.FilePath, level, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	return nil
}

func levelOrDefault(s string) string {
	if s == "" {
		return "info"
	}
	return s
}

func build(output, filePath string, level zapcore.Level, maxSizeMB, maxBackups, maxAgeDays int) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	var writer zapcore.WriteSyncer
	if output == "file" && filePath != "" {
		writer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    orDefault(maxSizeMB, 100),
			MaxBackups: orDefault(maxBackups, 7),
			MaxAge:     orDefault(maxAgeDays, 28),
			Compress:   true,
		})
	} else {
		writer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writer, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Info logs a message at info level.
func Info(msg string, args ...interface{}) { current().Infof(msg, args...) }

// Infow logs a message at info level with structured key/value pairs.
func Infow(msg string, kv ...interface{}) { current().Infow(msg, kv...) }

// Warnw logs a message at warn level with structured key/value pairs.
func Warnw(msg string, kv ...interface{}) { current().Warnw(msg, kv...) }

// Errorw logs a message at error level with structured key/value pairs.
func Errorw(msg string, kv ...interface{}) { current().Errorw(msg, kv...) }

// Fatalw logs at fatal level then calls os.Exit(1).
func Fatalw(msg string, kv ...interface{}) { current().Fatalw(msg, kv...) }

// Sync flushes any buffered log entries. Call it before process exit.
func Sync() error { return current().Sync() }
