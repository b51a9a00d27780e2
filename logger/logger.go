// Package logger provides the shared zap sugared logger used by every
// component of the notification core, plus helpers for masking credentials.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// IsTest should be set to true from tests so the logger writes to stdout with
// the development encoder and Close does not try to sync a terminal.
var IsTest bool

type mode int

const (
	modeDevelopment mode = iota
	modeProduction
	modeTest
)

func currentMode() mode {
	switch {
	case IsTest:
		return modeTest
	case os.Getenv("ENVIRONMENT") == "production":
		return modeProduction
	default:
		return modeDevelopment
	}
}

// parseLevel reads LOG_LEVEL style values. Anything unknown means info.
func parseLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// buildConfig returns the zap configuration for m. Production logs JSON to
// stdout with ISO-8601 times.
func buildConfig(m mode, level zapcore.Level) zap.Config {
	var cfg zap.Config
	switch m {
	case modeProduction:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	case modeTest:
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stdout"}
		cfg.DisableStacktrace = true
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg
}

func initLoggerInternal() {
	cfg := buildConfig(currentMode(), parseLevel(os.Getenv("LOG_LEVEL")))
	zapLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger = zapLogger.Sugar()
}

// InitLogger initializes the global logger. Safe for concurrent calls.
func InitLogger() {
	once.Do(initLoggerInternal)
}

// GetLogger returns the shared logger, initializing it on first use.
func GetLogger() *zap.SugaredLogger {
	once.Do(initLoggerInternal)
	return logger
}

// Close flushes buffered log entries. Call it before the process exits.
func Close() error {
	if logger == nil || IsTest {
		return nil
	}
	if err := logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Error syncing logger: %v\n", err)
		return err
	}
	return nil
}

// MaskSensitiveString masks the middle of s, keeping prefixLen leading and
// suffixLen trailing characters.
func MaskSensitiveString(s string, prefixLen, suffixLen int) string {
	if s == "" {
		return ""
	}

	// Short strings are fully masked so their length is the only thing leaked.
	if len(s) < (prefixLen + suffixLen + 3) {
		return strings.Repeat("*", len(s))
	}

	return s[:prefixLen] + "..." + s[len(s)-suffixLen:]
}

// MaskJWT masks a bearer token for logging. Tokens shorter than ten
// characters are masked completely.
func MaskJWT(token string) string {
	if len(token) < 10 {
		return strings.Repeat("*", len(token))
	}
	return MaskSensitiveString(token, 3, 3)
}
