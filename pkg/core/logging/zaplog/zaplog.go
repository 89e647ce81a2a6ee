/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package zaplog is the default logging provider. It writes module loggers
// through a shared zap core and filters entries with per-module levels.
package zaplog

import (
	"fmt"
	"io"
	"os"

	"github.com/hyperledger/fabric-devtools-go/pkg/core/logging/api"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/logging/metadata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var moduleLevels = &metadata.ModuleLevels{}

// Provider creates module loggers backed by one zap.Logger
type Provider struct {
	base *zap.Logger
}

// LoggerProvider returns a provider writing console encoded entries to stderr
func LoggerProvider() api.LoggerProvider {
	return NewProvider(os.Stderr)
}

// NewProvider returns a provider writing console encoded entries to w
func NewProvider(w io.Writer) *Provider {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		// levels are filtered per module before reaching the core
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)
	return &Provider{base: NewZapLogger(core)}
}

// NewZapLogger creates a zap logger around core with caller annotation and
// stack traces for errors.
func NewZapLogger(core zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(
		core,
		append([]zap.Option{
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		}, options...)...,
	)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.NameKey = "name"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeName = zapcore.FullNameEncoder
	return cfg
}

// GetLogger returns a logger for module
func (p *Provider) GetLogger(module string) api.Logger {
	// skip the facade in pkg/common/logging as well as this adapter
	l := p.base.Named(module).WithOptions(zap.AddCallerSkip(2))
	return &Log{module: module, s: l.Sugar()}
}

// Sync flushes buffered entries
func (p *Provider) Sync() error {
	return p.base.Sync()
}

//SetLevel - setting log level for given module
func SetLevel(module string, level api.Level) {
	moduleLevels.SetLevel(module, level)
}

//GetLevel - getting log level for given module
func GetLevel(module string) api.Level {
	return moduleLevels.GetLevel(module)
}

//IsEnabledFor - Check if given log level is enabled for given module
func IsEnabledFor(module string, level api.Level) bool {
	return moduleLevels.IsEnabledFor(module, level)
}

// Log adapts a zap.SugaredLogger to api.Logger. Non-formatting methods
// build the message with fmt.Sprintln so that arguments are space separated.
type Log struct {
	module string
	s      *zap.SugaredLogger
}

func (l *Log) enabled(level api.Level) bool {
	return moduleLevels.IsEnabledFor(l.module, level)
}

// Fatal logs and exits the process regardless of the module level
func (l *Log) Fatal(args ...interface{}) { l.s.Fatal(formatArgs(args)) }

// Fatalf logs and exits the process regardless of the module level
func (l *Log) Fatalf(format string, args ...interface{}) { l.s.Fatalf(format, args...) }

// Debug logs at debug level
func (l *Log) Debug(args ...interface{}) {
	if l.enabled(api.DEBUG) {
		l.s.Debug(formatArgs(args))
	}
}

// Debugf logs at debug level
func (l *Log) Debugf(format string, args ...interface{}) {
	if l.enabled(api.DEBUG) {
		l.s.Debugf(format, args...)
	}
}

// Info logs at info level
func (l *Log) Info(args ...interface{}) {
	if l.enabled(api.INFO) {
		l.s.Info(formatArgs(args))
	}
}

// Infof logs at info level
func (l *Log) Infof(format string, args ...interface{}) {
	if l.enabled(api.INFO) {
		l.s.Infof(format, args...)
	}
}

// Warn logs at warning level
func (l *Log) Warn(args ...interface{}) {
	if l.enabled(api.WARNING) {
		l.s.Warn(formatArgs(args))
	}
}

// Warnf logs at warning level
func (l *Log) Warnf(format string, args ...interface{}) {
	if l.enabled(api.WARNING) {
		l.s.Warnf(format, args...)
	}
}

// Error logs at error level
func (l *Log) Error(args ...interface{}) {
	if l.enabled(api.ERROR) {
		l.s.Error(formatArgs(args))
	}
}

// Errorf logs at error level
func (l *Log) Errorf(format string, args ...interface{}) {
	if l.enabled(api.ERROR) {
		l.s.Errorf(format, args...)
	}
}

func formatArgs(args []interface{}) string {
	msg := fmt.Sprintln(args...)
	return msg[:len(msg)-1]
}
