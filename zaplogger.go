// zaplogger.go: optional zap-backed Logger adapter
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

import "go.uber.org/zap"

// ZapLogger adapts a *zap.Logger to the Logger interface, for applications
// that already standardize on zap for structured logging (the pattern this
// corpus's server layer uses throughout).
type ZapLogger struct {
	log *zap.Logger
}

// NewZapLogger wraps log as a Logger. log must not be nil.
func NewZapLogger(log *zap.Logger) *ZapLogger {
	return &ZapLogger{log: log}
}

func keyvalsToFields(keyvals []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}
	return fields
}

func (l *ZapLogger) Debug(msg string, keyvals ...interface{}) {
	l.log.Debug(msg, keyvalsToFields(keyvals)...)
}

func (l *ZapLogger) Info(msg string, keyvals ...interface{}) {
	l.log.Info(msg, keyvalsToFields(keyvals)...)
}

func (l *ZapLogger) Warn(msg string, keyvals ...interface{}) {
	l.log.Warn(msg, keyvalsToFields(keyvals)...)
}

func (l *ZapLogger) Error(msg string, keyvals ...interface{}) {
	l.log.Error(msg, keyvalsToFields(keyvals)...)
}

var _ Logger = (*ZapLogger)(nil)
