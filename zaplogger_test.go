// zaplogger_test.go: tests for the zap-backed Logger adapter
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package uastore

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedZapLogger() (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_ImplementsLogger(t *testing.T) {
	var _ Logger = (*ZapLogger)(nil)
}

func TestZapLogger_LevelsAndMessage(t *testing.T) {
	logger, logs := newObservedZapLogger()

	logger.Debug("debug msg")
	logger.Info("info msg")
	logger.Warn("warn msg")
	logger.Error("error msg")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("got %d log entries, want 4", len(entries))
	}

	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, wantLevels[i])
		}
	}
}

func TestZapLogger_KeyvalsBecomeFields(t *testing.T) {
	logger, logs := newObservedZapLogger()
	logger.Warn("uastore: insert failed", "status", "BadNodeIdExists", "attempt", 3)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != "BadNodeIdExists" {
		t.Errorf("status field = %v, want BadNodeIdExists", fields["status"])
	}
	if fields["attempt"] != int64(3) {
		t.Errorf("attempt field = %v, want 3", fields["attempt"])
	}
}

func TestZapLogger_OddKeyvalsIgnoresTrailingKey(t *testing.T) {
	logger, logs := newObservedZapLogger()
	logger.Info("msg", "key1", "value1", "danglingKey")

	fields := logs.All()[0].ContextMap()
	if len(fields) != 1 {
		t.Fatalf("got %d fields, want 1 (dangling key with no value should be dropped)", len(fields))
	}
	if fields["key1"] != "value1" {
		t.Errorf("key1 = %v, want value1", fields["key1"])
	}
}

func TestZapLogger_NonStringKeyIsSkipped(t *testing.T) {
	logger, logs := newObservedZapLogger()
	logger.Info("msg", 42, "value", "key2", "value2")

	fields := logs.All()[0].ContextMap()
	if len(fields) != 1 {
		t.Fatalf("got %d fields, want 1 (non-string key should be skipped)", len(fields))
	}
	if fields["key2"] != "value2" {
		t.Errorf("key2 = %v, want value2", fields["key2"])
	}
}

func TestZapLogger_WiredIntoStoreConfig(t *testing.T) {
	zapLog, logs := newObservedZapLogger()
	s, err := New(Config{InitialCapacity: 4, Logger: zapLog})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer Delete(s)

	id := NewNumericNodeId(1, 1)
	s.Insert(variableNode(id, "x"), false)
	// Triggers Logger.Warn via Store.Insert's failure path.
	s.Insert(variableNode(id, "x"), false)

	found := false
	for _, e := range logs.All() {
		if e.Message == "uastore: insert failed" {
			found = true
		}
	}
	if !found {
		t.Error("expected a duplicate Insert to log through the wired ZapLogger")
	}
}
