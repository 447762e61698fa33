package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level string) (gormlogger.Interface, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return newGormLogger(zap.New(core), level), logs
}

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l, logs := newObservedGormLogger("info")
	l.Trace(context.Background(), time.Now(), sql, nil)
	if logs.Len() != 0 {
		t.Errorf("expected fast query to be silent at warn level, got %d entries", logs.Len())
	}

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	if logs.FilterMessage("慢查询").Len() != 1 {
		t.Error("expected slow query warning")
	}

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	if logs.FilterMessage("SQL 执行失败").Len() != 0 {
		t.Error("record-not-found must not be logged as failure")
	}

	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	if logs.FilterMessage("SQL 执行失败").Len() != 1 {
		t.Error("expected failure entry")
	}
}

func TestGormLogger_DebugLogsAll(t *testing.T) {
	l, logs := newObservedGormLogger("debug")
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	if logs.FilterMessage("SQL").Len() != 1 {
		t.Error("expected statement logged at debug")
	}
}

func TestGormLogger_Silent(t *testing.T) {
	l, logs := newObservedGormLogger("debug")
	l = l.LogMode(gormlogger.Silent)
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	if logs.Len() != 0 {
		t.Error("silent mode must not log")
	}
}
