package gormdriver

import (
	"context"
	"fmt"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/go-logr/logr"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Logger forwards GORM's statement log to a logr.Logger. Statements are
// logged at V(1), slow statements as info and failures as errors.
// gorm.ErrRecordNotFound is not treated as a failure.
type Logger struct {
	log           logr.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewLogger creates a GORM logger writing to log at the Warn level.
func NewLogger(log logr.Logger, slowThreshold time.Duration) *Logger {
	return &Logger{log: log.WithName("gorm"), level: gormlogger.Warn, slowThreshold: slowThreshold}
}

func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *Logger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Info(fmt.Sprintf(msg, args...), "level", "warn")
	}
}

func (l *Logger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error(nil, fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error(err, "query failed", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Info("slow query", "sql", sql, "rows", rows, "elapsed", elapsed, "threshold", l.slowThreshold)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.V(1).Info("query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
