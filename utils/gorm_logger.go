package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends GORM output to logrus. SQL is traced at debug level,
// slow queries are warnings.
type GormLogger struct {
	log           logrus.FieldLogger
	slowThreshold time.Duration
}

func NewGormLogger(log logrus.FieldLogger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{log: log.WithField("component", "gorm"), slowThreshold: slowThreshold}
}

// LogMode is a no-op; verbosity follows the logrus level.
func (g *GormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return g
}

func (g *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	g.log.Debugf(msg, data...)
}

func (g *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	g.log.Warnf(msg, data...)
}

func (g *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	g.log.Errorf(msg, data...)
}

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := g.log.WithFields(logrus.Fields{
		"elapsed": elapsed.String(),
		"rows":    rows,
	})

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		entry.WithError(err).Errorf("query failed: %s", sql)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		entry.Warn(fmt.Sprintf("slow query (>%s): %s", g.slowThreshold, sql))
	default:
		entry.Debug(sql)
	}
}
