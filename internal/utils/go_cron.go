package utils

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartDigestScheduler runs job on spec in the scheduler's own goroutine.
// The caller stops the returned scheduler on shutdown.
func StartDigestScheduler(spec string, job func(), logger *logrus.Logger) (*cron.Cron, error) {
	cronLog := CronLogger(logger)
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	id, err := scheduler.AddFunc(spec, job)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule digest job: %w", err)
	}
	scheduler.Start()

	logger.WithFields(logrus.Fields{
		"Function": "StartDigestScheduler",
		"Spec":     spec,
		"Next":     scheduler.Entry(id).Next,
	}).Info("Digest scheduler started")
	return scheduler, nil
}

type cronLogger struct {
	entry *logrus.Entry
}

// CronLogger routes scheduler events to logger. Routine events such as
// wakeups and skipped runs go out at debug level.
func CronLogger(logger *logrus.Logger) cron.Logger {
	return cronLogger{entry: logger.WithField("Function", "cron")}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairs(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(pairs(keysAndValues)).WithField("Error", err).Error(msg)
}

func pairs(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
