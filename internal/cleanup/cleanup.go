// Package cleanup runs the scheduled retention job that prunes old chat
// messages and read notifications.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// MessagePruner deletes messages created before a cutoff.
type MessagePruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationPruner deletes read notifications created before a cutoff.
type NotificationPruner interface {
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Result reports how many rows one run removed.
type Result struct {
	Messages      int64
	Notifications int64
}

type Job struct {
	cron          *cron.Cron
	spec          string
	messages      MessagePruner
	notifications NotificationPruner
	messageTTL    time.Duration
	readTTL       time.Duration
	log           *logrus.Entry
	now           func() time.Time
}

// New creates a job that fires on the standard five-field cron spec.
func New(spec string, messages MessagePruner, notifications NotificationPruner,
	messageTTL, readTTL time.Duration, log *logrus.Entry) *Job {
	logger := cron.PrintfLogger(log)
	return &Job{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		spec:          spec,
		messages:      messages,
		notifications: notifications,
		messageTTL:    messageTTL,
		readTTL:       readTTL,
		log:           log,
		now:           time.Now,
	}
}

// Start registers the job and starts the scheduler. Runs use ctx, so
// cancelling it aborts an in-flight cleanup.
func (j *Job) Start(ctx context.Context) error {
	_, err := j.cron.AddFunc(j.spec, func() {
		if _, err := j.RunOnce(ctx); err != nil {
			j.log.WithError(err).Error("Data cleanup failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule cleanup %q: %w", j.spec, err)
	}

	j.cron.Start()
	j.log.WithField("schedule", j.spec).Info("Cleanup job scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running cleanup to finish.
func (j *Job) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce performs one cleanup pass.
func (j *Job) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	now := j.now()

	n, err := j.messages.DeleteOlderThan(ctx, now.Add(-j.messageTTL))
	if err != nil {
		return res, fmt.Errorf("delete old messages: %w", err)
	}
	res.Messages = n

	n, err = j.notifications.DeleteReadOlderThan(ctx, now.Add(-j.readTTL))
	if err != nil {
		return res, fmt.Errorf("delete read notifications: %w", err)
	}
	res.Notifications = n

	j.log.WithFields(logrus.Fields{
		"messages":      res.Messages,
		"notifications": res.Notifications,
	}).Info("Data cleanup completed")
	return res, nil
}
