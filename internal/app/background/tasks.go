package background

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type SnapshotTaker interface {
	TakeSnapshot(ctx context.Context) error
}

type EventWorker interface {
	Run(ctx context.Context)
}

type BackgroundTasks struct {
	Snapshots SnapshotTaker
	Events    EventWorker
	Schedule  string
	Log       logrus.FieldLogger

	cron *cron.Cron
	done chan struct{}
}

func NewBackgroundTasks(snapshots SnapshotTaker, events EventWorker, schedule string, log logrus.FieldLogger) *BackgroundTasks {
	return &BackgroundTasks{
		Snapshots: snapshots,
		Events:    events,
		Schedule:  schedule,
		Log:       log,
		done:      make(chan struct{}),
	}
}

// StartAll starts the event publisher and the snapshot schedule. Both stop
// when ctx is done; Wait blocks until they have.
func (bt *BackgroundTasks) StartAll(ctx context.Context) error {
	printf := cron.PrintfLogger(bt.Log)
	bt.cron = cron.New(
		cron.WithLogger(printf),
		cron.WithChain(cron.Recover(printf), cron.SkipIfStillRunning(printf)),
	)
	if bt.Schedule != "" {
		if _, err := bt.cron.AddFunc(bt.Schedule, func() { bt.snapshot(ctx) }); err != nil {
			return fmt.Errorf("snapshot schedule %q: %w", bt.Schedule, err)
		}
	}

	events := make(chan struct{})
	go func() {
		defer close(events)
		bt.Events.Run(ctx)
	}()
	bt.cron.Start()

	go func() {
		<-ctx.Done()
		<-bt.cron.Stop().Done()
		<-events
		close(bt.done)
	}()
	return nil
}

func (bt *BackgroundTasks) Wait() {
	<-bt.done
}

func (bt *BackgroundTasks) snapshot(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := bt.Snapshots.TakeSnapshot(ctx); err != nil {
		bt.Log.WithError(err).Error("scheduled snapshot failed")
		return
	}
	bt.Log.WithField("took", time.Since(start).String()).Debug("scheduled snapshot done")
}
