package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrClosed    = errors.New("notification dispatcher closed")
)

type job struct {
	ctx    context.Context
	userID uint
	ev     Event
}

// Dispatcher fans events out to its sinks on background workers. Publish
// never blocks; a full queue drops the event. Sink failures are logged and
// otherwise ignored.
type Dispatcher struct {
	sinks   []Publisher
	queue   chan job
	timeout time.Duration
	log     *logrus.Entry

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *logrus.Entry, workers, queueSize int, sinks ...Publisher) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		sinks:   sinks,
		queue:   make(chan job, queueSize),
		timeout: 10 * time.Second,
		log:     log,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) Publish(ctx context.Context, userID uint, ev Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- job{ctx: context.WithoutCancel(ctx), userID: userID, ev: ev}:
		return nil
	default:
		d.log.WithFields(logrus.Fields{
			"user_id": userID,
			"type":    ev.Type,
		}).Warn("Notification queue full, dropping event")
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(j.ctx, d.timeout)
		err := sink.Publish(ctx, j.userID, j.ev)
		cancel()
		if err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"user_id": j.userID,
				"type":    j.ev.Type,
			}).Error("Failed to deliver notification")
		}
	}
}
