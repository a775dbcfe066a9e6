package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	userID uint
	ev     Event
}

type recordingSink struct {
	mu   sync.Mutex
	got  []delivery
	err  error
	gate chan struct{}
	busy chan struct{}
}

func (s *recordingSink) Publish(ctx context.Context, userID uint, ev Event) error {
	if s.busy != nil {
		s.busy <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, delivery{userID: userID, ev: ev})
	return s.err
}

func (s *recordingSink) deliveries() []delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]delivery(nil), s.got...)
}

func TestDispatcherDeliversToEverySink(t *testing.T) {
	logger, _ := test.NewNullLogger()
	a, b := &recordingSink{}, &recordingSink{}
	d := NewDispatcher(logrus.NewEntry(logger), 2, 8, a, b)

	require.NoError(t, d.Publish(context.Background(), 7, MatchEvent(3)))
	d.Close()

	for _, sink := range []*recordingSink{a, b} {
		got := sink.deliveries()
		require.Len(t, got, 1)
		assert.Equal(t, uint(7), got[0].userID)
		assert.Equal(t, "match", got[0].ev.Type)
	}
}

func TestDispatcherSwallowsSinkErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	failing := &recordingSink{err: errors.New("socket gone")}
	healthy := &recordingSink{}
	d := NewDispatcher(logrus.NewEntry(logger), 1, 4, failing, healthy)

	require.NoError(t, d.Publish(context.Background(), 1, LikeEvent(2)))
	d.Close()

	assert.Len(t, healthy.deliveries(), 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "Failed to deliver notification", hook.LastEntry().Message)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := &recordingSink{gate: make(chan struct{}), busy: make(chan struct{}, 4)}
	d := NewDispatcher(logrus.NewEntry(logger), 1, 1, sink)

	require.NoError(t, d.Publish(context.Background(), 1, LikeEvent(9)))
	select {
	case <-sink.busy:
	case <-time.After(time.Second):
		t.Fatal("worker never picked up the first event")
	}
	require.NoError(t, d.Publish(context.Background(), 2, LikeEvent(9)))

	err := d.Publish(context.Background(), 3, LikeEvent(9))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	close(sink.gate)
	d.Close()
	assert.Len(t, sink.deliveries(), 2)
}

func TestDispatcherOutlivesRequestContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var seen error
	sink := PublisherFunc(func(ctx context.Context, _ uint, _ Event) error {
		seen = ctx.Err()
		return nil
	})
	d := NewDispatcher(logrus.NewEntry(logger), 1, 1, sink)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Publish(ctx, 1, LikeEvent(2)))
	cancel()
	d.Close()

	assert.NoError(t, seen)
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(logrus.NewEntry(logger), 1, 1)
	d.Close()
	d.Close()

	assert.ErrorIs(t, d.Publish(context.Background(), 1, LikeEvent(2)), ErrClosed)
}
