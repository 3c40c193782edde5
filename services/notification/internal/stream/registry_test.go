package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"task-notify/pkg/logger"
	"task-notify/services/notification/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	events []Event
	failAt int
}

func (s *fakeSender) Send(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt > 0 && len(s.events)+1 >= s.failAt {
		return errors.New("broken pipe")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *fakeSender) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func (s *fakeSender) countType(eventType string) int {
	n := 0
	for _, e := range s.Events() {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "ERROR")
}

func unreadOf(n int64) UnreadFunc {
	return func(context.Context, string) (int64, error) { return n, nil }
}

type session struct {
	sender *fakeSender
	done   chan error
}

func connect(t *testing.T, ctx context.Context, r *Registry, userID string, sender *fakeSender, unread UnreadFunc) *session {
	t.Helper()
	s := &session{sender: sender, done: make(chan error, 1)}
	go func() { s.done <- r.Serve(ctx, userID, sender, unread) }()
	require.Eventually(t, func() bool { return len(sender.Events()) >= 2 }, time.Second, 5*time.Millisecond)
	return s
}

func TestRegistry_ConnectedThenInitial(t *testing.T) {
	r := NewRegistry(time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &fakeSender{}
	s := connect(t, ctx, r, "user-1", sender, unreadOf(3))

	events := sender.Events()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, EventConnected, events[0].Type)
	connected, ok := events[0].Data.(ConnectedPayload)
	require.True(t, ok)
	assert.Equal(t, "user-1", connected.UserID)
	assert.NotEmpty(t, connected.ClientID)

	assert.Equal(t, EventInitial, events[1].Type)
	assert.Equal(t, InitialPayload{UnreadCount: 3}, events[1].Data)
	assert.Equal(t, 1, r.UserConnectionCount("user-1"))

	cancel()
	assert.NoError(t, <-s.done)
	assert.Equal(t, 0, r.ConnectionCount())
}

func TestRegistry_InitialFallsBackToZero(t *testing.T) {
	r := NewRegistry(time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failing := func(context.Context, string) (int64, error) { return 0, errors.New("db down") }
	sender := &fakeSender{}
	connect(t, ctx, r, "user-1", sender, failing)

	assert.Equal(t, InitialPayload{UnreadCount: 0}, sender.Events()[1].Data)
}

func TestRegistry_PushToUser(t *testing.T) {
	r := NewRegistry(time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := connect(t, ctx, r, "user-1", &fakeSender{}, unreadOf(0))
	b := connect(t, ctx, r, "user-1", &fakeSender{}, unreadOf(0))
	other := connect(t, ctx, r, "user-2", &fakeSender{}, unreadOf(0))

	n, err := r.PushToUser(ctx, "user-1", UserNotificationEvent(&entity.UserNotification{ID: "n-1", Title: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, s := range []*session{a, b} {
		sender := s.sender
		assert.Eventually(t, func() bool { return sender.countType(EventUserNotification) == 1 }, time.Second, 5*time.Millisecond)
	}
	assert.Equal(t, 0, other.sender.countType(EventUserNotification))

	n, err = r.PushToUser(ctx, "nobody", HeartbeatEvent(time.Now()))
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRegistry_WriteFailureEvictsOnlyThatConnection(t *testing.T) {
	r := NewRegistry(time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broken := connect(t, ctx, r, "user-1", &fakeSender{failAt: 3}, unreadOf(0))
	healthy := connect(t, ctx, r, "user-1", &fakeSender{}, unreadOf(0))
	require.Equal(t, 2, r.UserConnectionCount("user-1"))

	_, err := r.PushToUser(ctx, "user-1", MainNotificationEvent(&entity.MainNotification{ID: "m-1"}))
	require.NoError(t, err)

	select {
	case err := <-broken.done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("broken connection was not evicted")
	}

	assert.Eventually(t, func() bool { return r.UserConnectionCount("user-1") == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return healthy.sender.countType(EventMainNotification) == 1 }, time.Second, 5*time.Millisecond)
}

func TestRegistry_Heartbeat(t *testing.T) {
	r := NewRegistry(10*time.Millisecond, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := connect(t, ctx, r, "user-1", &fakeSender{}, unreadOf(0))
	assert.Eventually(t, func() bool { return s.sender.countType(EventHeartbeat) >= 2 }, time.Second, 5*time.Millisecond)
}

func TestRegistry_Disconnect(t *testing.T) {
	r := NewRegistry(time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := connect(t, ctx, r, "user-1", &fakeSender{}, unreadOf(0))
	ids := r.ConnectionIDs("user-1")
	require.Len(t, ids, 1)

	assert.True(t, r.Disconnect(ids[0]))
	assert.False(t, r.Disconnect("unknown"))

	select {
	case err := <-s.done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after Disconnect")
	}
	assert.Equal(t, 0, r.UserConnectionCount("user-1"))
}

func TestRegistry_ConcurrentConnectAndPush(t *testing.T) {
	r := NewRegistry(time.Hour, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Serve(ctx, "user-1", &fakeSender{}, unreadOf(0))
		}()
		go func() {
			defer wg.Done()
			_, _ = r.PushToUser(ctx, "user-1", HeartbeatEvent(time.Now()))
		}()
	}

	assert.Eventually(t, func() bool { return r.UserConnectionCount("user-1") == 20 }, time.Second, 5*time.Millisecond)
	r.Close()
	cancel()
	wg.Wait()
	assert.Equal(t, 0, r.ConnectionCount())
}
