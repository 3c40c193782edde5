package stream

import (
	"context"
	"sync"
	"time"

	"task-notify/pkg/logger"

	"github.com/google/uuid"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	defaultBufferSize        = 32
)

type connection struct {
	id     string
	userID string
	out    chan Event
	closed chan struct{}
	once   sync.Once
}

func (c *connection) close() {
	c.once.Do(func() { close(c.closed) })
}

// Registry tracks live connections per user. Each connection is served by
// the goroutine that called Serve; pushes only enqueue onto its buffer.
type Registry struct {
	mu        sync.RWMutex
	conns     map[string]map[string]*connection
	heartbeat time.Duration
	buffer    int
	logger    *logger.Logger
	now       func() time.Time
}

func NewRegistry(heartbeat time.Duration, logger *logger.Logger) *Registry {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	return &Registry{
		conns:     make(map[string]map[string]*connection),
		heartbeat: heartbeat,
		buffer:    defaultBufferSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Serve registers a connection for userID and writes events to sender until
// ctx is done, the connection is disconnected, or a write fails. It sends
// connected then initial before anything else. The connection is evicted
// when Serve returns.
func (r *Registry) Serve(ctx context.Context, userID string, sender Sender, unread UnreadFunc) error {
	conn := r.register(userID)
	defer r.remove(conn)

	if err := sender.Send(ConnectedEvent(conn.id, userID)); err != nil {
		return err
	}

	var count int64
	if unread != nil {
		n, err := unread(ctx, userID)
		if err != nil {
			r.logger.Warn("[STREAM] Unread count for user %s failed: %v", userID, err)
		} else {
			count = n
		}
	}
	if err := sender.Send(InitialEvent(count)); err != nil {
		return err
	}

	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-conn.closed:
			return nil
		case event := <-conn.out:
			if err := sender.Send(event); err != nil {
				r.logger.Warn("[STREAM] Write to connection %s failed, evicting: %v", conn.id, err)
				return err
			}
		case <-ticker.C:
			if err := sender.Send(HeartbeatEvent(r.now())); err != nil {
				r.logger.Warn("[STREAM] Heartbeat to connection %s failed, evicting: %v", conn.id, err)
				return err
			}
		}
	}
}

func (r *Registry) register(userID string) *connection {
	conn := &connection{
		id:     uuid.NewString(),
		userID: userID,
		out:    make(chan Event, r.buffer),
		closed: make(chan struct{}),
	}

	r.mu.Lock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[string]*connection)
		r.conns[userID] = set
	}
	set[conn.id] = conn
	total := len(set)
	r.mu.Unlock()

	r.logger.Info("[STREAM] Connection %s opened for user %s (%d open)", conn.id, userID, total)
	return conn
}

func (r *Registry) remove(conn *connection) {
	conn.close()

	r.mu.Lock()
	if set, ok := r.conns[conn.userID]; ok {
		delete(set, conn.id)
		if len(set) == 0 {
			delete(r.conns, conn.userID)
		}
	}
	r.mu.Unlock()

	r.logger.Info("[STREAM] Connection %s closed for user %s", conn.id, conn.userID)
}

// PushToUser enqueues event on every connection the user has open and
// returns how many accepted it. A connection whose buffer is full is
// evicted rather than allowed to block the caller.
func (r *Registry) PushToUser(_ context.Context, userID string, event Event) (int, error) {
	r.mu.RLock()
	snapshot := make([]*connection, 0, len(r.conns[userID]))
	for _, conn := range r.conns[userID] {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range snapshot {
		select {
		case <-conn.closed:
			continue
		default:
		}

		select {
		case conn.out <- event:
			delivered++
		default:
			r.logger.Warn("[STREAM] Connection %s is not draining, evicting", conn.id)
			conn.close()
		}
	}
	return delivered, nil
}

// Disconnect closes one connection by id. It reports whether the id was
// known.
func (r *Registry) Disconnect(connID string) bool {
	r.mu.RLock()
	var target *connection
	for _, set := range r.conns {
		if conn, ok := set[connID]; ok {
			target = conn
			break
		}
	}
	r.mu.RUnlock()

	if target == nil {
		return false
	}
	target.close()
	return true
}

// ConnectionIDs lists the open connection ids for a user.
func (r *Registry) ConnectionIDs(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.conns[userID]))
	for id := range r.conns[userID] {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) UserConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, set := range r.conns {
		total += len(set)
	}
	return total
}

// Close disconnects every connection. Serve calls return shortly after.
func (r *Registry) Close() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, set := range r.conns {
		for _, conn := range set {
			conn.close()
		}
	}
}
