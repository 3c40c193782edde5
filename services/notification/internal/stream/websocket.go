package stream

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

type wsSender struct {
	conn *websocket.Conn
}

func NewWebSocketSender(conn *websocket.Conn) Sender {
	return &wsSender{conn: conn}
}

func (s *wsSender) Send(event Event) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(event)
}

// ServeWebSocket serves a websocket connection through the registry. A
// reader goroutine discards client frames and ends the session when the
// client goes away.
func ServeWebSocket(ctx context.Context, registry *Registry, conn *websocket.Conn, userID string, unread UnreadFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return registry.Serve(ctx, userID, NewWebSocketSender(conn), unread)
}
