// Package stream delivers live events to connected clients. A Registry
// owns every open connection; transports plug in through Sender.
package stream

import (
	"context"
	"time"

	"task-notify/services/notification/internal/entity"
)

const (
	EventConnected        = "connected"
	EventInitial          = "initial"
	EventHeartbeat        = "heartbeat"
	EventMainNotification = "main-notification"
	EventUserNotification = "user-notification"
)

// Event is written to clients as one JSON object: {"type": ..., "data": ...}.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ConnectedPayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

type InitialPayload struct {
	UnreadCount int64 `json:"unreadCount"`
}

type HeartbeatPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

type NotificationPayload struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	NotificationType entity.NotificationType `json:"notificationType"`
	IsBroadcast      *bool                   `json:"isBroadcast,omitempty"`
	IsSeen           *bool                   `json:"isSeen,omitempty"`
}

func ConnectedEvent(clientID, userID string) Event {
	return Event{Type: EventConnected, Data: ConnectedPayload{ClientID: clientID, UserID: userID}}
}

func InitialEvent(unread int64) Event {
	return Event{Type: EventInitial, Data: InitialPayload{UnreadCount: unread}}
}

func HeartbeatEvent(at time.Time) Event {
	return Event{Type: EventHeartbeat, Data: HeartbeatPayload{Timestamp: at.UTC()}}
}

func MainNotificationEvent(n *entity.MainNotification) Event {
	broadcast := true
	return Event{Type: EventMainNotification, Data: NotificationPayload{
		ID:               n.ID,
		Title:            n.Title,
		Description:      n.Description,
		NotificationType: n.NotificationType,
		IsBroadcast:      &broadcast,
	}}
}

func UserNotificationEvent(n *entity.UserNotification) Event {
	seen := n.IsSeen
	return Event{Type: EventUserNotification, Data: NotificationPayload{
		ID:               n.ID,
		Title:            n.Title,
		Description:      n.Description,
		NotificationType: n.NotificationType,
		IsSeen:           &seen,
	}}
}

// Sender writes one event to one client. Implementations need not be safe
// for concurrent use; the registry calls Send from a single goroutine per
// connection.
type Sender interface {
	Send(event Event) error
}

// Pusher delivers an event to every live connection of a user. The count
// returned is best-effort and zero when the user is offline.
type Pusher interface {
	PushToUser(ctx context.Context, userID string, event Event) (int, error)
}

// UnreadFunc returns the unread count sent in the initial event.
type UnreadFunc func(ctx context.Context, userID string) (int64, error)
