package entity

import "time"

type NotificationType string

const (
	NotificationGood   NotificationType = "good"
	NotificationNormal NotificationType = "normal"
	NotificationAlert  NotificationType = "alert"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationGood, NotificationNormal, NotificationAlert:
		return true
	}
	return false
}

// MainNotification is a broadcast addressed to every user of an
// organization. It has no per-user read state.
type MainNotification struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	NotificationType NotificationType `json:"notification_type"`
	OrganizationID   string           `json:"organization_id"`
	IsActive         bool             `json:"is_active"`
	ExpiryDate       time.Time        `json:"expiry_date"`
	CreatedBy        string           `json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (n *MainNotification) IsExpired(now time.Time) bool {
	return now.After(n.ExpiryDate)
}

// UserNotification is addressed to exactly one user.
type UserNotification struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	UserID           string           `json:"user_id"`
	NotificationType NotificationType `json:"notification_type"`
	IsSeen           bool             `json:"is_seen"`
	OrganizationID   string           `json:"organization_id"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type MainNotificationFilter struct {
	Type            NotificationType
	IncludeExpired  bool
	IncludeInactive bool
	Page            int
	Limit           int
}

type UserNotificationFilter struct {
	Type   NotificationType
	IsSeen *bool
	Page   int
	Limit  int
}

// FanoutResult counts the outcome of one fan-out call. Pushed counts live
// connections written to, not recipients.
type FanoutResult struct {
	Recipients int `json:"recipients"`
	Created    int `json:"created"`
	Failed     int `json:"failed"`
	Pushed     int `json:"pushed"`
}

type MainNotificationStats struct {
	Total   int64            `json:"total"`
	Active  int64            `json:"active"`
	Expired int64            `json:"expired"`
	ByType  map[string]int64 `json:"by_type"`
}

type UserNotificationStats struct {
	Total  int64            `json:"total"`
	Unread int64            `json:"unread"`
	Read   int64            `json:"read"`
	ByType map[string]int64 `json:"by_type"`
}
