package entity

import "time"

type ReminderStatus string

const (
	ReminderStatusUnread    ReminderStatus = "unread"
	ReminderStatusRead      ReminderStatus = "read"
	ReminderStatusDismissed ReminderStatus = "dismissed"
)

func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderStatusUnread, ReminderStatusRead, ReminderStatusDismissed:
		return true
	}
	return false
}

type ReminderType string

const (
	ReminderTypeDueSoon  ReminderType = "due_soon"
	ReminderTypeDueToday ReminderType = "due_today"
	ReminderTypeManual   ReminderType = "manual"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderTypeDueSoon, ReminderTypeDueToday, ReminderTypeManual:
		return true
	}
	return false
}

type ReminderPriority string

const (
	PriorityLow    ReminderPriority = "low"
	PriorityMedium ReminderPriority = "medium"
	PriorityHigh   ReminderPriority = "high"
	PriorityUrgent ReminderPriority = "urgent"
)

func (p ReminderPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// PriorityForThreshold maps days-before-due to a reminder priority.
func PriorityForThreshold(days int) ReminderPriority {
	switch {
	case days <= 0:
		return PriorityUrgent
	case days == 1:
		return PriorityHigh
	case days <= 3:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

type Reminder struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Type           ReminderType           `json:"type"`
	Priority       ReminderPriority       `json:"priority"`
	Status         ReminderStatus         `json:"status"`
	DueDate        time.Time              `json:"due_date"`
	ReminderDate   time.Time              `json:"reminder_date"`
	TaskID         string                 `json:"task_id"`
	AssignedTo     string                 `json:"assigned_to"`
	AssignedBy     string                 `json:"assigned_by"`
	TeamID         *string                `json:"team_id,omitempty"`
	OrganizationID string                 `json:"organization_id"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	ReadAt         *time.Time             `json:"read_at,omitempty"`
	DismissedAt    *time.Time             `json:"dismissed_at,omitempty"`
	IsDeleted      bool                   `json:"-"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type ReminderSortField string

const (
	SortByReminderDate ReminderSortField = "reminder_date"
	SortByDueDate      ReminderSortField = "due_date"
	SortByCreatedAt    ReminderSortField = "created_at"
	SortByPriority     ReminderSortField = "priority"
)

// ReminderFilter narrows a reminder listing. Zero values mean "no filter".
type ReminderFilter struct {
	Search   string
	Type     ReminderType
	Priority ReminderPriority
	Status   ReminderStatus
	From     *time.Time
	To       *time.Time
	SortBy   ReminderSortField
	SortDesc bool
	Page     int
	Limit    int
}

type ReminderCounts struct {
	Unread int64 `json:"unread"`
	Read   int64 `json:"read"`
	Total  int64 `json:"total"`
}

type ReminderPage struct {
	Reminders []Reminder     `json:"reminders"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	Limit     int            `json:"limit"`
	Counts    ReminderCounts `json:"counts"`
}

type ReminderStats struct {
	Total         int64            `json:"total"`
	Unread        int64            `json:"unread"`
	Read          int64            `json:"read"`
	Dismissed     int64            `json:"dismissed"`
	OverdueUnread int64            `json:"overdue_unread"`
	ByType        map[string]int64 `json:"by_type"`
	ByPriority    map[string]int64 `json:"by_priority"`
}

// ThresholdReport is the outcome of one threshold window in a sweep.
type ThresholdReport struct {
	Threshold int       `json:"threshold"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Tasks     int       `json:"tasks"`
	Created   int       `json:"created"`
	Failed    int       `json:"failed"`
}

type SweepReport struct {
	Date       string            `json:"date"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Thresholds []ThresholdReport `json:"thresholds"`
	Tasks      int               `json:"tasks"`
	Created    int               `json:"created"`
	Failed     int               `json:"failed"`
}
