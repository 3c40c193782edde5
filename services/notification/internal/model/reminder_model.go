package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReminderModel backs the reminders table. idx_reminders_live_unique is the
// authoritative guard against duplicate reminders: one live row per
// (task, assignee, reminder date).
type ReminderModel struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey"`
	TaskID         string         `gorm:"column:task_id;type:uuid;not null;uniqueIndex:idx_reminders_live_unique,where:is_deleted = false;index"`
	AssignedTo     string         `gorm:"column:assigned_to;type:uuid;not null;uniqueIndex:idx_reminders_live_unique;index:idx_reminders_owner_status,priority:1"`
	ReminderDate   time.Time      `gorm:"column:reminder_date;not null;uniqueIndex:idx_reminders_live_unique"`
	Title          string         `gorm:"column:title;type:varchar(255);not null"`
	Description    string         `gorm:"column:description;type:text"`
	Type           string         `gorm:"column:type;type:varchar(20);not null"`
	Priority       string         `gorm:"column:priority;type:varchar(20);not null"`
	Status         string         `gorm:"column:status;type:varchar(20);not null;default:'unread';index:idx_reminders_owner_status,priority:2"`
	DueDate        time.Time      `gorm:"column:due_date;not null"`
	AssignedBy     string         `gorm:"column:assigned_by;type:uuid;not null"`
	TeamID         *string        `gorm:"column:team_id;type:uuid"`
	OrganizationID string         `gorm:"column:organization_id;type:uuid;not null;index"`
	Metadata       datatypes.JSON `gorm:"column:metadata"`
	ReadAt         *time.Time     `gorm:"column:read_at"`
	DismissedAt    *time.Time     `gorm:"column:dismissed_at"`
	IsDeleted      bool           `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
}

func (ReminderModel) TableName() string {
	return "reminders"
}

func (m *ReminderModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
