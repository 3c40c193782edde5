package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Task is owned by the task service. A task is assigned either to a user
// (AssigneeID) or to a team (TeamID).
type Task struct {
	ID             string     `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID string     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Status         TaskStatus `gorm:"type:varchar(20);default:'todo';index" json:"status"`
	Priority       string     `gorm:"type:varchar(20);default:'medium'" json:"priority"`
	DueDate        *time.Time `gorm:"index" json:"due_date,omitempty"`
	AssigneeID     *string    `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	TeamID         *string    `gorm:"type:uuid;index" json:"team_id,omitempty"`
	CreatedBy      string     `gorm:"type:uuid;not null" json:"created_by"`
	IsDeleted      bool       `gorm:"default:false" json:"is_deleted"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// All returns every collaborator table, for AutoMigrate in dev and tests.
func All() []interface{} {
	return []interface{}{&User{}, &Team{}, &TeamMember{}, &Task{}}
}
