package model

import "time"

// Read-only projections of tables owned by the task and auth services.

type TaskModel struct {
	ID             string     `gorm:"column:id"`
	OrganizationID string     `gorm:"column:organization_id"`
	Title          string     `gorm:"column:title"`
	Description    string     `gorm:"column:description"`
	Status         string     `gorm:"column:status"`
	Priority       string     `gorm:"column:priority"`
	DueDate        *time.Time `gorm:"column:due_date"`
	AssigneeID     *string    `gorm:"column:assignee_id"`
	TeamID         *string    `gorm:"column:team_id"`
	CreatedBy      string     `gorm:"column:created_by"`
	IsDeleted      bool       `gorm:"column:is_deleted"`
}

func (TaskModel) TableName() string {
	return "tasks"
}

type TeamModel struct {
	ID             string  `gorm:"column:id"`
	OrganizationID string  `gorm:"column:organization_id"`
	Name           string  `gorm:"column:name"`
	LeadID         *string `gorm:"column:lead_id"`
}

func (TeamModel) TableName() string {
	return "teams"
}

type TeamMemberModel struct {
	TeamID   string `gorm:"column:team_id"`
	UserID   string `gorm:"column:user_id"`
	IsActive bool   `gorm:"column:is_active"`
}

func (TeamMemberModel) TableName() string {
	return "team_members"
}

type UserModel struct {
	ID             string `gorm:"column:id"`
	OrganizationID string `gorm:"column:organization_id"`
	IsActive       bool   `gorm:"column:is_active"`
}

func (UserModel) TableName() string {
	return "users"
}
