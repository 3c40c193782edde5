package entity

import "time"

// Task is the read-only view of a task owned by the task service.
type Task struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	TeamID         *string    `json:"team_id,omitempty"`
	CreatedBy      string     `json:"created_by"`
	IsDeleted      bool       `json:"is_deleted"`
}

// IsOpen reports whether the task can still receive reminders.
func (t *Task) IsOpen() bool {
	return !t.IsDeleted && t.Status != "completed" && t.Status != "cancelled"
}

func (t *Task) HasAssignee() bool {
	return t.AssigneeID != nil && *t.AssigneeID != ""
}

func (t *Task) HasTeam() bool {
	return t.TeamID != nil && *t.TeamID != ""
}

type Team struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	Name           string  `json:"name"`
	LeadID         *string `json:"lead_id,omitempty"`
}

func (t *Team) IsLead(userID string) bool {
	return t.LeadID != nil && *t.LeadID == userID
}

// Actor is the authenticated caller as supplied by the auth service.
type Actor struct {
	UserID         string
	OrganizationID string
	Role           string
}

func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}
