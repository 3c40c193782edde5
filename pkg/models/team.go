package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID string    `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	LeadID         *string   `gorm:"type:uuid" json:"lead_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TeamMember is the membership join. Inactive rows are kept for history and
// never receive reminders.
type TeamMember struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	TeamID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_team_members_team_user" json:"team_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_team_members_team_user;index" json:"user_id"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
