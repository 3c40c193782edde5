package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_BeforeCreate(t *testing.T) {
	user := &User{
		Email:    "test@example.com",
		Name:     "Test User",
		Password: "password",
		Role:     RoleMember,
		IsActive: true,
	}

	// BeforeCreate should set ID if empty
	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestUser_BeforeCreate_WithID(t *testing.T) {
	existingID := "existing-id-123"
	user := &User{
		ID:    existingID,
		Email: "test@example.com",
	}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	// ID should remain unchanged if already set
	assert.Equal(t, existingID, user.ID)
}

func TestTask_BeforeCreate(t *testing.T) {
	task := &Task{
		Title:     "Ship report",
		Status:    TaskStatusTodo,
		CreatedBy: "creator-123",
	}

	err := task.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, task.ID)
}

func TestTeam_BeforeCreate(t *testing.T) {
	team := &Team{Name: "Platform"}
	member := &TeamMember{TeamID: "team-1", UserID: "user-1"}

	assert.NoError(t, team.BeforeCreate(nil))
	assert.NoError(t, member.BeforeCreate(nil))
	assert.NotEmpty(t, team.ID)
	assert.NotEmpty(t, member.ID)
	assert.NotEqual(t, team.ID, member.ID)
}

func TestAll(t *testing.T) {
	assert.Len(t, All(), 4)
}
