// Package testutil builds an in-memory database with the notification
// schema plus the collaborator tables it reads, and seeds fixtures.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"task-notify/pkg/models"
	"task-notify/services/notification/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
// It is closed when the test completes.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	tables := append(models.All(), model.All()...)
	if err := db.AutoMigrate(tables...); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, organizationID, name string) *models.User {
	t.Helper()

	user := &models.User{
		OrganizationID: organizationID,
		Email:          fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Name:           name,
		Password:       "x",
		Role:           models.RoleMember,
		IsActive:       true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("creating user %s: %v", name, err)
	}
	return user
}

// DeactivateUser flips is_active after insert; gorm skips zero values for
// columns with a default, so an inactive row cannot be created directly.
func DeactivateUser(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivating user: %v", err)
	}
}

// CreateTeam creates a team with the given active members.
func CreateTeam(t *testing.T, db *gorm.DB, organizationID string, leadID *string, memberIDs ...string) *models.Team {
	t.Helper()

	team := &models.Team{OrganizationID: organizationID, Name: "team-" + uuid.NewString()[:8], LeadID: leadID}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("creating team: %v", err)
	}
	for _, id := range memberIDs {
		AddMember(t, db, team.ID, id)
	}
	return team
}

func AddMember(t *testing.T, db *gorm.DB, teamID, userID string) {
	t.Helper()
	member := &models.TeamMember{TeamID: teamID, UserID: userID, IsActive: true}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("adding team member: %v", err)
	}
}

func DeactivateMember(t *testing.T, db *gorm.DB, teamID, userID string) {
	t.Helper()
	err := db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("is_active", false).Error
	if err != nil {
		t.Fatalf("deactivating team member: %v", err)
	}
}

type TaskOption func(*models.Task)

func WithAssignee(userID string) TaskOption {
	return func(task *models.Task) { task.AssigneeID = &userID }
}

func WithTeam(teamID string) TaskOption {
	return func(task *models.Task) { task.TeamID = &teamID }
}

func WithDueDate(due time.Time) TaskOption {
	return func(task *models.Task) {
		d := due.UTC()
		task.DueDate = &d
	}
}

func WithStatus(status models.TaskStatus) TaskOption {
	return func(task *models.Task) { task.Status = status }
}

func CreateTask(t *testing.T, db *gorm.DB, organizationID, createdBy, title string, opts ...TaskOption) *models.Task {
	t.Helper()

	task := &models.Task{
		OrganizationID: organizationID,
		Title:          title,
		Status:         models.TaskStatusTodo,
		Priority:       "medium",
		CreatedBy:      createdBy,
	}
	for _, opt := range opts {
		opt(task)
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("creating task %s: %v", title, err)
	}
	return task
}

func DeleteTask(t *testing.T, db *gorm.DB, taskID string) {
	t.Helper()
	if err := db.Model(&models.Task{}).Where("id = ?", taskID).Update("is_deleted", true).Error; err != nil {
		t.Fatalf("deleting task: %v", err)
	}
}
