package persistent

import (
	"context"
	"time"

	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/model"

	"gorm.io/gorm"
)

var closedStatuses = []string{"completed", "cancelled"}

// TaskRepository reads task, team and user rows owned by other services.
// It never writes.
type TaskRepository interface {
	GetTask(ctx context.Context, id string) (*entity.Task, error)
	GetTeam(ctx context.Context, id string) (*entity.Team, error)
	ListActiveTeamMembers(ctx context.Context, teamID string) ([]string, error)
	IsActiveTeamMember(ctx context.Context, teamID, userID string) (bool, error)
	ListOrganizationMembers(ctx context.Context, organizationID string) ([]string, error)
	// ListTasksDueBetween returns open tasks with from <= due_date < to.
	ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]entity.Task, error)
	ListOpenTasksForTeam(ctx context.Context, teamID string) ([]entity.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetTask(ctx context.Context, id string) (*entity.Task, error) {
	var m model.TaskModel
	if err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&m).Error; err != nil {
		return nil, translate(err, "get task")
	}
	return ToTaskEntity(&m), nil
}

func (r *taskRepository) GetTeam(ctx context.Context, id string) (*entity.Team, error) {
	var m model.TeamModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err, "get team")
	}
	return ToTeamEntity(&m), nil
}

func (r *taskRepository) activeMembers(ctx context.Context, teamID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.TeamMemberModel{}).
		Joins("JOIN users ON users.id = team_members.user_id").
		Where("team_members.team_id = ? AND team_members.is_active = ? AND users.is_active = ?", teamID, true, true)
}

func (r *taskRepository) ListActiveTeamMembers(ctx context.Context, teamID string) ([]string, error) {
	var ids []string
	err := r.activeMembers(ctx, teamID).
		Order("team_members.user_id").
		Pluck("team_members.user_id", &ids).Error
	if err != nil {
		return nil, translate(err, "list team members")
	}
	return ids, nil
}

func (r *taskRepository) IsActiveTeamMember(ctx context.Context, teamID, userID string) (bool, error) {
	var count int64
	err := r.activeMembers(ctx, teamID).
		Where("team_members.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "check team membership")
	}
	return count > 0, nil
}

func (r *taskRepository) ListOrganizationMembers(ctx context.Context, organizationID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, translate(err, "list organization members")
	}
	return ids, nil
}

func (r *taskRepository) openTasks(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("is_deleted = ? AND status NOT IN ?", false, closedStatuses)
}

func (r *taskRepository) ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]entity.Task, error) {
	var models []model.TaskModel
	err := r.openTasks(ctx).
		Where("due_date >= ? AND due_date < ?", from.UTC(), to.UTC()).
		Order("due_date ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, translate(err, "list tasks due")
	}
	return toTaskEntities(models), nil
}

func (r *taskRepository) ListOpenTasksForTeam(ctx context.Context, teamID string) ([]entity.Task, error) {
	var models []model.TaskModel
	err := r.openTasks(ctx).
		Where("team_id = ? AND due_date IS NOT NULL", teamID).
		Order("due_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, translate(err, "list team tasks")
	}
	return toTaskEntities(models), nil
}

func toTaskEntities(models []model.TaskModel) []entity.Task {
	tasks := make([]entity.Task, len(models))
	for i := range models {
		tasks[i] = *ToTaskEntity(&models[i])
	}
	return tasks
}
