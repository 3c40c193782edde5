package usecase

import (
	"context"
	"fmt"

	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/repo/persistent"
)

type RecipientResolver interface {
	// Resolve returns the users a task's reminders go to: the assignee, or
	// every active member of the assigned team. The acting user is removed.
	Resolve(ctx context.Context, task *entity.Task, actingUserID string) ([]string, error)
}

type recipientResolver struct {
	taskRepo persistent.TaskRepository
}

func NewRecipientResolver(taskRepo persistent.TaskRepository) RecipientResolver {
	return &recipientResolver{taskRepo: taskRepo}
}

func (r *recipientResolver) Resolve(ctx context.Context, task *entity.Task, actingUserID string) ([]string, error) {
	var candidates []string
	switch {
	case task.HasAssignee():
		candidates = []string{*task.AssigneeID}
	case task.HasTeam():
		members, err := r.taskRepo.ListActiveTeamMembers(ctx, *task.TeamID)
		if err != nil {
			return nil, fmt.Errorf("resolve team %s: %w", *task.TeamID, err)
		}
		candidates = members
	}

	return uniqueExcept(candidates, actingUserID), nil
}

func uniqueExcept(ids []string, exclude string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
