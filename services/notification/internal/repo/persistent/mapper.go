package persistent

import (
	"encoding/json"

	"task-notify/services/notification/internal/entity"
	"task-notify/services/notification/internal/model"

	"gorm.io/datatypes"
)

func ToReminderModel(r *entity.Reminder) (*model.ReminderModel, error) {
	var metadata datatypes.JSON
	if len(r.Metadata) > 0 {
		raw, err := json.Marshal(r.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = datatypes.JSON(raw)
	}

	return &model.ReminderModel{
		ID:             r.ID,
		TaskID:         r.TaskID,
		AssignedTo:     r.AssignedTo,
		ReminderDate:   r.ReminderDate.UTC(),
		Title:          r.Title,
		Description:    r.Description,
		Type:           string(r.Type),
		Priority:       string(r.Priority),
		Status:         string(r.Status),
		DueDate:        r.DueDate.UTC(),
		AssignedBy:     r.AssignedBy,
		TeamID:         r.TeamID,
		OrganizationID: r.OrganizationID,
		Metadata:       metadata,
		ReadAt:         r.ReadAt,
		DismissedAt:    r.DismissedAt,
		IsDeleted:      r.IsDeleted,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}, nil
}

func ToReminderEntity(m *model.ReminderModel) *entity.Reminder {
	if m == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &metadata)
	}

	return &entity.Reminder{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Type:           entity.ReminderType(m.Type),
		Priority:       entity.ReminderPriority(m.Priority),
		Status:         entity.ReminderStatus(m.Status),
		DueDate:        m.DueDate,
		ReminderDate:   m.ReminderDate,
		TaskID:         m.TaskID,
		AssignedTo:     m.AssignedTo,
		AssignedBy:     m.AssignedBy,
		TeamID:         m.TeamID,
		OrganizationID: m.OrganizationID,
		Metadata:       metadata,
		ReadAt:         m.ReadAt,
		DismissedAt:    m.DismissedAt,
		IsDeleted:      m.IsDeleted,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ToReminderEntities(models []model.ReminderModel) []entity.Reminder {
	reminders := make([]entity.Reminder, len(models))
	for i := range models {
		reminders[i] = *ToReminderEntity(&models[i])
	}
	return reminders
}

func ToMainNotificationModel(n *entity.MainNotification) *model.MainNotificationModel {
	return &model.MainNotificationModel{
		ID:               n.ID,
		Title:            n.Title,
		Description:      n.Description,
		NotificationType: string(n.NotificationType),
		OrganizationID:   n.OrganizationID,
		IsActive:         n.IsActive,
		ExpiryDate:       n.ExpiryDate.UTC(),
		CreatedBy:        n.CreatedBy,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
	}
}

func ToMainNotificationEntity(m *model.MainNotificationModel) *entity.MainNotification {
	return &entity.MainNotification{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description,
		NotificationType: entity.NotificationType(m.NotificationType),
		OrganizationID:   m.OrganizationID,
		IsActive:         m.IsActive,
		ExpiryDate:       m.ExpiryDate,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func ToUserNotificationModel(n *entity.UserNotification) *model.UserNotificationModel {
	return &model.UserNotificationModel{
		ID:               n.ID,
		Title:            n.Title,
		Description:      n.Description,
		UserID:           n.UserID,
		NotificationType: string(n.NotificationType),
		IsSeen:           n.IsSeen,
		OrganizationID:   n.OrganizationID,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
	}
}

func ToUserNotificationEntity(m *model.UserNotificationModel) *entity.UserNotification {
	return &entity.UserNotification{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description,
		UserID:           m.UserID,
		NotificationType: entity.NotificationType(m.NotificationType),
		IsSeen:           m.IsSeen,
		OrganizationID:   m.OrganizationID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func ToTaskEntity(m *model.TaskModel) *entity.Task {
	return &entity.Task{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Title:          m.Title,
		Description:    m.Description,
		Status:         m.Status,
		Priority:       m.Priority,
		DueDate:        m.DueDate,
		AssigneeID:     m.AssigneeID,
		TeamID:         m.TeamID,
		CreatedBy:      m.CreatedBy,
		IsDeleted:      m.IsDeleted,
	}
}

func ToTeamEntity(m *model.TeamModel) *entity.Team {
	return &entity.Team{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		LeadID:         m.LeadID,
	}
}
