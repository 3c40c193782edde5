package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MainNotificationModel struct {
	ID               string    `gorm:"column:id;type:uuid;primaryKey"`
	Title            string    `gorm:"column:title;type:varchar(255);not null"`
	Description      string    `gorm:"column:description;type:text"`
	NotificationType string    `gorm:"column:notification_type;type:varchar(20);not null;default:'normal'"`
	OrganizationID   string    `gorm:"column:organization_id;type:uuid;not null;index:idx_main_notifications_org_expiry,priority:1"`
	IsActive         bool      `gorm:"column:is_active;not null;default:true"`
	ExpiryDate       time.Time `gorm:"column:expiry_date;not null;index:idx_main_notifications_org_expiry,priority:2"`
	CreatedBy        string    `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (MainNotificationModel) TableName() string {
	return "main_notifications"
}

func (m *MainNotificationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

type UserNotificationModel struct {
	ID               string    `gorm:"column:id;type:uuid;primaryKey"`
	Title            string    `gorm:"column:title;type:varchar(255);not null"`
	Description      string    `gorm:"column:description;type:text"`
	UserID           string    `gorm:"column:user_id;type:uuid;not null;index:idx_user_notifications_user_seen,priority:1"`
	NotificationType string    `gorm:"column:notification_type;type:varchar(20);not null;default:'normal'"`
	IsSeen           bool      `gorm:"column:is_seen;not null;default:false;index:idx_user_notifications_user_seen,priority:2"`
	OrganizationID   string    `gorm:"column:organization_id;type:uuid;not null"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (UserNotificationModel) TableName() string {
	return "user_notifications"
}

func (m *UserNotificationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// All returns the tables owned by this service, for AutoMigrate.
func All() []interface{} {
	return []interface{}{&ReminderModel{}, &MainNotificationModel{}, &UserNotificationModel{}}
}
