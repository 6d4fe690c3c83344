package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oneroomhq/oneroom-backend/pkg/enums"
)

// UserPreference stores a user's notification toggles. Nil means the user never
// touched the setting; absent settings are treated as enabled.
type UserPreference struct {
	UserID                      uuid.UUID `gorm:"type:uuid;primaryKey"`
	NotificationsEnabled        *bool     `gorm:"column:notifications_enabled"`
	ChatNotificationsEnabled    *bool     `gorm:"column:chat_notifications_enabled"`
	ExpensePaymentAlertsEnabled *bool     `gorm:"column:expense_payment_alerts_enabled"`
	TaskRemindersEnabled        *bool     `gorm:"column:task_reminders_enabled"`
	UpdatedAt                   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// MasterEnabled reports whether the master toggle allows any notification.
func (p *UserPreference) MasterEnabled() bool {
	if p == nil || p.NotificationsEnabled == nil {
		return true
	}
	return *p.NotificationsEnabled
}

// CategoryEnabled reports whether the toggle for the given category allows
// delivery. Categories without a dedicated toggle are gated only by the master
// switch.
func (p *UserPreference) CategoryEnabled(category enums.NotificationCategory) bool {
	if p == nil {
		return true
	}
	var flag *bool
	switch category {
	case enums.CategoryChat:
		flag = p.ChatNotificationsEnabled
	case enums.CategoryExpense:
		flag = p.ExpensePaymentAlertsEnabled
	case enums.CategoryTask:
		flag = p.TaskRemindersEnabled
	default:
		return true
	}
	if flag == nil {
		return true
	}
	return *flag
}
