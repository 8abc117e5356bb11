package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationMaintenance NotificationType = "maintenance"
	NotificationSync        NotificationType = "sync"
	NotificationSystem      NotificationType = "system"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	// Полезная нагрузка для maintenance-уведомлений: по паре
	// (component_id, status) работает дедупликация алертов.
	ComponentID     *uuid.UUID       `json:"component_id,omitempty"`
	ComponentStatus *ComponentStatus `json:"component_status,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}
