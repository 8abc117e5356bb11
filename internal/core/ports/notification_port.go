package ports

import (
	"context"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *domain.Notification) (*domain.Notification, error)
	GetNotificationsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	// HasUnreadAlert проверяет наличие непрочитанного maintenance-уведомления
	// с той же парой (component_id, status).
	HasUnreadAlert(ctx context.Context, userID, componentID uuid.UUID, status domain.ComponentStatus) (bool, error)
	MarkNotificationRead(ctx context.Context, notificationID uuid.UUID) error
	DeleteNotification(ctx context.Context, notificationID uuid.UUID) error
}
