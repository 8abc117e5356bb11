package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	query := `INSERT INTO notifications (id, user_id, type, title, message, read, component_id, component_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.Read,
		notification.ComponentID,
		notification.ComponentStatus,
	).Scan(
		&notification.ID,
		&notification.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23503":
				return nil, fmt.Errorf("user does not exist")
			default:
				return nil, err
			}
		}
		return nil, err
	}

	return notification, nil
}

func (r *NotificationRepository) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	query := `SELECT id, user_id, type, title, message, read, component_id, component_status, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification

	for rows.Next() {
		notification := &domain.Notification{}
		err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Type,
			&notification.Title,
			&notification.Message,
			&notification.Read,
			&notification.ComponentID,
			&notification.ComponentStatus,
			&notification.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// HasUnreadAlert — durable-проверка дедупликации по составному ключу
// (component_id, status).
func (r *NotificationRepository) HasUnreadAlert(ctx context.Context, userID, componentID uuid.UUID, status domain.ComponentStatus) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM notifications
		WHERE user_id = $1 AND type = 'maintenance' AND read = false
			AND component_id = $2 AND component_status = $3
	)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, componentID, status).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check unread alert: %w", err)
	}
	return exists, nil
}

func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, notificationID uuid.UUID) error {
	query := `UPDATE notifications SET read = true WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, notificationID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func (r *NotificationRepository) DeleteNotification(ctx context.Context, notificationID uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, notificationID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}
