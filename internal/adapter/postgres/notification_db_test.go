package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
)

func setupNotificationRepo(t *testing.T) (*NotificationRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewNotificationRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func TestHasUnreadAlert(t *testing.T) {
	repo, mock, cleanup := setupNotificationRepo(t)
	defer cleanup()

	userID := uuid.New()
	componentID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(userID, componentID, domain.StatusWarning).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasUnreadAlert(context.Background(), userID, componentID, domain.StatusWarning)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected existing unread alert")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestHasUnreadAlert_DifferentStatus(t *testing.T) {
	repo, mock, cleanup := setupNotificationRepo(t)
	defer cleanup()

	userID := uuid.New()
	componentID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(userID, componentID, domain.StatusDanger).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.HasUnreadAlert(context.Background(), userID, componentID, domain.StatusDanger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("alert for other status must not suppress new alert")
	}
}

func TestCreateNotification(t *testing.T) {
	repo, mock, cleanup := setupNotificationRepo(t)
	defer cleanup()

	componentID := uuid.New()
	status := domain.StatusDanger
	notification := &domain.Notification{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Type:            domain.NotificationMaintenance,
		Title:           "Component maintenance required",
		Message:         "Chain on Roadie is at 100% wear (danger)",
		ComponentID:     &componentID,
		ComponentStatus: &status,
	}

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(
			notification.ID,
			notification.UserID,
			notification.Type,
			notification.Title,
			notification.Message,
			notification.Read,
			notification.ComponentID,
			notification.ComponentStatus,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(notification.ID, time.Now()))

	created, err := repo.CreateNotification(context.Background(), notification)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != notification.ID {
		t.Error("notification id changed on insert")
	}
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	repo, mock, cleanup := setupNotificationRepo(t)
	defer cleanup()

	notificationID := uuid.New()
	mock.ExpectExec(`UPDATE notifications SET read = true`).
		WithArgs(notificationID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MarkNotificationRead(context.Background(), notificationID); err == nil {
		t.Fatal("expected error for missing notification")
	}
}

func TestGetCredential_NotConnected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()
	repo := NewCredentialRepository(db)

	userID := uuid.New()
	mock.ExpectQuery(`FROM strava_credentials WHERE user_id`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err = repo.GetCredential(context.Background(), userID)
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestUpdateTokens_NotConnected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()
	repo := NewCredentialRepository(db)

	userID := uuid.New()
	mock.ExpectExec(`UPDATE strava_credentials`).
		WithArgs("acc", "ref", int64(1700000000), userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateTokens(context.Background(), userID, "acc", "ref", 1700000000)
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}
