package ports

import (
	"context"

	"github.com/google/uuid"
)

// NotifierPort — fire-and-forget доставка пуш-уведомления.
type NotifierPort interface {
	Deliver(ctx context.Context, userID uuid.UUID, title, message string) error
}

// ProfileClient обновляет отображаемое имя и аватар в user-сервисе.
type ProfileClient interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, avatar string) error
}
