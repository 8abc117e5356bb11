package ports

import (
	"context"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
)

type CredentialRepository interface {
	// GetCredential возвращает domain.ErrNotConnected если записи нет.
	GetCredential(ctx context.Context, userID uuid.UUID) (*domain.StravaCredential, error)
	// UpsertCredential — одна запись на пользователя, конфликт по user_id.
	UpsertCredential(ctx context.Context, cred *domain.StravaCredential) error
	UpdateTokens(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt int64) error
	DeleteCredential(ctx context.Context, userID uuid.UUID) error
}
