package ports

import (
	"context"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"
)

// TelemetryClient — клиент внешнего провайдера телеметрии (Strava).
type TelemetryClient interface {
	ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)
	GetAthlete(ctx context.Context, accessToken string) (*domain.RemoteAthlete, error)
}
