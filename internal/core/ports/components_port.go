package ports

import (
	"context"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
)

type ComponentRepository interface {
	CreateComponent(ctx context.Context, component *domain.Component) (*domain.Component, error)
	GetComponentByID(ctx context.Context, componentID uuid.UUID) (*domain.Component, error)
	GetComponentsByBikeID(ctx context.Context, bikeID uuid.UUID) ([]*domain.Component, error)
	UpdateComponent(ctx context.Context, component *domain.Component) (*domain.Component, error)
	// UpdateWear пишет только производные поля (current_*, status).
	UpdateWear(ctx context.Context, componentID uuid.UUID, currentDistance, currentDuration float64, status domain.ComponentStatus) error
	// ResetInstall сбрасывает базу установки и возвращает компонент в ok.
	ResetInstall(ctx context.Context, componentID uuid.UUID, installDistance, installDuration float64) (*domain.Component, error)
	DeleteComponent(ctx context.Context, componentID uuid.UUID) error
}

type MaintenanceRepository interface {
	CreateMaintenanceLog(ctx context.Context, log *domain.MaintenanceLog) (*domain.MaintenanceLog, error)
	GetMaintenanceLogsByComponentID(ctx context.Context, componentID uuid.UUID) ([]*domain.MaintenanceLog, error)
}
