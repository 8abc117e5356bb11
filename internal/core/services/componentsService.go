package services

import (
	"context"
	"fmt"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ComponentService struct {
	componentRepo   ports.ComponentRepository
	bikeRepo        ports.BikeRepository
	maintenanceRepo ports.MaintenanceRepository
	logger          ports.LoggerPort
	validate        *validator.Validate
	cache           ports.CachePort
}

func NewComponentService(
	componentRepo ports.ComponentRepository,
	bikeRepo ports.BikeRepository,
	maintenanceRepo ports.MaintenanceRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
) *ComponentService {
	return &ComponentService{
		componentRepo:   componentRepo,
		bikeRepo:        bikeRepo,
		maintenanceRepo: maintenanceRepo,
		logger:          logger,
		validate:        validate,
		cache:           cache,
	}
}

// CreateComponent создает компонент. Для типа из каталога подставляются
// дефолтные пороги (если не заданы явно), начальный износ считается от
// текущих тоталов байка, в историю пишется запись installed.
func (s *ComponentService) CreateComponent(ctx context.Context, component *domain.Component) (*domain.Component, error) {
	if err := s.validate.Struct(component); err != nil {
		s.logger.Error("Component validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if component.TypeID != nil {
		catalogType, ok := domain.ComponentTypeByID(*component.TypeID)
		if !ok {
			return nil, fmt.Errorf("unknown component type: %s", *component.TypeID)
		}
		if component.ThresholdDistance == nil && catalogType.ThresholdDistance > 0 {
			threshold := catalogType.ThresholdDistance
			component.ThresholdDistance = &threshold
		}
		if component.ThresholdDuration == nil && catalogType.ThresholdDuration > 0 {
			threshold := catalogType.ThresholdDuration
			component.ThresholdDuration = &threshold
		}
	}

	bike, err := s.bikeRepo.GetBikeByID(ctx, component.BikeID)
	if err != nil {
		s.logger.Error("Failed to get bike for component", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": component.BikeID,
		})
		return nil, err
	}

	if component.ID == uuid.Nil {
		component.ID = uuid.New()
	}
	component.Status = domain.StatusOK
	component.Recompute(bike.TotalDistance, bike.TotalDuration)

	createdComponent, err := s.componentRepo.CreateComponent(ctx, component)
	if err != nil {
		s.logger.Error("Failed to create component", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": component.BikeID,
		})
		return nil, err
	}

	if _, err := s.maintenanceRepo.CreateMaintenanceLog(ctx, &domain.MaintenanceLog{
		ID:               uuid.New(),
		ComponentID:      createdComponent.ID,
		Action:           domain.ActionInstalled,
		DistanceAtAction: createdComponent.InstallDistance,
		DurationAtAction: createdComponent.InstallDuration,
	}); err != nil {
		s.logger.Warn("Failed to write installed maintenance log", map[string]interface{}{
			"error":        err.Error(),
			"component_id": createdComponent.ID,
		})
	}

	s.invalidateBikeCache(component.BikeID)

	s.logger.Info("Component created successfully", map[string]interface{}{
		"component_id": createdComponent.ID,
		"bike_id":      createdComponent.BikeID,
		"name":         createdComponent.DisplayName(),
	})

	return createdComponent, nil
}

func (s *ComponentService) GetComponentByID(ctx context.Context, componentID string) (*domain.Component, error) {
	componentUUID, err := uuid.Parse(componentID)
	if err != nil {
		s.logger.Error("Invalid UUID format", map[string]interface{}{
			"component_id": componentID,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("invalid component ID: %w", err)
	}

	component, err := s.componentRepo.GetComponentByID(ctx, componentUUID)
	if err != nil {
		s.logger.Error("Failed to get component", map[string]interface{}{
			"error":        err.Error(),
			"component_id": componentID,
		})
		return nil, err
	}

	return component, nil
}

func (s *ComponentService) GetComponentsByBikeID(ctx context.Context, bikeID string) ([]*domain.Component, error) {
	bikeUUID, err := uuid.Parse(bikeID)
	if err != nil {
		s.logger.Error("Invalid UUID format", map[string]interface{}{
			"bike_id": bikeID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("invalid bike ID: %w", err)
	}

	components, err := s.componentRepo.GetComponentsByBikeID(ctx, bikeUUID)
	if err != nil {
		s.logger.Error("Failed to get components", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return nil, err
	}

	return components, nil
}

// UpdateComponent обновляет пользовательские поля, после чего пересчитывает
// износ от тоталов байка: смена базы или порога меняет и статус.
func (s *ComponentService) UpdateComponent(ctx context.Context, component *domain.Component) (*domain.Component, error) {
	updatedComponent, err := s.componentRepo.UpdateComponent(ctx, component)
	if err != nil {
		s.logger.Error("Failed to update component", map[string]interface{}{
			"error":        err.Error(),
			"component_id": component.ID,
		})
		return nil, err
	}

	bike, err := s.bikeRepo.GetBikeByID(ctx, updatedComponent.BikeID)
	if err == nil && updatedComponent.Status != domain.StatusReplaced {
		updatedComponent.Recompute(bike.TotalDistance, bike.TotalDuration)
		if err := s.componentRepo.UpdateWear(ctx, updatedComponent.ID, updatedComponent.CurrentDistance, updatedComponent.CurrentDuration, updatedComponent.Status); err != nil {
			s.logger.Warn("Failed to persist recomputed wear", map[string]interface{}{
				"error":        err.Error(),
				"component_id": updatedComponent.ID,
			})
		}
	}

	s.invalidateBikeCache(updatedComponent.BikeID)

	s.logger.Info("Component updated successfully", map[string]interface{}{
		"component_id": component.ID,
	})

	return updatedComponent, nil
}

// ReplaceComponent — ручной replace/reset: база установки переносится на
// текущие тоталы байка, статус принудительно ok, история получает запись
// replaced. Единственный путь в replaced и из него.
func (s *ComponentService) ReplaceComponent(ctx context.Context, componentID string, cost *float64, notes string) (*domain.Component, error) {
	componentUUID, err := uuid.Parse(componentID)
	if err != nil {
		s.logger.Error("Invalid UUID format", map[string]interface{}{
			"component_id": componentID,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("invalid component ID: %w", err)
	}

	component, err := s.componentRepo.GetComponentByID(ctx, componentUUID)
	if err != nil {
		return nil, err
	}

	bike, err := s.bikeRepo.GetBikeByID(ctx, component.BikeID)
	if err != nil {
		s.logger.Error("Failed to get bike for replace", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": component.BikeID,
		})
		return nil, err
	}

	replaced, err := s.componentRepo.ResetInstall(ctx, componentUUID, bike.TotalDistance, bike.TotalDuration)
	if err != nil {
		s.logger.Error("Failed to reset component", map[string]interface{}{
			"error":        err.Error(),
			"component_id": componentID,
		})
		return nil, err
	}

	if _, err := s.maintenanceRepo.CreateMaintenanceLog(ctx, &domain.MaintenanceLog{
		ID:               uuid.New(),
		ComponentID:      replaced.ID,
		Action:           domain.ActionReplaced,
		DistanceAtAction: bike.TotalDistance,
		DurationAtAction: bike.TotalDuration,
		Cost:             cost,
		Notes:            notes,
	}); err != nil {
		s.logger.Warn("Failed to write replaced maintenance log", map[string]interface{}{
			"error":        err.Error(),
			"component_id": replaced.ID,
		})
	}

	s.invalidateBikeCache(replaced.BikeID)

	s.logger.Info("Component replaced successfully", map[string]interface{}{
		"component_id": componentID,
		"bike_id":      replaced.BikeID,
	})

	return replaced, nil
}

func (s *ComponentService) AddMaintenanceLog(ctx context.Context, log *domain.MaintenanceLog) (*domain.MaintenanceLog, error) {
	if err := s.validate.Struct(log); err != nil {
		s.logger.Error("Maintenance log validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	created, err := s.maintenanceRepo.CreateMaintenanceLog(ctx, log)
	if err != nil {
		s.logger.Error("Failed to create maintenance log", map[string]interface{}{
			"error":        err.Error(),
			"component_id": log.ComponentID,
		})
		return nil, err
	}

	s.logger.Info("Maintenance log created", map[string]interface{}{
		"log_id":       created.ID,
		"component_id": created.ComponentID,
		"action":       created.Action,
	})

	return created, nil
}

func (s *ComponentService) GetMaintenanceLogs(ctx context.Context, componentID string) ([]*domain.MaintenanceLog, error) {
	componentUUID, err := uuid.Parse(componentID)
	if err != nil {
		return nil, fmt.Errorf("invalid component ID: %w", err)
	}

	logs, err := s.maintenanceRepo.GetMaintenanceLogsByComponentID(ctx, componentUUID)
	if err != nil {
		s.logger.Error("Failed to get maintenance logs", map[string]interface{}{
			"error":        err.Error(),
			"component_id": componentID,
		})
		return nil, err
	}

	return logs, nil
}

func (s *ComponentService) DeleteComponent(ctx context.Context, componentID string) error {
	componentUUID, err := uuid.Parse(componentID)
	if err != nil {
		s.logger.Error("Invalid UUID format", map[string]interface{}{
			"component_id": componentID,
			"error":        err.Error(),
		})
		return fmt.Errorf("invalid component ID: %w", err)
	}

	component, err := s.componentRepo.GetComponentByID(ctx, componentUUID)
	if err != nil {
		s.logger.Error("Failed to get component", map[string]interface{}{
			"error":        err.Error(),
			"component_id": componentID,
		})
		return err
	}

	err = s.componentRepo.DeleteComponent(ctx, componentUUID)
	if err != nil {
		s.logger.Error("Failed to delete component", map[string]interface{}{
			"error":        err.Error(),
			"component_id": componentID,
		})
		return err
	}

	s.invalidateBikeCache(component.BikeID)

	s.logger.Info("Component deleted successfully", map[string]interface{}{
		"component_id": componentID,
	})

	return nil
}

func (s *ComponentService) invalidateBikeCache(bikeID uuid.UUID) {
	cacheKey := fmt.Sprintf("bike:%s", bikeID.String())
	if err := s.cache.Delete(cacheKey); err != nil {
		s.logger.Warn("Failed to invalidate bike cache", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID.String(),
		})
	}
}
