package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/ports"

	"github.com/google/uuid"
)

// SyncService — пайплайн синхронизации со Strava:
// токен → телеметрия → реконсиляция байков → пересчет износа → алерты.
// Этапы строго последовательные, падение раннего этапа прерывает цепочку;
// уже закоммиченные изменения не откатываются — их поправит следующий
// успешный sync.
type SyncService struct {
	credentialRepo   ports.CredentialRepository
	bikeRepo         ports.BikeRepository
	componentRepo    ports.ComponentRepository
	notificationRepo ports.NotificationRepository
	strava           ports.TelemetryClient
	notifier         ports.NotifierPort
	cache            ports.CachePort
	logger           ports.LoggerPort

	// окно повторного алерта для still-breached компонентов
	realertTTL time.Duration

	// один sync на пользователя одновременно, иначе два конкурентных
	// прогона теряют апдейты друг друга
	userLocks sync.Map
}

type SyncResult struct {
	BikesImported int
}

func NewSyncService(
	credentialRepo ports.CredentialRepository,
	bikeRepo ports.BikeRepository,
	componentRepo ports.ComponentRepository,
	notificationRepo ports.NotificationRepository,
	strava ports.TelemetryClient,
	notifier ports.NotifierPort,
	cache ports.CachePort,
	logger ports.LoggerPort,
	realertTTL time.Duration,
) *SyncService {
	return &SyncService{
		credentialRepo:   credentialRepo,
		bikeRepo:         bikeRepo,
		componentRepo:    componentRepo,
		notificationRepo: notificationRepo,
		strava:           strava,
		notifier:         notifier,
		cache:            cache,
		logger:           logger,
		realertTTL:       realertTTL,
	}
}

func (s *SyncService) userLock(userID uuid.UUID) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *SyncService) Sync(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	accessToken, err := s.ensureValidCredential(ctx, userID)
	if err != nil {
		return nil, err
	}

	athlete, err := s.strava.GetAthlete(ctx, accessToken)
	if err != nil {
		s.logger.Error("Failed to fetch athlete from Strava", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
		if !errors.Is(err, domain.ErrTelemetryFetch) {
			err = fmt.Errorf("%w: %v", domain.ErrTelemetryFetch, err)
		}
		return nil, err
	}

	imported := s.reconcile(ctx, userID, athlete.Bikes)
	s.recompute(ctx, userID)
	s.notifyIfNeeded(ctx, userID)

	s.logger.Info("Sync completed", map[string]interface{}{
		"user_id":        userID.String(),
		"bikes_imported": imported,
	})

	return &SyncResult{BikesImported: imported}, nil
}

// ensureValidCredential отдает валидный access token. Просроченный токен
// рефрешится ровно один раз; при неудаче сохраненный credential не трогаем,
// чтобы ручная переавторизация осталась возможной.
func (s *SyncService) ensureValidCredential(ctx context.Context, userID uuid.UUID) (string, error) {
	cred, err := s.credentialRepo.GetCredential(ctx, userID)
	if err != nil {
		return "", err
	}

	if !cred.Expired(time.Now()) {
		return cred.AccessToken, nil
	}

	s.logger.Info("Access token expired, refreshing", map[string]interface{}{
		"user_id": userID.String(),
	})

	grant, err := s.strava.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		s.logger.Error("Token refresh failed", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
		return "", fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}

	if err := s.credentialRepo.UpdateTokens(ctx, userID, grant.AccessToken, grant.RefreshToken, grant.ExpiresAt); err != nil {
		s.logger.Error("Failed to persist refreshed tokens", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
		return "", fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}

	return grant.AccessToken, nil
}

// reconcile — best-effort батч: падение апсерта одного байка не прерывает
// остальные, счетчик отражает только успешные.
func (s *SyncService) reconcile(ctx context.Context, userID uuid.UUID, equipment []domain.RemoteEquipment) int {
	now := time.Now()
	imported := 0

	for _, item := range equipment {
		externalID := item.ExternalID
		bike := &domain.Bike{
			BikeID:        uuid.New(),
			UserID:        userID,
			ExternalID:    &externalID,
			BikeName:      item.Name,
			Brand:         item.Brand,
			Model:         item.Model,
			FrameType:     domain.FrameTypeFromCode(item.FrameTypeCode),
			TotalDistance: math.Round(item.DistanceMeters / 1000),
			IsPrimary:     item.Primary,
			LastSynced:    &now,
		}

		upserted, err := s.bikeRepo.UpsertBikeByExternalID(ctx, bike)
		if err != nil {
			s.logger.Warn("Failed to upsert bike, skipping", map[string]interface{}{
				"error":       err.Error(),
				"user_id":     userID.String(),
				"external_id": externalID,
			})
			continue
		}
		imported++

		if err := s.cache.Delete(fmt.Sprintf("bike:%s", upserted.BikeID.String())); err != nil {
			s.logger.Warn("Failed to invalidate bike cache", map[string]interface{}{
				"error":   err.Error(),
				"bike_id": upserted.BikeID.String(),
			})
		}
	}

	return imported
}

// recompute пересчитывает износ всех незамененных компонентов пользователя.
// Чистая функция от тоталов байка и базы установки, идемпотентна.
// Ошибки отдельных компонентов логируются и не прерывают проход.
func (s *SyncService) recompute(ctx context.Context, userID uuid.UUID) {
	bikes, err := s.bikeRepo.GetBikesByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list bikes for recompute", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
		return
	}

	for _, bike := range bikes {
		components, err := s.componentRepo.GetComponentsByBikeID(ctx, bike.BikeID)
		if err != nil {
			s.logger.Error("Failed to list components for recompute", map[string]interface{}{
				"error":   err.Error(),
				"bike_id": bike.BikeID.String(),
			})
			continue
		}

		for _, component := range components {
			if component.Status == domain.StatusReplaced {
				continue
			}
			component.Recompute(bike.TotalDistance, bike.TotalDuration)
			if err := s.componentRepo.UpdateWear(ctx, component.ID, component.CurrentDistance, component.CurrentDuration, component.Status); err != nil {
				s.logger.Error("Failed to persist recomputed wear", map[string]interface{}{
					"error":        err.Error(),
					"component_id": component.ID.String(),
				})
			}
		}
	}
}

// notifyIfNeeded поднимает алерты для компонентов в warning/danger.
// Составной ключ (component_id, status): смена статуса — новый алерт,
// неизменный статус подавляется маркером в redis (с TTL окна повторного
// алерта) и проверкой непрочитанного уведомления в базе.
func (s *SyncService) notifyIfNeeded(ctx context.Context, userID uuid.UUID) {
	bikes, err := s.bikeRepo.GetBikesByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list bikes for notifications", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
		return
	}

	for _, bike := range bikes {
		components, err := s.componentRepo.GetComponentsByBikeID(ctx, bike.BikeID)
		if err != nil {
			s.logger.Error("Failed to list components for notifications", map[string]interface{}{
				"error":   err.Error(),
				"bike_id": bike.BikeID.String(),
			})
			continue
		}

		for _, component := range components {
			if component.Status != domain.StatusWarning && component.Status != domain.StatusDanger {
				continue
			}
			s.alertComponent(ctx, userID, bike, component)
		}
	}
}

func (s *SyncService) alertComponent(ctx context.Context, userID uuid.UUID, bike *domain.Bike, component *domain.Component) {
	markerKey := fmt.Sprintf("alert:%s:%s", component.ID.String(), component.Status)

	if _, err := s.cache.Get(markerKey); err == nil {
		return // уже алертили по этой паре в текущем окне
	}

	exists, err := s.notificationRepo.HasUnreadAlert(ctx, userID, component.ID, component.Status)
	if err != nil {
		s.logger.Error("Failed to check unread alerts", map[string]interface{}{
			"error":        err.Error(),
			"component_id": component.ID.String(),
		})
		return
	}
	if exists {
		return
	}

	title := "Component maintenance required"
	message := fmt.Sprintf("%s on %s is at %.0f%% wear (%s)",
		component.DisplayName(), bike.BikeName, component.WearPercent(), component.Status)

	if err := s.notifier.Deliver(ctx, userID, title, message); err != nil {
		s.logger.Warn("Failed to deliver push notification", map[string]interface{}{
			"error":        err.Error(),
			"component_id": component.ID.String(),
		})
	}

	status := component.Status
	componentID := component.ID
	if _, err := s.notificationRepo.CreateNotification(ctx, &domain.Notification{
		ID:              uuid.New(),
		UserID:          userID,
		Type:            domain.NotificationMaintenance,
		Title:           title,
		Message:         message,
		ComponentID:     &componentID,
		ComponentStatus: &status,
	}); err != nil {
		s.logger.Error("Failed to create notification", map[string]interface{}{
			"error":        err.Error(),
			"component_id": component.ID.String(),
		})
		return
	}

	if _, err := s.cache.SetNX(markerKey, []byte("1"), s.realertTTL); err != nil {
		s.logger.Warn("Failed to set alert marker", map[string]interface{}{
			"error": err.Error(),
			"key":   markerKey,
		})
	}

	s.logger.Info("Maintenance alert raised", map[string]interface{}{
		"user_id":      userID.String(),
		"component_id": component.ID.String(),
		"status":       string(component.Status),
	})
}

// HandleCallback обрабатывает OAuth-колбек: меняет code на токены,
// сохраняет credential (upsert по user_id) и сразу импортирует снаряжение
// атлета.
func (s *SyncService) HandleCallback(ctx context.Context, userID uuid.UUID, code string) (*SyncResult, *domain.RemoteAthlete, error) {
	grant, err := s.strava.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error("Code exchange failed", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
		return nil, nil, fmt.Errorf("code exchange failed: %w", err)
	}
	if grant.Athlete == nil {
		return nil, nil, fmt.Errorf("token response contains no athlete")
	}

	cred := &domain.StravaCredential{
		UserID:       userID,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    grant.ExpiresAt,
		AthleteID:    grant.Athlete.ID,
	}
	if err := s.credentialRepo.UpsertCredential(ctx, cred); err != nil {
		s.logger.Error("Failed to persist credential", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
		return nil, nil, err
	}

	imported := s.reconcile(ctx, userID, grant.Athlete.Bikes)
	s.recompute(ctx, userID)

	s.logger.Info("Strava account connected", map[string]interface{}{
		"user_id":        userID.String(),
		"athlete_id":     grant.Athlete.ID,
		"bikes_imported": imported,
	})

	return &SyncResult{BikesImported: imported}, grant.Athlete, nil
}
