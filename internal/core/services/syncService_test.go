package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
)

func floatPtr(v float64) *float64 {
	return &v
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (c *memCache) Set(key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) SetNX(key string, value []byte, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = value
	return true, nil
}

func (c *memCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type stubCredentialRepo struct {
	cred          *domain.StravaCredential
	updatedAccess string
	updateCalls   int
	upserted      *domain.StravaCredential
}

func (s *stubCredentialRepo) GetCredential(_ context.Context, _ uuid.UUID) (*domain.StravaCredential, error) {
	if s.cred == nil {
		return nil, domain.ErrNotConnected
	}
	return s.cred, nil
}

func (s *stubCredentialRepo) UpsertCredential(_ context.Context, cred *domain.StravaCredential) error {
	s.upserted = cred
	return nil
}

func (s *stubCredentialRepo) UpdateTokens(_ context.Context, _ uuid.UUID, accessToken, refreshToken string, expiresAt int64) error {
	s.updateCalls++
	s.updatedAccess = accessToken
	s.cred.AccessToken = accessToken
	s.cred.RefreshToken = refreshToken
	s.cred.ExpiresAt = expiresAt
	return nil
}

func (s *stubCredentialRepo) DeleteCredential(_ context.Context, _ uuid.UUID) error {
	s.cred = nil
	return nil
}

type stubBikeRepo struct {
	mu      sync.Mutex
	bikes   map[string]*domain.Bike // keyed by external_id
	failFor string                  // external_id, апсерт которого падает
	upserts int
}

func newStubBikeRepo() *stubBikeRepo {
	return &stubBikeRepo{bikes: make(map[string]*domain.Bike)}
}

func (s *stubBikeRepo) CreateBike(_ context.Context, bike *domain.Bike) (*domain.Bike, error) {
	return bike, nil
}

func (s *stubBikeRepo) GetBikeByID(_ context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bikes {
		if b.BikeID == bikeID {
			return b, nil
		}
	}
	return nil, errors.New("bike not found")
}

func (s *stubBikeRepo) GetBikesByUserID(_ context.Context, _ uuid.UUID) ([]*domain.Bike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Bike, 0, len(s.bikes))
	for _, b := range s.bikes {
		out = append(out, b)
	}
	return out, nil
}

func (s *stubBikeRepo) UpdateBike(_ context.Context, bike *domain.Bike) (*domain.Bike, error) {
	return bike, nil
}

func (s *stubBikeRepo) UpsertBikeByExternalID(_ context.Context, bike *domain.Bike) (*domain.Bike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	externalID := *bike.ExternalID
	if externalID == s.failFor {
		return nil, errors.New("constraint violation")
	}
	s.upserts++
	if existing, ok := s.bikes[externalID]; ok {
		bike.BikeID = existing.BikeID
	}
	s.bikes[externalID] = bike
	return bike, nil
}

func (s *stubBikeRepo) DeleteBike(_ context.Context, _ uuid.UUID) error {
	return nil
}

type stubComponentRepo struct {
	mu         sync.Mutex
	components map[uuid.UUID][]*domain.Component // keyed by bike_id
	wearWrites int
}

func newStubComponentRepo() *stubComponentRepo {
	return &stubComponentRepo{components: make(map[uuid.UUID][]*domain.Component)}
}

func (s *stubComponentRepo) CreateComponent(_ context.Context, c *domain.Component) (*domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components[c.BikeID] = append(s.components[c.BikeID], c)
	return c, nil
}

func (s *stubComponentRepo) GetComponentByID(_ context.Context, id uuid.UUID) (*domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, list := range s.components {
		for _, c := range list {
			if c.ID == id {
				return c, nil
			}
		}
	}
	return nil, errors.New("component not found")
}

func (s *stubComponentRepo) GetComponentsByBikeID(_ context.Context, bikeID uuid.UUID) ([]*domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.components[bikeID], nil
}

func (s *stubComponentRepo) UpdateComponent(_ context.Context, c *domain.Component) (*domain.Component, error) {
	return c, nil
}

func (s *stubComponentRepo) UpdateWear(_ context.Context, id uuid.UUID, currentDistance, currentDuration float64, status domain.ComponentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wearWrites++
	for _, list := range s.components {
		for _, c := range list {
			if c.ID == id {
				c.CurrentDistance = currentDistance
				c.CurrentDuration = currentDuration
				c.Status = status
			}
		}
	}
	return nil
}

func (s *stubComponentRepo) ResetInstall(_ context.Context, id uuid.UUID, installDistance, installDuration float64) (*domain.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, list := range s.components {
		for _, c := range list {
			if c.ID == id {
				c.Replace(installDistance, installDuration)
				return c, nil
			}
		}
	}
	return nil, errors.New("component not found")
}

func (s *stubComponentRepo) DeleteComponent(_ context.Context, _ uuid.UUID) error {
	return nil
}

type stubNotificationRepo struct {
	mu      sync.Mutex
	created []*domain.Notification
}

func (s *stubNotificationRepo) CreateNotification(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, n)
	return n, nil
}

func (s *stubNotificationRepo) GetNotificationsByUserID(_ context.Context, _ uuid.UUID) ([]*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created, nil
}

func (s *stubNotificationRepo) HasUnreadAlert(_ context.Context, _ uuid.UUID, componentID uuid.UUID, status domain.ComponentStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.created {
		if n.Read || n.ComponentID == nil || n.ComponentStatus == nil {
			continue
		}
		if *n.ComponentID == componentID && *n.ComponentStatus == status {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubNotificationRepo) MarkNotificationRead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.created {
		if n.ID == id {
			n.Read = true
		}
	}
	return nil
}

func (s *stubNotificationRepo) DeleteNotification(_ context.Context, _ uuid.UUID) error {
	return nil
}

type stubTelemetry struct {
	athlete     *domain.RemoteAthlete
	athleteErr  error
	grant       *domain.TokenGrant
	refreshErr  error
	refreshed   int
	exchangeErr error
}

func (s *stubTelemetry) ExchangeCode(_ context.Context, _ string) (*domain.TokenGrant, error) {
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return s.grant, nil
}

func (s *stubTelemetry) RefreshToken(_ context.Context, _ string) (*domain.TokenGrant, error) {
	s.refreshed++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.grant, nil
}

func (s *stubTelemetry) GetAthlete(_ context.Context, _ string) (*domain.RemoteAthlete, error) {
	if s.athleteErr != nil {
		return nil, s.athleteErr
	}
	return s.athlete, nil
}

type stubNotifier struct {
	mu        sync.Mutex
	delivered []string
	err       error
}

func (s *stubNotifier) Deliver(_ context.Context, _ uuid.UUID, _, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, message)
	return nil
}

type syncFixture struct {
	service       *SyncService
	credentials   *stubCredentialRepo
	bikes         *stubBikeRepo
	components    *stubComponentRepo
	notifications *stubNotificationRepo
	telemetry     *stubTelemetry
	notifier      *stubNotifier
	cache         *memCache
	userID        uuid.UUID
}

func newSyncFixture() *syncFixture {
	f := &syncFixture{
		credentials:   &stubCredentialRepo{},
		bikes:         newStubBikeRepo(),
		components:    newStubComponentRepo(),
		notifications: &stubNotificationRepo{},
		telemetry:     &stubTelemetry{},
		notifier:      &stubNotifier{},
		cache:         newMemCache(),
		userID:        uuid.New(),
	}
	f.service = NewSyncService(
		f.credentials,
		f.bikes,
		f.components,
		f.notifications,
		f.telemetry,
		f.notifier,
		f.cache,
		nopLogger{},
		14*24*time.Hour,
	)
	return f
}

func (f *syncFixture) connect(expiresAt int64) {
	f.credentials.cred = &domain.StravaCredential{
		UserID:       f.userID,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    expiresAt,
		AthleteID:    42,
	}
}

func TestSync_NotConnected(t *testing.T) {
	f := newSyncFixture()

	_, err := f.service.Sync(context.Background(), f.userID)
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestSync_ImportsBikes(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(time.Hour).Unix())
	f.telemetry.athlete = &domain.RemoteAthlete{
		ID: 42,
		Bikes: []domain.RemoteEquipment{
			{ExternalID: "b1", Name: "Road bike", DistanceMeters: 1499500, FrameTypeCode: 3, Primary: true},
			{ExternalID: "b2", Name: "MTB", DistanceMeters: 250400, FrameTypeCode: 1},
		},
	}

	result, err := f.service.Sync(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BikesImported != 2 {
		t.Fatalf("expected 2 bikes imported, got %d", result.BikesImported)
	}

	road := f.bikes.bikes["b1"]
	if road == nil {
		t.Fatal("bike b1 not upserted")
	}
	// 1499500 м → 1500 км (округление, не усечение)
	if road.TotalDistance != 1500 {
		t.Errorf("expected 1500 km, got %.2f", road.TotalDistance)
	}
	if road.FrameType != domain.Road {
		t.Errorf("expected road frame, got %s", road.FrameType)
	}
	if !road.IsPrimary {
		t.Error("expected primary flag carried over")
	}
	if road.LastSynced == nil {
		t.Error("expected last_synced set")
	}

	mtb := f.bikes.bikes["b2"]
	if mtb == nil {
		t.Fatal("bike b2 not upserted")
	}
	if mtb.TotalDistance != 250 {
		t.Errorf("expected 250 km, got %.2f", mtb.TotalDistance)
	}
	if mtb.FrameType != domain.MTB {
		t.Errorf("expected mtb frame, got %s", mtb.FrameType)
	}

	if f.telemetry.refreshed != 0 {
		t.Errorf("valid token must not be refreshed, refreshed %d times", f.telemetry.refreshed)
	}
}

func TestSync_RefreshesExpiredToken(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(-time.Hour).Unix())
	f.telemetry.grant = &domain.TokenGrant{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
	}
	f.telemetry.athlete = &domain.RemoteAthlete{ID: 42}

	_, err := f.service.Sync(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.telemetry.refreshed != 1 {
		t.Errorf("expected exactly one refresh, got %d", f.telemetry.refreshed)
	}
	if f.credentials.updateCalls != 1 || f.credentials.updatedAccess != "access-2" {
		t.Errorf("refreshed tokens not persisted: calls=%d access=%q", f.credentials.updateCalls, f.credentials.updatedAccess)
	}
}

func TestSync_RefreshFailureKeepsCredential(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(-time.Hour).Unix())
	f.telemetry.refreshErr = errors.New("invalid refresh token")

	_, err := f.service.Sync(context.Background(), f.userID)
	if !errors.Is(err, domain.ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}

	if f.credentials.updateCalls != 0 {
		t.Error("failed refresh must not touch stored credential")
	}
	if f.credentials.cred.AccessToken != "access-1" {
		t.Errorf("stored access token changed to %q", f.credentials.cred.AccessToken)
	}
}

func TestSync_TelemetryFetchError(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(time.Hour).Unix())
	f.telemetry.athleteErr = errors.New("strava 500")

	_, err := f.service.Sync(context.Background(), f.userID)
	if !errors.Is(err, domain.ErrTelemetryFetch) {
		t.Fatalf("expected ErrTelemetryFetch, got %v", err)
	}
}

func TestSync_BestEffortReconcile(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(time.Hour).Unix())
	f.bikes.failFor = "bad"
	f.telemetry.athlete = &domain.RemoteAthlete{
		ID: 42,
		Bikes: []domain.RemoteEquipment{
			{ExternalID: "bad", Name: "Broken"},
			{ExternalID: "good", Name: "Fine"},
		},
	}

	result, err := f.service.Sync(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BikesImported != 1 {
		t.Errorf("expected 1 imported despite failure, got %d", result.BikesImported)
	}
	if f.bikes.bikes["good"] == nil {
		t.Error("healthy bike skipped after sibling failure")
	}
}

// Полный прогон: цепь с порогом 1000 км, байк наездил 1600 км после
// установки на 600 км → износ 100%, danger, один алерт.
func TestSync_RecomputeAndAlert(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(time.Hour).Unix())

	bikeID := uuid.New()
	external := "b1"
	f.bikes.bikes[external] = &domain.Bike{
		BikeID: bikeID, UserID: f.userID, ExternalID: &external, BikeName: "Roadie",
	}
	chain := &domain.Component{
		ID:                uuid.New(),
		BikeID:            bikeID,
		TypeID:            func() *string { s := "chain"; return &s }(),
		InstallDistance:   600,
		ThresholdDistance: floatPtr(1000),
		Status:            domain.StatusOK,
	}
	f.components.components[bikeID] = []*domain.Component{chain}

	f.telemetry.athlete = &domain.RemoteAthlete{
		ID: 42,
		Bikes: []domain.RemoteEquipment{
			{ExternalID: external, Name: "Roadie", DistanceMeters: 1600000, FrameTypeCode: 3},
		},
	}

	if _, err := f.service.Sync(context.Background(), f.userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if chain.CurrentDistance != 1000 {
		t.Errorf("expected 1000 km on chain, got %.2f", chain.CurrentDistance)
	}
	if chain.Status != domain.StatusDanger {
		t.Errorf("expected danger at 100%% wear, got %s", chain.Status)
	}

	if len(f.notifications.created) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(f.notifications.created))
	}
	alert := f.notifications.created[0]
	if alert.Type != domain.NotificationMaintenance {
		t.Errorf("expected maintenance type, got %s", alert.Type)
	}
	if alert.ComponentID == nil || *alert.ComponentID != chain.ID {
		t.Error("alert missing component reference")
	}
	if !strings.Contains(alert.Message, "Roadie") {
		t.Errorf("alert message missing bike name: %q", alert.Message)
	}
	if len(f.notifier.delivered) != 1 {
		t.Errorf("expected one push delivery, got %d", len(f.notifier.delivered))
	}
}

func TestSync_AlertDeduplicated(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(time.Hour).Unix())

	bikeID := uuid.New()
	external := "b1"
	f.bikes.bikes[external] = &domain.Bike{
		BikeID: bikeID, UserID: f.userID, ExternalID: &external, BikeName: "Roadie",
	}
	chain := &domain.Component{
		ID:                uuid.New(),
		BikeID:            bikeID,
		CustomName:        func() *string { s := "Chain"; return &s }(),
		ThresholdDistance: floatPtr(1000),
		Status:            domain.StatusOK,
	}
	f.components.components[bikeID] = []*domain.Component{chain}
	f.telemetry.athlete = &domain.RemoteAthlete{
		ID: 42,
		Bikes: []domain.RemoteEquipment{
			{ExternalID: external, DistanceMeters: 1200000},
		},
	}

	for i := 0; i < 3; i++ {
		if _, err := f.service.Sync(context.Background(), f.userID); err != nil {
			t.Fatalf("sync %d failed: %v", i, err)
		}
	}

	if len(f.notifications.created) != 1 {
		t.Fatalf("still-breached component must alert once, got %d alerts", len(f.notifications.created))
	}
}

// Эскалация warning → danger — это новая пара (component_id, status),
// второй алерт обязан пройти.
func TestSync_StatusChangeRaisesNewAlert(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(time.Hour).Unix())

	bikeID := uuid.New()
	external := "b1"
	f.bikes.bikes[external] = &domain.Bike{
		BikeID: bikeID, UserID: f.userID, ExternalID: &external, BikeName: "Roadie",
	}
	chain := &domain.Component{
		ID:                uuid.New(),
		BikeID:            bikeID,
		CustomName:        func() *string { s := "Chain"; return &s }(),
		ThresholdDistance: floatPtr(1000),
		Status:            domain.StatusOK,
	}
	f.components.components[bikeID] = []*domain.Component{chain}

	// 800 км → warning
	f.telemetry.athlete = &domain.RemoteAthlete{
		ID:    42,
		Bikes: []domain.RemoteEquipment{{ExternalID: external, DistanceMeters: 800000}},
	}
	if _, err := f.service.Sync(context.Background(), f.userID); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if chain.Status != domain.StatusWarning {
		t.Fatalf("expected warning after first sync, got %s", chain.Status)
	}

	// 1100 км → danger
	f.telemetry.athlete.Bikes[0].DistanceMeters = 1100000
	if _, err := f.service.Sync(context.Background(), f.userID); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if chain.Status != domain.StatusDanger {
		t.Fatalf("expected danger after second sync, got %s", chain.Status)
	}

	if len(f.notifications.created) != 2 {
		t.Fatalf("expected warning and danger alerts, got %d", len(f.notifications.created))
	}
	if *f.notifications.created[0].ComponentStatus != domain.StatusWarning ||
		*f.notifications.created[1].ComponentStatus != domain.StatusDanger {
		t.Error("alert statuses out of order")
	}
}

func TestSync_ReplacedComponentUntouched(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(time.Hour).Unix())

	bikeID := uuid.New()
	external := "b1"
	f.bikes.bikes[external] = &domain.Bike{
		BikeID: bikeID, UserID: f.userID, ExternalID: &external,
	}
	old := &domain.Component{
		ID:                uuid.New(),
		BikeID:            bikeID,
		CustomName:        func() *string { s := "Old chain"; return &s }(),
		ThresholdDistance: floatPtr(100),
		Status:            domain.StatusReplaced,
	}
	f.components.components[bikeID] = []*domain.Component{old}
	f.telemetry.athlete = &domain.RemoteAthlete{
		ID:    42,
		Bikes: []domain.RemoteEquipment{{ExternalID: external, DistanceMeters: 5000000}},
	}

	if _, err := f.service.Sync(context.Background(), f.userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if old.Status != domain.StatusReplaced {
		t.Errorf("replaced component recomputed to %s", old.Status)
	}
	if f.components.wearWrites != 0 {
		t.Errorf("expected no wear writes for replaced component, got %d", f.components.wearWrites)
	}
	if len(f.notifications.created) != 0 {
		t.Errorf("replaced component must not alert, got %d alerts", len(f.notifications.created))
	}
}

func TestSync_NotifierFailureStillPersistsAlert(t *testing.T) {
	f := newSyncFixture()
	f.connect(time.Now().Add(time.Hour).Unix())
	f.notifier.err = errors.New("webhook down")

	bikeID := uuid.New()
	external := "b1"
	f.bikes.bikes[external] = &domain.Bike{
		BikeID: bikeID, UserID: f.userID, ExternalID: &external,
	}
	f.components.components[bikeID] = []*domain.Component{{
		ID:                uuid.New(),
		BikeID:            bikeID,
		CustomName:        func() *string { s := "Chain"; return &s }(),
		ThresholdDistance: floatPtr(1000),
		Status:            domain.StatusOK,
	}}
	f.telemetry.athlete = &domain.RemoteAthlete{
		ID:    42,
		Bikes: []domain.RemoteEquipment{{ExternalID: external, DistanceMeters: 2000000}},
	}

	if _, err := f.service.Sync(context.Background(), f.userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.notifications.created) != 1 {
		t.Fatalf("alert must be persisted even when push fails, got %d", len(f.notifications.created))
	}
}

func TestHandleCallback(t *testing.T) {
	f := newSyncFixture()
	f.telemetry.grant = &domain.TokenGrant{
		AccessToken:  "access-cb",
		RefreshToken: "refresh-cb",
		ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
		Athlete: &domain.RemoteAthlete{
			ID:        4242,
			FirstName: "Ivan",
			LastName:  "Petrov",
			Bikes: []domain.RemoteEquipment{
				{ExternalID: "b1", Name: "Gravel", DistanceMeters: 320000, FrameTypeCode: 2},
			},
		},
	}

	result, athlete, err := f.service.HandleCallback(context.Background(), f.userID, "auth-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.credentials.upserted == nil {
		t.Fatal("credential not persisted")
	}
	if f.credentials.upserted.AthleteID != 4242 {
		t.Errorf("expected athlete id 4242, got %d", f.credentials.upserted.AthleteID)
	}
	if result.BikesImported != 1 {
		t.Errorf("expected 1 bike imported, got %d", result.BikesImported)
	}
	if athlete.FirstName != "Ivan" {
		t.Errorf("unexpected athlete: %+v", athlete)
	}
	if f.bikes.bikes["b1"] == nil || f.bikes.bikes["b1"].FrameType != domain.Gravel {
		t.Error("callback import missing or frame type wrong")
	}
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	f := newSyncFixture()
	f.telemetry.exchangeErr = errors.New("invalid code")

	_, _, err := f.service.HandleCallback(context.Background(), f.userID, "bad-code")
	if err == nil {
		t.Fatal("expected error for failed exchange")
	}
	if f.credentials.upserted != nil {
		t.Error("credential must not be persisted on failed exchange")
	}
}
