package domain

import (
	"math"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestWearPercent_DistanceThreshold(t *testing.T) {
	c := &Component{
		CurrentDistance:   1000,
		ThresholdDistance: floatPtr(2500),
	}

	got := c.WearPercent()
	want := 40.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected wear %.2f, got %.2f", want, got)
	}
}

func TestWearPercent_DurationThreshold(t *testing.T) {
	c := &Component{
		CurrentDuration:   75,
		ThresholdDuration: floatPtr(150),
	}

	got := c.WearPercent()
	want := 50.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected wear %.2f, got %.2f", want, got)
	}
}

// Порог по дистанции имеет приоритет, даже если порог по времени
// дал бы больший износ.
func TestWearPercent_DistanceTakesPrecedence(t *testing.T) {
	c := &Component{
		CurrentDistance:   500,
		CurrentDuration:   200,
		ThresholdDistance: floatPtr(5000),
		ThresholdDuration: floatPtr(100),
	}

	got := c.WearPercent()
	want := 10.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected distance threshold to win: want %.2f, got %.2f", want, got)
	}
}

func TestWearPercent_NoThresholds(t *testing.T) {
	c := &Component{CurrentDistance: 9999, CurrentDuration: 9999}
	if got := c.WearPercent(); got != 0 {
		t.Errorf("expected 0 wear without thresholds, got %.2f", got)
	}
}

func TestStatusForWear_Boundaries(t *testing.T) {
	tests := []struct {
		wear float64
		want ComponentStatus
	}{
		{0, StatusOK},
		{74.9, StatusOK},
		{75, StatusWarning},
		{99.9, StatusWarning},
		{100, StatusDanger},
		{150, StatusDanger},
	}

	for _, tt := range tests {
		if got := StatusForWear(tt.wear); got != tt.want {
			t.Errorf("StatusForWear(%.1f) = %s, want %s", tt.wear, got, tt.want)
		}
	}
}

func TestRecompute(t *testing.T) {
	c := &Component{
		InstallDistance:   1000,
		InstallDuration:   50,
		ThresholdDistance: floatPtr(400),
		Status:            StatusOK,
	}

	c.Recompute(1600, 80)

	if c.CurrentDistance != 600 {
		t.Errorf("expected current distance 600, got %.2f", c.CurrentDistance)
	}
	if c.CurrentDuration != 30 {
		t.Errorf("expected current duration 30, got %.2f", c.CurrentDuration)
	}
	if c.Status != StatusDanger {
		t.Errorf("expected danger status at 150%% wear, got %s", c.Status)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	c := &Component{
		InstallDistance:   200,
		ThresholdDistance: floatPtr(1000),
	}

	c.Recompute(1000, 0)
	first := *c
	c.Recompute(1000, 0)

	if c.CurrentDistance != first.CurrentDistance || c.Status != first.Status {
		t.Errorf("repeated recompute changed state: %+v vs %+v", first, *c)
	}
}

// Тоталы меньше базы установки означают рассинхрон данных,
// износ зажимается в ноль вместо отрицательного.
func TestRecompute_ClampsNegative(t *testing.T) {
	c := &Component{
		InstallDistance:   2000,
		InstallDuration:   100,
		ThresholdDistance: floatPtr(500),
	}

	c.Recompute(1500, 40)

	if c.CurrentDistance != 0 {
		t.Errorf("expected clamped distance 0, got %.2f", c.CurrentDistance)
	}
	if c.CurrentDuration != 0 {
		t.Errorf("expected clamped duration 0, got %.2f", c.CurrentDuration)
	}
	if c.Status != StatusOK {
		t.Errorf("expected ok status at zero wear, got %s", c.Status)
	}
}

func TestRecompute_SkipsReplaced(t *testing.T) {
	c := &Component{
		InstallDistance:   0,
		ThresholdDistance: floatPtr(100),
		Status:            StatusReplaced,
	}

	c.Recompute(100000, 0)

	if c.Status != StatusReplaced {
		t.Errorf("replaced component must stay replaced, got %s", c.Status)
	}
	if c.CurrentDistance != 0 {
		t.Errorf("replaced component wear must not change, got %.2f", c.CurrentDistance)
	}
}

func TestReplace_ResetsBaseline(t *testing.T) {
	c := &Component{
		InstallDistance:   100,
		CurrentDistance:   2400,
		ThresholdDistance: floatPtr(2500),
		Status:            StatusDanger,
	}

	c.Replace(2500, 130)

	if c.InstallDistance != 2500 || c.InstallDuration != 130 {
		t.Errorf("expected baseline moved to bike totals, got %.2f/%.2f", c.InstallDistance, c.InstallDuration)
	}
	if c.CurrentDistance != 0 || c.CurrentDuration != 0 {
		t.Errorf("expected wear reset, got %.2f/%.2f", c.CurrentDistance, c.CurrentDuration)
	}
	if c.Status != StatusOK {
		t.Errorf("expected ok after replace, got %s", c.Status)
	}
}

func TestDisplayName(t *testing.T) {
	custom := "Мой подседел"
	typeID := "chain"
	unknown := "flux_capacitor"

	tests := []struct {
		name string
		c    Component
		want string
	}{
		{"custom name", Component{CustomName: &custom}, custom},
		{"catalog type", Component{TypeID: &typeID}, "Chain"},
		{"unknown type falls back to id", Component{TypeID: &unknown}, unknown},
		{"custom wins over type", Component{TypeID: &typeID, CustomName: &custom}, custom},
		{"empty", Component{}, "component"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFrameTypeFromCode(t *testing.T) {
	tests := []struct {
		code int
		want FrameType
	}{
		{1, MTB},
		{2, Gravel},
		{3, Road},
		{4, Road},
		{0, Other},
		{99, Other},
		{-1, Other},
	}

	for _, tt := range tests {
		if got := FrameTypeFromCode(tt.code); got != tt.want {
			t.Errorf("FrameTypeFromCode(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestCredentialExpired(t *testing.T) {
	now := time.Now()

	fresh := &StravaCredential{ExpiresAt: now.Add(time.Hour).Unix()}
	if fresh.Expired(now) {
		t.Error("credential expiring in an hour reported as expired")
	}

	stale := &StravaCredential{ExpiresAt: now.Add(-time.Minute).Unix()}
	if !stale.Expired(now) {
		t.Error("credential expired a minute ago reported as valid")
	}

	exact := &StravaCredential{ExpiresAt: now.Unix()}
	if !exact.Expired(now) {
		t.Error("credential expiring exactly now must count as expired")
	}
}

func TestComponentTypeByID(t *testing.T) {
	ct, ok := ComponentTypeByID("chain")
	if !ok {
		t.Fatal("expected chain in catalog")
	}
	if ct.ThresholdDistance != 2500 {
		t.Errorf("expected chain threshold 2500, got %.0f", ct.ThresholdDistance)
	}

	if _, ok := ComponentTypeByID("nonexistent"); ok {
		t.Error("unexpected catalog hit for nonexistent type")
	}
}
