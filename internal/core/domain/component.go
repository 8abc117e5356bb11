package domain

import (
	"time"

	"github.com/google/uuid"
)

type ComponentStatus string

const (
	StatusOK       ComponentStatus = "ok"
	StatusWarning  ComponentStatus = "warning"
	StatusDanger   ComponentStatus = "danger"
	StatusReplaced ComponentStatus = "replaced"
)

// Component — расходник байка. Тип либо из каталога (TypeID), либо
// произвольное имя (CustomName); ровно одно из двух должно быть задано.
type Component struct {
	ID                uuid.UUID       `json:"id"`
	BikeID            uuid.UUID       `json:"bike_id" validate:"required"`
	TypeID            *string         `json:"type_id,omitempty" validate:"required_without=CustomName"`
	CustomName        *string         `json:"custom_name,omitempty" validate:"required_without=TypeID,omitempty,max=100"`
	InstallDistance   float64         `json:"install_distance" validate:"min=0"`
	InstallDuration   float64         `json:"install_duration" validate:"min=0"`
	ThresholdDistance *float64        `json:"threshold_distance,omitempty"`
	ThresholdDuration *float64        `json:"threshold_duration,omitempty"`
	CurrentDistance   float64         `json:"current_distance"`
	CurrentDuration   float64         `json:"current_duration"`
	Status            ComponentStatus `json:"status"`
	Notes             string          `json:"notes,omitempty" validate:"max=500"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (c *Component) DisplayName() string {
	if c.CustomName != nil && *c.CustomName != "" {
		return *c.CustomName
	}
	if c.TypeID != nil {
		if ct, ok := ComponentTypeByID(*c.TypeID); ok {
			return ct.Name
		}
		return *c.TypeID
	}
	return "component"
}

// WearPercent — процент износа относительно порога. Порог по дистанции
// имеет приоритет над порогом по времени; без порогов износ всегда 0.
func (c *Component) WearPercent() float64 {
	if c.ThresholdDistance != nil && *c.ThresholdDistance > 0 {
		return c.CurrentDistance / *c.ThresholdDistance * 100
	}
	if c.ThresholdDuration != nil && *c.ThresholdDuration > 0 {
		return c.CurrentDuration / *c.ThresholdDuration * 100
	}
	return 0
}

func StatusForWear(wear float64) ComponentStatus {
	switch {
	case wear >= 100:
		return StatusDanger
	case wear >= 75:
		return StatusWarning
	default:
		return StatusOK
	}
}

// Recompute пересчитывает пробег и статус по текущим тоталам байка.
// Чистая и идемпотентная: повторный вызов с теми же тоталами ничего не меняет.
// Замененные компоненты не трогаем — их вернет только ручной Replace.
func (c *Component) Recompute(totalDistance, totalDuration float64) {
	if c.Status == StatusReplaced {
		return
	}
	c.CurrentDistance = clampNonNegative(totalDistance - c.InstallDistance)
	c.CurrentDuration = clampNonNegative(totalDuration - c.InstallDuration)
	c.Status = StatusForWear(c.WearPercent())
}

// Replace сбрасывает базовую точку установки на текущие тоталы байка.
func (c *Component) Replace(totalDistance, totalDuration float64) {
	c.InstallDistance = totalDistance
	c.InstallDuration = totalDuration
	c.CurrentDistance = 0
	c.CurrentDuration = 0
	c.Status = StatusOK
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
