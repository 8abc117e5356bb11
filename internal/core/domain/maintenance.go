package domain

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceAction string

const (
	ActionInstalled  MaintenanceAction = "installed"
	ActionMaintained MaintenanceAction = "maintained"
	ActionReplaced   MaintenanceAction = "replaced"
	ActionInspected  MaintenanceAction = "inspected"
)

// MaintenanceLog — append-only история обслуживания компонента.
type MaintenanceLog struct {
	ID               uuid.UUID         `json:"id"`
	ComponentID      uuid.UUID         `json:"component_id" validate:"required"`
	Action           MaintenanceAction `json:"action" validate:"required,oneof=installed maintained replaced inspected"`
	DistanceAtAction float64           `json:"distance_at_action" validate:"min=0"`
	DurationAtAction float64           `json:"duration_at_action" validate:"min=0"`
	Cost             *float64          `json:"cost,omitempty"`
	ReceiptRef       *string           `json:"receipt_ref,omitempty"`
	Notes            string            `json:"notes,omitempty" validate:"max=500"`
	CreatedAt        time.Time         `json:"created_at"`
}
