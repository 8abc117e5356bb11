package domain

import (
	"time"

	"github.com/google/uuid"
)

type FrameType string

const (
	Road   FrameType = "road"
	MTB    FrameType = "mtb"
	Gravel FrameType = "gravel"
	City   FrameType = "city"
	EBike  FrameType = "ebike"
	Other  FrameType = "other"
)

// FrameTypeFromCode maps Strava frame_type codes to the local enum.
// Unknown or missing codes fall back to Other.
func FrameTypeFromCode(code int) FrameType {
	switch code {
	case 1:
		return MTB
	case 2:
		return Gravel
	case 3, 4:
		return Road
	default:
		return Other
	}
}

// swagger:model domain.Bike
type Bike struct {
	UserID        uuid.UUID    `json:"user_id"`
	BikeID        uuid.UUID    `json:"bike_id"`
	ExternalID    *string      `json:"external_id,omitempty"`
	BikeName      string       `json:"bike_name"`
	Brand         string       `json:"brand"`
	Model         string       `json:"model"`
	FrameType     FrameType    `json:"frame_type"`
	TotalDistance float64      `json:"total_distance" validate:"min=0"` // километры
	TotalDuration float64      `json:"total_duration" validate:"min=0"` // часы
	IsPrimary     bool         `json:"is_primary"`
	LastSynced    *time.Time   `json:"last_synced,omitempty"`
	Components    []*Component `json:"components,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
