package domain

import (
	"time"

	"github.com/google/uuid"
)

// StravaCredential — OAuth-токены Strava, одна запись на пользователя.
type StravaCredential struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    int64     `json:"expires_at"` // unix seconds
	AthleteID    int64     `json:"athlete_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *StravaCredential) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}
