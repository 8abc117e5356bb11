package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) GetCredential(ctx context.Context, userID uuid.UUID) (*domain.StravaCredential, error) {
	query := `SELECT user_id, access_token, refresh_token, expires_at, athlete_id, created_at, updated_at
		FROM strava_credentials WHERE user_id = $1`

	cred := &domain.StravaCredential{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cred.UserID,
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.ExpiresAt,
		&cred.AthleteID,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return cred, nil
}

// UpsertCredential — одна запись на пользователя, конфликт по user_id.
func (r *CredentialRepository) UpsertCredential(ctx context.Context, cred *domain.StravaCredential) error {
	query := `INSERT INTO strava_credentials (user_id, access_token, refresh_token, expires_at, athlete_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			athlete_id = EXCLUDED.athlete_id,
			updated_at = CURRENT_TIMESTAMP`

	_, err := r.db.ExecContext(ctx, query,
		cred.UserID,
		cred.AccessToken,
		cred.RefreshToken,
		cred.ExpiresAt,
		cred.AthleteID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("user does not exist")
		}
		return fmt.Errorf("error upserting credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) UpdateTokens(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt int64) error {
	query := `UPDATE strava_credentials
		SET access_token = $1,
			refresh_token = $2,
			expires_at = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $4`

	result, err := r.db.ExecContext(ctx, query, accessToken, refreshToken, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("error updating tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotConnected
	}
	return nil
}

func (r *CredentialRepository) DeleteCredential(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM strava_credentials WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotConnected
	}
	return nil
}
