package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BikeRepository struct {
	db *sql.DB
}

func NewBikeRepository(db *sql.DB) *BikeRepository {
	return &BikeRepository{
		db,
	}
}

func (r *BikeRepository) CreateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	query := `INSERT INTO bikes (bike_id, user_id, external_id, bike_name, brand, model, frame_type, total_distance, total_duration, is_primary, last_synced)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    RETURNING bike_id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		bike.BikeID,
		bike.UserID,
		bike.ExternalID,
		bike.BikeName,
		bike.Brand,
		bike.Model,
		bike.FrameType,
		bike.TotalDistance,
		bike.TotalDuration,
		bike.IsPrimary,
		bike.LastSynced,
	).Scan(
		&bike.BikeID,
		&bike.CreatedAt,
		&bike.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23503":
				return nil, fmt.Errorf("user does not exist")
			case "23505":
				return nil, fmt.Errorf("bike with this external id already exists")
			default:
				return nil, err
			}
		}
		return nil, err
	}
	return bike, nil
}

// UpsertBikeByExternalID — вставка или обновление по (user_id, external_id).
// Идентичность байка и created_at сохраняются; мутабельные поля
// перезаписываются данными провайдера.
func (r *BikeRepository) UpsertBikeByExternalID(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	if bike.ExternalID == nil || *bike.ExternalID == "" {
		return nil, fmt.Errorf("external id is required for upsert")
	}

	query := `INSERT INTO bikes (bike_id, user_id, external_id, bike_name, brand, model, frame_type, total_distance, total_duration, is_primary, last_synced)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, external_id) WHERE external_id IS NOT NULL
		DO UPDATE SET
			bike_name = EXCLUDED.bike_name,
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			frame_type = EXCLUDED.frame_type,
			total_distance = EXCLUDED.total_distance,
			total_duration = EXCLUDED.total_duration,
			is_primary = EXCLUDED.is_primary,
			last_synced = EXCLUDED.last_synced,
			updated_at = CURRENT_TIMESTAMP
		RETURNING bike_id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		bike.BikeID,
		bike.UserID,
		bike.ExternalID,
		bike.BikeName,
		bike.Brand,
		bike.Model,
		bike.FrameType,
		bike.TotalDistance,
		bike.TotalDuration,
		bike.IsPrimary,
		bike.LastSynced,
	).Scan(
		&bike.BikeID,
		&bike.CreatedAt,
		&bike.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return nil, fmt.Errorf("user does not exist")
		}
		return nil, fmt.Errorf("error upserting bike: %w", err)
	}
	return bike, nil
}

func (r *BikeRepository) GetBikeByID(ctx context.Context, bike_id uuid.UUID) (*domain.Bike, error) {
	query := `SELECT bike_id, user_id, external_id, bike_name, brand, model, frame_type, total_distance, total_duration, is_primary, last_synced, created_at, updated_at
              FROM bikes WHERE bike_id = $1`

	bike := &domain.Bike{}
	err := r.db.QueryRowContext(ctx, query, bike_id).Scan(
		&bike.BikeID,
		&bike.UserID,
		&bike.ExternalID,
		&bike.BikeName,
		&bike.Brand,
		&bike.Model,
		&bike.FrameType,
		&bike.TotalDistance,
		&bike.TotalDuration,
		&bike.IsPrimary,
		&bike.LastSynced,
		&bike.CreatedAt,
		&bike.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bike not found")
	}
	if err != nil {
		return nil, err
	}

	return bike, nil
}

func (r *BikeRepository) GetBikesByUserID(ctx context.Context, user_id uuid.UUID) ([]*domain.Bike, error) {
	query := `SELECT bike_id, user_id, external_id, bike_name, brand, model, frame_type, total_distance, total_duration, is_primary, last_synced, created_at, updated_at
              FROM bikes WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, user_id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bikes []*domain.Bike

	for rows.Next() {
		bike := &domain.Bike{}
		err := rows.Scan(
			&bike.BikeID,
			&bike.UserID,
			&bike.ExternalID,
			&bike.BikeName,
			&bike.Brand,
			&bike.Model,
			&bike.FrameType,
			&bike.TotalDistance,
			&bike.TotalDuration,
			&bike.IsPrimary,
			&bike.LastSynced,
			&bike.CreatedAt,
			&bike.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bikes = append(bikes, bike)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bikes, nil
}

func (r *BikeRepository) DeleteBike(ctx context.Context, bike_id uuid.UUID) error {
	query := `DELETE FROM bikes WHERE bike_id = $1`

	result, err := r.db.ExecContext(ctx, query, bike_id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("bike not found")
	}

	return nil
}

func (r *BikeRepository) UpdateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	query := `UPDATE bikes
		SET
			bike_name = COALESCE(NULLIF($1, ''), bike_name),
			brand = COALESCE(NULLIF($2, ''), brand),
			model = COALESCE(NULLIF($3, ''), model),
			frame_type = COALESCE(NULLIF($4, ''), frame_type),
			total_distance = COALESCE(NULLIF($5, -1::double precision), total_distance),
			total_duration = COALESCE(NULLIF($6, -1::double precision), total_duration),
			is_primary = $7,
			updated_at = CURRENT_TIMESTAMP
		WHERE bike_id = $8
		RETURNING bike_id, user_id, external_id, bike_name, brand, model, frame_type, total_distance, total_duration, is_primary, last_synced, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		bike.BikeName,
		bike.Brand,
		bike.Model,
		bike.FrameType,
		bike.TotalDistance,
		bike.TotalDuration,
		bike.IsPrimary,
		bike.BikeID,
	).Scan(
		&bike.BikeID,
		&bike.UserID,
		&bike.ExternalID,
		&bike.BikeName,
		&bike.Brand,
		&bike.Model,
		&bike.FrameType,
		&bike.TotalDistance,
		&bike.TotalDuration,
		&bike.IsPrimary,
		&bike.LastSynced,
		&bike.CreatedAt,
		&bike.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("bike not found")
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23502" {
			return nil, fmt.Errorf("required field is missing")
		}
		return nil, fmt.Errorf("error updating bike: %w", err)
	}

	return bike, nil
}
