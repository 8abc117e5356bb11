package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ComponentRepository struct {
	db *sql.DB
}

func NewComponentRepository(db *sql.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

func (r *ComponentRepository) CreateComponent(ctx context.Context, component *domain.Component) (*domain.Component, error) {
	query := `INSERT INTO components (id, bike_id, type_id, custom_name, install_distance, install_duration, threshold_distance, threshold_duration, current_distance, current_duration, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		component.ID,
		component.BikeID,
		component.TypeID,
		component.CustomName,
		component.InstallDistance,
		component.InstallDuration,
		component.ThresholdDistance,
		component.ThresholdDuration,
		component.CurrentDistance,
		component.CurrentDuration,
		component.Status,
		component.Notes,
	).Scan(
		&component.ID,
		&component.CreatedAt,
		&component.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23503":
				return nil, fmt.Errorf("bike does not exist")
			default:
				return nil, err
			}
		}
		return nil, err
	}

	return component, nil
}

func (r *ComponentRepository) GetComponentByID(ctx context.Context, componentID uuid.UUID) (*domain.Component, error) {
	query := `
		SELECT id, bike_id, type_id, custom_name, install_distance, install_duration, threshold_distance, threshold_duration, current_distance, current_duration, status, notes, created_at, updated_at
		FROM components
		WHERE id = $1
	`

	var component domain.Component
	err := r.db.QueryRowContext(ctx, query, componentID).Scan(
		&component.ID,
		&component.BikeID,
		&component.TypeID,
		&component.CustomName,
		&component.InstallDistance,
		&component.InstallDuration,
		&component.ThresholdDistance,
		&component.ThresholdDuration,
		&component.CurrentDistance,
		&component.CurrentDuration,
		&component.Status,
		&component.Notes,
		&component.CreatedAt,
		&component.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("component not found")
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}

	return &component, nil
}

func (r *ComponentRepository) GetComponentsByBikeID(ctx context.Context, bike_id uuid.UUID) ([]*domain.Component, error) {
	query := `SELECT id, bike_id, type_id, custom_name, install_distance, install_duration, threshold_distance, threshold_duration, current_distance, current_duration, status, notes, created_at, updated_at
		FROM components WHERE bike_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, bike_id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []*domain.Component

	for rows.Next() {
		component := &domain.Component{}
		err := rows.Scan(
			&component.ID,
			&component.BikeID,
			&component.TypeID,
			&component.CustomName,
			&component.InstallDistance,
			&component.InstallDuration,
			&component.ThresholdDistance,
			&component.ThresholdDuration,
			&component.CurrentDistance,
			&component.CurrentDuration,
			&component.Status,
			&component.Notes,
			&component.CreatedAt,
			&component.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		components = append(components, component)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return components, nil
}

func (r *ComponentRepository) UpdateComponent(ctx context.Context, component *domain.Component) (*domain.Component, error) {
	query := `UPDATE components
		SET
			type_id = COALESCE($1, type_id),
			custom_name = COALESCE($2, custom_name),
			install_distance = COALESCE(NULLIF($3, -1::double precision), install_distance),
			install_duration = COALESCE(NULLIF($4, -1::double precision), install_duration),
			threshold_distance = COALESCE($5, threshold_distance),
			threshold_duration = COALESCE($6, threshold_duration),
			notes = COALESCE(NULLIF($7, ''), notes),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $8
		RETURNING id, bike_id, type_id, custom_name, install_distance, install_duration, threshold_distance, threshold_duration, current_distance, current_duration, status, notes, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		component.TypeID,
		component.CustomName,
		component.InstallDistance,
		component.InstallDuration,
		component.ThresholdDistance,
		component.ThresholdDuration,
		component.Notes,
		component.ID,
	).Scan(
		&component.ID,
		&component.BikeID,
		&component.TypeID,
		&component.CustomName,
		&component.InstallDistance,
		&component.InstallDuration,
		&component.ThresholdDistance,
		&component.ThresholdDuration,
		&component.CurrentDistance,
		&component.CurrentDuration,
		&component.Status,
		&component.Notes,
		&component.CreatedAt,
		&component.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("component not found")
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23502" {
			return nil, fmt.Errorf("required field is missing")
		}
		return nil, fmt.Errorf("error updating component: %w", err)
	}

	return component, nil
}

// UpdateWear трогает только производные поля, базу установки не меняет.
func (r *ComponentRepository) UpdateWear(ctx context.Context, componentID uuid.UUID, currentDistance, currentDuration float64, status domain.ComponentStatus) error {
	query := `UPDATE components
		SET current_distance = $1,
			current_duration = $2,
			status = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $4 AND status != 'replaced'`

	result, err := r.db.ExecContext(ctx, query, currentDistance, currentDuration, status, componentID)
	if err != nil {
		return fmt.Errorf("error updating wear: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("component not found")
	}
	return nil
}

// ResetInstall — ручной replace/reset: база установки на текущие тоталы,
// статус обратно в ok.
func (r *ComponentRepository) ResetInstall(ctx context.Context, componentID uuid.UUID, installDistance, installDuration float64) (*domain.Component, error) {
	query := `UPDATE components
		SET install_distance = $1,
			install_duration = $2,
			current_distance = 0,
			current_duration = 0,
			status = 'ok',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING id, bike_id, type_id, custom_name, install_distance, install_duration, threshold_distance, threshold_duration, current_distance, current_duration, status, notes, created_at, updated_at`

	var component domain.Component
	err := r.db.QueryRowContext(ctx, query, installDistance, installDuration, componentID).Scan(
		&component.ID,
		&component.BikeID,
		&component.TypeID,
		&component.CustomName,
		&component.InstallDistance,
		&component.InstallDuration,
		&component.ThresholdDistance,
		&component.ThresholdDuration,
		&component.CurrentDistance,
		&component.CurrentDuration,
		&component.Status,
		&component.Notes,
		&component.CreatedAt,
		&component.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("component not found")
		}
		return nil, fmt.Errorf("error resetting component: %w", err)
	}

	return &component, nil
}

func (r *ComponentRepository) DeleteComponent(ctx context.Context, component_id uuid.UUID) error {
	query := `DELETE FROM components WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, component_id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("component not found")
	}

	return nil
}
