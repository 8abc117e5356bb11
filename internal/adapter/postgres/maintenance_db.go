package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MaintenanceRepository struct {
	db *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) CreateMaintenanceLog(ctx context.Context, log *domain.MaintenanceLog) (*domain.MaintenanceLog, error) {
	query := `INSERT INTO maintenance_logs (id, component_id, action, distance_at_action, duration_at_action, cost, receipt_ref, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		log.ID,
		log.ComponentID,
		log.Action,
		log.DistanceAtAction,
		log.DurationAtAction,
		log.Cost,
		log.ReceiptRef,
		log.Notes,
	).Scan(
		&log.ID,
		&log.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23503":
				return nil, fmt.Errorf("component does not exist")
			default:
				return nil, err
			}
		}
		return nil, err
	}

	return log, nil
}

func (r *MaintenanceRepository) GetMaintenanceLogsByComponentID(ctx context.Context, componentID uuid.UUID) ([]*domain.MaintenanceLog, error) {
	query := `SELECT id, component_id, action, distance_at_action, duration_at_action, cost, receipt_ref, notes, created_at
		FROM maintenance_logs WHERE component_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, componentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.MaintenanceLog

	for rows.Next() {
		log := &domain.MaintenanceLog{}
		err := rows.Scan(
			&log.ID,
			&log.ComponentID,
			&log.Action,
			&log.DistanceAtAction,
			&log.DurationAtAction,
			&log.Cost,
			&log.ReceiptRef,
			&log.Notes,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
