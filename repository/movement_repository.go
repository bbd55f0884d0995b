package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"cnote/database"
	"cnote/models"
)

// MovementRepository implements the service.MovementRepository interface
type MovementRepository struct {
	q queryable
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{q: db.Pool}
}

// newMovementRepositoryWithTx creates a new movement repository bound to a transaction
func newMovementRepositoryWithTx(tx queryable) *MovementRepository {
	return &MovementRepository{q: tx}
}

// Insert appends a movement to the audit log
func (r *MovementRepository) Insert(ctx context.Context, movement *models.Movement) error {
	metadataJSON, err := json.Marshal(movement.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal movement metadata: %w", err)
	}

	query := `
		INSERT INTO movements
		(user_id, movement_type, amount, period_start, period_end, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		movement.UserID,
		movement.MovementType,
		movement.Amount,
		dateOnly(movement.PeriodStart),
		dateOnly(movement.PeriodEnd),
		metadataJSON,
	).Scan(&movement.ID, &movement.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert movement for user %d: %w", movement.UserID, err)
	}

	return nil
}

// GetByUser returns the most recent movements for a user
func (r *MovementRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Movement, error) {
	query := `
		SELECT id, user_id, movement_type, amount, period_start, period_end,
		       metadata, created_at
		FROM movements
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get movements for user %d: %w", userID, err)
	}
	defer rows.Close()

	var movements []*models.Movement
	for rows.Next() {
		var movement models.Movement
		var metadataJSON []byte

		err := rows.Scan(
			&movement.ID,
			&movement.UserID,
			&movement.MovementType,
			&movement.Amount,
			&movement.PeriodStart,
			&movement.PeriodEnd,
			&metadataJSON,
			&movement.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &movement.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal movement metadata: %w", err)
			}
		}

		movements = append(movements, &movement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}

	return movements, nil
}
