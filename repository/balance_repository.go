package repository

import (
	"context"
	"fmt"

	"cnote/database"
	"cnote/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceRepository implements the service.BalanceRepository interface
type BalanceRepository struct {
	q queryable
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *database.DB) *BalanceRepository {
	return &BalanceRepository{q: db.Pool}
}

// newBalanceRepositoryWithTx creates a new balance repository bound to a transaction
func newBalanceRepositoryWithTx(tx queryable) *BalanceRepository {
	return &BalanceRepository{q: tx}
}

// GetByUserID retrieves a user's balance, or nil if the user is unknown
func (r *BalanceRepository) GetByUserID(ctx context.Context, userID int64) (*models.Balance, error) {
	query := `
		SELECT user_id, current_balance, annual_interest_rate, created_at, updated_at
		FROM balances
		WHERE user_id = $1
	`

	var balance models.Balance
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&balance.UserID,
		&balance.CurrentBalance,
		&balance.AnnualInterestRate,
		&balance.CreatedAt,
		&balance.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for user %d: %w", userID, err)
	}

	return &balance, nil
}

// GetByUserIDForUpdate retrieves a user's balance with a row lock so
// concurrent settlements for the same user serialize
func (r *BalanceRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.Balance, error) {
	query := `
		SELECT user_id, current_balance, annual_interest_rate, created_at, updated_at
		FROM balances
		WHERE user_id = $1
		FOR UPDATE
	`

	var balance models.Balance
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&balance.UserID,
		&balance.CurrentBalance,
		&balance.AnnualInterestRate,
		&balance.CreatedAt,
		&balance.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock balance for user %d: %w", userID, err)
	}

	return &balance, nil
}

// Create creates a new balance row
func (r *BalanceRepository) Create(ctx context.Context, userID int64, openingBalance, annualRate decimal.Decimal) (*models.Balance, error) {
	query := `
		INSERT INTO balances (user_id, current_balance, annual_interest_rate)
		VALUES ($1, $2, $3)
		RETURNING user_id, current_balance, annual_interest_rate, created_at, updated_at
	`

	var balance models.Balance
	err := r.q.QueryRow(ctx, query, userID, openingBalance, annualRate).Scan(
		&balance.UserID,
		&balance.CurrentBalance,
		&balance.AnnualInterestRate,
		&balance.CreatedAt,
		&balance.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create balance for user %d: %w", userID, err)
	}

	return &balance, nil
}

// AddToBalance atomically increments a user's official balance and
// returns the updated row
func (r *BalanceRepository) AddToBalance(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Balance, error) {
	query := `
		UPDATE balances
		SET current_balance = current_balance + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING user_id, current_balance, annual_interest_rate, created_at, updated_at
	`

	var balance models.Balance
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(
		&balance.UserID,
		&balance.CurrentBalance,
		&balance.AnnualInterestRate,
		&balance.CreatedAt,
		&balance.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("balance for user %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add to balance for user %d: %w", userID, err)
	}

	return &balance, nil
}

// ListUserIDs returns the IDs of all users with a balance row
func (r *BalanceRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT user_id
		FROM balances
		ORDER BY user_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user IDs: %w", err)
	}

	return userIDs, nil
}
