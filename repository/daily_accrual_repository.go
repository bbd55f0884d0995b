package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cnote/database"
	"cnote/models"
	"cnote/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// pgUniqueViolation is the Postgres error code for unique_violation
const pgUniqueViolation = "23505"

// DailyAccrualRepository implements the service.DailyAccrualRepository interface
type DailyAccrualRepository struct {
	q queryable
}

// NewDailyAccrualRepository creates a new daily accrual repository
func NewDailyAccrualRepository(db *database.DB) *DailyAccrualRepository {
	return &DailyAccrualRepository{q: db.Pool}
}

// newDailyAccrualRepositoryWithTx creates a new daily accrual repository bound to a transaction
func newDailyAccrualRepositoryWithTx(tx queryable) *DailyAccrualRepository {
	return &DailyAccrualRepository{q: tx}
}

// GetByUserAndDate retrieves the accrual for (user, business date), or
// nil if none has been recorded. The date is normalized to start of day.
func (r *DailyAccrualRepository) GetByUserAndDate(ctx context.Context, userID int64, businessDate time.Time) (*models.DailyAccrual, error) {
	query := `
		SELECT id, user_id, business_date, interest_rate, accrual_amount,
		       pending_balance_eod, settled, settled_by, created_at
		FROM daily_accruals
		WHERE user_id = $1 AND business_date = $2
	`

	accrual, err := scanDailyAccrual(r.q.QueryRow(ctx, query, userID, dateOnly(businessDate)))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get accrual for user %d on %s: %w",
			userID, businessDate.Format("2006-01-02"), err)
	}

	return accrual, nil
}

// Insert creates a new accrual record. The unique index on
// (user_id, business_date) is the idempotence guarantee: a concurrent
// duplicate surfaces as service.ErrDuplicateAccrual for the caller to
// recover from.
func (r *DailyAccrualRepository) Insert(ctx context.Context, accrual *models.DailyAccrual) error {
	query := `
		INSERT INTO daily_accruals
		(user_id, business_date, interest_rate, accrual_amount, pending_balance_eod)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		accrual.UserID,
		dateOnly(accrual.BusinessDate),
		accrual.InterestRate,
		accrual.AccrualAmount,
		accrual.PendingBalanceEOD,
	).Scan(&accrual.ID, &accrual.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("accrual for user %d on %s: %w",
				accrual.UserID, accrual.BusinessDate.Format("2006-01-02"), service.ErrDuplicateAccrual)
		}
		return fmt.Errorf("failed to insert accrual for user %d on %s: %w",
			accrual.UserID, accrual.BusinessDate.Format("2006-01-02"), err)
	}

	return nil
}

// ListUnsettledInRange returns unsettled accruals with business date in
// [from, to), ordered by business date
func (r *DailyAccrualRepository) ListUnsettledInRange(ctx context.Context, userID int64, from, to time.Time) ([]*models.DailyAccrual, error) {
	query := `
		SELECT id, user_id, business_date, interest_rate, accrual_amount,
		       pending_balance_eod, settled, settled_by, created_at
		FROM daily_accruals
		WHERE user_id = $1 AND NOT settled
		  AND business_date >= $2 AND business_date < $3
		ORDER BY business_date
	`

	rows, err := r.q.Query(ctx, query, userID, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled accruals for user %d: %w", userID, err)
	}
	defer rows.Close()

	var accruals []*models.DailyAccrual
	for rows.Next() {
		accrual, err := scanDailyAccrual(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accrual: %w", err)
		}
		accruals = append(accruals, accrual)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accruals: %w", err)
	}

	return accruals, nil
}

// SumUnsettledSince sums unsettled accrual amounts with business date
// >= from. Zero, not null, when there are none.
func (r *DailyAccrualRepository) SumUnsettledSince(ctx context.Context, userID int64, from time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(accrual_amount), 0)
		FROM daily_accruals
		WHERE user_id = $1 AND NOT settled AND business_date >= $2
	`

	var total decimal.Decimal
	err := r.q.QueryRow(ctx, query, userID, dateOnly(from)).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to sum unsettled accruals for user %d: %w", userID, err)
	}

	return total, nil
}

// MarkSettled flags the given accrual records as consumed by the given
// movement
func (r *DailyAccrualRepository) MarkSettled(ctx context.Context, ids []int64, movementID int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE daily_accruals
		SET settled = TRUE, settled_by = $1
		WHERE id = ANY($2) AND NOT settled
	`

	result, err := r.q.Exec(ctx, query, movementID, ids)
	if err != nil {
		return fmt.Errorf("failed to mark accruals settled by movement %d: %w", movementID, err)
	}

	if int(result.RowsAffected()) != len(ids) {
		return fmt.Errorf("marked %d of %d accruals settled by movement %d",
			result.RowsAffected(), len(ids), movementID)
	}

	return nil
}

// dateOnly normalizes an instant to its UTC date
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// scanDailyAccrual scans one accrual row from a pgx.Row or pgx.Rows
func scanDailyAccrual(row pgx.Row) (*models.DailyAccrual, error) {
	var accrual models.DailyAccrual
	err := row.Scan(
		&accrual.ID,
		&accrual.UserID,
		&accrual.BusinessDate,
		&accrual.InterestRate,
		&accrual.AccrualAmount,
		&accrual.PendingBalanceEOD,
		&accrual.Settled,
		&accrual.SettledBy,
		&accrual.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &accrual, nil
}
