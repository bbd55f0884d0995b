package service

import (
	"context"
	"time"

	"cnote/events"
	"cnote/models"

	"github.com/shopspring/decimal"
)

// BalanceRepository defines the interface for official balance data access
type BalanceRepository interface {
	// GetByUserID retrieves a user's balance, or nil if the user is unknown
	GetByUserID(ctx context.Context, userID int64) (*models.Balance, error)

	// GetByUserIDForUpdate retrieves a user's balance with a row lock,
	// serializing concurrent settlements for the same user
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.Balance, error)

	// Create creates a new balance row
	Create(ctx context.Context, userID int64, openingBalance, annualRate decimal.Decimal) (*models.Balance, error)

	// AddToBalance atomically increments a user's official balance and
	// returns the updated row
	AddToBalance(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Balance, error)

	// ListUserIDs returns the IDs of all users with a balance row
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// DailyAccrualRepository defines the interface for daily accrual records
type DailyAccrualRepository interface {
	// GetByUserAndDate retrieves the accrual for (user, business date),
	// or nil if none has been recorded
	GetByUserAndDate(ctx context.Context, userID int64, businessDate time.Time) (*models.DailyAccrual, error)

	// Insert creates a new accrual record, filling in ID and CreatedAt.
	// Returns ErrDuplicateAccrual if a record already exists for the
	// (user, business date) key.
	Insert(ctx context.Context, accrual *models.DailyAccrual) error

	// ListUnsettledInRange returns unsettled accruals with business date
	// in [from, to), ordered by business date
	ListUnsettledInRange(ctx context.Context, userID int64, from, to time.Time) ([]*models.DailyAccrual, error)

	// SumUnsettledSince sums unsettled accrual amounts with business
	// date >= from. Zero when there are none.
	SumUnsettledSince(ctx context.Context, userID int64, from time.Time) (decimal.Decimal, error)

	// MarkSettled flags the given accrual records as consumed by the
	// given movement
	MarkSettled(ctx context.Context, ids []int64, movementID int64) error
}

// MovementRepository defines the interface for the append-only audit log
type MovementRepository interface {
	// Insert appends a movement, filling in ID and CreatedAt
	Insert(ctx context.Context, movement *models.Movement) error

	// GetByUser returns the most recent movements for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Movement, error)
}

// AccrualService runs the daily interest accrual job
type AccrualService interface {
	// RunDailyAccrual records one day's interest accrual for a user.
	// Re-running for an already-recorded (user, date) returns the
	// existing record without recomputing.
	RunDailyAccrual(ctx context.Context, userID int64, businessDate time.Time) (*models.DailyAccrual, error)
}

// SettlementService finalizes accrued interest at month end
type SettlementService interface {
	// RunMonthlySettlement folds one user's unsettled accruals for the
	// month containing the given instant into the official balance.
	// Returns ErrNoAccrualData when nothing remains to settle.
	RunMonthlySettlement(ctx context.Context, userID int64, month time.Time) (*models.Movement, error)

	// RunMonthlySettlementBatch settles every user for the given month,
	// skipping users with nothing to settle
	RunMonthlySettlementBatch(ctx context.Context, month time.Time) (*models.SettlementBatchResult, error)
}

// InquiryService exposes the client-facing balance read path
type InquiryService interface {
	// GetAccountSummary returns the official balance plus this month's
	// unofficial pending interest, as one consistent snapshot
	GetAccountSummary(ctx context.Context, userID int64) (*models.AccountSummary, error)
}

// AccountService provisions interest-bearing accounts
type AccountService interface {
	// CreateAccount creates a balance row plus its opening movement
	CreateAccount(ctx context.Context, userID int64, openingBalance, annualRate decimal.Decimal) (*models.Balance, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	BalanceRepository() BalanceRepository
	DailyAccrualRepository() DailyAccrualRepository
	MovementRepository() MovementRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
