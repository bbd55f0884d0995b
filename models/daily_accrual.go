package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyAccrual represents one day's interest accrual for one user.
// At most one row exists per (user, business date), enforced by a unique
// index. Rows are immutable once written except for the settled flag,
// which flips when a monthly settlement consumes them.
type DailyAccrual struct {
	ID                int64           `db:"id"`
	UserID            int64           `db:"user_id"`
	BusinessDate      time.Time       `db:"business_date"`
	InterestRate      decimal.Decimal `db:"interest_rate"`
	AccrualAmount     decimal.Decimal `db:"accrual_amount"`
	PendingBalanceEOD decimal.Decimal `db:"pending_balance_eod"`
	Settled           bool            `db:"settled"`
	SettledBy         *int64          `db:"settled_by"`
	CreatedAt         time.Time       `db:"created_at"`
}
