package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance represents a user's official interest-bearing balance.
// CurrentBalance excludes interest accrued but not yet settled; it is
// mutated only by settlement and by external movement operations.
type Balance struct {
	UserID             int64           `db:"user_id"`
	CurrentBalance     decimal.Decimal `db:"current_balance"`
	AnnualInterestRate decimal.Decimal `db:"annual_interest_rate"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}
