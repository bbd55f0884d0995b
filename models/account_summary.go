package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSummary is the read model returned by the balance inquiry.
// InterestAccrued is the sum of this month's unsettled daily accruals;
// it is unofficial until month-end settlement folds it into
// CurrentBalance. Zero, not absent, when no accruals exist yet.
type AccountSummary struct {
	UserID             int64           `json:"userId"`
	CurrentBalance     decimal.Decimal `json:"currentBalance"`
	BalanceLastUpdated time.Time       `json:"balanceLastUpdated"`
	InterestAccrued    decimal.Decimal `json:"interestAccrued"`
}
