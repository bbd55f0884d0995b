package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType represents the kind of balance-affecting event
type MovementType string

const (
	MovementTypeOpeningBalance  MovementType = "opening_balance"
	MovementTypeMonthlyInterest MovementType = "monthly_interest"
	MovementTypeDeposit         MovementType = "deposit"
	MovementTypeWithdrawal      MovementType = "withdrawal"
)

// Movement represents an audited change to a user's official balance.
// The movements table is append-only; every change to
// Balance.CurrentBalance has exactly one corresponding Movement.
type Movement struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	MovementType MovementType    `db:"movement_type"`
	Amount       decimal.Decimal `db:"amount"`
	PeriodStart  time.Time       `db:"period_start"`
	PeriodEnd    time.Time       `db:"period_end"`
	Metadata     map[string]any  `db:"metadata"`
	CreatedAt    time.Time       `db:"created_at"`
}
