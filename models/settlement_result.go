package models

import "github.com/shopspring/decimal"

// SettlementBatchResult summarizes one month-end settlement run across
// all users.
type SettlementBatchResult struct {
	Month         string          `json:"month"` // YYYY-MM
	UsersSettled  int             `json:"usersSettled"`
	UsersSkipped  int             `json:"usersSkipped"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
}
