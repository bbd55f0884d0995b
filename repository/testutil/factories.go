package testutil

import (
	"time"

	"cnote/models"

	"github.com/shopspring/decimal"
)

// CreateTestBalance creates a test balance with default values
func CreateTestBalance(userID int64) *models.Balance {
	now := time.Now()
	return &models.Balance{
		UserID:             userID,
		CurrentBalance:     decimal.RequireFromString("10000.00"),
		AnnualInterestRate: decimal.RequireFromString("0.02"),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// CreateTestBalanceWithAmount creates a test balance with a specific amount and rate
func CreateTestBalanceWithAmount(userID int64, balance, rate string) *models.Balance {
	b := CreateTestBalance(userID)
	b.CurrentBalance = decimal.RequireFromString(balance)
	b.AnnualInterestRate = decimal.RequireFromString(rate)
	return b
}

// CreateTestDailyAccrual creates a test daily accrual for the given business date
func CreateTestDailyAccrual(userID int64, businessDate time.Time) *models.DailyAccrual {
	return &models.DailyAccrual{
		UserID:            userID,
		BusinessDate:      businessDate,
		InterestRate:      decimal.RequireFromString("0.02"),
		AccrualAmount:     decimal.RequireFromString("0.55"),
		PendingBalanceEOD: decimal.RequireFromString("10000.55"),
		CreatedAt:         time.Now(),
	}
}

// CreateTestDailyAccrualWithAmount creates a test daily accrual with a specific amount
func CreateTestDailyAccrualWithAmount(userID int64, businessDate time.Time, amount string) *models.DailyAccrual {
	a := CreateTestDailyAccrual(userID, businessDate)
	a.AccrualAmount = decimal.RequireFromString(amount)
	return a
}

// CreateTestMovement creates a test movement covering the given period
func CreateTestMovement(userID int64, movementType models.MovementType, periodStart, periodEnd time.Time) *models.Movement {
	return &models.Movement{
		UserID:       userID,
		MovementType: movementType,
		Amount:       decimal.RequireFromString("16.50"),
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		Metadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}
