package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// daysPerYear is the fixed day-count convention for daily interest.
// No leap-year adjustment: 365 is the documented simplification, so a
// different amount of interest accrues each month depending on how many
// days it has.
const daysPerYear = 365

// currencyScale is the number of decimal places carried by monetary
// amounts.
const currencyScale = 2

// ComputeDailyAccrual computes one day's interest on a principal at the
// given annual rate, rounded half-up to currency precision. Pure; the
// only failure mode is invalid input.
//
// Rounding happens once, here, per day. Monthly totals are sums of
// already-rounded daily amounts, never a re-rounded recomputation.
func ComputeDailyAccrual(principal, annualRate decimal.Decimal) (decimal.Decimal, error) {
	if principal.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: principal must not be negative, got %s", ErrInvalidInput, principal)
	}
	if annualRate.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: annual rate must not be negative, got %s", ErrInvalidInput, annualRate)
	}

	dailyRate := annualRate.Div(decimal.NewFromInt(daysPerYear))
	return principal.Mul(dailyRate).Round(currencyScale), nil
}
