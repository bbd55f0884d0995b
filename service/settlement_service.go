package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cnote/events"
	"cnote/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
}

// NewSettlementService creates a new month-end settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
	}
}

// RunMonthlySettlement finalizes one user's accrued interest for the
// month containing the given instant. In a single transaction it sums
// the month's unsettled daily accruals, appends one movement, marks the
// consumed accruals settled, and increments the official balance. Any
// sub-step failing rolls the whole settlement back.
//
// Re-running for an already-settled month finds no unsettled records
// and returns ErrNoAccrualData; there is no path to a second movement
// or a second balance increment.
func (s *settlementService) RunMonthlySettlement(ctx context.Context, userID int64, month time.Time) (*models.Movement, error) {
	periodStart, periodEnd := MonthInterval(month)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Row lock on the balance serializes concurrent settlements for the
	// same user; without it two racing runs could both see the accruals
	// as unsettled under snapshot isolation.
	balance, err := uow.BalanceRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock balance for user %d: %w", userID, err)
	}
	if balance == nil {
		return nil, fmt.Errorf("monthly settlement for user %d: %w", userID, ErrUserNotFound)
	}

	accruals, err := uow.DailyAccrualRepository().ListUnsettledInRange(ctx, userID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list accruals for user %d in %s: %w",
			userID, periodStart.Format("2006-01"), err)
	}
	if len(accruals) == 0 {
		return nil, fmt.Errorf("monthly settlement for user %d in %s: %w",
			userID, periodStart.Format("2006-01"), ErrNoAccrualData)
	}

	// Sum of already-rounded daily amounts; no re-rounding here
	totalInterest := decimal.Zero
	accrualIDs := make([]int64, 0, len(accruals))
	for _, accrual := range accruals {
		totalInterest = totalInterest.Add(accrual.AccrualAmount)
		accrualIDs = append(accrualIDs, accrual.ID)
	}

	movement := &models.Movement{
		UserID:       userID,
		MovementType: models.MovementTypeMonthlyInterest,
		Amount:       totalInterest,
		PeriodStart:  periodStart,
		PeriodEnd:    EndOfMonthDate(periodStart),
		Metadata: map[string]any{
			"days_accrued":   len(accruals),
			"interest_rate":  accruals[len(accruals)-1].InterestRate.String(),
			"balance_before": balance.CurrentBalance.StringFixed(currencyScale),
		},
	}

	if err := uow.MovementRepository().Insert(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to insert settlement movement for user %d: %w", userID, err)
	}

	if err := uow.DailyAccrualRepository().MarkSettled(ctx, accrualIDs, movement.ID); err != nil {
		return nil, fmt.Errorf("failed to mark accruals settled for user %d: %w", userID, err)
	}

	updated, err := uow.BalanceRepository().AddToBalance(ctx, userID, totalInterest)
	if err != nil {
		return nil, fmt.Errorf("failed to apply settlement to balance for user %d: %w", userID, err)
	}

	uow.EventBus().Publish(events.SettlementPostedEvent{
		UserID:        userID,
		MovementID:    movement.ID,
		Month:         periodStart.Format("2006-01"),
		TotalInterest: totalInterest.StringFixed(currencyScale),
		DaysSettled:   len(accruals),
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       userID,
		OldBalance:   balance.CurrentBalance.StringFixed(currencyScale),
		NewBalance:   updated.CurrentBalance.StringFixed(currencyScale),
		MovementType: models.MovementTypeMonthlyInterest,
		ChangeAmount: totalInterest.StringFixed(currencyScale),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement for user %d in %s: %w",
			userID, periodStart.Format("2006-01"), err)
	}

	log.WithFields(log.Fields{
		"userID":        userID,
		"month":         periodStart.Format("2006-01"),
		"totalInterest": totalInterest.StringFixed(currencyScale),
		"daysSettled":   len(accruals),
		"movementID":    movement.ID,
	}).Info("Posted monthly interest settlement")

	return movement, nil
}

// RunMonthlySettlementBatch settles every user for the given month.
// Users with nothing to settle are logged and skipped; one user failing
// does not abort the rest of the batch.
func (s *settlementService) RunMonthlySettlementBatch(ctx context.Context, month time.Time) (*models.SettlementBatchResult, error) {
	periodStart, _ := MonthInterval(month)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	userIDs, err := uow.BalanceRepository().ListUserIDs(ctx)
	if rbErr := uow.Rollback(); rbErr != nil && err == nil {
		err = rbErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list users for settlement batch: %w", err)
	}

	result := &models.SettlementBatchResult{
		Month:         periodStart.Format("2006-01"),
		TotalInterest: decimal.Zero,
	}

	var failed int
	for _, userID := range userIDs {
		movement, err := s.RunMonthlySettlement(ctx, userID, month)
		if err != nil {
			if errors.Is(err, ErrNoAccrualData) {
				result.UsersSkipped++
				log.WithFields(log.Fields{
					"userID": userID,
					"month":  result.Month,
				}).Info("No unsettled accruals, skipping user")
				continue
			}
			failed++
			log.WithFields(log.Fields{
				"userID": userID,
				"month":  result.Month,
				"stage":  "settlement",
			}).WithError(err).Error("Failed to settle user, continuing batch")
			continue
		}
		result.UsersSettled++
		result.TotalInterest = result.TotalInterest.Add(movement.Amount)
	}

	log.WithFields(log.Fields{
		"month":         result.Month,
		"usersSettled":  result.UsersSettled,
		"usersSkipped":  result.UsersSkipped,
		"usersFailed":   failed,
		"totalInterest": result.TotalInterest.StringFixed(currencyScale),
	}).Info("Completed monthly settlement batch")

	if failed > 0 {
		return result, fmt.Errorf("settlement batch for %s: %d of %d users failed",
			result.Month, failed, len(userIDs))
	}

	return result, nil
}
