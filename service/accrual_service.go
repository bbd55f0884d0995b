package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cnote/events"
	"cnote/models"

	log "github.com/sirupsen/logrus"
)

type accrualService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccrualService creates a new daily accrual service
func NewAccrualService(uowFactory UnitOfWorkFactory) AccrualService {
	return &accrualService{
		uowFactory: uowFactory,
	}
}

// RunDailyAccrual computes and records one day's interest accrual for a
// user. The accrual is computed from the official balance and the rate
// in effect at run time; the official balance itself is never touched.
//
// The operation is idempotent: a re-run for an already-recorded
// (user, business date) returns the existing record, and a concurrent
// retry losing the race on the uniqueness constraint re-reads the
// winner's record instead of failing.
func (s *accrualService) RunDailyAccrual(ctx context.Context, userID int64, businessDate time.Time) (*models.DailyAccrual, error) {
	businessDate = NormalizeBusinessDate(businessDate)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	balance, err := uow.BalanceRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for user %d: %w", userID, err)
	}
	if balance == nil {
		return nil, fmt.Errorf("daily accrual for user %d: %w", userID, ErrUserNotFound)
	}

	// Fast path for scheduler redeliveries
	existing, err := uow.DailyAccrualRepository().GetByUserAndDate(ctx, userID, businessDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing accrual for user %d on %s: %w",
			userID, businessDate.Format("2006-01-02"), err)
	}
	if existing != nil {
		return existing, nil
	}

	amount, err := ComputeDailyAccrual(balance.CurrentBalance, balance.AnnualInterestRate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute accrual for user %d: %w", userID, err)
	}

	accrual := &models.DailyAccrual{
		UserID:            userID,
		BusinessDate:      businessDate,
		InterestRate:      balance.AnnualInterestRate,
		AccrualAmount:     amount,
		PendingBalanceEOD: balance.CurrentBalance.Add(amount),
	}

	if err := uow.DailyAccrualRepository().Insert(ctx, accrual); err != nil {
		if errors.Is(err, ErrDuplicateAccrual) {
			// Lost a race with a concurrent retry. The uniqueness
			// constraint guarantees exactly one record exists, so
			// return that one.
			return s.readExisting(ctx, uow, userID, businessDate)
		}
		return nil, fmt.Errorf("failed to insert accrual for user %d on %s: %w",
			userID, businessDate.Format("2006-01-02"), err)
	}

	uow.EventBus().Publish(events.AccrualRecordedEvent{
		UserID:        userID,
		BusinessDate:  businessDate.Format("2006-01-02"),
		AccrualAmount: amount.StringFixed(currencyScale),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit accrual for user %d on %s: %w",
			userID, businessDate.Format("2006-01-02"), err)
	}

	log.WithFields(log.Fields{
		"userID":       userID,
		"businessDate": businessDate.Format("2006-01-02"),
		"amount":       amount.StringFixed(currencyScale),
	}).Info("Recorded daily interest accrual")

	return accrual, nil
}

// readExisting fetches the accrual record written by the transaction
// that won the insert race. The current transaction's snapshot predates
// that commit, so it rolls back and reads in a fresh one.
func (s *accrualService) readExisting(ctx context.Context, uow UnitOfWork, userID int64, businessDate time.Time) (*models.DailyAccrual, error) {
	if err := uow.Rollback(); err != nil {
		return nil, fmt.Errorf("failed to rollback after duplicate accrual: %w", err)
	}

	fresh := s.uowFactory.Create()
	if err := fresh.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer fresh.Rollback()

	existing, err := fresh.DailyAccrualRepository().GetByUserAndDate(ctx, userID, businessDate)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read accrual for user %d on %s: %w",
			userID, businessDate.Format("2006-01-02"), err)
	}
	if existing == nil {
		return nil, fmt.Errorf("accrual for user %d on %s vanished after duplicate conflict",
			userID, businessDate.Format("2006-01-02"))
	}

	log.WithFields(log.Fields{
		"userID":       userID,
		"businessDate": businessDate.Format("2006-01-02"),
	}).Info("Daily accrual already recorded, returning existing record")

	return existing, nil
}
