package service

import (
	"context"
	"fmt"
	"time"

	"cnote/models"
)

type inquiryService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewInquiryService creates a new balance inquiry service
func NewInquiryService(uowFactory UnitOfWorkFactory) InquiryService {
	return &inquiryService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// GetAccountSummary returns a user's official balance together with the
// unofficial interest accrued so far this month. Both reads happen in
// one snapshot transaction, so a summary never mixes a post-settlement
// balance with pre-settlement accrual rows or vice versa.
func (s *inquiryService) GetAccountSummary(ctx context.Context, userID int64) (*models.AccountSummary, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // Read-only, never committed

	balance, err := uow.BalanceRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for user %d: %w", userID, err)
	}
	if balance == nil {
		return nil, fmt.Errorf("account summary for user %d: %w", userID, ErrUserNotFound)
	}

	pending, err := uow.DailyAccrualRepository().SumUnsettledSince(ctx, userID, StartOfMonth(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to sum pending interest for user %d: %w", userID, err)
	}

	return &models.AccountSummary{
		UserID:             userID,
		CurrentBalance:     balance.CurrentBalance,
		BalanceLastUpdated: balance.UpdatedAt,
		InterestAccrued:    pending,
	}, nil
}
