package service

import (
	"context"
	"fmt"

	"cnote/events"
	"cnote/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account provisioning service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{
		uowFactory: uowFactory,
	}
}

// CreateAccount provisions an interest-bearing account: the balance row
// plus its opening movement, in one transaction. Every balance change
// has exactly one movement, including the first.
func (s *accountService) CreateAccount(ctx context.Context, userID int64, openingBalance, annualRate decimal.Decimal) (*models.Balance, error) {
	if openingBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative, got %s", ErrInvalidInput, openingBalance)
	}
	if annualRate.IsNegative() {
		return nil, fmt.Errorf("%w: annual rate must not be negative, got %s", ErrInvalidInput, annualRate)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.BalanceRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account for user %d: %w", userID, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("create account for user %d: %w", userID, ErrAccountExists)
	}

	balance, err := uow.BalanceRepository().Create(ctx, userID, openingBalance, annualRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create balance for user %d: %w", userID, err)
	}

	opening := &models.Movement{
		UserID:       userID,
		MovementType: models.MovementTypeOpeningBalance,
		Amount:       openingBalance,
		PeriodStart:  NormalizeBusinessDate(balance.CreatedAt),
		PeriodEnd:    NormalizeBusinessDate(balance.CreatedAt),
		Metadata: map[string]any{
			"annual_rate": annualRate.String(),
		},
	}
	if err := uow.MovementRepository().Insert(ctx, opening); err != nil {
		return nil, fmt.Errorf("failed to record opening movement for user %d: %w", userID, err)
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		UserID:         userID,
		OpeningBalance: openingBalance.StringFixed(currencyScale),
		AnnualRate:     annualRate.String(),
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       userID,
		OldBalance:   decimal.Zero.StringFixed(currencyScale),
		NewBalance:   openingBalance.StringFixed(currencyScale),
		MovementType: models.MovementTypeOpeningBalance,
		ChangeAmount: openingBalance.StringFixed(currencyScale),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account creation for user %d: %w", userID, err)
	}

	log.WithFields(log.Fields{
		"userID":         userID,
		"openingBalance": openingBalance.StringFixed(currencyScale),
		"annualRate":     annualRate.String(),
	}).Info("Provisioned interest-bearing account")

	return balance, nil
}
