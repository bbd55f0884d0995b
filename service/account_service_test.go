package service

import (
	"context"
	"testing"
	"time"

	"cnote/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService_CreateAccount(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBalanceRepo := new(MockBalanceRepository)
	mockMovementRepo := new(MockMovementRepository)
	mockPublisher := new(MockEventPublisher)
	mockUoW.SetRepositories(mockBalanceRepo, new(MockDailyAccrualRepository), mockMovementRepo, mockPublisher)

	svc := NewAccountService(mockFactory)

	openingBalance := decimal.RequireFromString("10000.00")
	annualRate := decimal.RequireFromString("0.02")
	createdAt := time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)
	created := &models.Balance{
		UserID:             42,
		CurrentBalance:     openingBalance,
		AnnualInterestRate: annualRate,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBalanceRepo.On("GetByUserID", ctx, int64(42)).Return(nil, nil)
	mockBalanceRepo.On("Create", ctx, int64(42), openingBalance, annualRate).Return(created, nil)
	mockMovementRepo.On("Insert", ctx, mock.MatchedBy(func(m *models.Movement) bool {
		return m.UserID == 42 &&
			m.MovementType == models.MovementTypeOpeningBalance &&
			m.Amount.Equal(openingBalance) &&
			m.PeriodStart.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	})).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return()

	balance, err := svc.CreateAccount(ctx, 42, openingBalance, annualRate)

	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.UserID)
	assert.True(t, balance.CurrentBalance.Equal(openingBalance))

	mockUoW.AssertExpectations(t)
	mockBalanceRepo.AssertExpectations(t)
	mockMovementRepo.AssertExpectations(t)
}

func TestAccountService_CreateAccount_AlreadyExists(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBalanceRepo := new(MockBalanceRepository)
	mockUoW.SetRepositories(mockBalanceRepo, new(MockDailyAccrualRepository), new(MockMovementRepository), nil)

	svc := NewAccountService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBalanceRepo.On("GetByUserID", ctx, int64(42)).Return(testBalance(42), nil)

	balance, err := svc.CreateAccount(ctx, 42,
		decimal.RequireFromString("100.00"), decimal.RequireFromString("0.02"))

	assert.ErrorIs(t, err, ErrAccountExists)
	assert.Nil(t, balance)
	mockBalanceRepo.AssertNotCalled(t, "Create")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestAccountService_CreateAccount_InvalidInput(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewAccountService(mockFactory)

	tests := []struct {
		name           string
		openingBalance decimal.Decimal
		annualRate     decimal.Decimal
	}{
		{
			name:           "negative opening balance",
			openingBalance: decimal.RequireFromString("-0.01"),
			annualRate:     decimal.RequireFromString("0.02"),
		},
		{
			name:           "negative annual rate",
			openingBalance: decimal.RequireFromString("100.00"),
			annualRate:     decimal.RequireFromString("-0.02"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, err := svc.CreateAccount(context.Background(), 42, tt.openingBalance, tt.annualRate)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, balance)
		})
	}

	// Validation fails before any transaction is opened
	mockFactory.AssertNotCalled(t, "Create")
}
