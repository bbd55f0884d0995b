package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInquiryService_GetAccountSummary(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBalanceRepo := new(MockBalanceRepository)
	mockAccrualRepo := new(MockDailyAccrualRepository)
	mockUoW.SetRepositories(mockBalanceRepo, mockAccrualRepo, new(MockMovementRepository), nil)

	svc := NewInquiryService(mockFactory).(*inquiryService)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 18, 14, 30, 0, 0, time.UTC)
	}

	balance := testBalance(42)
	pending := decimal.RequireFromString("9.35")

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBalanceRepo.On("GetByUserID", ctx, int64(42)).Return(balance, nil)
	mockAccrualRepo.On("SumUnsettledSince", ctx, int64(42),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).Return(pending, nil)

	summary, err := svc.GetAccountSummary(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(42), summary.UserID)
	assert.True(t, summary.CurrentBalance.Equal(balance.CurrentBalance))
	assert.True(t, summary.InterestAccrued.Equal(pending))
	assert.Equal(t, balance.UpdatedAt, summary.BalanceLastUpdated)

	// Inquiry is read-only
	mockUoW.AssertNotCalled(t, "Commit")
	mockBalanceRepo.AssertExpectations(t)
	mockAccrualRepo.AssertExpectations(t)
}

func TestInquiryService_GetAccountSummary_NoPendingInterest(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBalanceRepo := new(MockBalanceRepository)
	mockAccrualRepo := new(MockDailyAccrualRepository)
	mockUoW.SetRepositories(mockBalanceRepo, mockAccrualRepo, new(MockMovementRepository), nil)

	svc := NewInquiryService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBalanceRepo.On("GetByUserID", ctx, int64(42)).Return(testBalance(42), nil)
	mockAccrualRepo.On("SumUnsettledSince", ctx, int64(42), mock.Anything).
		Return(decimal.Zero, nil)

	summary, err := svc.GetAccountSummary(ctx, 42)

	require.NoError(t, err)
	assert.True(t, summary.InterestAccrued.IsZero())
}

func TestInquiryService_GetAccountSummary_UserNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBalanceRepo := new(MockBalanceRepository)
	mockUoW.SetRepositories(mockBalanceRepo, new(MockDailyAccrualRepository), new(MockMovementRepository), nil)

	svc := NewInquiryService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBalanceRepo.On("GetByUserID", ctx, int64(99)).Return(nil, nil)

	summary, err := svc.GetAccountSummary(ctx, 99)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, summary)
}
