package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cnote/models"
	"cnote/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) CreateAccount(ctx context.Context, userID int64, openingBalance, annualRate decimal.Decimal) (*models.Balance, error) {
	args := m.Called(ctx, userID, openingBalance, annualRate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

type mockAccrualService struct {
	mock.Mock
}

func (m *mockAccrualService) RunDailyAccrual(ctx context.Context, userID int64, businessDate time.Time) (*models.DailyAccrual, error) {
	args := m.Called(ctx, userID, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyAccrual), args.Error(1)
}

type mockSettlementService struct {
	mock.Mock
}

func (m *mockSettlementService) RunMonthlySettlement(ctx context.Context, userID int64, month time.Time) (*models.Movement, error) {
	args := m.Called(ctx, userID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Movement), args.Error(1)
}

func (m *mockSettlementService) RunMonthlySettlementBatch(ctx context.Context, month time.Time) (*models.SettlementBatchResult, error) {
	args := m.Called(ctx, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementBatchResult), args.Error(1)
}

type mockInquiryService struct {
	mock.Mock
}

func (m *mockInquiryService) GetAccountSummary(ctx context.Context, userID int64) (*models.AccountSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountSummary), args.Error(1)
}

type handlerMocks struct {
	accounts    *mockAccountService
	accruals    *mockAccrualService
	settlements *mockSettlementService
	inquiries   *mockInquiryService
}

func newTestRouter() (http.Handler, *handlerMocks) {
	m := &handlerMocks{
		accounts:    new(mockAccountService),
		accruals:    new(mockAccrualService),
		settlements: new(mockSettlementService),
		inquiries:   new(mockInquiryService),
	}
	h := NewHandler(m.accounts, m.accruals, m.settlements, m.inquiries)
	return NewRouter(h), m
}

func TestGetAccountSummaryHandler(t *testing.T) {
	t.Run("returns summary with pending interest", func(t *testing.T) {
		router, m := newTestRouter()

		m.inquiries.On("GetAccountSummary", mock.Anything, int64(42)).Return(&models.AccountSummary{
			UserID:             42,
			CurrentBalance:     decimal.RequireFromString("10016.50"),
			BalanceLastUpdated: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			InterestAccrued:    decimal.RequireFromString("2.75"),
		}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/accounts/42/summary", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp accountSummaryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(42), resp.UserID)
		assert.Equal(t, "10016.50", resp.CurrentBalance)
		assert.Equal(t, "2.75", resp.InterestAccrued)
	})

	t.Run("unknown account is 404", func(t *testing.T) {
		router, m := newTestRouter()

		m.inquiries.On("GetAccountSummary", mock.Anything, int64(99)).
			Return(nil, fmt.Errorf("account summary for user 99: %w", service.ErrUserNotFound))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/accounts/99/summary", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric user ID is 400", func(t *testing.T) {
		router, _ := newTestRouter()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/accounts/abc/summary", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateAccountHandler(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		router, m := newTestRouter()

		m.accounts.On("CreateAccount", mock.Anything, int64(42),
			decimal.RequireFromString("10000.00"), decimal.RequireFromString("0.02")).
			Return(&models.Balance{
				UserID:             42,
				CurrentBalance:     decimal.RequireFromString("10000.00"),
				AnnualInterestRate: decimal.RequireFromString("0.02"),
			}, nil)

		body, _ := json.Marshal(createAccountRequest{
			UserID:         42,
			OpeningBalance: "10000.00",
			AnnualRate:     "0.02",
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/accounts", bytes.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("existing account is 409", func(t *testing.T) {
		router, m := newTestRouter()

		m.accounts.On("CreateAccount", mock.Anything, int64(42), mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("create account for user 42: %w", service.ErrAccountExists))

		body, _ := json.Marshal(createAccountRequest{UserID: 42, OpeningBalance: "1.00", AnnualRate: "0.02"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/accounts", bytes.NewReader(body)))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unparseable amount is 422", func(t *testing.T) {
		router, _ := newTestRouter()

		body, _ := json.Marshal(createAccountRequest{UserID: 42, OpeningBalance: "ten", AnnualRate: "0.02"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/accounts", bytes.NewReader(body)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRunDailyAccrualHandler(t *testing.T) {
	t.Run("records accrual", func(t *testing.T) {
		router, m := newTestRouter()

		businessDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		m.accruals.On("RunDailyAccrual", mock.Anything, int64(42), businessDate).
			Return(&models.DailyAccrual{
				UserID:            42,
				BusinessDate:      businessDate,
				InterestRate:      decimal.RequireFromString("0.02"),
				AccrualAmount:     decimal.RequireFromString("0.55"),
				PendingBalanceEOD: decimal.RequireFromString("10000.55"),
			}, nil)

		body, _ := json.Marshal(dailyAccrualRequest{UserID: 42, BusinessDate: "2024-03-15"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/jobs/daily-accrual", bytes.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp dailyAccrualResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "0.55", resp.AccrualAmount)
		assert.Equal(t, "2024-03-15", resp.BusinessDate)
	})

	t.Run("bad date format is 422", func(t *testing.T) {
		router, _ := newTestRouter()

		body, _ := json.Marshal(dailyAccrualRequest{UserID: 42, BusinessDate: "15/03/2024"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/jobs/daily-accrual", bytes.NewReader(body)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRunMonthlySettlementHandler(t *testing.T) {
	month := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("settles one user", func(t *testing.T) {
		router, m := newTestRouter()

		m.settlements.On("RunMonthlySettlement", mock.Anything, int64(42), month).
			Return(&models.Movement{
				ID:           77,
				UserID:       42,
				MovementType: models.MovementTypeMonthlyInterest,
				Amount:       decimal.RequireFromString("16.50"),
				PeriodStart:  month,
				PeriodEnd:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			}, nil)

		userID := int64(42)
		body, _ := json.Marshal(monthlySettlementRequest{UserID: &userID, Month: "2024-03"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/jobs/monthly-settlement", bytes.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp settlementResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Settled)
		assert.Equal(t, int64(77), resp.MovementID)
		assert.Equal(t, "16.50", resp.TotalInterest)
	})

	t.Run("already settled month is a 200 no-op", func(t *testing.T) {
		router, m := newTestRouter()

		m.settlements.On("RunMonthlySettlement", mock.Anything, int64(42), month).
			Return(nil, fmt.Errorf("monthly settlement for user 42 in 2024-03: %w", service.ErrNoAccrualData))

		userID := int64(42)
		body, _ := json.Marshal(monthlySettlementRequest{UserID: &userID, Month: "2024-03"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/jobs/monthly-settlement", bytes.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp settlementResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Settled)
		assert.NotEmpty(t, resp.Reason)
	})

	t.Run("missing user ID settles everyone", func(t *testing.T) {
		router, m := newTestRouter()

		m.settlements.On("RunMonthlySettlementBatch", mock.Anything, month).
			Return(&models.SettlementBatchResult{
				Month:         "2024-03",
				UsersSettled:  2,
				UsersSkipped:  1,
				TotalInterest: decimal.RequireFromString("33.00"),
			}, nil)

		body := []byte(`{"month":"2024-03"}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/jobs/monthly-settlement", bytes.NewReader(body)))

		assert.Equal(t, http.StatusOK, rec.Code)
		m.settlements.AssertCalled(t, "RunMonthlySettlementBatch", mock.Anything, month)
	})
}
