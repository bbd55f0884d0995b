package service

import (
	"context"
	"time"

	"cnote/events"
	"cnote/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetByUserID(ctx context.Context, userID int64) (*models.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) Create(ctx context.Context, userID int64, openingBalance, annualRate decimal.Decimal) (*models.Balance, error) {
	args := m.Called(ctx, userID, openingBalance, annualRate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) AddToBalance(ctx context.Context, userID int64, amount decimal.Decimal) (*models.Balance, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockBalanceRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockDailyAccrualRepository is a mock implementation of DailyAccrualRepository
type MockDailyAccrualRepository struct {
	mock.Mock
}

func (m *MockDailyAccrualRepository) GetByUserAndDate(ctx context.Context, userID int64, businessDate time.Time) (*models.DailyAccrual, error) {
	args := m.Called(ctx, userID, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyAccrual), args.Error(1)
}

func (m *MockDailyAccrualRepository) Insert(ctx context.Context, accrual *models.DailyAccrual) error {
	args := m.Called(ctx, accrual)
	return args.Error(0)
}

func (m *MockDailyAccrualRepository) ListUnsettledInRange(ctx context.Context, userID int64, from, to time.Time) ([]*models.DailyAccrual, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DailyAccrual), args.Error(1)
}

func (m *MockDailyAccrualRepository) SumUnsettledSince(ctx context.Context, userID int64, from time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, from)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDailyAccrualRepository) MarkSettled(ctx context.Context, ids []int64, movementID int64) error {
	args := m.Called(ctx, ids, movementID)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Insert(ctx context.Context, movement *models.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Movement, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Movement), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that don't assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository
// getters return whatever SetRepositories installed rather than going
// through testify, so tests only stub Begin/Commit/Rollback.
type MockUnitOfWork struct {
	mock.Mock

	balanceRepo  BalanceRepository
	accrualRepo  DailyAccrualRepository
	movementRepo MovementRepository
	publisher    EventPublisher
}

// SetRepositories installs the repositories returned by the getters.
// A nil publisher falls back to a no-op event publisher.
func (m *MockUnitOfWork) SetRepositories(balanceRepo BalanceRepository, accrualRepo DailyAccrualRepository, movementRepo MovementRepository, publisher EventPublisher) {
	m.balanceRepo = balanceRepo
	m.accrualRepo = accrualRepo
	m.movementRepo = movementRepo
	if publisher == nil {
		publisher = noopPublisher{}
	}
	m.publisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) BalanceRepository() BalanceRepository {
	return m.balanceRepo
}

func (m *MockUnitOfWork) DailyAccrualRepository() DailyAccrualRepository {
	return m.accrualRepo
}

func (m *MockUnitOfWork) MovementRepository() MovementRepository {
	return m.movementRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
