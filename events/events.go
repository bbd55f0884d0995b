package events

import (
	"context"
	"sync"

	"cnote/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccrualRecorded  EventType = "accrual_recorded"
	EventTypeSettlementPosted EventType = "settlement_posted"
	EventTypeBalanceChange    EventType = "balance_change"
	EventTypeAccountCreated   EventType = "account_created"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccrualRecordedEvent represents one day's interest accrual being recorded
type AccrualRecordedEvent struct {
	UserID        int64
	BusinessDate  string // YYYY-MM-DD
	AccrualAmount string
}

func (e AccrualRecordedEvent) Type() EventType {
	return EventTypeAccrualRecorded
}

// SettlementPostedEvent represents a month of accrued interest being
// finalized into the official balance
type SettlementPostedEvent struct {
	UserID        int64
	MovementID    int64
	Month         string // YYYY-MM
	TotalInterest string
	DaysSettled   int
}

func (e SettlementPostedEvent) Type() EventType {
	return EventTypeSettlementPosted
}

// BalanceChangeEvent represents a change to an official balance
type BalanceChangeEvent struct {
	UserID       int64
	OldBalance   string
	NewBalance   string
	MovementType models.MovementType
	ChangeAmount string
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a newly provisioned account
type AccountCreatedEvent struct {
	UserID         int64
	OpeningBalance string
	AnnualRate     string
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the caller
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the DB commit succeeds.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events are processed independently of the transaction lifecycle,
	// so emission uses a fresh context rather than the (possibly
	// already cancelled) transaction context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
