package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeFrequencyAnalysisCompleted EventType = "frequency_analysis_completed"
	EventTypeSimulationCompleted        EventType = "simulation_completed"
	EventTypeAnalysisRunSaved           EventType = "analysis_run_saved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// FrequencyAnalysisCompletedEvent is emitted once the uniformity test has a result
type FrequencyAnalysisCompletedEvent struct {
	RunID        uuid.UUID
	TotalRecords int64
	ChiSquared   float64
	PValue       float64
}

func (e FrequencyAnalysisCompletedEvent) Type() EventType {
	return EventTypeFrequencyAnalysisCompleted
}

// SimulationCompletedEvent is emitted once every pick-count stream has merged
type SimulationCompletedEvent struct {
	RunID         uuid.UUID
	TrialsPerPick int64
	Totals        map[int]int64
}

func (e SimulationCompletedEvent) Type() EventType {
	return EventTypeSimulationCompleted
}

// AnalysisRunSavedEvent is emitted after a run has been committed to the database
type AnalysisRunSavedEvent struct {
	RunID    uuid.UUID
	DataRoot string
}

func (e AnalysisRunSavedEvent) Type() EventType {
	return EventTypeAnalysisRunSaved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inflight sync.WaitGroup
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

// Publish emits an event immediately, outside of any transaction
func (b *Bus) Publish(event Event) {
	b.Emit(context.Background(), event)
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so slow subscribers never hold up an engine
	b.inflight.Add(len(handlers))
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer b.inflight.Done()
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

// Wait blocks until every handler started by Emit has returned
func (b *Bus) Wait() {
	b.inflight.Wait()
}

// TransactionalBus holds events raised inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Handlers outlive the transaction, so they get a fresh context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns how many events are waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
