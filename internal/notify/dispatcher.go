package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/room-booking/internal/booking"
)

type eventKind int

const (
	eventCreated eventKind = iota
	eventCancelled
)

type event struct {
	kind          eventKind
	reservation   booking.Reservation
	reservationID string
}

// Dispatcher fans booking events out to registered observers from a pool of
// worker goroutines. Publishing never blocks the caller: when the queue is
// full the event is dropped and logged, which keeps the booking critical
// section decoupled from slow observers.
type Dispatcher struct {
	mu        sync.RWMutex
	observers []Observer

	events  chan event
	workers int
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher constructs a dispatcher with the given worker count and queue
// size. Non-positive values fall back to sensible defaults.
func NewDispatcher(workers, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		events:  make(chan event, queueSize),
		workers: workers,
		timeout: 5 * time.Second,
		logger:  logger.With("component", "notify"),
	}
}

// Register adds an observer. Safe to call before or after Start.
func (d *Dispatcher) Register(observer Observer) {
	if d == nil || observer == nil {
		return
	}
	d.mu.Lock()
	d.observers = append(d.observers, observer)
	d.mu.Unlock()
}

// Start launches the worker goroutines. They drain the queue until the
// context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Wait blocks until all workers have exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// ReservationCreated queues a creation event for delivery.
func (d *Dispatcher) ReservationCreated(res booking.Reservation) {
	d.publish(event{kind: eventCreated, reservation: res})
}

// ReservationCancelled queues a cancellation event for delivery.
func (d *Dispatcher) ReservationCancelled(reservationID string) {
	d.publish(event{kind: eventCancelled, reservationID: reservationID})
}

func (d *Dispatcher) publish(ev event) {
	if d == nil {
		return
	}
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("notification queue full, dropping event", "kind", ev.kind)
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	logger := d.logger.With("worker", id)
	for {
		select {
		case ev := <-d.events:
			d.deliver(ctx, logger, ev)
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, logger *slog.Logger, ev event) {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, observer := range observers {
		deliveryCtx, cancel := context.WithTimeout(ctx, d.timeout)
		var err error
		switch ev.kind {
		case eventCreated:
			err = observer.OnReservationCreated(deliveryCtx, ev.reservation)
		case eventCancelled:
			err = observer.OnReservationCancelled(deliveryCtx, ev.reservationID)
		}
		cancel()
		if err != nil {
			// Observer failures are logged and swallowed, never surfaced.
			logger.ErrorContext(ctx, "observer delivery failed", "error", err, "error_kind", "observer")
		}
	}
}
