package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/localpad/localpad/internal/domain"
	"github.com/localpad/localpad/internal/ports"
)

const queueSchemaVersion = 1

type QueueState string

const (
	QueueIdle       QueueState = "idle"
	QueueProcessing QueueState = "processing"
	QueuePaused     QueueState = "paused"
)

// Counters are monotonically increasing and satisfy, at all times,
// Enqueued == Processed + Dropped + currently pending or in flight.
type Counters struct {
	Enqueued  uint64 `json:"enqueued"`
	Processed uint64 `json:"processed"`
	Dropped   uint64 `json:"dropped"`
}

// Receipt is emitted to subscribers for every successfully delivered item.
type Receipt struct {
	ID          string
	Item        domain.QueueItem
	DeliveredAt time.Time
}

type QueueConfig struct {
	// Delay is the simulated delivery latency awaited before each item.
	Delay time.Duration
	// Timeout bounds one delivery attempt; zero means unbounded.
	Timeout time.Duration
	// MaxRetries is how many failed attempts an item survives before it is
	// discarded.
	MaxRetries int
	// AutoProcess makes Enqueue and Resume schedule processing themselves.
	AutoProcess bool
	// StateKey, when set, persists the paused flag and counters through the
	// key-value store so separate CLI invocations compose.
	StateKey string
}

type queueStateSchema struct {
	SchemaVersion int      `json:"schemaVersion"`
	Paused        bool     `json:"paused"`
	Counters      Counters `json:"counters"`
}

// Queue decouples message submission from delivery. Items are processed in
// strict FIFO order with at most one delivery in flight; the in-flight flag
// is only touched under the mutex, which preserves that invariant under
// real concurrency. The pre-delivery delay is a cancelable timed wait, not
// a blocking sleep: a Pause or context cancellation during the wait returns
// the item to the head of the queue still pending.
type Queue struct {
	mu       sync.Mutex
	cfg      QueueConfig
	items    []domain.QueueItem
	paused   bool
	inflight bool
	counters Counters

	deliver ports.Deliverer
	clock   ports.Clock
	kv      ports.KVStore
	logger  *slog.Logger
	subs    []func(Receipt)
}

func NewQueue(deliver ports.Deliverer, cfg QueueConfig, kv ports.KVStore, clock ports.Clock, logger *slog.Logger) *Queue {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Queue{
		cfg:     cfg,
		deliver: deliver,
		clock:   clock,
		kv:      kv,
		logger:  logger,
	}
}

// Subscribe registers a callback invoked after every successful delivery.
// Callbacks run outside the queue lock, in delivery order.
func (q *Queue) Subscribe(fn func(Receipt)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subs = append(q.subs, fn)
}

// Enqueue appends a message to the tail. With AutoProcess on and the queue
// idle and not paused, a drain is scheduled immediately.
func (q *Queue) Enqueue(ctx context.Context, rec domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	q.items = append(q.items, domain.QueueItem{
		Record:     rec,
		Status:     domain.DeliveryPending,
		EnqueuedAt: q.clock.Now(),
	})
	q.counters.Enqueued++
	trigger := q.cfg.AutoProcess && !q.paused && !q.inflight
	q.mu.Unlock()

	if err := q.persistState(ctx); err != nil {
		return err
	}

	if trigger {
		go func() {
			if err := q.ProcessAll(context.Background()); err != nil {
				q.logger.Warn("auto-process drain stopped", "error", err)
			}
		}()
	}

	return nil
}

// Restore re-seats items left pending by an earlier run without touching
// the enqueue counter, so counter conservation holds across restarts.
func (q *Queue) Restore(recs []domain.Record) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, rec := range recs {
		q.items = append(q.items, domain.QueueItem{
			Record:     rec,
			Status:     domain.DeliveryPending,
			EnqueuedAt: q.clock.Now(),
		})
	}
}

// ProcessOne delivers the head item. It reports whether an attempt was
// made: an empty, paused, or already-busy queue is a no-op. A failed
// attempt returns an error wrapping domain.ErrDelivery; the item goes back
// to the head with its retry count bumped, or is discarded once the retry
// budget is spent.
func (q *Queue) ProcessOne(ctx context.Context) (bool, error) {
	q.mu.Lock()
	if q.paused || q.inflight || len(q.items) == 0 {
		q.mu.Unlock()
		return false, nil
	}
	item := q.items[0]
	q.items = q.items[1:]
	q.inflight = true
	q.mu.Unlock()

	if q.cfg.Delay > 0 {
		timer := time.NewTimer(q.cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			q.requeueHead(item)
			return false, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		q.requeueHead(item)
		return false, err
	}

	// A pause issued during the wait must keep the item from reaching
	// sent. The delay itself is not preempted; the transition is.
	q.mu.Lock()
	if q.paused {
		q.items = append([]domain.QueueItem{item}, q.items...)
		q.inflight = false
		q.mu.Unlock()
		return false, nil
	}
	q.mu.Unlock()

	dctx := ctx
	if q.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, q.cfg.Timeout)
		defer cancel()
	}

	if err := q.deliver.Deliver(dctx, item); err != nil {
		return true, q.failAttempt(ctx, item, err)
	}

	item.Status = domain.DeliverySent
	receipt := Receipt{
		ID:          uuid.NewString(),
		Item:        item,
		DeliveredAt: q.clock.Now(),
	}

	q.mu.Lock()
	q.counters.Processed++
	q.inflight = false
	subs := append([]func(Receipt){}, q.subs...)
	q.mu.Unlock()

	if err := q.persistState(ctx); err != nil {
		q.logger.Warn("persist queue state", "error", err)
	}

	for _, fn := range subs {
		fn(receipt)
	}

	return true, nil
}

// ProcessAll drains sequentially, awaiting the full delay before each
// dequeue, until the queue is empty or a pause lands mid-drain. Delivery
// failures are logged and the drain continues; the retry budget guarantees
// it still terminates.
func (q *Queue) ProcessAll(ctx context.Context) error {
	for {
		attempted, err := q.ProcessOne(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrDelivery) {
				q.logger.Warn("delivery attempt failed", "error", err)
				continue
			}
			return err
		}
		if !attempted {
			return nil
		}
	}
}

// Pause stops new processing from starting. An in-flight delay keeps
// running, but its item will not transition to sent while paused.
func (q *Queue) Pause(ctx context.Context) {
	q.mu.Lock()
	q.paused = true
	q.mu.Unlock()

	if err := q.persistState(ctx); err != nil {
		q.logger.Warn("persist queue state", "error", err)
	}
}

// Resume clears the paused flag. With AutoProcess on and items pending, a
// drain is scheduled.
func (q *Queue) Resume(ctx context.Context) {
	q.mu.Lock()
	q.paused = false
	trigger := q.cfg.AutoProcess && len(q.items) > 0
	q.mu.Unlock()

	if err := q.persistState(ctx); err != nil {
		q.logger.Warn("persist queue state", "error", err)
	}

	if trigger {
		go func() {
			if err := q.ProcessAll(context.Background()); err != nil {
				q.logger.Warn("resume drain stopped", "error", err)
			}
		}()
	}
}

// Clear discards pending items: all of them, or those matching the
// predicate. An item already mid-processing is unaffected. The dropped
// items are returned with their status set to discarded.
func (q *Queue) Clear(ctx context.Context, all bool, match func(domain.QueueItem) bool) []domain.QueueItem {
	q.mu.Lock()
	kept := q.items[:0:0]
	var dropped []domain.QueueItem
	for _, item := range q.items {
		if all || (match != nil && match(item)) {
			item.Status = domain.DeliveryDiscarded
			dropped = append(dropped, item)
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
	q.counters.Dropped += uint64(len(dropped))
	q.mu.Unlock()

	if err := q.persistState(ctx); err != nil {
		q.logger.Warn("persist queue state", "error", err)
	}

	return dropped
}

func (q *Queue) State() QueueState {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch {
	case q.inflight:
		return QueueProcessing
	case q.paused:
		return QueuePaused
	default:
		return QueueIdle
	}
}

func (q *Queue) Counters() Counters {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counters
}

func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if q.inflight {
		n++
	}
	return n
}

// Pending returns a copy of the items waiting in FIFO order.
func (q *Queue) Pending() []domain.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.QueueItem{}, q.items...)
}

// LoadState restores the paused flag and counters persisted under
// StateKey. A missing or corrupt payload leaves the queue at its zero
// state.
func (q *Queue) LoadState(ctx context.Context) error {
	if q.kv == nil || q.cfg.StateKey == "" {
		return nil
	}

	raw, err := q.kv.Get(ctx, q.cfg.StateKey)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("load queue state: %w", err)
	}

	var state queueStateSchema
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		q.logger.Warn("discarding corrupt queue state", "key", q.cfg.StateKey, "error", err)
		return nil
	}
	if state.SchemaVersion > queueSchemaVersion {
		q.logger.Warn("discarding queue state with unsupported schema version",
			"key", q.cfg.StateKey, "version", state.SchemaVersion)
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.paused = state.Paused
	q.counters = state.Counters
	return nil
}

func (q *Queue) requeueHead(item domain.QueueItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]domain.QueueItem{item}, q.items...)
	q.inflight = false
}

func (q *Queue) failAttempt(ctx context.Context, item domain.QueueItem, cause error) error {
	item.Retries++

	q.mu.Lock()
	if item.Retries > q.cfg.MaxRetries {
		item.Status = domain.DeliveryDiscarded
		q.counters.Dropped++
	} else {
		item.Status = domain.DeliveryPending
		q.items = append([]domain.QueueItem{item}, q.items...)
	}
	q.inflight = false
	q.mu.Unlock()

	if err := q.persistState(ctx); err != nil {
		q.logger.Warn("persist queue state", "error", err)
	}

	return fmt.Errorf("%w: attempt %d for %q: %w", domain.ErrDelivery, item.Retries, item.Record.ID, cause)
}

func (q *Queue) persistState(ctx context.Context) error {
	if q.kv == nil || q.cfg.StateKey == "" {
		return nil
	}

	q.mu.Lock()
	state := queueStateSchema{
		SchemaVersion: queueSchemaVersion,
		Paused:        q.paused,
		Counters:      q.counters,
	}
	q.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encode queue state: %w", domain.ErrPersistence, err)
	}
	if err := q.kv.Set(ctx, q.cfg.StateKey, string(data)); err != nil {
		return fmt.Errorf("%w: write queue state: %w", domain.ErrPersistence, err)
	}
	return nil
}
