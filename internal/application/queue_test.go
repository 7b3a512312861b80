package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localpad/localpad/internal/adapters/kv/memory"
	"github.com/localpad/localpad/internal/domain"
	"github.com/localpad/localpad/internal/ports"
)

type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []domain.RecordID
	failFor   map[domain.RecordID]int
}

func newRecordingDeliverer() *recordingDeliverer {
	return &recordingDeliverer{failFor: map[domain.RecordID]int{}}
}

func (d *recordingDeliverer) Deliver(_ context.Context, item domain.QueueItem) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if remaining := d.failFor[item.Record.ID]; remaining > 0 {
		d.failFor[item.Record.ID] = remaining - 1
		return errors.New("simulated delivery failure")
	}

	d.delivered = append(d.delivered, item.Record.ID)
	return nil
}

func (d *recordingDeliverer) order() []domain.RecordID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.RecordID{}, d.delivered...)
}

func enqueueRecords(t *testing.T, q *Queue, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, q.Enqueue(context.Background(), domain.Record{ID: domain.RecordID(id)}))
	}
}

func TestQueueProcessAllDeliversInFIFOOrder(t *testing.T) {
	deliverer := newRecordingDeliverer()
	q := NewQueue(deliverer, QueueConfig{Delay: time.Millisecond}, nil, nil, discardLogger())

	enqueueRecords(t, q, "a", "b", "c")
	require.NoError(t, q.ProcessAll(context.Background()))

	assert.Equal(t, []domain.RecordID{"a", "b", "c"}, deliverer.order())
	assert.Equal(t, QueueIdle, q.State())
	assert.Equal(t, Counters{Enqueued: 3, Processed: 3}, q.Counters())
}

func TestQueueProcessOneOnEmptyQueueIsANoOp(t *testing.T) {
	q := NewQueue(newRecordingDeliverer(), QueueConfig{}, nil, nil, discardLogger())

	attempted, err := q.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.False(t, attempted)
}

func TestQueuePausePreventsProcessing(t *testing.T) {
	deliverer := newRecordingDeliverer()
	q := NewQueue(deliverer, QueueConfig{}, nil, nil, discardLogger())

	enqueueRecords(t, q, "a")
	q.Pause(context.Background())

	attempted, err := q.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.False(t, attempted)
	assert.Equal(t, QueuePaused, q.State())
	assert.Equal(t, 1, q.PendingCount())
}

func TestQueuePauseMidDrainHoldsTheInFlightItem(t *testing.T) {
	deliverer := newRecordingDeliverer()
	q := NewQueue(deliverer, QueueConfig{Delay: 40 * time.Millisecond}, nil, nil, discardLogger())

	receipts := make(chan Receipt, 3)
	q.Subscribe(func(r Receipt) { receipts <- r })

	enqueueRecords(t, q, "a", "b", "c")

	drainDone := make(chan error, 1)
	go func() { drainDone <- q.ProcessAll(context.Background()) }()

	// Pause while item b's delay is still running.
	first := <-receipts
	require.Equal(t, domain.RecordID("a"), first.Item.Record.ID)
	q.Pause(context.Background())

	require.NoError(t, <-drainDone)
	assert.Equal(t, []domain.RecordID{"a"}, deliverer.order(), "b must not reach sent while paused")
	assert.Equal(t, 2, q.PendingCount())
	assert.Equal(t, QueuePaused, q.State())

	q.Resume(context.Background())
	require.NoError(t, q.ProcessAll(context.Background()))

	assert.Equal(t, []domain.RecordID{"a", "b", "c"}, deliverer.order())
	assert.Equal(t, Counters{Enqueued: 3, Processed: 3}, q.Counters())
}

func TestQueueAutoProcessDeliversAfterTheDelay(t *testing.T) {
	deliverer := newRecordingDeliverer()
	q := NewQueue(deliverer, QueueConfig{Delay: 20 * time.Millisecond, AutoProcess: true}, nil, nil, discardLogger())

	require.NoError(t, q.Enqueue(context.Background(), domain.Record{ID: "a"}))

	assert.Equal(t, uint64(0), q.Counters().Processed, "delivery waits out the delay")

	require.Eventually(t, func() bool {
		return q.Counters().Processed == 1 && q.State() == QueueIdle
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []domain.RecordID{"a"}, deliverer.order())
}

func TestQueueResumeWithAutoProcessRetriggersDrain(t *testing.T) {
	deliverer := newRecordingDeliverer()
	q := NewQueue(deliverer, QueueConfig{Delay: time.Millisecond, AutoProcess: true}, nil, nil, discardLogger())

	q.Pause(context.Background())
	enqueueRecords(t, q, "a", "b")
	assert.Equal(t, 2, q.PendingCount())

	q.Resume(context.Background())

	require.Eventually(t, func() bool {
		return q.Counters().Processed == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []domain.RecordID{"a", "b"}, deliverer.order())
}

func TestQueueRetriesThenDiscardsFailingItem(t *testing.T) {
	deliverer := newRecordingDeliverer()
	deliverer.failFor["bad"] = 10

	q := NewQueue(deliverer, QueueConfig{Delay: time.Millisecond, MaxRetries: 2}, nil, nil, discardLogger())

	enqueueRecords(t, q, "bad", "good")
	require.NoError(t, q.ProcessAll(context.Background()))

	counters := q.Counters()
	assert.Equal(t, uint64(2), counters.Enqueued)
	assert.Equal(t, uint64(1), counters.Processed)
	assert.Equal(t, uint64(1), counters.Dropped)
	assert.Equal(t, []domain.RecordID{"good"}, deliverer.order())
}

func TestQueueRetrySucceedsWithinBudget(t *testing.T) {
	deliverer := newRecordingDeliverer()
	deliverer.failFor["flaky"] = 2

	q := NewQueue(deliverer, QueueConfig{Delay: time.Millisecond, MaxRetries: 3}, nil, nil, discardLogger())

	enqueueRecords(t, q, "flaky")

	_, err := q.ProcessOne(context.Background())
	require.ErrorIs(t, err, domain.ErrDelivery)
	assert.Equal(t, 1, q.PendingCount(), "failed item returns to the head")

	require.NoError(t, q.ProcessAll(context.Background()))
	assert.Equal(t, []domain.RecordID{"flaky"}, deliverer.order())
	assert.Equal(t, uint64(1), q.Counters().Processed)
}

func TestQueueClearDropsMatchingPendingItems(t *testing.T) {
	q := NewQueue(newRecordingDeliverer(), QueueConfig{}, nil, nil, discardLogger())

	require.NoError(t, q.Enqueue(context.Background(), domain.Record{ID: "a", Fields: domain.Fields{"conversation": "work"}}))
	require.NoError(t, q.Enqueue(context.Background(), domain.Record{ID: "b", Fields: domain.Fields{"conversation": "home"}}))
	require.NoError(t, q.Enqueue(context.Background(), domain.Record{ID: "c", Fields: domain.Fields{"conversation": "work"}}))

	dropped := q.Clear(context.Background(), false, func(item domain.QueueItem) bool {
		return item.Record.Fields["conversation"] == "work"
	})

	require.Len(t, dropped, 2)
	for _, item := range dropped {
		assert.Equal(t, domain.DeliveryDiscarded, item.Status)
	}
	assert.Equal(t, 1, q.PendingCount())
	assert.Equal(t, uint64(2), q.Counters().Dropped)
}

func TestQueueClearAll(t *testing.T) {
	q := NewQueue(newRecordingDeliverer(), QueueConfig{}, nil, nil, discardLogger())

	enqueueRecords(t, q, "a", "b")
	dropped := q.Clear(context.Background(), true, nil)

	assert.Len(t, dropped, 2)
	assert.Zero(t, q.PendingCount())
}

func TestQueueCounterConservation(t *testing.T) {
	deliverer := newRecordingDeliverer()
	deliverer.failFor["bad"] = 10

	q := NewQueue(deliverer, QueueConfig{Delay: time.Millisecond, MaxRetries: 1}, nil, nil, discardLogger())

	check := func() {
		t.Helper()
		c := q.Counters()
		assert.Equal(t, c.Enqueued, c.Processed+c.Dropped+uint64(q.PendingCount()))
	}

	enqueueRecords(t, q, "a", "bad", "b")
	check()

	_, err := q.ProcessOne(context.Background())
	require.NoError(t, err)
	check()

	require.NoError(t, q.ProcessAll(context.Background()))
	check()

	q.Clear(context.Background(), true, nil)
	check()
}

func TestQueueStatePersistsAcrossInstances(t *testing.T) {
	kv := memory.NewStore()
	cfg := QueueConfig{Delay: time.Millisecond, StateKey: "pads/chat/queue"}

	deliverer := newRecordingDeliverer()
	q := NewQueue(deliverer, cfg, kv, nil, discardLogger())
	require.NoError(t, q.LoadState(context.Background()))

	enqueueRecords(t, q, "a", "b")
	require.NoError(t, q.ProcessAll(context.Background()))
	q.Pause(context.Background())

	restored := NewQueue(deliverer, cfg, kv, nil, discardLogger())
	require.NoError(t, restored.LoadState(context.Background()))

	assert.Equal(t, QueuePaused, restored.State())
	assert.Equal(t, Counters{Enqueued: 2, Processed: 2}, restored.Counters())
}

func TestQueueProcessOneStopsOnContextCancellation(t *testing.T) {
	deliverer := newRecordingDeliverer()
	q := NewQueue(deliverer, QueueConfig{Delay: time.Minute}, nil, nil, discardLogger())

	enqueueRecords(t, q, "a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := q.ProcessOne(ctx)
		done <- err
	}()

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, q.PendingCount(), "canceled item stays pending")
	assert.Empty(t, deliverer.order())
}

var _ ports.Deliverer = (*recordingDeliverer)(nil)
