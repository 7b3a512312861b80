package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/localpad/localpad/internal/domain"
	"github.com/localpad/localpad/internal/ports"
)

// ChatService wires the chat pad's store to the delivery queue. Sending a
// message stores it as pending and enqueues it; the queue's deliverer marks
// it sent, and cleared messages are marked discarded. Statuses only move
// forward.
type ChatService struct {
	store *Store
	queue *Queue
}

func NewChatService(store *Store, cfg QueueConfig, kv ports.KVStore, clock ports.Clock, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}

	deliver := ports.DelivererFunc(func(ctx context.Context, item domain.QueueItem) error {
		_, err := store.Update(ctx, item.Record.ID, domain.Fields{"status": string(domain.DeliverySent)})
		return err
	})

	return &ChatService{
		store: store,
		queue: NewQueue(deliver, cfg, kv, clock, logger),
	}
}

func (s *ChatService) Store() *Store {
	return s.store
}

func (s *ChatService) Queue() *Queue {
	return s.queue
}

// Send stores the message as pending and appends it to the queue tail.
func (s *ChatService) Send(ctx context.Context, text, conversation string) (domain.Record, error) {
	rec, err := s.store.Add(ctx, domain.Fields{
		"text":         text,
		"conversation": conversation,
		"status":       string(domain.DeliveryPending),
	})
	if err != nil {
		return domain.Record{}, fmt.Errorf("store message: %w", err)
	}

	if err := s.queue.Enqueue(ctx, rec); err != nil {
		return domain.Record{}, fmt.Errorf("enqueue message: %w", err)
	}

	return rec, nil
}

// Restore loads persisted queue state and re-seats messages still pending
// from earlier runs, preserving their original order.
func (s *ChatService) Restore(ctx context.Context) error {
	if err := s.queue.LoadState(ctx); err != nil {
		return err
	}

	all := s.store.All()
	pending := make([]domain.Record, 0)
	// Collection order is newest first; the queue wants oldest first.
	for i := len(all) - 1; i >= 0; i-- {
		if status, _ := all[i].Fields["status"].(string); status == string(domain.DeliveryPending) {
			pending = append(pending, all[i])
		}
	}

	s.queue.Restore(pending)
	return nil
}

// Clear drops pending messages, either all of them or those belonging to
// one conversation, and marks the corresponding records discarded.
func (s *ChatService) Clear(ctx context.Context, all bool, conversation string) (int, error) {
	dropped := s.queue.Clear(ctx, all, func(item domain.QueueItem) bool {
		conv, _ := item.Record.Fields["conversation"].(string)
		return conv == conversation
	})

	for _, item := range dropped {
		if _, err := s.store.Update(ctx, item.Record.ID, domain.Fields{"status": string(domain.DeliveryDiscarded)}); err != nil {
			return len(dropped), fmt.Errorf("mark message discarded: %w", err)
		}
	}

	return len(dropped), nil
}

// Stats snapshots the queue's observable state.
func (s *ChatService) Stats() QueueStats {
	return QueueStats{
		State:    s.queue.State(),
		Pending:  s.queue.PendingCount(),
		Counters: s.queue.Counters(),
	}
}
