package ports

import (
	"context"

	"github.com/localpad/localpad/internal/domain"
)

// Deliverer performs the actual delivery of one queued item. The queue
// bounds each call with its configured timeout; an error (including the
// deadline) counts as a failed attempt against the item's retry budget.
type Deliverer interface {
	Deliver(ctx context.Context, item domain.QueueItem) error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, item domain.QueueItem) error

func (f DelivererFunc) Deliver(ctx context.Context, item domain.QueueItem) error {
	return f(ctx, item)
}
