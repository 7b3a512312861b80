package domain

import "time"

// DeliveryStatus tracks a queued message through its one-way lifecycle:
// pending until delivered (sent) or dropped (discarded). Sent is terminal
// and never revisited.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDiscarded DeliveryStatus = "discarded"
)

// QueueItem wraps one message record with its delivery bookkeeping.
type QueueItem struct {
	Record     Record
	Status     DeliveryStatus
	Retries    int
	EnqueuedAt time.Time
}
