package application

// QueueStats is the observable queue surface the CLI renders.
type QueueStats struct {
	State    QueueState
	Pending  int
	Counters Counters
}
