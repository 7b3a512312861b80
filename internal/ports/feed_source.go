package ports

import "context"

// FeedEntry is one piece of remote (or locally generated) display data.
type FeedEntry struct {
	Text   string
	Source string
}

// FeedSource supplies best-effort external data. Implementations must not
// be relied on for availability; callers chain a local fallback so an
// outage never leaves the UI without data.
type FeedSource interface {
	Fetch(ctx context.Context) (FeedEntry, error)
}
