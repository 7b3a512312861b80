package mockfeed

import (
	"context"
	"sync"

	"github.com/localpad/localpad/internal/ports"
)

// Source serves locally generated entries, rotating through a fixed list.
// It never fails, which is the whole point: chained behind a remote
// source, it guarantees the UI always has data.
type Source struct {
	mu      sync.Mutex
	entries []ports.FeedEntry
	next    int
}

var _ ports.FeedSource = (*Source)(nil)

func NewSource(entries ...ports.FeedEntry) *Source {
	if len(entries) == 0 {
		entries = defaultEntries()
	}
	return &Source{entries: entries}
}

func (s *Source) Fetch(ctx context.Context) (ports.FeedEntry, error) {
	if err := ctx.Err(); err != nil {
		return ports.FeedEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entries[s.next%len(s.entries)]
	s.next++
	return entry, nil
}

func defaultEntries() []ports.FeedEntry {
	return []ports.FeedEntry{
		{Text: "Cats sleep for around 13 to 16 hours a day.", Source: "local"},
		{Text: "A group of cats is called a clowder.", Source: "local"},
		{Text: "Honey never spoils; sealed jars millennia old are still edible.", Source: "local"},
		{Text: "Octopuses have three hearts.", Source: "local"},
		{Text: "Bananas are berries, but strawberries are not.", Source: "local"},
	}
}
