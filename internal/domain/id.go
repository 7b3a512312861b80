package domain

import (
	"fmt"
	"sync"
	"time"
)

// IDSource mints record IDs that sort lexicographically in issue order. An
// ID is the creation time in unix milliseconds plus a sequence number that
// disambiguates IDs minted within the same millisecond. A clock that jumps
// backwards is clamped to the last issued millisecond so ordering is never
// violated.
type IDSource struct {
	mu       sync.Mutex
	lastUnix int64
	seq      uint16
}

func NewIDSource() *IDSource {
	return &IDSource{}
}

func (s *IDSource) Next(now time.Time) RecordID {
	s.mu.Lock()
	defer s.mu.Unlock()

	unix := now.UnixMilli()
	if unix > s.lastUnix {
		s.lastUnix = unix
		s.seq = 0
	} else {
		s.seq++
	}

	return RecordID(fmt.Sprintf("%013x-%04x", s.lastUnix, s.seq))
}
