package chain

import (
	"context"
	"errors"
	"log/slog"

	"github.com/localpad/localpad/internal/ports"
)

// Source tries the primary feed and falls back on any failure, so an
// external outage never leaves the caller without data. Context
// cancellation is the one exception: the user asked to stop, not for
// different data.
type Source struct {
	primary  ports.FeedSource
	fallback ports.FeedSource
	logger   *slog.Logger
}

var _ ports.FeedSource = (*Source)(nil)

var (
	errNilPrimarySource  = errors.New("primary feed source is nil")
	errNilFallbackSource = errors.New("fallback feed source is nil")
)

func NewSource(primary, fallback ports.FeedSource, logger *slog.Logger) (*Source, error) {
	if primary == nil {
		return nil, errNilPrimarySource
	}
	if fallback == nil {
		return nil, errNilFallbackSource
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Source{primary: primary, fallback: fallback, logger: logger}, nil
}

func (s *Source) Fetch(ctx context.Context) (ports.FeedEntry, error) {
	entry, err := s.primary.Fetch(ctx)
	if err == nil {
		return entry, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ports.FeedEntry{}, err
	}

	s.logger.Warn("primary feed failed, using fallback", "error", err)
	return s.fallback.Fetch(ctx)
}
