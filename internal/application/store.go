package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/localpad/localpad/internal/domain"
	"github.com/localpad/localpad/internal/ports"
)

const snapshotSchemaVersion = 1

type snapshotSchema struct {
	SchemaVersion int            `json:"schemaVersion"`
	Records       []recordSchema `json:"records"`
}

type recordSchema struct {
	ID        string        `json:"id"`
	Fields    domain.Fields `json:"fields"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Store owns the authoritative collection for one pad and is its only
// writer. Every successful mutation is persisted before it returns, so the
// stored snapshot always equals All(). If the persist fails, the in-memory
// mutation is rolled back and the error wraps domain.ErrPersistence.
type Store struct {
	mu      sync.RWMutex
	key     string
	records domain.Collection
	kv      ports.KVStore
	clock   ports.Clock
	ids     *domain.IDSource
	logger  *slog.Logger
}

func NewStore(key string, kv ports.KVStore, clock ports.Clock, logger *slog.Logger) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		key:    key,
		kv:     kv,
		clock:  clock,
		ids:    domain.NewIDSource(),
		logger: logger,
	}
}

// Load replaces the in-memory collection with the persisted snapshot. A
// missing key, a corrupt payload, or an unknown schema version all yield an
// empty collection: corruption is logged, never propagated.
func (s *Store) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			s.records = domain.Collection{}
			return nil
		}
		return fmt.Errorf("load collection %q: %w", s.key, err)
	}

	var snapshot snapshotSchema
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		s.logger.Warn("discarding corrupt collection snapshot", "key", s.key, "error", err)
		s.records = domain.Collection{}
		return nil
	}
	if snapshot.SchemaVersion > snapshotSchemaVersion {
		s.logger.Warn("discarding collection snapshot with unsupported schema version",
			"key", s.key, "version", snapshot.SchemaVersion, "current", snapshotSchemaVersion)
		s.records = domain.Collection{}
		return nil
	}

	records := make(domain.Collection, 0, len(snapshot.Records))
	for _, entry := range snapshot.Records {
		records = append(records, domain.Record{
			ID:        domain.RecordID(entry.ID),
			Fields:    entry.Fields,
			CreatedAt: entry.CreatedAt,
			UpdatedAt: entry.UpdatedAt,
		})
	}
	s.records = records
	return nil
}

// Add assigns a fresh ID and timestamps, prepends the record, and persists.
func (s *Store) Add(ctx context.Context, fields domain.Fields) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	rec := domain.Record{
		ID:        s.ids.Next(now),
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}.Clone()

	previous := s.records
	s.records = append(domain.Collection{rec}, s.records...)

	if err := s.persist(ctx); err != nil {
		s.records = previous
		return domain.Record{}, err
	}

	return rec.Clone(), nil
}

// Update merges fields into the record with the given ID and persists.
// Unlike Remove, updating an absent ID is an error, never a silent no-op.
func (s *Store) Update(ctx context.Context, id domain.RecordID, fields domain.Fields) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.records.IndexOf(id)
	if i < 0 {
		return domain.Record{}, fmt.Errorf("update %q: %w", id, domain.ErrNotFound)
	}

	previous := s.records[i]
	updated := previous.Merge(fields)
	updated.UpdatedAt = s.clock.Now()
	s.records[i] = updated

	if err := s.persist(ctx); err != nil {
		s.records[i] = previous
		return domain.Record{}, err
	}

	return updated.Clone(), nil
}

// Remove deletes the record if present. Removing an absent ID is a no-op.
func (s *Store) Remove(ctx context.Context, id domain.RecordID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.records.IndexOf(id)
	if i < 0 {
		return nil
	}

	previous := s.records
	s.records = append(s.records[:i:i], s.records[i+1:]...)

	if err := s.persist(ctx); err != nil {
		s.records = previous
		return err
	}

	return nil
}

// All returns a copy of the collection in insertion order, newest first.
func (s *Store) All() domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.Clone()
}

// Get returns one record by ID.
func (s *Store) Get(id domain.RecordID) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.records.IndexOf(id)
	if i < 0 {
		return domain.Record{}, fmt.Errorf("get %q: %w", id, domain.ErrNotFound)
	}
	return s.records[i].Clone(), nil
}

// Project runs the given spec over the current collection.
func (s *Store) Project(spec domain.Spec, page, pageSize int) domain.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Project(s.records.Clone(), spec, page, pageSize)
}

func (s *Store) persist(ctx context.Context) error {
	snapshot := snapshotSchema{SchemaVersion: snapshotSchemaVersion}
	snapshot.Records = make([]recordSchema, 0, len(s.records))
	for _, rec := range s.records {
		snapshot.Records = append(snapshot.Records, recordSchema{
			ID:        string(rec.ID),
			Fields:    rec.Fields,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: encode collection %q: %w", domain.ErrPersistence, s.key, err)
	}

	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("%w: write collection %q: %w", domain.ErrPersistence, s.key, err)
	}

	return nil
}
