package ports

import "context"

// KVStore is the persistence boundary: a flat namespace of UTF-8 JSON
// values keyed per pad. Get returns an error wrapping
// domain.ErrKeyNotFound when the key is absent; Delete of an absent key is
// a no-op. No multi-key transaction is assumed.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
