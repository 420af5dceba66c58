package port

import "context"

// KeyValueStore is the durable key-value sink behind settings and
// notification persistence. Get returns domain.ErrKeyNotFound for missing keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
