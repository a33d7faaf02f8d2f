package task

import (
	"context"
	"errors"
)

// DefaultStorageKey names the slot holding the serialized list. The suffix
// is the format version.
const DefaultStorageKey = "todo-app-items-v2"

var ErrStorageClosed = errors.New("storage closed")

// Storage is a string key/value slot store, the local-storage analogue the
// task list is persisted into.
type Storage interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Pinger is implemented by storages that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
