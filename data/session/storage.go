package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("error not found")

// Storage is the durable home of the session record. Writes are whole-value
// replacements, there is no partial-field mutation.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
