// Package storage provides the synchronous key-value stores the workout
// collection is persisted to.
package storage

import (
	"context"
	"errors"
)

var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is a string key-value store. Writes are synchronous: once Set returns
// nil the value is durable as far as the backend guarantees.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
