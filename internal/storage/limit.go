package storage

import (
	"context"
	"fmt"
)

type limited struct {
	KV
	maxBytes int
}

// Limit caps the size of a single stored value, the way browser storage
// refuses writes past its per-origin quota. maxBytes <= 0 returns kv as is.
func Limit(kv KV, maxBytes int) KV {
	if maxBytes <= 0 {
		return kv
	}
	return &limited{KV: kv, maxBytes: maxBytes}
}

func (l *limited) Set(ctx context.Context, key, value string) error {
	if n := len(key) + len(value); n > l.maxBytes {
		return fmt.Errorf("writing %d bytes to %q: %w (limit %d)", n, key, ErrQuotaExceeded, l.maxBytes)
	}
	return l.KV.Set(ctx, key, value)
}
