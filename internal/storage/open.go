package storage

import (
	"fmt"
	"io"
	"log/slog"
)

// Backend is a KV that holds resources until closed.
type Backend interface {
	KV
	io.Closer
}

// Open opens the backend named by kind ("sqlite", "badger" or "memory").
// path is a database file for sqlite and a directory for badger; badger
// with an empty path keeps everything in memory.
func Open(kind, path string, logger *slog.Logger) (Backend, error) {
	switch kind {
	case "", "sqlite":
		return NewSQLite(path, logger)
	case "badger":
		if path == "" {
			return NewBadgerInMemory(logger)
		}
		return NewBadger(path, logger)
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", kind)
}
