package workout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/briangreenhill/mapty/internal/metrics"
	"github.com/briangreenhill/mapty/internal/storage"
)

const DefaultKey = "workouts"

var (
	// ErrStorageCorrupt is returned by LoadAll alongside an empty collection
	// when the stored payload could not be read back.
	ErrStorageCorrupt = errors.New("stored workouts could not be read")

	// ErrStorageWrite is returned by Add when the workout was kept in memory
	// but the collection did not reach storage.
	ErrStorageWrite = errors.New("changes not saved")
)

// Store owns the ordered workout collection of a session and mirrors it to
// a key-value store under a single key. Insertion order is chronological
// order is display order.
//
// Store is not safe for concurrent use.
type Store struct {
	kv      storage.KV
	key     string
	codec   Codec
	logger  *slog.Logger
	metrics metrics.Recorder

	workouts []Workout
}

type StoreOption func(*Store)

func WithKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

func WithCodec(c Codec) StoreOption {
	return func(s *Store) { s.codec = c }
}

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

func WithMetrics(m metrics.Recorder) StoreOption {
	return func(s *Store) { s.metrics = m }
}

func NewStore(kv storage.KV, opts ...StoreOption) *Store {
	s := &Store{
		kv:      kv,
		key:     DefaultKey,
		codec:   JSONCodec{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll replaces the in-memory collection with what storage holds. It
// always returns a usable slice: a missing key gives an empty collection
// and a nil error, and an unreadable payload gives an empty collection and
// an error matching ErrStorageCorrupt that callers should surface as a
// warning.
func (s *Store) LoadAll(ctx context.Context) ([]Workout, error) {
	s.workouts = nil

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("Error reading workouts", slog.Any("error", err))
		s.metrics.StorageCorrupt()
		return []Workout{}, fmt.Errorf("%w: %w", ErrStorageCorrupt, err)
	}
	if !ok {
		return []Workout{}, nil
	}

	ws, err := s.codec.Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("Discarding unreadable workouts", slog.String("key", s.key), slog.Any("error", err))
		s.metrics.StorageCorrupt()
		return []Workout{}, fmt.Errorf("%w: %w", ErrStorageCorrupt, err)
	}

	s.workouts = ws
	s.logger.Debug("Loaded workouts", slog.Int("count", len(ws)))
	return s.All(), nil
}

// Add appends w and writes the whole collection back. If the write fails
// the workout stays in memory, and the returned error matches
// ErrStorageWrite; memory and storage then differ until the next
// successful Add.
func (s *Store) Add(ctx context.Context, w Workout) error {
	s.workouts = append(s.workouts, w)

	buf, err := s.codec.Encode(s.workouts)
	if err != nil {
		return s.writeFailed(err)
	}
	if err := s.kv.Set(ctx, s.key, string(buf)); err != nil {
		return s.writeFailed(err)
	}

	return nil
}

func (s *Store) writeFailed(err error) error {
	s.logger.Error("Error saving workouts", slog.Int("count", len(s.workouts)), slog.Any("error", err))
	s.metrics.StorageWriteFailed()
	return fmt.Errorf("%w: %w", ErrStorageWrite, err)
}

func (s *Store) FindByID(id string) (Workout, bool) {
	for _, w := range s.workouts {
		if w.id == id {
			return w, true
		}
	}
	return Workout{}, false
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []Workout {
	out := make([]Workout, len(s.workouts))
	copy(out, s.workouts)
	return out
}

func (s *Store) Len() int {
	return len(s.workouts)
}
