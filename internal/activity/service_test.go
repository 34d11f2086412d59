package activity

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/briangreenhill/mapty/internal/storage"
	"github.com/briangreenhill/mapty/internal/tracker"
	"github.com/briangreenhill/mapty/internal/workout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var home = workout.Coords{Lat: 51.5, Lng: -0.12}

type seqIDs struct{ n int }

func (s *seqIDs) NewID(time.Time) string {
	s.n++
	return string(rune('a' - 1 + s.n))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, kv storage.KV, locator tracker.Geolocator) *Service {
	t.Helper()
	svc := NewService(kv, discardLogger(), Options{IDs: &seqIDs{}, Locator: locator})
	svc.Start(context.Background())
	return svc
}

func runReq() AddRequest {
	return AddRequest{
		Type:     "running",
		Lat:      51.51,
		Lng:      -0.1,
		Distance: "5",
		Duration: "25",
		Cadence:  "170",
	}
}

func TestService_Add(t *testing.T) {
	kv := storage.NewMemory()
	svc := newTestService(t, kv, tracker.StaticLocator{At: home})

	res, err := svc.Add(context.Background(), runReq())
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.Empty(t, res.Notices)
	assert.Equal(t, "a", res.Workout.ID())
	assert.Equal(t, workout.Coords{Lat: 51.51, Lng: -0.1}, res.Workout.Coords())

	stats, ok := res.Workout.Running()
	require.True(t, ok)
	assert.InDelta(t, 5.0, stats.Pace, 1e-9)

	got, ok := svc.Get("a")
	require.True(t, ok)
	assert.True(t, got.SameAs(res.Workout))
	assert.Len(t, svc.List(), 1)

	raw, ok, err := kv.Get(context.Background(), workout.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"id":"a"`)

	snap := svc.Map()
	require.Len(t, snap.Markers, 1)
	assert.Equal(t, []float64{51.51, -0.1}, snap.Markers[0].Coords)
}

func TestService_AddInvalid(t *testing.T) {
	svc := newTestService(t, storage.NewMemory(), tracker.StaticLocator{At: home})

	req := runReq()
	req.Cadence = "-3"
	res, err := svc.Add(context.Background(), req)
	require.ErrorIs(t, err, workout.ErrInvalidInput)
	assert.Equal(t, []tracker.Notice{{Level: tracker.LevelError, Message: "Inputs have to be positive numbers"}}, res.Notices)
	assert.Empty(t, svc.List())

	// The form was closed, so the next request starts from a fresh click.
	res, err = svc.Add(context.Background(), runReq())
	require.NoError(t, err)
	assert.Equal(t, "a", res.Workout.ID())
}

func TestService_AddUnknownType(t *testing.T) {
	svc := newTestService(t, storage.NewMemory(), tracker.StaticLocator{At: home})

	req := runReq()
	req.Type = "swimming"
	_, err := svc.Add(context.Background(), req)
	assert.Error(t, err)
	assert.Empty(t, svc.List())
}

func TestService_AddWithoutMap(t *testing.T) {
	svc := NewService(storage.NewMemory(), discardLogger(), Options{})
	notices := svc.Start(context.Background())
	require.Len(t, notices, 1)
	assert.Equal(t, "Couldn't get your current position.", notices[0].Message)

	_, err := svc.Add(context.Background(), runReq())
	assert.ErrorIs(t, err, tracker.ErrMapUnavailable)
	assert.False(t, svc.Map().Available)
}

func TestService_AddNotSaved(t *testing.T) {
	kv := storage.Limit(storage.NewMemory(), 16)
	svc := newTestService(t, kv, tracker.StaticLocator{At: home})

	res, err := svc.Add(context.Background(), runReq())
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.Equal(t, []tracker.Notice{{Level: tracker.LevelWarn, Message: "Changes not saved."}}, res.Notices)
	assert.Len(t, svc.List(), 1, "kept for the session")
}

func TestService_Restore(t *testing.T) {
	kv := storage.NewMemory()
	first := newTestService(t, kv, tracker.StaticLocator{At: home})
	_, err := first.Add(context.Background(), runReq())
	require.NoError(t, err)

	var list, mapOut bytes.Buffer
	second := NewService(kv, discardLogger(), Options{Locator: tracker.StaticLocator{At: home}})
	second.EchoList(&list)
	second.EchoMap(&mapOut)
	assert.Empty(t, second.Start(context.Background()))

	assert.Contains(t, list.String(), "Running on")
	assert.Contains(t, list.String(), "[a]")
	assert.Contains(t, mapOut.String(), "marker at (51.51, -0.1)")
	assert.Len(t, second.List(), 1)
}

func TestService_Select(t *testing.T) {
	svc := newTestService(t, storage.NewMemory(), tracker.StaticLocator{At: home})
	_, err := svc.Add(context.Background(), runReq())
	require.NoError(t, err)

	w, err := svc.Select("a")
	require.NoError(t, err)
	assert.Equal(t, "a", w.ID())
	assert.Equal(t, []float64{51.51, -0.1}, svc.Map().Center)

	_, err = svc.Select("zzz")
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestService_AddRejectsUnrealPosition(t *testing.T) {
	for _, codec := range []workout.Codec{workout.JSONCodec{}, workout.MsgpackCodec{}} {
		kv := storage.NewMemory()
		svc := NewService(kv, discardLogger(), Options{Codec: codec, Locator: tracker.StaticLocator{At: home}})
		svc.Start(context.Background())

		req := runReq()
		req.Lat = math.NaN()
		_, err := svc.Add(context.Background(), req)
		var verr *workout.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "lat", verr.Field)
		assert.Empty(t, svc.List())

		res, err := svc.Add(context.Background(), runReq())
		require.NoError(t, err)
		assert.True(t, res.Saved)

		restarted := NewService(kv, discardLogger(), Options{Codec: codec, Locator: tracker.StaticLocator{At: home}})
		assert.Empty(t, restarted.Start(context.Background()))
		assert.Len(t, restarted.List(), 1)
	}
}
