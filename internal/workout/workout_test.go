package workout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testTime = time.Date(2024, time.March, 9, 7, 30, 0, 0, time.UTC)

func TestNewRunning(t *testing.T) {
	w := NewRunning("r1", testTime, Coords{Lat: 10, Lng: 20}, 5, 30, 150)

	assert.Equal(t, "r1", w.ID())
	assert.Equal(t, Running, w.Kind())
	assert.Equal(t, Coords{Lat: 10, Lng: 20}, w.Coords())
	assert.True(t, testTime.Equal(w.CreatedAt()))

	stats, ok := w.Running()
	require.True(t, ok)
	assert.Equal(t, 150.0, stats.Cadence)
	assert.Equal(t, 6.0, stats.Pace)
	assert.Equal(t, 6.0, w.Rate())
	assert.Equal(t, "min/km", w.RateUnit())

	_, ok = w.Cycling()
	assert.False(t, ok)
}

func TestNewCycling(t *testing.T) {
	w := NewCycling("c1", testTime, Coords{Lat: 1, Lng: 1}, 20, 60, 400)

	stats, ok := w.Cycling()
	require.True(t, ok)
	assert.Equal(t, 400.0, stats.ElevationGain)
	assert.Equal(t, 20.0, stats.Speed)
	assert.Equal(t, "km/h", w.RateUnit())

	_, ok = w.Running()
	assert.False(t, ok)
}

func TestDerivedMetrics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := rapid.Float64Range(0.01, 1000).Draw(t, "distance")
		m := rapid.Float64Range(0.01, 10000).Draw(t, "duration")
		x := rapid.Float64Range(-500, 5000).Draw(t, "metric")

		r := NewRunning("r", testTime, Coords{}, d, m, x)
		if got := r.Rate(); got != m/d {
			t.Fatalf("pace = %v, want %v", got, m/d)
		}

		c := NewCycling("c", testTime, Coords{}, d, m, x)
		if got := c.Rate(); got != d/(m/60) {
			t.Fatalf("speed = %v, want %v", got, d/(m/60))
		}
	})
}

func TestSameAs(t *testing.T) {
	a := NewRunning("same", testTime, Coords{Lat: 1}, 5, 30, 150)
	b := NewCycling("same", testTime.Add(time.Hour), Coords{Lat: 2}, 10, 20, 0)
	c := NewRunning("other", testTime, Coords{Lat: 1}, 5, 30, 150)

	assert.True(t, a.SameAs(b), "identity is the id")
	assert.False(t, a.SameAs(c), "equal values with different ids are different workouts")
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"Running":  Running,
		"running":  Running,
		" CYCLING": Cycling,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("swimming")
	assert.Error(t, err)
}
