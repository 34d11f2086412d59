package workout

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Running(t *testing.T) {
	in, err := Form{Kind: Running, Distance: "5", Duration: "30", Cadence: "150"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, Input{Kind: Running, Distance: 5, Duration: 30, Cadence: 150}, in)
}

func TestValidate_Cycling(t *testing.T) {
	in, err := Form{Kind: Cycling, Distance: "20", Duration: "60", ElevationGain: "400"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, Input{Kind: Cycling, Distance: 20, Duration: 60, ElevationGain: 400}, in)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		form  Form
		field string
	}{
		{"zero distance", Form{Kind: Running, Distance: "0", Duration: "30", Cadence: "150"}, "distance"},
		{"negative duration", Form{Kind: Running, Distance: "5", Duration: "-5", Cadence: "150"}, "duration"},
		{"non-numeric cadence", Form{Kind: Running, Distance: "5", Duration: "30", Cadence: "abc"}, "cadence"},
		{"empty cadence", Form{Kind: Running, Distance: "5", Duration: "30"}, "cadence"},
		{"infinite distance", Form{Kind: Cycling, Distance: "Inf", Duration: "30"}, "distance"},
		{"NaN duration", Form{Kind: Cycling, Distance: "5", Duration: "NaN"}, "duration"},
		{"non-numeric elevation", Form{Kind: Cycling, Distance: "5", Duration: "30", ElevationGain: "high"}, "elevation gain"},
		{"unknown kind", Form{Kind: "Swimming", Distance: "5", Duration: "30"}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.form.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, "Inputs have to be positive numbers", verr.Message())
		})
	}
}

// Elevation gain is only required to be finite; zero and negative climbs
// are accepted.
func TestValidate_CyclingElevationNotPositive(t *testing.T) {
	for _, elev := range []string{"0", "-120", ""} {
		in, err := Form{Kind: Cycling, Distance: "20", Duration: "60", ElevationGain: elev}.Validate()
		require.NoError(t, err, elev)
		assert.LessOrEqual(t, in.ElevationGain, 0.0)
	}
}

func TestBuild(t *testing.T) {
	run := Build(Input{Kind: Running, Distance: 5, Duration: 30, Cadence: 150}, Coords{Lat: 10, Lng: 20}, "id", testTime)
	assert.Equal(t, Running, run.Kind())
	assert.Equal(t, 6.0, run.Rate())

	ride := Build(Input{Kind: Cycling, Distance: 20, Duration: 60, ElevationGain: 400}, Coords{Lat: 1, Lng: 1}, "id2", testTime)
	assert.Equal(t, Cycling, ride.Kind())
	assert.Equal(t, 20.0, ride.Rate())
}

func TestCoordsValidate(t *testing.T) {
	for _, c := range []Coords{{}, {Lat: -90, Lng: 180}, {Lat: 51.5, Lng: -0.12}} {
		assert.NoError(t, c.Validate(), c.String())
	}

	tests := []struct {
		at    Coords
		field string
	}{
		{Coords{Lat: math.NaN(), Lng: 0}, "lat"},
		{Coords{Lat: 0, Lng: math.Inf(-1)}, "lng"},
		{Coords{Lat: 90.01, Lng: 0}, "lat"},
		{Coords{Lat: 0, Lng: 181}, "lng"},
		{Coords{Lat: math.Inf(1), Lng: 1000}, "lat"},
	}
	for _, tt := range tests {
		c, field := tt.at, tt.field
		err := c.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, c.String())
		assert.Equal(t, field, verr.Field)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}
}
