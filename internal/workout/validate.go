package workout

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidInput = errors.New("inputs have to be positive numbers")

// ValidationError describes the first form field that failed validation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Message is the text shown to the user.
func (e *ValidationError) Message() string {
	return "Inputs have to be positive numbers"
}

// Form is the raw input of the new workout form.
type Form struct {
	Kind          Kind
	Distance      string
	Duration      string
	Cadence       string
	ElevationGain string
}

// Input is a validated form.
type Input struct {
	Kind          Kind
	Distance      float64
	Duration      float64
	Cadence       float64
	ElevationGain float64
}

// Validate checks that every number relevant to the kind is finite, and
// that distance, duration and (for running) cadence are positive. Cycling
// elevation gain only has to be finite.
func (f Form) Validate() (Input, error) {
	in := Input{Kind: f.Kind}

	var err error
	if in.Distance, err = positive("distance", f.Distance); err != nil {
		return Input{}, err
	}
	if in.Duration, err = positive("duration", f.Duration); err != nil {
		return Input{}, err
	}

	switch f.Kind {
	case Running:
		if in.Cadence, err = positive("cadence", f.Cadence); err != nil {
			return Input{}, err
		}
	case Cycling:
		if in.ElevationGain, err = finite("elevation gain", f.ElevationGain); err != nil {
			return Input{}, err
		}
	default:
		return Input{}, &ValidationError{Field: "type", Value: string(f.Kind), Reason: "must be Running or Cycling"}
	}

	return in, nil
}

// finite parses s the way a numeric form field is coerced: surrounding
// whitespace is ignored and an empty field reads as zero.
func finite(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Value: s, Reason: "not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: field, Value: s, Reason: "not a finite number"}
	}
	return v, nil
}

func positive(field, s string) (float64, error) {
	v, err := finite(field, s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, &ValidationError{Field: field, Value: strings.TrimSpace(s), Reason: "must be positive"}
	}
	return v, nil
}

// Validate checks that c is a real position: both numbers finite, latitude
// within ±90 and longitude within ±180.
func (c Coords) Validate() error {
	switch {
	case math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0):
		return &ValidationError{Field: "lat", Value: fmt.Sprint(c.Lat), Reason: "not a finite number"}
	case math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0):
		return &ValidationError{Field: "lng", Value: fmt.Sprint(c.Lng), Reason: "not a finite number"}
	case c.Lat < -90 || c.Lat > 90:
		return &ValidationError{Field: "lat", Value: fmt.Sprint(c.Lat), Reason: "must be between -90 and 90"}
	case c.Lng < -180 || c.Lng > 180:
		return &ValidationError{Field: "lng", Value: fmt.Sprint(c.Lng), Reason: "must be between -180 and 180"}
	}
	return nil
}

// Build constructs the workout variant for a validated input.
func Build(in Input, coords Coords, id string, now time.Time) Workout {
	if in.Kind == Running {
		return NewRunning(id, now, coords, in.Distance, in.Duration, in.Cadence)
	}
	return NewCycling(id, now, coords, in.Distance, in.Duration, in.ElevationGain)
}
