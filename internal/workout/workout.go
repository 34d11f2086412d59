package workout

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	Running Kind = "Running"
	Cycling Kind = "Cycling"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return Running, nil
	case "cycling":
		return Cycling, nil
	}
	return "", fmt.Errorf("unknown workout type %q", s)
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) Icon() string {
	if k == Running {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

type Coords struct {
	Lat float64
	Lng float64
}

func (c Coords) String() string {
	return fmt.Sprintf("(%g, %g)", c.Lat, c.Lng)
}

type RunningStats struct {
	Cadence float64 // steps/min
	Pace    float64 // min/km
}

type CyclingStats struct {
	ElevationGain float64 // meters
	Speed         float64 // km/h
}

// Workout is one recorded activity. It is a value: once built it has no
// mutators, and exactly one of the running or cycling payloads is set,
// selected by kind.
type Workout struct {
	id        string
	createdAt time.Time
	coords    Coords
	distance  float64 // km
	duration  float64 // min
	kind      Kind

	running RunningStats
	cycling CyclingStats
}

// NewRunning does not check its arguments; callers go through Build, which
// only sees validated input.
func NewRunning(id string, createdAt time.Time, coords Coords, distance, duration, cadence float64) Workout {
	return Workout{
		id:        id,
		createdAt: createdAt,
		coords:    coords,
		distance:  distance,
		duration:  duration,
		kind:      Running,
		running: RunningStats{
			Cadence: cadence,
			Pace:    duration / distance,
		},
	}
}

func NewCycling(id string, createdAt time.Time, coords Coords, distance, duration, elevationGain float64) Workout {
	return Workout{
		id:        id,
		createdAt: createdAt,
		coords:    coords,
		distance:  distance,
		duration:  duration,
		kind:      Cycling,
		cycling: CyclingStats{
			ElevationGain: elevationGain,
			Speed:         distance / (duration / 60),
		},
	}
}

func (w Workout) ID() string           { return w.id }
func (w Workout) CreatedAt() time.Time { return w.createdAt }
func (w Workout) Coords() Coords       { return w.coords }
func (w Workout) Distance() float64    { return w.distance }
func (w Workout) Duration() float64    { return w.duration }
func (w Workout) Kind() Kind           { return w.kind }
func (w Workout) Icon() string         { return w.kind.Icon() }

func (w Workout) Running() (RunningStats, bool) {
	return w.running, w.kind == Running
}

func (w Workout) Cycling() (CyclingStats, bool) {
	return w.cycling, w.kind == Cycling
}

// Rate returns the derived metric: pace for running, speed for cycling.
func (w Workout) Rate() float64 {
	switch w.kind {
	case Running:
		return w.running.Pace
	case Cycling:
		return w.cycling.Speed
	}
	return 0
}

func (w Workout) RateUnit() string {
	switch w.kind {
	case Running:
		return "min/km"
	case Cycling:
		return "km/h"
	}
	return ""
}

// SameAs reports whether both values describe the same workout. Identity is
// the id alone.
func (w Workout) SameAs(other Workout) bool {
	return w.id == other.id
}

func (w Workout) String() string {
	return fmt.Sprintf("%s %s %.1f km in %.0f min at %s", w.id, w.kind, w.distance, w.duration, w.coords)
}
