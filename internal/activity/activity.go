package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/briangreenhill/mapty/internal/render"
	"github.com/briangreenhill/mapty/internal/tracker"
	"github.com/briangreenhill/mapty/internal/workout"
)

// AddRequest is a map click followed by a form submission.
type AddRequest struct {
	Type          string     `json:"type"`
	Lat           float64    `json:"lat"`
	Lng           float64    `json:"lng"`
	Distance      FormNumber `json:"distance"`
	Duration      FormNumber `json:"duration"`
	Cadence       FormNumber `json:"cadence,omitempty"`
	ElevationGain FormNumber `json:"elevGain,omitempty"`
}

// FormNumber is a form field as typed. It decodes from a JSON string or a
// JSON number so that validation sees the raw input either way.
type FormNumber string

func (n *FormNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = FormNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("form field must be a number or a string: %w", err)
	}
	*n = FormNumber(num.String())
	return nil
}

func formNumber(v float64) FormNumber {
	return FormNumber(strconv.FormatFloat(v, 'f', -1, 64))
}

func (r AddRequest) form() (workout.Form, error) {
	kind, err := workout.ParseKind(r.Type)
	if err != nil {
		return workout.Form{}, err
	}
	return workout.Form{
		Kind:          kind,
		Distance:      string(r.Distance),
		Duration:      string(r.Duration),
		Cadence:       string(r.Cadence),
		ElevationGain: string(r.ElevationGain),
	}, nil
}

func (r AddRequest) coords() workout.Coords {
	return workout.Coords{Lat: r.Lat, Lng: r.Lng}
}

// AddResult is what came out of an AddRequest: the workout when the form
// was valid, and whatever the user was told along the way.
type AddResult struct {
	Workout workout.Workout
	Saved   bool
	Notices []tracker.Notice
}

// WorkoutJSON is the API shape of a workout.
type WorkoutJSON struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Icon          string    `json:"icon"`
	Date          time.Time `json:"date"`
	Coords        []float64 `json:"coords"`
	Distance      float64   `json:"distance"`
	Duration      float64   `json:"duration"`
	Cadence       *float64  `json:"cadence,omitempty"`
	Pace          *float64  `json:"pace,omitempty"`
	ElevationGain *float64  `json:"elevGain,omitempty"`
	Speed         *float64  `json:"speed,omitempty"`
}

func NewWorkoutJSON(w workout.Workout) WorkoutJSON {
	out := WorkoutJSON{
		ID:       w.ID(),
		Type:     string(w.Kind()),
		Title:    render.Title(w),
		Icon:     w.Icon(),
		Date:     w.CreatedAt(),
		Coords:   []float64{w.Coords().Lat, w.Coords().Lng},
		Distance: w.Distance(),
		Duration: w.Duration(),
	}
	if s, ok := w.Running(); ok {
		out.Cadence, out.Pace = &s.Cadence, &s.Pace
	}
	if s, ok := w.Cycling(); ok {
		out.ElevationGain, out.Speed = &s.ElevationGain, &s.Speed
	}
	return out
}
