package workout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

var ErrMalformedRecord = errors.New("malformed workout record")

// Codec turns the ordered workout collection into a storage payload and back.
type Codec interface {
	Encode(ws []Workout) ([]byte, error)
	Decode(data []byte) ([]Workout, error)
}

func NewCodec(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// record is the persisted shape of a workout. Field names follow the
// payload written by the browser version of the app, so its exported data
// loads as is.
type record struct {
	Type     string    `json:"type" msgpack:"type"`
	ID       string    `json:"id" msgpack:"id"`
	Date     time.Time `json:"date" msgpack:"date"`
	Coords   []float64 `json:"coords" msgpack:"coords"`
	Distance float64   `json:"distance" msgpack:"distance"`
	Duration float64   `json:"duration" msgpack:"duration"`
	Icon     string    `json:"icon,omitempty" msgpack:"icon,omitempty"`
	Cadence  *float64  `json:"cadence,omitempty" msgpack:"cadence,omitempty"`
	Pace     *float64  `json:"pace,omitempty" msgpack:"pace,omitempty"`
	ElevGain *float64  `json:"elevGain,omitempty" msgpack:"elevGain,omitempty"`
	Speed    *float64  `json:"speed,omitempty" msgpack:"speed,omitempty"`
}

func toRecord(w Workout) record {
	r := record{
		Type:     string(w.kind),
		ID:       w.id,
		Date:     w.createdAt,
		Coords:   []float64{w.coords.Lat, w.coords.Lng},
		Distance: w.distance,
		Duration: w.duration,
		Icon:     w.Icon(),
	}
	switch w.kind {
	case Running:
		cadence, pace := w.running.Cadence, w.running.Pace
		r.Cadence, r.Pace = &cadence, &pace
	case Cycling:
		elev, speed := w.cycling.ElevationGain, w.cycling.Speed
		r.ElevGain, r.Speed = &elev, &speed
	}
	return r
}

// fromRecord rebuilds the workout. The derived metric is recomputed rather
// than trusted from the payload.
func fromRecord(i int, r record) (Workout, error) {
	if len(r.Coords) != 2 {
		return Workout{}, fmt.Errorf("record %d: %w: coords must be a [lat, lng] pair", i, ErrMalformedRecord)
	}
	if !(r.Distance > 0) || !(r.Duration > 0) {
		return Workout{}, fmt.Errorf("record %d: %w: distance and duration must be positive", i, ErrMalformedRecord)
	}
	coords := Coords{Lat: r.Coords[0], Lng: r.Coords[1]}
	if err := coords.Validate(); err != nil {
		return Workout{}, fmt.Errorf("record %d: %w: %v", i, ErrMalformedRecord, err)
	}

	switch Kind(r.Type) {
	case Running:
		var cadence float64
		if r.Cadence != nil {
			cadence = *r.Cadence
		}
		return NewRunning(r.ID, r.Date, coords, r.Distance, r.Duration, cadence), nil
	case Cycling:
		var elev float64
		if r.ElevGain != nil {
			elev = *r.ElevGain
		}
		return NewCycling(r.ID, r.Date, coords, r.Distance, r.Duration, elev), nil
	}
	return Workout{}, fmt.Errorf("record %d: %w: unknown type %q", i, ErrMalformedRecord, r.Type)
}

func toRecords(ws []Workout) []record {
	rs := make([]record, 0, len(ws))
	for _, w := range ws {
		rs = append(rs, toRecord(w))
	}
	return rs
}

func fromRecords(rs []record) ([]Workout, error) {
	ws := make([]Workout, 0, len(rs))
	for i, r := range rs {
		w, err := fromRecord(i, r)
		if err != nil {
			return nil, err
		}
		ws = append(ws, w)
	}
	return ws, nil
}

type JSONCodec struct{}

func (JSONCodec) Encode(ws []Workout) ([]byte, error) {
	return json.Marshal(toRecords(ws))
}

func (JSONCodec) Decode(data []byte) ([]Workout, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Workout{}, nil
	}
	var rs []record
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, err
	}
	return fromRecords(rs)
}

type MsgpackCodec struct{}

func (MsgpackCodec) Encode(ws []Workout) ([]byte, error) {
	buf, err := msgpack.Marshal(toRecords(ws))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workouts: %w", err)
	}
	return buf, nil
}

func (MsgpackCodec) Decode(data []byte) ([]Workout, error) {
	if len(data) == 0 {
		return []Workout{}, nil
	}
	var rs []record
	if err := msgpack.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workouts: %w", err)
	}
	return fromRecords(rs)
}
