package activity

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/briangreenhill/mapty/internal/workout"
	"github.com/tkrajina/gpxgo/gpx"
)

// Track is what a GPX recording contributes to a workout.
type Track struct {
	Name     string
	Start    workout.Coords
	Distance float64 // km
	Duration float64 // min
	Uphill   float64 // m
}

func ParseGPX(b []byte) (Track, error) {
	g, err := gpx.ParseBytes(b)
	if err != nil {
		return Track{}, fmt.Errorf("error parsing gpx: %w", err)
	}

	start, ok := firstPoint(g)
	if !ok {
		return Track{}, errors.New("gpx file has no track points")
	}

	moving := g.MovingData()
	return Track{
		Name:     g.Name,
		Start:    start,
		Distance: moving.MovingDistance / 1000.0,
		Duration: moving.MovingTime / 60.0,
		Uphill:   g.UphillDownhill().Uphill,
	}, nil
}

func firstPoint(g *gpx.GPX) (workout.Coords, bool) {
	for _, track := range g.Tracks {
		for _, segment := range track.Segments {
			if len(segment.Points) > 0 {
				p := segment.Points[0]
				return workout.Coords{Lat: p.Latitude, Lng: p.Longitude}, true
			}
		}
	}
	return workout.Coords{}, false
}

func readGPXFile(gpxFile string) ([]byte, error) {
	info, err := os.Stat(gpxFile)
	if err != nil {
		return nil, fmt.Errorf("error reading gpx file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("gpx file is a directory")
	}

	file, err := os.Open(gpxFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
