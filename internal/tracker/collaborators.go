package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/briangreenhill/mapty/internal/workout"
)

// MapWidget is the map the controller draws on.
type MapWidget interface {
	CreateView(center workout.Coords, zoom int) (MapView, error)
}

type MapView interface {
	OnClick(handler func(workout.Coords))
	AddMarker(at workout.Coords) Marker
	PanTo(at workout.Coords)
}

type Marker interface {
	BindPopup(content string, opts PopupOptions)
}

type PopupOptions struct {
	MaxWidth     int    `json:"maxWidth"`
	MinWidth     int    `json:"minWidth"`
	AutoClose    bool   `json:"autoClose"`
	CloseOnClick bool   `json:"closeOnClick"`
	ClassName    string `json:"className"`
}

// PopupOptionsFor keeps every workout popup open and styles it by kind.
func PopupOptionsFor(k workout.Kind) PopupOptions {
	class := "cycling-popup"
	if k == workout.Running {
		class = "running-popup"
	}
	return PopupOptions{
		MaxWidth:  250,
		MinWidth:  50,
		ClassName: class,
	}
}

var ErrLocationUnavailable = errors.New("location unavailable")

// Geolocator resolves the user's position once. The controller asks a
// single time per session and never retries.
type Geolocator interface {
	Locate(ctx context.Context) (workout.Coords, error)
}

// StaticLocator always reports the same position.
type StaticLocator struct {
	At workout.Coords
}

func (l StaticLocator) Locate(context.Context) (workout.Coords, error) {
	return l.At, nil
}

// NoLocator never has a position, e.g. when no home location is
// configured.
type NoLocator struct{}

func (NoLocator) Locate(context.Context) (workout.Coords, error) {
	return workout.Coords{}, ErrLocationUnavailable
}

type GeolocatorFunc func(ctx context.Context) (workout.Coords, error)

func (f GeolocatorFunc) Locate(ctx context.Context) (workout.Coords, error) {
	return f(ctx)
}

// ListRenderer shows one workout in the workout list.
type ListRenderer interface {
	RenderWorkout(w workout.Workout)
}

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notice is a message for the user.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Notifier interface {
	Notify(n Notice)
}

// WriterNotifier prints notices, one per line.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(notice Notice) {
	fmt.Fprintf(n.W, "%s: %s\n", notice.Level, notice.Message)
}

// NoticeLog keeps notices until drained.
type NoticeLog struct {
	notices []Notice
}

func (l *NoticeLog) Notify(n Notice) {
	l.notices = append(l.notices, n)
}

// Drain returns the notices collected so far and forgets them.
func (l *NoticeLog) Drain() []Notice {
	out := l.notices
	l.notices = nil
	return out
}
