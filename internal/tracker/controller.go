// Package tracker drives the workout tracker: it takes map clicks and form
// submissions, turns valid ones into workouts, commits them to the store
// and draws them on the list and the map.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/briangreenhill/mapty/internal/metrics"
	"github.com/briangreenhill/mapty/internal/render"
	"github.com/briangreenhill/mapty/internal/workout"
)

type State int

const (
	// Idle waits for a map click.
	Idle State = iota
	// FormOpen remembers a clicked position and waits for the form.
	FormOpen
	// MapUnavailable lasts for the rest of the session. Workouts can still
	// be listed and looked up, but not added or shown on the map.
	MapUnavailable
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FormOpen:
		return "form-open"
	case MapUnavailable:
		return "map-unavailable"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	ErrNoLocation     = errors.New("click the map to choose a location first")
	ErrMapUnavailable = errors.New("map is unavailable")
	ErrNotFound       = errors.New("workout not found")
)

const (
	msgNoPosition = "Couldn't get your current position."
	msgCorrupt    = "Saved workouts could not be read and were ignored."
	msgNotSaved   = "Changes not saved."
)

type Deps struct {
	Store    *workout.Store
	Map      MapWidget
	Locator  Geolocator
	List     ListRenderer
	Notifier Notifier

	Logger  *slog.Logger
	Metrics metrics.Recorder
	IDs     workout.IDGenerator
	Now     func() time.Time
	Zoom    int
}

// Controller holds the session state: the map view, once there is one, and
// the position of the last map click. It is not safe for concurrent use;
// surfaces that receive events concurrently must serialize them.
type Controller struct {
	store    *workout.Store
	widget   MapWidget
	locator  Geolocator
	list     ListRenderer
	notifier Notifier
	logger   *slog.Logger
	metrics  metrics.Recorder
	ids      workout.IDGenerator
	now      func() time.Time
	zoom     int

	state   State
	view    MapView
	pending workout.Coords
}

func New(d Deps) *Controller {
	c := &Controller{
		store:    d.Store,
		widget:   d.Map,
		locator:  d.Locator,
		list:     d.List,
		notifier: d.Notifier,
		logger:   d.Logger,
		metrics:  d.Metrics,
		ids:      d.IDs,
		now:      d.Now,
		zoom:     d.Zoom,
	}
	if c.locator == nil {
		c.locator = NoLocator{}
	}
	if c.notifier == nil {
		c.notifier = &NoticeLog{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.metrics == nil {
		c.metrics = metrics.Nop{}
	}
	if c.ids == nil {
		c.ids = workout.KSUIDGenerator{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Start restores the saved workouts and brings up the map. List entries are
// rendered right away; their markers follow in one batch once the map view
// exists. A failed location lookup leaves the controller in MapUnavailable.
func (c *Controller) Start(ctx context.Context) {
	restored, err := c.store.LoadAll(ctx)
	if err != nil {
		c.logger.Warn("Restored an empty workout list", slog.Any("error", err))
		c.notifier.Notify(Notice{Level: LevelWarn, Message: msgCorrupt})
	}
	for _, w := range restored {
		c.renderEntry(w)
	}

	center, err := c.locator.Locate(ctx)
	if err != nil {
		c.disableMap(err)
		return
	}

	if c.widget == nil {
		c.disableMap(errors.New("no map widget"))
		return
	}
	view, err := c.widget.CreateView(center, c.zoom)
	if err != nil {
		c.disableMap(err)
		return
	}
	c.view = view
	c.view.OnClick(c.handleClick)
	c.logger.Info("Map ready", slog.String("center", center.String()), slog.Int("zoom", c.zoom))

	for _, w := range restored {
		c.placeMarker(w)
	}
}

func (c *Controller) disableMap(err error) {
	c.logger.Warn("Map unavailable", slog.Any("error", err))
	c.state = MapUnavailable
	c.view = nil
	c.notifier.Notify(Notice{Level: LevelError, Message: msgNoPosition})
}

func (c *Controller) handleClick(at workout.Coords) {
	if c.state == MapUnavailable {
		return
	}
	c.pending = at
	c.state = FormOpen
	c.logger.Debug("Form opened", slog.String("at", at.String()))
}

// Submit turns the form into a workout at the last clicked position.
//
// Invalid input, including a clicked position that is not a real
// coordinate, is reported to the user and leaves the form open. When the
// workout is valid it is always returned, rendered and kept for the
// session; a non-nil error alongside it matches workout.ErrStorageWrite and
// means it was not saved.
func (c *Controller) Submit(ctx context.Context, form workout.Form) (workout.Workout, error) {
	switch c.state {
	case MapUnavailable:
		return workout.Workout{}, ErrMapUnavailable
	case Idle:
		return workout.Workout{}, ErrNoLocation
	}

	in, err := form.Validate()
	if err == nil {
		err = c.pending.Validate()
	}
	if err != nil {
		c.metrics.ValidationFailed(string(form.Kind))
		c.logger.Info("Rejected workout form", slog.Any("error", err))
		msg := err.Error()
		var verr *workout.ValidationError
		if errors.As(err, &verr) {
			msg = verr.Message()
		}
		c.notifier.Notify(Notice{Level: LevelError, Message: msg})
		return workout.Workout{}, err
	}

	now := c.now()
	w := workout.Build(in, c.pending, c.ids.NewID(now), now)

	saveErr := c.store.Add(ctx, w)
	if saveErr != nil {
		c.notifier.Notify(Notice{Level: LevelWarn, Message: msgNotSaved})
	}
	c.metrics.WorkoutAdded(string(w.Kind()))
	c.logger.Info("Added workout", slog.String("id", w.ID()), slog.String("type", string(w.Kind())))

	c.renderEntry(w)
	c.placeMarker(w)
	c.hideForm()

	return w, saveErr
}

// Cancel closes the form without creating anything.
func (c *Controller) Cancel() {
	if c.state == FormOpen {
		c.hideForm()
	}
}

func (c *Controller) hideForm() {
	c.pending = workout.Coords{}
	c.state = Idle
}

// Select pans the map to the workout with the given id.
func (c *Controller) Select(id string) (workout.Workout, error) {
	w, ok := c.store.FindByID(id)
	if !ok {
		return workout.Workout{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if c.view == nil {
		return w, ErrMapUnavailable
	}
	c.view.PanTo(w.Coords())
	return w, nil
}

func (c *Controller) renderEntry(w workout.Workout) {
	if c.list != nil {
		c.list.RenderWorkout(w)
	}
}

func (c *Controller) placeMarker(w workout.Workout) {
	if c.view == nil {
		return
	}
	c.view.AddMarker(w.Coords()).BindPopup(render.Popup(w), PopupOptionsFor(w.Kind()))
}

func (c *Controller) State() State {
	return c.state
}

// Pending is the clicked position the open form will use.
func (c *Controller) Pending() (workout.Coords, bool) {
	return c.pending, c.state == FormOpen
}

func (c *Controller) Workouts() []workout.Workout {
	return c.store.All()
}
