package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/briangreenhill/mapty/internal/mapview"
	"github.com/briangreenhill/mapty/internal/metrics"
	"github.com/briangreenhill/mapty/internal/render"
	"github.com/briangreenhill/mapty/internal/storage"
	"github.com/briangreenhill/mapty/internal/tracker"
	"github.com/briangreenhill/mapty/internal/workout"
)

type Options struct {
	Key     string
	Codec   workout.Codec
	IDs     workout.IDGenerator
	Zoom    int
	Tiles   mapview.TileLayer
	Locator tracker.Geolocator
	Metrics metrics.Recorder
}

// Service puts one tracking session behind a lock so that the CLI and the
// HTTP API can drive it. Every call runs to completion before the next one
// starts.
type Service struct {
	mu sync.Mutex

	store   *workout.Store
	ctrl    *tracker.Controller
	widget  *mapview.Widget
	notices *tracker.NoticeLog
	list    tracker.ListRenderer
	logger  *slog.Logger
}

func NewService(kv storage.KV, logger *slog.Logger, opts Options) *Service {
	storeOpts := []workout.StoreOption{workout.WithLogger(logger)}
	if opts.Key != "" {
		storeOpts = append(storeOpts, workout.WithKey(opts.Key))
	}
	if opts.Codec != nil {
		storeOpts = append(storeOpts, workout.WithCodec(opts.Codec))
	}
	if opts.Metrics != nil {
		storeOpts = append(storeOpts, workout.WithMetrics(opts.Metrics))
	}

	var widgetOpts []mapview.Option
	if opts.Tiles.URL != "" {
		widgetOpts = append(widgetOpts, mapview.WithTiles(opts.Tiles))
	}

	s := &Service{
		store:   workout.NewStore(kv, storeOpts...),
		widget:  mapview.New(widgetOpts...),
		notices: &tracker.NoticeLog{},
		logger:  logger,
	}
	s.ctrl = tracker.New(tracker.Deps{
		Store:    s.store,
		Map:      s.widget,
		Locator:  opts.Locator,
		List:     s,
		Notifier: s.notices,
		Logger:   logger,
		Metrics:  opts.Metrics,
		IDs:      opts.IDs,
		Zoom:     opts.Zoom,
	})
	return s
}

// EchoList prints every list entry rendered from now on to out; nil turns
// it off.
func (s *Service) EchoList(out io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if out == nil {
		s.list = nil
		return
	}
	s.list = render.TextList{W: out}
}

// EchoMap prints markers and pans from now on to out; nil turns it off.
func (s *Service) EchoMap(out io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widget.SetPrinter(out)
}

// RenderWorkout implements tracker.ListRenderer.
func (s *Service) RenderWorkout(w workout.Workout) {
	if s.list != nil {
		s.list.RenderWorkout(w)
	}
}

// Start restores saved workouts and brings up the map. It returns the
// notices raised while doing so.
func (s *Service) Start(ctx context.Context) []tracker.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Start(ctx)
	return s.notices.Drain()
}

// Add clicks the map at the requested position and submits the form.
// Validation failures come back as errors matching workout.ErrInvalidInput.
// A valid workout that could not be saved is returned with Saved false and
// a nil error.
func (s *Service) Add(ctx context.Context, req AddRequest) (AddResult, error) {
	form, err := req.form()
	if err != nil {
		return AddResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	view := s.widget.View()
	if view == nil || s.ctrl.State() == tracker.MapUnavailable {
		return AddResult{Notices: s.notices.Drain()}, tracker.ErrMapUnavailable
	}
	view.Click(req.coords())

	w, err := s.ctrl.Submit(ctx, form)
	res := AddResult{Workout: w, Saved: err == nil, Notices: s.notices.Drain()}
	if err != nil && !errors.Is(err, workout.ErrStorageWrite) {
		s.ctrl.Cancel()
		return res, err
	}
	return res, nil
}

func (s *Service) Get(id string) (workout.Workout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.FindByID(id)
}

func (s *Service) List() []workout.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Workouts()
}

// Select centers the map on a workout.
func (s *Service) Select(id string) (workout.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Select(id)
}

func (s *Service) Map() mapview.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.widget.Snapshot()
}
