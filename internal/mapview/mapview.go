// Package mapview is an in-process map widget. It keeps the view state the
// browser map is drawn from: center, zoom, markers with their popups, and
// the click handlers to call when the user picks a point.
package mapview

import (
	"fmt"
	"io"

	"github.com/briangreenhill/mapty/internal/tracker"
	"github.com/briangreenhill/mapty/internal/workout"
)

// TileLayer tells the browser where map tiles come from.
type TileLayer struct {
	URL        string   `json:"url"`
	Subdomains []string `json:"subdomains,omitempty"`
	MaxZoom    int      `json:"maxZoom"`
}

var DefaultTiles = TileLayer{
	URL:        "http://{s}.google.com/vt?lyrs=p&x={x}&y={y}&z={z}",
	Subdomains: []string{"mt0", "mt1", "mt2", "mt3"},
	MaxZoom:    20,
}

type Option func(*Widget)

// WithTiles overrides DefaultTiles.
func WithTiles(t TileLayer) Option {
	return func(w *Widget) { w.tiles = t }
}

// WithPrinter writes a line to out for every marker and pan.
func WithPrinter(out io.Writer) Option {
	return func(w *Widget) { w.out = out }
}

// Widget is not safe for concurrent use.
type Widget struct {
	tiles TileLayer
	out   io.Writer
	view  *View
}

func New(opts ...Option) *Widget {
	w := &Widget{tiles: DefaultTiles}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CreateView replaces the current view.
func (w *Widget) CreateView(center workout.Coords, zoom int) (tracker.MapView, error) {
	if zoom < 0 || zoom > w.tiles.MaxZoom {
		return nil, fmt.Errorf("zoom %d out of range 0-%d", zoom, w.tiles.MaxZoom)
	}
	w.view = &View{center: center, zoom: zoom, widget: w}
	return w.view, nil
}

// SetPrinter changes where marker and pan lines go; nil stops printing.
func (w *Widget) SetPrinter(out io.Writer) {
	w.out = out
}

func (w *Widget) printf(format string, args ...any) {
	if w.out != nil {
		fmt.Fprintf(w.out, format, args...)
	}
}

// View returns the current view, or nil before CreateView.
func (w *Widget) View() *View {
	return w.view
}

type Snapshot struct {
	Available bool          `json:"available"`
	Tiles     TileLayer     `json:"tiles"`
	Center    []float64     `json:"center,omitempty"`
	Zoom      int           `json:"zoom"`
	Markers   []MarkerState `json:"markers"`
}

type MarkerState struct {
	Coords  []float64            `json:"coords"`
	Popup   string               `json:"popup,omitempty"`
	Options tracker.PopupOptions `json:"options"`
}

func (w *Widget) Snapshot() Snapshot {
	s := Snapshot{Tiles: w.tiles, Markers: []MarkerState{}}
	if w.view == nil {
		return s
	}
	s.Available = true
	s.Center = pair(w.view.center)
	s.Zoom = w.view.zoom
	for _, m := range w.view.markers {
		s.Markers = append(s.Markers, MarkerState{
			Coords:  pair(m.at),
			Popup:   m.popup,
			Options: m.opts,
		})
	}
	return s
}

func pair(c workout.Coords) []float64 {
	return []float64{c.Lat, c.Lng}
}

type View struct {
	center   workout.Coords
	zoom     int
	markers  []*Marker
	handlers []func(workout.Coords)
	widget   *Widget
}

func (v *View) OnClick(handler func(workout.Coords)) {
	v.handlers = append(v.handlers, handler)
}

// Click delivers a user click at the given position to every handler.
func (v *View) Click(at workout.Coords) {
	for _, h := range v.handlers {
		h(at)
	}
}

func (v *View) AddMarker(at workout.Coords) tracker.Marker {
	m := &Marker{at: at, widget: v.widget}
	v.markers = append(v.markers, m)
	return m
}

func (v *View) PanTo(at workout.Coords) {
	v.center = at
	v.widget.printf("map centered on %s\n", at)
}

func (v *View) Center() workout.Coords {
	return v.center
}

func (v *View) Zoom() int {
	return v.zoom
}

func (v *View) Markers() []*Marker {
	return v.markers
}

type Marker struct {
	at     workout.Coords
	popup  string
	opts   tracker.PopupOptions
	widget *Widget
}

func (m *Marker) BindPopup(content string, opts tracker.PopupOptions) {
	m.popup = content
	m.opts = opts
	m.widget.printf("marker at %s: %s\n", m.at, content)
}

func (m *Marker) Coords() workout.Coords {
	return m.at
}

func (m *Marker) Popup() string {
	return m.popup
}

func (m *Marker) Options() tracker.PopupOptions {
	return m.opts
}
