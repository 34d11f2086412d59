// Package render turns workouts into list entries and popup text.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/briangreenhill/mapty/internal/workout"
)

// Title reads like "Running on March 9", dated by the workout itself.
func Title(w workout.Workout) string {
	at := w.CreatedAt()
	return fmt.Sprintf("%s on %s %d", w.Kind(), at.Month(), at.Day())
}

func Popup(w workout.Workout) string {
	return w.Icon() + " " + Title(w)
}

// Detail is one icon/value/unit cell of a list entry.
type Detail struct {
	Icon  string
	Value string
	Unit  string
}

func Details(w workout.Workout) []Detail {
	ds := []Detail{
		{Icon: w.Icon(), Value: number(w.Distance()), Unit: "km"},
		{Icon: "⏱", Value: number(w.Duration()), Unit: "min"},
		{Icon: "⚡️", Value: strconv.FormatFloat(w.Rate(), 'f', 1, 64), Unit: w.RateUnit()},
	}
	if s, ok := w.Running(); ok {
		ds = append(ds, Detail{Icon: "🦶🏼", Value: number(s.Cadence), Unit: "spm"})
	}
	if s, ok := w.Cycling(); ok {
		ds = append(ds, Detail{Icon: "⛰", Value: number(s.ElevationGain), Unit: "m"})
	}
	return ds
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Entry is the single-line text form of a list entry.
func Entry(w workout.Workout) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%-24s", Title(w))
	for _, d := range Details(w) {
		fmt.Fprintf(&buf, "  %s %s %s", d.Icon, d.Value, d.Unit)
	}
	fmt.Fprintf(&buf, "  [%s]", w.ID())
	return buf.String()
}

var itemTmpl = template.Must(template.New("workout").Parse(
	`<li class="workout workout--{{.Class}}" data-id="{{.ID}}">
  <h2 class="workout__title">{{.Title}}</h2>
{{- range .Details}}
  <div class="workout__details">
    <span class="workout__icon">{{.Icon}}</span>
    <span class="workout__value">{{.Value}}</span>
    <span class="workout__unit">{{.Unit}}</span>
  </div>
{{- end}}
</li>
`))

type item struct {
	Class   string
	ID      string
	Title   string
	Details []Detail
}

// HTML writes the list item markup for w.
func HTML(out io.Writer, w workout.Workout) error {
	return itemTmpl.Execute(out, item{
		Class:   className(w.Kind()),
		ID:      w.ID(),
		Title:   Title(w),
		Details: Details(w),
	})
}

func className(k workout.Kind) string {
	if k == workout.Running {
		return "running"
	}
	return "cycling"
}

// HTMLList renders items newest first, the way entries stack up under the
// form.
func HTMLList(out io.Writer, ws []workout.Workout) error {
	for i := len(ws) - 1; i >= 0; i-- {
		if err := HTML(out, ws[i]); err != nil {
			return err
		}
	}
	return nil
}

// TextList prints one Entry line per rendered workout.
type TextList struct {
	W io.Writer
}

func (l TextList) RenderWorkout(w workout.Workout) {
	fmt.Fprintln(l.W, Entry(w))
}
