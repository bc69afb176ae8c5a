// Package notify keeps the bounded stack of pop-up notices shown by the shell.
package notify

import (
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/Geek-master-100/ai-customer-reception/internal/loop"
	"github.com/Geek-master-100/ai-customer-reception/pkg/randid"
)

// Notice geometry in pixels and the visible cap.
const (
	Width      = 300
	Height     = 100
	Margin     = 20
	Gap        = 10
	MaxVisible = 5

	DefaultDuration = 5 * time.Second
)

// Notice is one visible pop-up. Slot 0 sits at the bottom-right anchor and
// higher slots stack upward.
type Notice struct {
	ID       string
	Platform string
	Title    string
	Body     string
	Slot     int
}

// Rect is a screen area in pixels.
type Rect struct {
	X, Y, W, H int
}

// Point is a pixel origin.
type Point struct {
	X, Y int
}

// Position returns the top-left origin of the notice in slot on screen.
func Position(screen Rect, slot int) Point {
	return Point{
		X: screen.X + screen.W - Width - Margin,
		Y: screen.Y + screen.H - Height - Margin - (Height+Gap)*slot,
	}
}

type entry struct {
	notice Notice
	timer  loop.Timer
}

// Aggregator owns the visible notices. It must only be used from the
// coordinating loop.
type Aggregator struct {
	sched   loop.Scheduler
	log     zerolog.Logger
	entries []*entry

	onChange []func([]Notice)
	onClick  []func(platform string)
}

// New creates an empty aggregator.
func New(sched loop.Scheduler, log zerolog.Logger) *Aggregator {
	return &Aggregator{sched: sched, log: log}
}

// OnChange registers fn to receive the visible notices after every change.
func (a *Aggregator) OnChange(fn func([]Notice)) { a.onChange = append(a.onChange, fn) }

// OnClick registers fn to receive the platform of a clicked notice.
func (a *Aggregator) OnClick(fn func(platform string)) { a.onClick = append(a.onClick, fn) }

// Notify shows a notice for duration, evicting the oldest when MaxVisible are
// already shown. A non-positive duration uses DefaultDuration.
func (a *Aggregator) Notify(platform, title, body string, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultDuration
	}

	for len(a.entries) >= MaxVisible {
		oldest := a.entries[0]
		a.entries = a.entries[1:]
		oldest.timer.Stop()
		a.log.Debug().Str("id", oldest.notice.ID).Msg("evicted notice")
	}

	e := &entry{notice: Notice{
		ID:       "n-" + randid.Generate(8),
		Platform: platform,
		Title:    title,
		Body:     body,
	}}
	id := e.notice.ID
	e.timer = a.sched.AfterFunc(duration, func() { a.remove(id, "expired") })
	a.entries = append(a.entries, e)

	a.log.Debug().Str("id", id).Str("platform", platform).Msg("notice shown")
	a.changed()
	return id
}

// Dismiss removes a notice. Returns false if it is no longer visible.
func (a *Aggregator) Dismiss(id string) bool {
	return a.remove(id, "dismissed")
}

// Click dismisses a notice and signals its platform to the click listeners.
func (a *Aggregator) Click(id string) bool {
	i := a.indexOf(id)
	if i < 0 {
		return false
	}
	platform := a.entries[i].notice.Platform
	a.remove(id, "clicked")

	for _, fn := range a.onClick {
		fn(platform)
	}
	return true
}

// ClearAll removes every notice.
func (a *Aggregator) ClearAll() {
	if len(a.entries) == 0 {
		return
	}
	for _, e := range a.entries {
		e.timer.Stop()
	}
	a.entries = nil
	a.changed()
}

// Notices returns the visible notices, oldest first, with contiguous slots.
func (a *Aggregator) Notices() []Notice {
	out := make([]Notice, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.notice
		out[i].Slot = i
	}
	return out
}

// Len returns the number of visible notices.
func (a *Aggregator) Len() int { return len(a.entries) }

func (a *Aggregator) remove(id, reason string) bool {
	i := a.indexOf(id)
	if i < 0 {
		return false
	}
	a.entries[i].timer.Stop()
	a.entries = slices.Delete(a.entries, i, i+1)

	a.log.Debug().Str("id", id).Str("reason", reason).Msg("notice removed")
	a.changed()
	return true
}

func (a *Aggregator) indexOf(id string) int {
	return slices.IndexFunc(a.entries, func(e *entry) bool { return e.notice.ID == id })
}

func (a *Aggregator) changed() {
	if len(a.onChange) == 0 {
		return
	}
	notices := a.Notices()
	for _, fn := range a.onChange {
		fn(notices)
	}
}
