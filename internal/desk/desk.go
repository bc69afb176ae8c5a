package desk

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/config"
	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
	"github.com/Geek-master-100/ai-customer-reception/internal/loop"
	"github.com/Geek-master-100/ai-customer-reception/internal/notify"
	"github.com/Geek-master-100/ai-customer-reception/pkg/tmpl"
)

// How long status messages stay visible.
const (
	shopStatusTTL = 3 * time.Second
	tabStatusTTL  = 5 * time.Second
)

// Options configures a Desk.
type Options struct {
	Config *config.Config
	Deps   Deps
}

// PlatformState is a snapshot of one platform page.
type PlatformState struct {
	ID     string
	Name   string
	Badge  int
	View   View
	Tabs   []TabInfo
	Active int
	Saved  []shop.Record
}

// Snapshot is a copy of the desk state that is safe to hand to other
// goroutines.
type Snapshot struct {
	Focused   string
	Platforms []PlatformState
	Notices   []notify.Notice
	Status    string
	LastRaw   *RawMessage
}

// Desk is the shell state: one Manager per enabled platform, the per-platform
// unread badges, the notice stack and a transient status line. It must only be
// used from the coordinating loop.
type Desk struct {
	cfg      *config.Config
	sched    loop.Scheduler
	bus      *Bus
	log      zerolog.Logger
	managers []*Manager
	byID     map[string]*Manager
	notices  *notify.Aggregator

	focused     string
	unread      map[string]map[string]int // platform -> session -> count
	status      string
	statusTimer loop.Timer
	lastRaw     *RawMessage

	onChange []func()
}

// New builds the desk for the enabled platforms in cfg.
func New(opts Options) *Desk {
	deps := opts.Deps
	if deps.Bus == nil {
		deps.Bus = &Bus{}
	}
	if deps.ProfilesDir == "" {
		deps.ProfilesDir = opts.Config.ProfilesPath()
	}

	d := &Desk{
		cfg:     opts.Config,
		sched:   deps.Scheduler,
		bus:     deps.Bus,
		log:     deps.Log,
		byID:    map[string]*Manager{},
		notices: notify.New(deps.Scheduler, deps.Log.With().Str("component", "notify").Logger()),
		unread:  map[string]map[string]int{},
	}

	for _, p := range opts.Config.EnabledPlatforms() {
		m := NewManager(p, deps)
		d.managers = append(d.managers, m)
		d.byID[p.ID] = m
	}
	if len(d.managers) > 0 {
		d.focused = d.managers[0].Platform().ID
	}

	d.bus.Subscribe(d.handle)
	d.notices.OnClick(func(platform string) {
		if err := d.Focus(platform); err != nil {
			d.log.Warn().Err(err).Msg("notice click")
		}
	})
	d.notices.OnChange(func([]notify.Notice) { d.changed() })

	return d
}

// OnChange registers fn to run after any state change.
func (d *Desk) OnChange(fn func()) { d.onChange = append(d.onChange, fn) }

// Bus returns the event bus the managers publish on.
func (d *Desk) Bus() *Bus { return d.bus }

// Notices returns the notice aggregator.
func (d *Desk) Notices() *notify.Aggregator { return d.notices }

// Managers returns the platform managers in configured order.
func (d *Desk) Managers() []*Manager { return d.managers }

// Manager returns the manager of platform id.
func (d *Desk) Manager(id string) (*Manager, error) {
	m, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, id)
	}
	return m, nil
}

// Focus switches the shell to platform id.
func (d *Desk) Focus(id string) error {
	if _, err := d.Manager(id); err != nil {
		return err
	}
	d.focused = id
	d.changed()
	return nil
}

// Focused returns the focused platform id.
func (d *Desk) Focused() string { return d.focused }

// Badge returns the unread total of platform id across its open sessions.
func (d *Desk) Badge(id string) int {
	total := 0
	for _, n := range d.unread[id] {
		total += n
	}
	return total
}

// Status returns the current status line.
func (d *Desk) Status() string { return d.status }

// OpenSaved opens every saved shop of every enabled platform.
func (d *Desk) OpenSaved(ctx context.Context) int {
	n := 0
	for _, m := range d.managers {
		for _, r := range m.ListSavedShops() {
			m.OpenShop(ctx, r)
			n++
		}
	}
	d.changed()
	return n
}

// Snapshot copies the current state.
func (d *Desk) Snapshot() Snapshot {
	s := Snapshot{
		Focused: d.focused,
		Notices: d.notices.Notices(),
		Status:  d.status,
	}
	if d.lastRaw != nil {
		raw := *d.lastRaw
		s.LastRaw = &raw
	}
	for _, m := range d.managers {
		p := m.Platform()
		s.Platforms = append(s.Platforms, PlatformState{
			ID:     p.ID,
			Name:   p.Name,
			Badge:  d.Badge(p.ID),
			View:   m.View(),
			Tabs:   m.Tabs(),
			Active: m.Active(),
			Saved:  m.ListSavedShops(),
		})
	}
	return s
}

// Shutdown closes every session and clears the notices.
func (d *Desk) Shutdown() {
	for _, m := range d.managers {
		m.CloseAll()
	}
	d.notices.ClearAll()
	if d.statusTimer != nil {
		d.statusTimer.Stop()
		d.statusTimer = nil
	}
	d.unread = map[string]map[string]int{}
	d.log.Info().Msg("desk shut down")
}

func (d *Desk) handle(ev Event) {
	d.log.Debug().Str("event", ev.Name()).Str("platform", ev.PlatformID()).Msg("desk event")

	switch e := ev.(type) {
	case UnreadChanged:
		d.handleUnread(e)
	case SessionClosed:
		if sessions := d.unread[e.Platform]; sessions != nil {
			delete(sessions, e.SessionID)
		}
	case ShopUpdated:
		d.setStatus(fmt.Sprintf("%s shop updated: %s", e.Platform, e.Shop.DisplayName()), shopStatusTTL)
	case TabChanged:
		d.setStatus(fmt.Sprintf("Current: %s - %s", e.Platform, e.Title), tabStatusTTL)
	case RawMessage:
		raw := e
		d.lastRaw = &raw
	}

	d.changed()
}

func (d *Desk) handleUnread(e UnreadChanged) {
	sessions := d.unread[e.Platform]
	if sessions == nil {
		sessions = map[string]int{}
		d.unread[e.Platform] = sessions
	}

	if !e.Event.Unread() {
		delete(sessions, e.SessionID)
		return
	}
	sessions[e.SessionID] = e.Event.Count

	if !d.cfg.Notifications.IsEnabled() {
		return
	}

	data := config.NoticeTemplateData{
		Platform: e.Platform,
		Name:     e.Platform,
		Count:    e.Event.Count,
	}
	if m, ok := d.byID[e.Platform]; ok && m.Platform().Name != "" {
		data.Name = m.Platform().Name
	}

	title, err := tmpl.Render(d.cfg.Notifications.Title, data)
	if err != nil {
		d.log.Error().Err(err).Msg("render notice title")
		return
	}
	body, err := tmpl.Render(d.cfg.Notifications.Body, data)
	if err != nil {
		d.log.Error().Err(err).Msg("render notice body")
		return
	}

	d.notices.Notify(e.Platform, title, body, d.cfg.Notifications.Duration)
}

func (d *Desk) setStatus(msg string, ttl time.Duration) {
	if d.statusTimer != nil {
		d.statusTimer.Stop()
	}
	d.status = msg
	d.statusTimer = d.sched.AfterFunc(ttl, func() {
		d.statusTimer = nil
		d.status = ""
		d.changed()
	})
}

func (d *Desk) changed() {
	for _, fn := range d.onChange {
		fn()
	}
}
