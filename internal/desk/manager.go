// Package desk orchestrates the embedded seller sessions: one Manager per
// platform owns its tabs and sessions, and Desk ties the managers to unread
// badges, notices and the status line.
package desk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/bridge"
	"github.com/Geek-master-100/ai-customer-reception/internal/core/config"
	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
	"github.com/Geek-master-100/ai-customer-reception/internal/integration/browser"
	"github.com/Geek-master-100/ai-customer-reception/internal/loop"
	"github.com/Geek-master-100/ai-customer-reception/internal/scripts"
)

var (
	// ErrUnknownPlatform is returned for platform ids that are not configured.
	ErrUnknownPlatform = errors.New("unknown platform")
	// ErrNoSuchTab is returned for tab indexes that are out of range.
	ErrNoSuchTab = errors.New("no such tab")
)

// View is the state of a platform page.
type View int

const (
	ViewShopSelection View = iota
	ViewSessionTabs
)

func (v View) String() string {
	switch v {
	case ViewShopSelection:
		return "shops"
	case ViewSessionTabs:
		return "tabs"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// Deps are the collaborators shared by every Manager.
type Deps struct {
	Store       shop.Store
	Launcher    browser.Launcher
	Scripts     scripts.Source
	Scheduler   loop.Scheduler
	Bus         *Bus
	ProfilesDir string
	InjectDelay time.Duration
	Log         zerolog.Logger

	// NewID generates session ids for new accounts. Defaults to uuid.NewString.
	NewID func() string
	// Go is handed to bridges to run browser work. Defaults to a goroutine.
	Go func(fn func())
}

// TabInfo describes one open tab.
type TabInfo struct {
	SessionID string
	Title     string
	Unread    int
	Active    bool
	Attached  bool
}

type tab struct {
	sessionID string
	title     string
	unread    int
	bridge    *bridge.Bridge
}

// Manager is the session orchestrator of one platform. It must only be used
// from the coordinating loop.
type Manager struct {
	platform config.Platform
	deps     Deps
	log      zerolog.Logger

	view   View
	tabs   []*tab
	index  map[string]int // sessionID -> tab index
	active int
}

// NewManager creates a manager showing the shop selection.
func NewManager(p config.Platform, deps Deps) *Manager {
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Bus == nil {
		deps.Bus = &Bus{}
	}
	return &Manager{
		platform: p,
		deps:     deps,
		log:      deps.Log.With().Str("platform", p.ID).Logger(),
		view:     ViewShopSelection,
		index:    map[string]int{},
		active:   -1,
	}
}

// Platform returns the managed platform.
func (m *Manager) Platform() config.Platform { return m.platform }

// View returns the current view state.
func (m *Manager) View() View { return m.view }

// Active returns the active tab index, or -1 when no tab is open.
func (m *Manager) Active() int { return m.active }

// Len returns the number of open tabs.
func (m *Manager) Len() int { return len(m.tabs) }

// TabIndex returns the tab bound to sessionID.
func (m *Manager) TabIndex(sessionID string) (int, bool) {
	i, ok := m.index[sessionID]
	return i, ok
}

// Tabs returns a description of the open tabs in order.
func (m *Manager) Tabs() []TabInfo {
	out := make([]TabInfo, len(m.tabs))
	for i, t := range m.tabs {
		out[i] = TabInfo{
			SessionID: t.sessionID,
			Title:     t.title,
			Unread:    t.unread,
			Active:    i == m.active,
			Attached:  t.bridge.Attached(),
		}
	}
	return out
}

// Session returns the bridge bound to sessionID.
func (m *Manager) Session(sessionID string) (*bridge.Bridge, bool) {
	i, ok := m.index[sessionID]
	if !ok {
		return nil, false
	}
	return m.tabs[i].bridge, true
}

// ListSavedShops returns the persisted shops of the platform.
func (m *Manager) ListSavedShops() []shop.Record {
	return m.deps.Store.GetShops(m.platform.ID)
}

// OpenShop activates the tab of r's session, creating the session when none is
// live. It returns the tab index.
func (m *Manager) OpenShop(ctx context.Context, r shop.Record) int {
	if i, ok := m.index[r.SessionID]; ok {
		m.log.Debug().Str("session_id", r.SessionID).Msg("session already open, activating tab")
		m.activate(i)
		return i
	}

	sessionID := r.SessionID
	b := bridge.New(bridge.Options{
		Platform:    m.platform.ID,
		SessionID:   sessionID,
		Partition:   browser.PartitionFor(m.deps.ProfilesDir, m.platform.ID, sessionID),
		Launcher:    m.deps.Launcher,
		Scripts:     m.deps.Scripts,
		Scheduler:   m.deps.Scheduler,
		InjectDelay: m.deps.InjectDelay,
		Log:         m.deps.Log.With().Str("component", "bridge").Logger(),
		Go:          m.deps.Go,
	})
	b.OnUserInfo(func(rec shop.Record) { m.handleUserInfo(sessionID, rec) })
	b.OnUnread(func(ev shop.NewMessageEvent) { m.handleUnread(sessionID, ev) })
	b.OnRawMessage(func(p json.RawMessage) { m.handleRaw(sessionID, p) })

	title := r.UserName
	if title == "" {
		title = PlaceholderTitle(m.platform.ID)
	}

	m.tabs = append(m.tabs, &tab{sessionID: sessionID, title: title, bridge: b})
	b.LoadURL(m.platform.ChatURL)
	b.Start(ctx)

	i := len(m.tabs) - 1
	m.index[sessionID] = i
	m.log.Info().Str("session_id", sessionID).Str("title", title).Msg("session opened")

	m.activate(i)
	return i
}

// CreateNewShop opens a session for an account that has not logged in yet and
// returns its session id.
func (m *Manager) CreateNewShop(ctx context.Context) string {
	id := m.deps.NewID()
	m.OpenShop(ctx, shop.Record{SessionID: id, Platform: m.platform.ID})
	return id
}

// CloseShop tears down the session of tab i. The tab mapping is re-indexed and
// the manager returns to the shop selection once no tab is left. Any move of
// the active index is published as TabChanged.
func (m *Manager) CloseShop(i int) error {
	if i < 0 || i >= len(m.tabs) {
		return fmt.Errorf("%w: %d", ErrNoSuchTab, i)
	}

	t := m.tabs[i]
	t.bridge.Close()

	delete(m.index, t.sessionID)
	for id, j := range m.index {
		if j > i {
			m.index[id] = j - 1
		}
	}
	m.tabs = slices.Delete(m.tabs, i, i+1)

	m.log.Info().Str("session_id", t.sessionID).Msg("session closed")
	m.deps.Bus.Publish(SessionClosed{Platform: m.platform.ID, SessionID: t.sessionID})

	if len(m.tabs) == 0 {
		m.active = -1
		m.view = ViewShopSelection
		return nil
	}

	switch {
	case m.active > i:
		m.active--
		m.publishTab()
	case m.active == i:
		m.active = min(i, len(m.tabs)-1)
		m.publishTab()
	}
	return nil
}

// ShowShopSelection switches to the shop selection and returns the freshly
// listed shops. Open sessions stay alive.
func (m *Manager) ShowShopSelection() []shop.Record {
	m.view = ViewShopSelection
	return m.ListSavedShops()
}

// SelectTab activates tab i.
func (m *Manager) SelectTab(i int) error {
	if i < 0 || i >= len(m.tabs) {
		return fmt.Errorf("%w: %d", ErrNoSuchTab, i)
	}
	m.activate(i)
	return nil
}

// CloseAll tears down every session.
func (m *Manager) CloseAll() {
	for _, t := range m.tabs {
		t.bridge.Close()
	}
	m.tabs = nil
	m.index = map[string]int{}
	m.active = -1
	m.view = ViewShopSelection
}

func (m *Manager) activate(i int) {
	m.view = ViewSessionTabs
	if m.active == i {
		return
	}
	m.active = i
	m.publishTab()
}

func (m *Manager) publishTab() {
	m.deps.Bus.Publish(TabChanged{Platform: m.platform.ID, Index: m.active, Title: m.tabs[m.active].title})
}

func (m *Manager) handleUserInfo(sessionID string, r shop.Record) {
	if m.deps.Store.AddShop(m.platform.ID, r) {
		m.log.Info().Str("session_id", sessionID).Str("user", r.DisplayName()).Msg("shop saved")
	}

	// Tabs carry the user name. Identities without one fall back to the user id.
	label := r.UserName
	if label == "" {
		label = r.UserID
	}
	if i, ok := m.index[sessionID]; ok {
		t := m.tabs[i]
		t.title = WithBadge(label, t.unread)
	}

	m.deps.Bus.Publish(ShopUpdated{Platform: m.platform.ID, Shop: r})
}

func (m *Manager) handleUnread(sessionID string, ev shop.NewMessageEvent) {
	if i, ok := m.index[sessionID]; ok {
		t := m.tabs[i]
		t.unread = 0
		if ev.Unread() {
			t.unread = ev.Count
		}
		t.title = WithBadge(t.title, t.unread)
	}

	m.deps.Bus.Publish(UnreadChanged{Platform: m.platform.ID, SessionID: sessionID, Event: ev})
}

func (m *Manager) handleRaw(sessionID string, payload json.RawMessage) {
	m.log.Debug().Str("session_id", sessionID).RawJSON("payload", payload).Msg("raw message")
	m.deps.Bus.Publish(RawMessage{Platform: m.platform.ID, SessionID: sessionID, Payload: payload})
}
