package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Geek-master-100/ai-customer-reception/internal/desk"
	"github.com/Geek-master-100/ai-customer-reception/internal/loop"
)

// Backend is the part of desk.Remote the shell drives. Calls block until the
// coordinating loop has run them.
type Backend interface {
	Changes() <-chan struct{}
	Snapshot(ctx context.Context) (desk.Snapshot, error)
	Focus(ctx context.Context, platform string) error
	OpenShop(ctx context.Context, platform, sessionID string) error
	NewShop(ctx context.Context, platform string) (string, error)
	SelectTab(ctx context.Context, platform string, i int) error
	CloseTab(ctx context.Context, platform string, i int) error
	ShowShops(ctx context.Context, platform string) error
	DismissNotice(ctx context.Context, id string) error
	ClickNotice(ctx context.Context, id string) error
}

var _ Backend = (*desk.Remote)(nil)

// snapshotMsg carries a fresh copy of the desk state.
type snapshotMsg struct {
	snap desk.Snapshot
	err  error
}

// changedMsg is sent when the desk reports a change.
type changedMsg struct{}

// actionDoneMsg is sent when a backend action returns.
type actionDoneMsg struct {
	err error
}

// Model is the Bubble Tea model of the shell. It only renders snapshots; all
// state lives in the desk.
type Model struct {
	ctx     context.Context
	backend Backend
	keys    keyMap
	help    help.Model

	snap    desk.Snapshot
	loaded  bool
	cursors map[string]int // platform -> saved shop cursor
	width   int
	height  int
	err     error

	preview    Preview
	previewing bool
	quitting   bool
}

// New creates the shell model. ctx bounds every backend call.
func New(ctx context.Context, backend Backend) Model {
	return Model{
		ctx:     ctx,
		backend: backend,
		keys:    defaultKeyMap(),
		help:    help.New(),
		cursors: map[string]int{},
	}
}

// Init loads the first snapshot and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.waitForChange())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			if errors.Is(msg.err, loop.ErrStopped) || errors.Is(msg.err, context.Canceled) {
				m.quitting = true
				return m, tea.Quit
			}
			m.err = msg.err
			return m, nil
		}
		m.snap = msg.snap
		m.loaded = true
		m.clampCursors()
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.fetch(), m.waitForChange())

	case actionDoneMsg:
		m.err = msg.err
		return m, m.fetch()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" || (!m.previewing && key.Matches(msg, m.keys.Quit)) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.previewing {
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Preview), key.Matches(msg, m.keys.Quit):
			m.previewing = false
		case key.Matches(msg, m.keys.Up):
			m.preview.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.preview.ScrollDown()
		}
		return m, nil
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		if i := int(s[0] - '1'); i < len(m.snap.Platforms) {
			return m, m.focusIndex(i)
		}
		return m, nil
	}

	p, ok := m.focused()

	switch {
	case key.Matches(msg, m.keys.NextPlatform):
		return m, m.focusIndex(m.focusedIndex() + 1)

	case key.Matches(msg, m.keys.PrevPlatform):
		return m, m.focusIndex(m.focusedIndex() - 1)

	case key.Matches(msg, m.keys.Up):
		if ok && p.View == desk.ViewShopSelection && m.cursors[p.ID] > 0 {
			m.cursors[p.ID]--
		}

	case key.Matches(msg, m.keys.Down):
		if ok && p.View == desk.ViewShopSelection && m.cursors[p.ID] < len(p.Saved)-1 {
			m.cursors[p.ID]++
		}

	case key.Matches(msg, m.keys.Open):
		if ok && p.View == desk.ViewShopSelection && len(p.Saved) > 0 {
			sessionID := p.Saved[m.cursors[p.ID]].SessionID
			return m, m.do(func(ctx context.Context) error {
				return m.backend.OpenShop(ctx, p.ID, sessionID)
			})
		}

	case key.Matches(msg, m.keys.NewShop):
		if ok {
			return m, m.do(func(ctx context.Context) error {
				_, err := m.backend.NewShop(ctx, p.ID)
				return err
			})
		}

	case key.Matches(msg, m.keys.CloseTab):
		if ok && p.View == desk.ViewSessionTabs && p.Active >= 0 {
			return m, m.do(func(ctx context.Context) error {
				return m.backend.CloseTab(ctx, p.ID, p.Active)
			})
		}

	case key.Matches(msg, m.keys.Shops):
		if ok && p.View != desk.ViewShopSelection {
			return m, m.do(func(ctx context.Context) error {
				return m.backend.ShowShops(ctx, p.ID)
			})
		}

	case key.Matches(msg, m.keys.PrevTab):
		if ok && p.Active > 0 {
			return m, m.selectTab(p.ID, p.Active-1)
		}

	case key.Matches(msg, m.keys.NextTab):
		if ok && p.Active >= 0 && p.Active < len(p.Tabs)-1 {
			return m, m.selectTab(p.ID, p.Active+1)
		}

	case key.Matches(msg, m.keys.Dismiss):
		if id, found := m.newestNotice(); found {
			return m, m.do(func(ctx context.Context) error {
				return m.backend.DismissNotice(ctx, id)
			})
		}

	case key.Matches(msg, m.keys.OpenNotice):
		if id, found := m.newestNotice(); found {
			return m, m.do(func(ctx context.Context) error {
				return m.backend.ClickNotice(ctx, id)
			})
		}

	case key.Matches(msg, m.keys.Preview):
		if m.snap.LastRaw != nil {
			m.preview = NewPreview(*m.snap.LastRaw, m.width, m.height)
			m.previewing = true
		}
	}

	return m, nil
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.backend.Snapshot(m.ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	changes, ctx := m.backend.Changes(), m.ctx
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) do(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: fn(m.ctx)}
	}
}

func (m Model) selectTab(platform string, i int) tea.Cmd {
	return m.do(func(ctx context.Context) error {
		return m.backend.SelectTab(ctx, platform, i)
	})
}

// focusIndex focuses the platform at i, wrapping around.
func (m Model) focusIndex(i int) tea.Cmd {
	n := len(m.snap.Platforms)
	if n == 0 {
		return nil
	}
	id := m.snap.Platforms[((i%n)+n)%n].ID
	if id == m.snap.Focused {
		return nil
	}
	return m.do(func(ctx context.Context) error {
		return m.backend.Focus(ctx, id)
	})
}

func (m Model) focusedIndex() int {
	for i, p := range m.snap.Platforms {
		if p.ID == m.snap.Focused {
			return i
		}
	}
	return 0
}

func (m Model) focused() (desk.PlatformState, bool) {
	for _, p := range m.snap.Platforms {
		if p.ID == m.snap.Focused {
			return p, true
		}
	}
	return desk.PlatformState{}, false
}

func (m Model) newestNotice() (string, bool) {
	if len(m.snap.Notices) == 0 {
		return "", false
	}
	return m.snap.Notices[len(m.snap.Notices)-1].ID, true
}

// clampCursors keeps every cursor inside its platform's saved list.
func (m Model) clampCursors() {
	for _, p := range m.snap.Platforms {
		c := m.cursors[p.ID]
		switch {
		case len(p.Saved) == 0:
			c = 0
		case c >= len(p.Saved):
			c = len(p.Saved) - 1
		}
		m.cursors[p.ID] = c
	}
}
