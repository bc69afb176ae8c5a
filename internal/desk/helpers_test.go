package desk

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/bridge"
	"github.com/Geek-master-100/ai-customer-reception/internal/core/config"
	"github.com/Geek-master-100/ai-customer-reception/internal/integration/browser"
	"github.com/Geek-master-100/ai-customer-reception/internal/loop/looptest"
	"github.com/Geek-master-100/ai-customer-reception/internal/store/jsonfile"
)

type fakePage struct {
	navigated []string
	closed    bool
}

func (p *fakePage) Navigate(url string) error {
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) Evaluate(string) (string, error) { return "", nil }

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// fakeLauncher hands out one fake page per session and keeps the event sinks
// so tests can play page output back.
type fakeLauncher struct {
	launches int
	pages    map[string]*fakePage
	events   map[string]browser.Events
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{
		pages:  map[string]*fakePage{},
		events: map[string]browser.Events{},
	}
}

func (l *fakeLauncher) Name() string { return "fake" }

func (l *fakeLauncher) Launch(_ context.Context, p browser.Partition, ev browser.Events) (browser.Page, error) {
	l.launches++
	page := &fakePage{}
	l.pages[p.SessionID] = page
	l.events[p.SessionID] = ev
	return page, nil
}

type fakeScripts struct{}

func (fakeScripts) Script(string) (string, error) { return "", nil }

type env struct {
	sched    *looptest.Manual
	launcher *fakeLauncher
	store    *jsonfile.ShopStore
	bus      *Bus
	deps     Deps
	ids      int
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		sched:    looptest.NewManual(),
		launcher: newFakeLauncher(),
		store:    jsonfile.NewShopStore(filepath.Join(t.TempDir(), "shops.json"), zerolog.Nop()),
		bus:      &Bus{},
	}
	e.store.Load()
	e.deps = Deps{
		Store:       e.store,
		Launcher:    e.launcher,
		Scripts:     fakeScripts{},
		Scheduler:   e.sched,
		Bus:         e.bus,
		ProfilesDir: t.TempDir(),
		Log:         zerolog.Nop(),
		NewID: func() string {
			e.ids++
			return "new-" + strconv.Itoa(e.ids)
		},
		Go: func(fn func()) { fn() },
	}
	return e
}

func (e *env) events() *[]Event {
	var got []Event
	e.bus.Subscribe(func(ev Event) { got = append(got, ev) })
	return &got
}

// console plays a host-bound line from the page of sessionID.
func (e *env) console(sessionID, body string) {
	e.launcher.events[sessionID].Console(bridge.Marker + body)
	e.sched.Drain()
}

func pddPlatform() config.Platform {
	return config.Platform{ID: "pdd", Name: "Pinduoduo", ChatURL: "https://mms.pinduoduo.com/chat-merchant/index.html#/"}
}
