// Package chrome implements browser integration using go-rod and a local Chrome.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/Geek-master-100/ai-customer-reception/internal/integration/browser"
)

// Config configures the Chrome instances started for sessions.
type Config struct {
	Bin      string // browser binary; empty uses rod's lookup
	Headless bool
}

// Launcher starts one Chrome process per session so every session gets its own
// user-data directory.
type Launcher struct {
	cfg Config
	log zerolog.Logger
}

var _ browser.Launcher = (*Launcher)(nil)

// New creates a rod launcher.
func New(cfg Config, log zerolog.Logger) *Launcher {
	return &Launcher{cfg: cfg, log: log}
}

// Name returns the integration name.
func (l *Launcher) Name() string {
	return "rod"
}

// LookPath reports the browser binary sessions will use.
func (l *Launcher) LookPath() (string, bool) {
	if l.cfg.Bin != "" {
		if _, err := os.Stat(l.cfg.Bin); err != nil {
			return l.cfg.Bin, false
		}
		return l.cfg.Bin, true
	}
	return launcher.LookPath()
}

// Launch starts Chrome with p.Dir as its profile and opens a blank page.
func (l *Launcher) Launch(ctx context.Context, p browser.Partition, ev browser.Events) (browser.Page, error) {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	launch := launcher.New().
		Context(ctx).
		UserDataDir(p.Dir).
		Headless(l.cfg.Headless)
	if l.cfg.Bin != "" {
		launch = launch.Bin(l.cfg.Bin)
	}

	controlURL, err := launch.Launch()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		launch.Kill()
		cancel()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		launch.Kill()
		cancel()
		return nil, fmt.Errorf("create page: %w", err)
	}

	// Subscribe before the first navigation so no load or console event is missed.
	wait := page.Context(ctx).EachEvent(
		func(e *proto.RuntimeConsoleAPICalled) {
			if ev.Console != nil {
				ev.Console(stringifyConsoleArgs(e.Args))
			}
		},
		func(e *proto.PageLoadEventFired) {
			if ev.LoadFinished != nil {
				ev.LoadFinished(true)
			}
		},
	)
	go wait()

	l.log.Debug().Str("session_id", p.SessionID).Str("profile", p.Dir).Msg("chrome started")

	return &Page{
		page:     page,
		browser:  b,
		launcher: launch,
		cancel:   cancel,
		events:   ev,
	}, nil
}

// Page is a rod-backed browser.Page.
type Page struct {
	page     *rod.Page
	browser  *rod.Browser
	launcher *launcher.Launcher
	cancel   context.CancelFunc
	events   browser.Events

	closeOnce sync.Once
	closeErr  error
}

// Navigate loads url. A failed navigation is reported as an unsuccessful load.
func (p *Page) Navigate(url string) error {
	if err := p.page.Navigate(url); err != nil {
		if p.events.LoadFinished != nil {
			p.events.LoadFinished(false)
		}
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

// Evaluate runs code as a top-level script and returns its value.
func (p *Page) Evaluate(code string) (string, error) {
	res, err := proto.RuntimeEvaluate{
		Expression:    code,
		ReturnByValue: true,
	}.Call(p.page)
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}
	if res.ExceptionDetails != nil {
		return "", errors.New("script exception: " + res.ExceptionDetails.Text)
	}
	if res.Result == nil || res.Result.Value.Nil() {
		return "", nil
	}
	return res.Result.Value.String(), nil
}

// Close shuts down the page, its browser and the Chrome process.
func (p *Page) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.browser.Close()
		p.launcher.Kill()
		p.cancel()
	})
	return p.closeErr
}

func stringifyConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if !a.Value.Nil() {
			parts = append(parts, a.Value.String())
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}
