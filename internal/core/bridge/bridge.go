package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
	"github.com/Geek-master-100/ai-customer-reception/internal/integration/browser"
	"github.com/Geek-master-100/ai-customer-reception/internal/loop"
	"github.com/Geek-master-100/ai-customer-reception/internal/scripts"
)

// DefaultInjectDelay lets the target page finish its own initialization before
// the platform script runs.
const DefaultInjectDelay = 2000 * time.Millisecond

var (
	// ErrDetached is returned when the bridge has no live page.
	ErrDetached = errors.New("session has no page")
	// ErrClosed is returned by operations on a torn-down bridge.
	ErrClosed = errors.New("session closed")
)

// Options configures a Bridge.
type Options struct {
	Platform    string
	SessionID   string
	Partition   browser.Partition
	Launcher    browser.Launcher
	Scripts     scripts.Source
	Scheduler   loop.Scheduler
	InjectDelay time.Duration
	Log         zerolog.Logger

	// Go runs blocking browser work off the loop. Defaults to a new goroutine.
	Go func(fn func())
}

// Bridge owns one embedded session: its page, its storage partition and the
// parsing of the page's host-bound messages.
//
// All methods must be called from the coordinating loop. Browser I/O runs on
// other goroutines and reports back through the scheduler; once Close has been
// called every late result is discarded.
type Bridge struct {
	opts Options
	log  zerolog.Logger

	cancel     context.CancelFunc
	page       browser.Page
	launchErr  error
	pendingURL string

	injectScheduled bool
	injectTimer     loop.Timer
	closed          bool

	onUser   []func(shop.Record)
	onUnread []func(shop.NewMessageEvent)
	onRaw    []func(json.RawMessage)
}

// New creates a bridge. Call Start to launch its page.
func New(opts Options) *Bridge {
	if opts.InjectDelay <= 0 {
		opts.InjectDelay = DefaultInjectDelay
	}
	if opts.Go == nil {
		opts.Go = func(fn func()) { go fn() }
	}
	return &Bridge{
		opts: opts,
		log: opts.Log.With().
			Str("platform", opts.Platform).
			Str("session_id", opts.SessionID).
			Logger(),
	}
}

// SessionID returns the session id.
func (b *Bridge) SessionID() string { return b.opts.SessionID }

// Platform returns the platform id.
func (b *Bridge) Platform() string { return b.opts.Platform }

// Partition returns the storage partition owned by the session.
func (b *Bridge) Partition() browser.Partition { return b.opts.Partition }

// Closed reports whether the bridge has been torn down.
func (b *Bridge) Closed() bool { return b.closed }

// Attached reports whether the page is live.
func (b *Bridge) Attached() bool { return b.page != nil }

// LaunchErr returns the error from starting the page, if any.
func (b *Bridge) LaunchErr() error { return b.launchErr }

// OnUserInfo registers fn for user-info-updated events.
func (b *Bridge) OnUserInfo(fn func(shop.Record)) { b.onUser = append(b.onUser, fn) }

// OnUnread registers fn for unread-changed events.
func (b *Bridge) OnUnread(fn func(shop.NewMessageEvent)) { b.onUnread = append(b.onUnread, fn) }

// OnRawMessage registers fn for raw-message events.
func (b *Bridge) OnRawMessage(fn func(json.RawMessage)) { b.onRaw = append(b.onRaw, fn) }

// Start launches the page in the background.
func (b *Bridge) Start(ctx context.Context) {
	if b.closed || b.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	events := browser.Events{
		LoadFinished: func(ok bool) {
			b.opts.Scheduler.Post(func() { b.handleLoadFinished(ok) })
		},
		Console: func(line string) {
			b.opts.Scheduler.Post(func() { b.HandleConsole(line) })
		},
	}

	b.opts.Go(func() {
		page, err := b.opts.Launcher.Launch(ctx, b.opts.Partition, events)
		b.opts.Scheduler.Post(func() { b.attach(page, err) })
	})
}

func (b *Bridge) attach(page browser.Page, err error) {
	if err != nil {
		b.launchErr = err
		if !b.closed {
			b.log.Error().Err(err).Msg("failed to start session page")
		}
		return
	}

	if b.closed {
		b.opts.Go(func() { _ = page.Close() })
		return
	}

	b.page = page
	b.log.Debug().Msg("session page attached")

	if b.pendingURL != "" {
		url := b.pendingURL
		b.pendingURL = ""
		b.navigate(url)
	}
}

// LoadURL navigates the session. Before the page is attached the URL is kept
// and loaded once it is.
func (b *Bridge) LoadURL(url string) {
	if b.closed {
		return
	}
	if b.page == nil {
		b.pendingURL = url
		return
	}
	b.navigate(url)
}

func (b *Bridge) navigate(url string) {
	page := b.page
	b.opts.Go(func() {
		if err := page.Navigate(url); err != nil {
			b.opts.Scheduler.Post(func() {
				if !b.closed {
					b.log.Warn().Err(err).Str("url", url).Msg("navigation failed")
				}
			})
		}
	})
}

// ExecuteScript evaluates code in the page. cb, if set, runs on the loop with
// the result unless the bridge is closed by then.
func (b *Bridge) ExecuteScript(code string, cb func(result string, err error)) {
	if b.closed {
		if cb != nil {
			cb("", ErrClosed)
		}
		return
	}
	if b.page == nil {
		if cb != nil {
			cb("", ErrDetached)
		}
		return
	}

	page := b.page
	b.opts.Go(func() {
		res, err := page.Evaluate(code)
		b.opts.Scheduler.Post(func() {
			if b.closed {
				return
			}
			if cb != nil {
				cb(res, err)
			} else if err != nil {
				b.log.Warn().Err(err).Msg("script failed")
			}
		})
	})
}

func (b *Bridge) handleLoadFinished(ok bool) {
	if b.closed {
		return
	}
	if !ok {
		b.log.Warn().Msg("page load failed")
		return
	}
	if b.injectScheduled {
		return
	}

	b.injectScheduled = true
	b.injectTimer = b.opts.Scheduler.AfterFunc(b.opts.InjectDelay, b.inject)
	b.log.Debug().Dur("delay", b.opts.InjectDelay).Msg("platform script injection scheduled")
}

func (b *Bridge) inject() {
	b.injectTimer = nil
	if b.closed || b.page == nil {
		return
	}

	page, platform, src := b.page, b.opts.Platform, b.opts.Scripts
	b.opts.Go(func() {
		script, err := src.Script(platform)
		if err != nil {
			b.opts.Scheduler.Post(func() {
				if !b.closed {
					b.log.Warn().Err(err).Msg("platform script unavailable, skipping injection")
				}
			})
			return
		}

		_, err = page.Evaluate(HostShim() + script)
		b.opts.Scheduler.Post(func() {
			if b.closed {
				return
			}
			if err != nil {
				b.log.Error().Err(err).Msg("failed to inject platform script")
				return
			}
			b.log.Info().Msg("platform script injected")
		})
	})
}

// HandleConsole processes one diagnostic line from the page.
func (b *Bridge) HandleConsole(line string) {
	if b.closed {
		return
	}

	env, ok, err := ParseLine(line)
	if !ok {
		return
	}
	if err != nil {
		b.log.Warn().Err(err).Msg("dropping bridge message")
		return
	}

	switch env.Type {
	case KindCurrentUser:
		r, err := DecodeUser(env.Payload, b.opts.Platform, b.opts.SessionID)
		if err != nil {
			b.log.Warn().Err(err).Msg("dropping bridge message")
			return
		}
		for _, fn := range b.onUser {
			fn(r)
		}

	case KindNewMessage:
		ev, err := DecodeUnread(env.Payload)
		if err != nil {
			b.log.Warn().Err(err).Msg("dropping bridge message")
			return
		}
		for _, fn := range b.onUnread {
			fn(ev)
		}

	case KindReceiveMessage:
		for _, fn := range b.onRaw {
			fn(env.Payload)
		}

	default:
		b.log.Debug().Str("type", env.Name).Msg("dropping unrecognized bridge message")
	}
}

// Close tears the session down. Pending injections are cancelled and every
// callback that resolves afterwards is ignored.
func (b *Bridge) Close() {
	if b.closed {
		return
	}
	b.closed = true

	if b.injectTimer != nil {
		b.injectTimer.Stop()
		b.injectTimer = nil
	}

	if b.page != nil {
		page := b.page
		b.page = nil
		b.opts.Go(func() {
			if err := page.Close(); err != nil {
				b.opts.Scheduler.Post(func() {
					b.log.Debug().Err(err).Msg("page close")
				})
			}
		})
	}

	if b.cancel != nil {
		b.cancel()
	}

	b.onUser, b.onUnread, b.onRaw = nil, nil, nil
	b.log.Debug().Msg("session closed")
}
