package desk

import (
	"context"
	"fmt"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
)

// Caller runs fn on the coordinating loop and waits for it to return. A nil
// error means fn has finished.
type Caller interface {
	Call(ctx context.Context, fn func()) error
}

// Remote drives a Desk from other goroutines. Every method hops onto the loop
// through Caller, so the desk itself stays single-threaded.
type Remote struct {
	desk    *Desk
	loop    Caller
	changes chan struct{}

	// sessions bounds the lifetime of browsers opened through the remote.
	// Per-call contexts only bound the wait for the loop.
	sessions context.Context
}

// NewRemote wraps d. It must be called before the loop starts running, since
// it registers a change listener on d. Browsers opened through the remote are
// tied to sessions.
func NewRemote(sessions context.Context, d *Desk, c Caller) *Remote {
	r := &Remote{
		desk:     d,
		loop:     c,
		changes:  make(chan struct{}, 1),
		sessions: sessions,
	}
	d.OnChange(func() {
		select {
		case r.changes <- struct{}{}:
		default:
		}
	})
	return r
}

// Changes signals that the desk changed since the last receive. Consecutive
// changes coalesce into a single signal.
func (r *Remote) Changes() <-chan struct{} { return r.changes }

// Snapshot copies the desk state.
func (r *Remote) Snapshot(ctx context.Context) (Snapshot, error) {
	return call(ctx, r.loop, func() (Snapshot, error) { return r.desk.Snapshot(), nil })
}

// Focus switches to platform.
func (r *Remote) Focus(ctx context.Context, platform string) error {
	return r.do(ctx, func() error { return r.desk.Focus(platform) })
}

// OpenShop opens the saved shop of platform bound to sessionID.
func (r *Remote) OpenShop(ctx context.Context, platform, sessionID string) error {
	return r.withManager(ctx, platform, func(m *Manager) error {
		for _, rec := range m.ListSavedShops() {
			if rec.SessionID == sessionID {
				m.OpenShop(r.sessions, rec)
				return nil
			}
		}
		return fmt.Errorf("%w: %s/%s", shop.ErrNotFound, platform, sessionID)
	})
}

// NewShop opens a session for a new account of platform.
func (r *Remote) NewShop(ctx context.Context, platform string) (string, error) {
	return call(ctx, r.loop, func() (string, error) {
		m, err := r.desk.Manager(platform)
		if err != nil {
			return "", err
		}
		id := m.CreateNewShop(r.sessions)
		r.desk.changed()
		return id, nil
	})
}

// SelectTab activates tab i of platform.
func (r *Remote) SelectTab(ctx context.Context, platform string, i int) error {
	return r.withManager(ctx, platform, func(m *Manager) error { return m.SelectTab(i) })
}

// CloseTab closes tab i of platform.
func (r *Remote) CloseTab(ctx context.Context, platform string, i int) error {
	return r.withManager(ctx, platform, func(m *Manager) error { return m.CloseShop(i) })
}

// ShowShops switches platform to its shop selection.
func (r *Remote) ShowShops(ctx context.Context, platform string) error {
	return r.withManager(ctx, platform, func(m *Manager) error {
		m.ShowShopSelection()
		r.desk.changed()
		return nil
	})
}

// DismissNotice closes notice id.
func (r *Remote) DismissNotice(ctx context.Context, id string) error {
	return r.do(ctx, func() error {
		r.desk.Notices().Dismiss(id)
		return nil
	})
}

// ClickNotice activates notice id, focusing its platform.
func (r *Remote) ClickNotice(ctx context.Context, id string) error {
	return r.do(ctx, func() error {
		r.desk.Notices().Click(id)
		return nil
	})
}

// OpenSaved opens every saved shop and returns how many were opened.
func (r *Remote) OpenSaved(ctx context.Context) (int, error) {
	return call(ctx, r.loop, func() (int, error) { return r.desk.OpenSaved(r.sessions), nil })
}

// Shutdown closes every session.
func (r *Remote) Shutdown(ctx context.Context) error {
	return r.do(ctx, func() error {
		r.desk.Shutdown()
		return nil
	})
}

func (r *Remote) withManager(ctx context.Context, platform string, fn func(*Manager) error) error {
	return r.do(ctx, func() error {
		m, err := r.desk.Manager(platform)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		r.desk.changed()
		return nil
	})
}

func (r *Remote) do(ctx context.Context, fn func() error) error {
	_, err := call(ctx, r.loop, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// call runs fn on the loop. The results written by fn are only read once Call
// reports that fn finished; when the wait is abandoned, fn may still run later
// and its results are dropped.
func call[T any](ctx context.Context, c Caller, fn func() (T, error)) (T, error) {
	var (
		v   T
		err error
	)
	if cerr := c.Call(ctx, func() { v, err = fn() }); cerr != nil {
		var zero T
		return zero, cerr
	}
	return v, err
}
