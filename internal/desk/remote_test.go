package desk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
)

type inlineCaller struct{ err error }

func (c inlineCaller) Call(_ context.Context, fn func()) error {
	if c.err != nil {
		return c.err
	}
	fn()
	return nil
}

func TestRemote_DrivesDesk(t *testing.T) {
	d, e := newTestDesk(t, nil)
	e.store.AddShop("pdd", shop.Record{UserName: "Alice", SessionID: "s1"})

	ctx := context.Background()
	r := NewRemote(ctx, d, inlineCaller{})

	require.NoError(t, r.OpenShop(ctx, "pdd", "s1"))
	e.sched.Drain()

	id, err := r.NewShop(ctx, "pdd")
	require.NoError(t, err)
	e.sched.Drain()
	assert.Equal(t, "new-1", id)

	snap, err := r.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Platforms[0].Tabs, 2)
	assert.Equal(t, 1, snap.Platforms[0].Active)

	require.NoError(t, r.SelectTab(ctx, "pdd", 0))
	require.NoError(t, r.CloseTab(ctx, "pdd", 1))
	assert.True(t, e.launcher.pages[id].closed)

	require.NoError(t, r.ShowShops(ctx, "pdd"))
	m, _ := d.Manager("pdd")
	assert.Equal(t, ViewShopSelection, m.View())
	assert.Equal(t, 1, m.Len(), "showing the selection keeps sessions alive")

	require.NoError(t, r.Focus(ctx, "jd"))
	assert.Equal(t, "jd", d.Focused())

	require.NoError(t, r.Shutdown(ctx))
	assert.True(t, e.launcher.pages["s1"].closed)
}

// abandonedCaller runs fn but reports that the wait was abandoned, as
// loop.Call does when ctx ends while fn is running.
type abandonedCaller struct{ ran *int }

func (c abandonedCaller) Call(_ context.Context, fn func()) error {
	fn()
	*c.ran++
	return context.Canceled
}

func TestRemote_AbandonedCallDropsResults(t *testing.T) {
	d, e := newTestDesk(t, nil)
	e.store.AddShop("pdd", shop.Record{UserName: "Alice", SessionID: "s1"})

	ctx := context.Background()
	ran := 0
	r := NewRemote(ctx, d, abandonedCaller{ran: &ran})

	snap, err := r.Snapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, snap.Platforms)
	assert.Empty(t, snap.Focused)

	id, err := r.NewShop(ctx, "jd")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, id)

	n, err := r.OpenSaved(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)

	assert.Equal(t, 3, ran)
}

func TestRemote_Errors(t *testing.T) {
	d, _ := newTestDesk(t, nil)
	ctx := context.Background()
	r := NewRemote(ctx, d, inlineCaller{})

	assert.ErrorIs(t, r.OpenShop(ctx, "pdd", "missing"), shop.ErrNotFound)
	assert.ErrorIs(t, r.CloseTab(ctx, "pdd", 0), ErrNoSuchTab)
	assert.ErrorIs(t, r.Focus(ctx, "nope"), ErrUnknownPlatform)

	stopped := errors.New("stopped")
	r = NewRemote(ctx, d, inlineCaller{err: stopped})
	_, err := r.Snapshot(ctx)
	assert.ErrorIs(t, err, stopped)
}

func TestRemote_ChangesCoalesce(t *testing.T) {
	d, e := newTestDesk(t, nil)
	ctx := context.Background()
	r := NewRemote(ctx, d, inlineCaller{})

	_, err := r.NewShop(ctx, "jd")
	require.NoError(t, err)
	e.sched.Drain()
	require.NoError(t, r.Focus(ctx, "jd"))

	select {
	case <-r.Changes():
	default:
		t.Fatal("expected a change signal")
	}

	select {
	case <-r.Changes():
		t.Fatal("changes should coalesce into one signal")
	default:
	}
}

func TestRemote_NoticeActions(t *testing.T) {
	d, e := newTestDesk(t, nil)
	ctx := context.Background()
	r := NewRemote(ctx, d, inlineCaller{})

	id, err := r.NewShop(ctx, "jd")
	require.NoError(t, err)
	e.sched.Drain()

	e.console(id, `{"type":"newmessage","response":{"newMessageCount":1}}`)
	e.console(id, `{"type":"newmessage","response":{"newMessageCount":2}}`)
	notices := d.Notices().Notices()
	require.Len(t, notices, 2)

	require.NoError(t, r.DismissNotice(ctx, notices[0].ID))
	assert.Equal(t, 1, d.Notices().Len())

	require.NoError(t, r.Focus(ctx, "pdd"))
	require.NoError(t, r.ClickNotice(ctx, notices[1].ID))
	assert.Equal(t, "jd", d.Focused())
	assert.Equal(t, 0, d.Notices().Len())
}
