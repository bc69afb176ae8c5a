package desk

import (
	"encoding/json"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
)

// Event is published on the Bus by session managers.
type Event interface {
	// Name is the stable event name used in logs.
	Name() string
	// PlatformID is the platform the event is scoped to.
	PlatformID() string
}

// ShopUpdated is published when a session reports its user identity.
type ShopUpdated struct {
	Platform string
	Shop     shop.Record
}

// UnreadChanged is published when a session reports its unread state.
type UnreadChanged struct {
	Platform  string
	SessionID string
	Event     shop.NewMessageEvent
}

// RawMessage carries an uninterpreted receiveMessage payload.
type RawMessage struct {
	Platform  string
	SessionID string
	Payload   json.RawMessage
}

// TabChanged is published when the active tab of a platform changes.
type TabChanged struct {
	Platform string
	Index    int
	Title    string
}

// SessionClosed is published after a session's tab is closed.
type SessionClosed struct {
	Platform  string
	SessionID string
}

func (ShopUpdated) Name() string   { return "shop-updated" }
func (UnreadChanged) Name() string { return "unread-changed" }
func (RawMessage) Name() string    { return "raw-message" }
func (TabChanged) Name() string    { return "tab-changed" }
func (SessionClosed) Name() string { return "session-closed" }

func (e ShopUpdated) PlatformID() string   { return e.Platform }
func (e UnreadChanged) PlatformID() string { return e.Platform }
func (e RawMessage) PlatformID() string    { return e.Platform }
func (e TabChanged) PlatformID() string    { return e.Platform }
func (e SessionClosed) PlatformID() string { return e.Platform }

// Bus delivers events synchronously to subscribers in subscription order.
// Like the rest of the desk it is used only from the coordinating loop.
type Bus struct {
	subs []func(Event)
}

// Subscribe registers fn for every published event.
func (b *Bus) Subscribe(fn func(Event)) {
	b.subs = append(b.subs, fn)
}

// Publish delivers ev to all subscribers.
func (b *Bus) Publish(ev Event) {
	for _, fn := range b.subs {
		fn(ev)
	}
}
