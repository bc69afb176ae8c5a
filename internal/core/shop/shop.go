// Package shop defines the shop-record domain types and the store interface.
package shop

import "errors"

// ErrNotFound is returned when no record matches a session id.
var ErrNotFound = errors.New("shop not found")

// Record is the identity of one seller account on one platform. SessionID is
// the unique key within a platform's collection.
type Record struct {
	UserName  string `json:"userName"`
	MallName  string `json:"mallName"`
	UserID    string `json:"userId"`
	MallID    string `json:"mallId"`
	AvatarURL string `json:"avatar"`
	SessionID string `json:"sessionId"`
	Platform  string `json:"platform"`
}

// Identified reports whether the record carries a known user identity.
func (r Record) Identified() bool {
	return r.UserName != "" || r.UserID != ""
}

// DisplayName returns the best available label for the record.
func (r Record) DisplayName() string {
	switch {
	case r.UserName != "":
		return r.UserName
	case r.MallName != "":
		return r.MallName
	default:
		return r.SessionID
	}
}

// NewMessageEvent reports the unread state of one session.
type NewMessageEvent struct {
	HasNewMessage bool `json:"hasNewMessage"`
	Count         int  `json:"count"`
}

// Unread reports whether the event should show a badge.
func (e NewMessageEvent) Unread() bool {
	return e.HasNewMessage && e.Count > 0
}

// Store is the durable per-platform collection of records. Implementations
// are not required to be safe for concurrent use.
type Store interface {
	// Load reads persisted records. It never fails; problems are logged.
	Load()
	// GetShops returns a snapshot of the platform's records in insertion order.
	GetShops(platform string) []Record
	// FindShop returns the record with the given session id.
	FindShop(platform, sessionID string) (Record, bool)
	// AddShop inserts r unless a record with the same session id exists.
	// Returns true if the record was inserted.
	AddShop(platform string, r Record) bool
	// UpdateShop replaces the record with the same session id.
	UpdateShop(platform string, r Record) bool
	// RemoveShop deletes the record with the given session id.
	RemoveShop(platform, sessionID string) bool
}
