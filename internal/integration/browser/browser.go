// Package browser provides interfaces for embedded browser integrations.
package browser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
)

// Events receives notifications from a page. Implementations call these from
// their own goroutines; receivers marshal them onto the coordinating loop.
type Events struct {
	// LoadFinished is called when a navigation completes or fails.
	LoadFinished func(ok bool)
	// Console is called with every diagnostic line the page logs.
	Console func(line string)
}

// Page is one live embedded browser page. Methods block on I/O and must not
// be called from the coordinating loop.
type Page interface {
	// Navigate starts loading url. Completion is reported via Events.
	Navigate(url string) error
	// Evaluate runs code in the page and returns its result as a string.
	Evaluate(code string) (string, error)
	// Close tears down the page and its browser process.
	Close() error
}

// Partition identifies the isolated storage owned by one session.
type Partition struct {
	SessionID string
	Dir       string
}

// Launcher opens isolated pages.
type Launcher interface {
	// Name returns the integration name (e.g., "rod").
	Name() string
	// Launch starts a page whose cookies and local state live only in p.Dir.
	Launch(ctx context.Context, p Partition, ev Events) (Page, error)
}

var safeID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// PartitionFor derives the storage partition for a session. Ids that are not
// plain path segments are hashed so no two ids can share a directory and no id
// can escape root.
func PartitionFor(root, platform, sessionID string) Partition {
	seg := sessionID
	if !safeID.MatchString(seg) {
		sum := sha256.Sum256([]byte(sessionID))
		seg = "h-" + hex.EncodeToString(sum[:])
	}

	plat := platform
	if !safeID.MatchString(plat) {
		sum := sha256.Sum256([]byte(platform))
		plat = "h-" + hex.EncodeToString(sum[:8])
	}

	return Partition{
		SessionID: sessionID,
		Dir:       filepath.Join(root, plat, seg),
	}
}
