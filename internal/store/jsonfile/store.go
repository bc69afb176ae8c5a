// Package jsonfile provides a JSON file-based shop store.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
)

// ShopFile is the root JSON structure stored on disk, keyed by platform id.
type ShopFile map[string][]shop.Record

// ShopStore implements shop.Store using a single JSON document. The in-memory
// copy is authoritative; every mutation rewrites the whole document.
//
// ShopStore is not safe for concurrent use. Callers serialize access, which in
// the running application means calling it only from the coordinating loop.
type ShopStore struct {
	path  string
	log   zerolog.Logger
	shops ShopFile
}

var _ shop.Store = (*ShopStore)(nil)

// NewShopStore creates a store backed by the document at path. Call Load to
// read existing records.
func NewShopStore(path string, log zerolog.Logger) *ShopStore {
	return &ShopStore{
		path:  path,
		log:   log,
		shops: ShopFile{},
	}
}

// Path returns the document path.
func (s *ShopStore) Path() string {
	return s.path
}

// Load reads the document. A missing file starts an empty store; an
// unreadable or unparsable file is logged and also starts empty.
func (s *ShopStore) Load() {
	file, err := s.load()
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to load shops, starting empty")
		s.shops = ShopFile{}
		return
	}
	s.shops = file
	s.log.Debug().Str("path", s.path).Int("platforms", len(file)).Msg("shops loaded")
}

// GetShops returns a copy of the platform's records in insertion order.
func (s *ShopStore) GetShops(platform string) []shop.Record {
	return slices.Clone(s.shops[platform])
}

// FindShop returns the record with the given session id.
func (s *ShopStore) FindShop(platform, sessionID string) (shop.Record, bool) {
	i := s.indexOf(platform, sessionID)
	if i < 0 {
		return shop.Record{}, false
	}
	return s.shops[platform][i], true
}

// Platforms returns the platform ids present in the document, sorted.
func (s *ShopStore) Platforms() []string {
	ids := make([]string, 0, len(s.shops))
	for id := range s.shops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddShop appends r unless a record with the same session id already exists.
// An existing record is left untouched: the first identity seen for a session
// is kept until UpdateShop replaces it.
func (s *ShopStore) AddShop(platform string, r shop.Record) bool {
	if s.indexOf(platform, r.SessionID) >= 0 {
		return false
	}

	r.Platform = platform
	s.shops[platform] = append(s.shops[platform], r)
	s.persist()
	return true
}

// UpdateShop replaces the record with the same session id.
func (s *ShopStore) UpdateShop(platform string, r shop.Record) bool {
	i := s.indexOf(platform, r.SessionID)
	if i < 0 {
		return false
	}

	r.Platform = platform
	s.shops[platform][i] = r
	s.persist()
	return true
}

// RemoveShop deletes the record with the given session id.
func (s *ShopStore) RemoveShop(platform, sessionID string) bool {
	i := s.indexOf(platform, sessionID)
	if i < 0 {
		return false
	}

	s.shops[platform] = slices.Delete(s.shops[platform], i, i+1)
	s.persist()
	return true
}

func (s *ShopStore) indexOf(platform, sessionID string) int {
	return slices.IndexFunc(s.shops[platform], func(r shop.Record) bool {
		return r.SessionID == sessionID
	})
}

// persist writes the document and logs failures. Memory stays authoritative
// until the next successful write.
func (s *ShopStore) persist() {
	if err := s.save(s.shops); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to save shops")
	}
}

// load reads the shop file from disk.
// Returns an empty ShopFile if the file doesn't exist.
func (s *ShopStore) load() (ShopFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ShopFile{}, nil
		}
		return nil, fmt.Errorf("read shops file: %w", err)
	}

	if len(data) == 0 {
		return ShopFile{}, nil
	}

	var file ShopFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse shops file: %w", err)
	}
	if file == nil {
		file = ShopFile{}
	}

	return file, nil
}

// save writes the shop file to disk atomically.
// Uses write-to-temp-then-rename to prevent corruption from interrupted writes.
func (s *ShopStore) save(file ShopFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create shops directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal shops: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
