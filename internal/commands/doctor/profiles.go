package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
	"github.com/Geek-master-100/ai-customer-reception/internal/integration/browser"
)

// DetailProfileDeleted is the detail of items for profiles removed by a fix.
const DetailProfileDeleted = "deleted orphaned profile"

// ShopLister is the part of the shop store the profile check reads.
type ShopLister interface {
	GetShops(platform string) []shop.Record
}

// ProfileCheck detects browser profile directories without a saved shop.
// These are left behind by sessions that never reported an identity or by
// shops removed without --purge.
type ProfileCheck struct {
	shops       ShopLister
	profilesDir string
	fix         bool
}

// NewProfileCheck creates a new orphan profile check.
// If fix is true, orphaned profile directories will be deleted.
func NewProfileCheck(shops ShopLister, profilesDir string, fix bool) *ProfileCheck {
	return &ProfileCheck{
		shops:       shops,
		profilesDir: profilesDir,
		fix:         fix,
	}
}

func (c *ProfileCheck) Name() string {
	return "Orphan Profiles"
}

func (c *ProfileCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.profilesDir); os.IsNotExist(err) {
		result.Items = append(result.Items, CheckItem{
			Label:  "Profiles directory",
			Status: StatusPass,
			Detail: "no profiles directory yet",
		})
		return result
	}

	platforms, err := os.ReadDir(c.profilesDir)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Read profiles directory",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	var orphans []string
	for _, pdir := range platforms {
		if !pdir.IsDir() {
			continue
		}
		platform := pdir.Name()

		known := map[string]bool{}
		for _, r := range c.shops.GetShops(platform) {
			known[browser.PartitionFor(c.profilesDir, platform, r.SessionID).Dir] = true
		}

		entries, err := os.ReadDir(filepath.Join(c.profilesDir, platform))
		if err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  platform,
				Status: StatusFail,
				Detail: err.Error(),
			})
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(c.profilesDir, platform, entry.Name())
			if !known[dir] {
				orphans = append(orphans, dir)
			}
		}
	}

	if len(orphans) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "No orphans",
			Status: StatusPass,
			Detail: "all profiles belong to saved shops",
		})
		return result
	}

	for _, dir := range orphans {
		label, _ := filepath.Rel(c.profilesDir, dir)

		if !c.fix {
			result.Items = append(result.Items, CheckItem{
				Label:   label,
				Status:  StatusWarn,
				Detail:  "orphaned profile (no saved shop)",
				Fixable: true,
			})
			continue
		}

		if err := os.RemoveAll(dir); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusFail,
				Detail: fmt.Sprintf("failed to delete: %v", err),
			})
		} else {
			result.Items = append(result.Items, CheckItem{
				Label:  label,
				Status: StatusPass,
				Detail: DetailProfileDeleted,
			})
		}
	}

	return result
}
