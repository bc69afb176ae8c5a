package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/config"
	"github.com/Geek-master-100/ai-customer-reception/internal/store/jsonfile"
)

// StoreCheck inspects the shops document on disk.
type StoreCheck struct {
	path      string
	platforms []config.Platform
}

// NewStoreCheck creates a new shop store check.
func NewStoreCheck(path string, platforms []config.Platform) *StoreCheck {
	return &StoreCheck{path: path, platforms: platforms}
}

func (c *StoreCheck) Name() string {
	return "Shop Store"
}

func (c *StoreCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		result.Items = append(result.Items, CheckItem{
			Label:  "shops.json",
			Status: StatusPass,
			Detail: "no shops saved yet",
		})
		return result
	}
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "shops.json",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	var file jsonfile.ShopFile
	if len(data) > 0 {
		if err := json.Unmarshal(data, &file); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "shops.json",
				Status: StatusFail,
				Detail: fmt.Sprintf("unparsable, the app will start with no saved shops: %v", err),
			})
			return result
		}
	}

	configured := map[string]bool{}
	for _, p := range c.platforms {
		configured[p.ID] = true
	}

	ids := make([]string, 0, len(file))
	for id := range file {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(ids) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "shops.json",
			Status: StatusPass,
			Detail: "no shops saved yet",
		})
		return result
	}

	for _, id := range ids {
		records := file[id]

		var seen, dups []string
		for _, r := range records {
			if slices.Contains(seen, r.SessionID) && !slices.Contains(dups, r.SessionID) {
				dups = append(dups, r.SessionID)
			}
			seen = append(seen, r.SessionID)
		}

		switch {
		case len(dups) > 0:
			result.Items = append(result.Items, CheckItem{
				Label:  id,
				Status: StatusFail,
				Detail: fmt.Sprintf("duplicate session ids: %v", dups),
			})
		case !configured[id]:
			result.Items = append(result.Items, CheckItem{
				Label:  id,
				Status: StatusWarn,
				Detail: fmt.Sprintf("%d shop(s) for a platform that is not configured", len(records)),
			})
		default:
			result.Items = append(result.Items, CheckItem{
				Label:  id,
				Status: StatusPass,
				Detail: fmt.Sprintf("%d shop(s)", len(records)),
			})
		}
	}

	return result
}
