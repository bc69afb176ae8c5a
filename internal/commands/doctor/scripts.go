package doctor

import (
	"context"
	"strings"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/config"
	"github.com/Geek-master-100/ai-customer-reception/internal/scripts"
)

// ScriptsCheck reports which script files each enabled platform will inject.
type ScriptsCheck struct {
	platforms []config.Platform
	dir       *scripts.Dir
}

// NewScriptsCheck creates a new platform script check.
func NewScriptsCheck(platforms []config.Platform, dir *scripts.Dir) *ScriptsCheck {
	return &ScriptsCheck{platforms: platforms, dir: dir}
}

func (c *ScriptsCheck) Name() string {
	return "Platform Scripts"
}

func (c *ScriptsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	for _, p := range c.platforms {
		files, err := c.dir.Files(p.ID)
		switch {
		case err != nil:
			result.Items = append(result.Items, CheckItem{
				Label:  p.ID,
				Status: StatusFail,
				Detail: err.Error(),
			})
		case len(files) == 0:
			result.Items = append(result.Items, CheckItem{
				Label:  p.ID,
				Status: StatusWarn,
				Detail: "no script matches " + strings.Join(c.dir.Patterns(p.ID), ", "),
			})
		default:
			result.Items = append(result.Items, CheckItem{
				Label:  p.ID,
				Status: StatusPass,
				Detail: strings.Join(files, ", "),
			})
		}
	}

	return result
}
