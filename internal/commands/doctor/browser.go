package doctor

import (
	"context"
	"fmt"
	"os"
)

// BrowserCheck verifies a Chrome binary is available for sessions.
type BrowserCheck struct {
	bin      string
	lookPath func() (string, bool)
}

// NewBrowserCheck creates a new browser check. bin is the configured binary,
// lookPath searches the system when bin is empty.
func NewBrowserCheck(bin string, lookPath func() (string, bool)) *BrowserCheck {
	return &BrowserCheck{bin: bin, lookPath: lookPath}
}

func (c *BrowserCheck) Name() string {
	return "Browser"
}

func (c *BrowserCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.bin != "" {
		info, err := os.Stat(c.bin)
		switch {
		case err != nil:
			result.Items = append(result.Items, CheckItem{
				Label:  "browser.bin",
				Status: StatusFail,
				Detail: fmt.Sprintf("cannot access %s: %v", c.bin, err),
			})
		case info.IsDir() || info.Mode()&0o111 == 0:
			result.Items = append(result.Items, CheckItem{
				Label:  "browser.bin",
				Status: StatusFail,
				Detail: fmt.Sprintf("%s is not an executable file", c.bin),
			})
		default:
			result.Items = append(result.Items, CheckItem{
				Label:  "browser.bin",
				Status: StatusPass,
				Detail: c.bin,
			})
		}
		return result
	}

	if path, ok := c.lookPath(); ok {
		result.Items = append(result.Items, CheckItem{
			Label:  "Chrome",
			Status: StatusPass,
			Detail: path,
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "Chrome",
		Status: StatusWarn,
		Detail: "no local Chrome or Chromium found; a browser will be downloaded on first launch",
	})
	return result
}
