package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/validate"
	"github.com/Geek-master-100/ai-customer-reception/internal/scripts"
	"github.com/Geek-master-100/ai-customer-reception/pkg/tmpl"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

func fieldErr(field string, err error) criterio.FieldErrors {
	return criterio.FieldErrors{{Field: field, Err: err}}
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), this checks templates, URLs, glob patterns, and file access.
// All problems are reported together as criterio.FieldErrors.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrors

	errs = append(errs, c.validateFileAccess(configPath)...)
	errs = append(errs, c.validatePlatforms()...)
	errs = append(errs, c.validateNotifications()...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) criterio.FieldErrors {
	var errs criterio.FieldErrors

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil {
			if info.IsDir() {
				errs = append(errs, fieldErr("config_file", fmt.Errorf("%s is a directory, not a file", configPath))...)
			}
		} else if !os.IsNotExist(err) {
			errs = append(errs, fieldErr("config_file", fmt.Errorf("cannot access %s: %w", configPath, err))...)
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil {
			if !info.IsDir() {
				errs = append(errs, fieldErr("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))...)
			}
		} else if !os.IsNotExist(err) {
			errs = append(errs, fieldErr("data_dir", fmt.Errorf("cannot access %s: %w", c.DataDir, err))...)
		}
	}

	return errs
}

// validatePlatforms checks ids, chat URLs and script patterns.
func (c *Config) validatePlatforms() criterio.FieldErrors {
	var errs criterio.FieldErrors
	seen := map[string]int{}

	for i, p := range c.Platforms {
		field := fmt.Sprintf("platforms[%d]", i)

		if err := validate.PlatformID(p.ID); err != nil {
			errs = append(errs, fieldErr(field+".id", err)...)
		} else if j, dup := seen[p.ID]; dup {
			errs = append(errs, fieldErr(field+".id", fmt.Errorf("duplicate platform id %q (also platforms[%d])", p.ID, j))...)
		} else {
			seen[p.ID] = i
		}

		if u, err := url.Parse(p.ChatURL); err != nil {
			errs = append(errs, fieldErr(field+".chat_url", fmt.Errorf("invalid url %q: %w", p.ChatURL, err))...)
		} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fieldErr(field+".chat_url", fmt.Errorf("chat_url must be an absolute http(s) url, got %q", p.ChatURL))...)
		}

		for j, pattern := range p.Scripts {
			if !doublestar.ValidatePattern(pattern) {
				errs = append(errs, fieldErr(fmt.Sprintf("%s.scripts[%d]", field, j), fmt.Errorf("invalid glob pattern %q", pattern))...)
			}
		}
	}

	return errs
}

// validateNotifications checks notice templates.
func (c *Config) validateNotifications() criterio.FieldErrors {
	var errs criterio.FieldErrors

	if _, err := tmpl.Render(c.Notifications.Title, NoticeTemplateData{}); err != nil {
		errs = append(errs, fieldErr("notifications.title", fmt.Errorf("template error: %w", err))...)
	}
	if _, err := tmpl.Render(c.Notifications.Body, NoticeTemplateData{}); err != nil {
		errs = append(errs, fieldErr("notifications.body", fmt.Errorf("template error: %w", err))...)
	}

	return errs
}

// Warnings returns non-fatal issues such as missing platform scripts.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if len(c.EnabledPlatforms()) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Platforms",
			Message:  "all platforms are disabled; the shell will be empty",
		})
	}

	dir := c.ScriptsPath()
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		warnings = append(warnings, ValidationWarning{
			Category: "Scripts",
			Item:     "scripts_dir",
			Message:  fmt.Sprintf("%s not found; sessions will load without platform scripts", dir),
		})
		return warnings
	}

	src := scripts.NewDir(dir, c.ScriptPatterns())
	for _, p := range c.EnabledPlatforms() {
		files, err := src.Files(p.ID)
		found := err == nil && len(files) > 0
		if !found {
			warnings = append(warnings, ValidationWarning{
				Category: "Scripts",
				Item:     p.ID,
				Message:  "no script matches; unread counts and shop names will not be reported",
			})
		}
	}

	return warnings
}
