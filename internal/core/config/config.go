// Package config handles configuration loading and validation for reception.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Platform describes one seller console.
type Platform struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	ChatURL string   `yaml:"chat_url"`
	Enabled *bool    `yaml:"enabled,omitempty"` // nil means enabled
	Scripts []string `yaml:"scripts,omitempty"` // doublestar patterns under scripts_dir
}

// IsEnabled reports whether the platform should be shown.
func (p Platform) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Config holds the application configuration.
type Config struct {
	Platforms     []Platform    `yaml:"platforms"`
	ScriptsDir    string        `yaml:"scripts_dir"`
	Browser       BrowserConfig `yaml:"browser"`
	Notifications Notifications `yaml:"notifications"`
	DataDir       string        `yaml:"-"` // set by caller, not from config file
}

// BrowserConfig configures the embedded browser sessions.
type BrowserConfig struct {
	Bin         string `yaml:"bin"`
	Headless    bool   `yaml:"headless"`
	ProfilesDir string `yaml:"profiles_dir"`
}

// Notifications configures pop-up notices.
type Notifications struct {
	Enabled  *bool         `yaml:"enabled,omitempty"`
	Duration time.Duration `yaml:"duration"`
	Title    string        `yaml:"title"` // template, see NoticeTemplateData
	Body     string        `yaml:"body"`  // template, see NoticeTemplateData
}

// IsEnabled reports whether notices are shown.
func (n Notifications) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// NoticeTemplateData defines available fields for notice title and body templates.
type NoticeTemplateData struct {
	Platform string
	Name     string
	Count    int
}

// DefaultPlatforms returns the built-in seller consoles.
func DefaultPlatforms() []Platform {
	return []Platform{
		{ID: "pdd", Name: "Pinduoduo", ChatURL: "https://mms.pinduoduo.com/chat-merchant/index.html#/"},
		{ID: "doudian", Name: "Doudian", ChatURL: "https://fxg.jinritemai.com/ffa/mshop/shopIndex"},
		{ID: "kuaishou", Name: "Kuaishou", ChatURL: "https://s.kwaixiaodian.com/zone/settles/chat"},
		{ID: "jd", Name: "JD", ChatURL: "https://dongdong.jd.com/"},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Platforms: DefaultPlatforms(),
		Notifications: Notifications{
			Duration: 5 * time.Second,
			Title:    "{{ .Name }} new message",
			Body:     "You have {{ .Count }} new messages",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
// Platforms that reuse a built-in id inherit its name and chat URL.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if len(c.Platforms) == 0 {
		c.Platforms = defaults.Platforms
	}
	builtin := map[string]Platform{}
	for _, p := range defaults.Platforms {
		builtin[p.ID] = p
	}
	for i := range c.Platforms {
		p := &c.Platforms[i]
		def, ok := builtin[p.ID]
		if !ok {
			continue
		}
		if p.Name == "" {
			p.Name = def.Name
		}
		if p.ChatURL == "" {
			p.ChatURL = def.ChatURL
		}
	}

	if c.Notifications.Duration == 0 {
		c.Notifications.Duration = defaults.Notifications.Duration
	}
	if c.Notifications.Title == "" {
		c.Notifications.Title = defaults.Notifications.Title
	}
	if c.Notifications.Body == "" {
		c.Notifications.Body = defaults.Notifications.Body
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if len(c.Platforms) == 0 {
		return fmt.Errorf("at least one platform must be configured")
	}

	for i, p := range c.Platforms {
		if p.ID == "" {
			return fmt.Errorf("platforms[%d].id cannot be empty", i)
		}
		if p.ChatURL == "" {
			return fmt.Errorf("platform %q must have a chat_url", p.ID)
		}
	}

	if c.Notifications.Duration < 0 {
		return fmt.Errorf("notifications.duration cannot be negative")
	}

	return nil
}

// Platform returns the platform with the given id.
func (c *Config) Platform(id string) (Platform, bool) {
	for _, p := range c.Platforms {
		if p.ID == id {
			return p, true
		}
	}
	return Platform{}, false
}

// EnabledPlatforms returns the enabled platforms in configured order.
func (c *Config) EnabledPlatforms() []Platform {
	out := make([]Platform, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}

// ScriptPatterns returns the script patterns keyed by platform id.
func (c *Config) ScriptPatterns() map[string][]string {
	out := make(map[string][]string, len(c.Platforms))
	for _, p := range c.Platforms {
		if len(p.Scripts) > 0 {
			out[p.ID] = p.Scripts
		}
	}
	return out
}

// ShopsFile returns the path to the shops JSON file.
func (c *Config) ShopsFile() string {
	return filepath.Join(c.DataDir, "shops.json")
}

// ScriptsPath returns the directory platform scripts are read from.
func (c *Config) ScriptsPath() string {
	if c.ScriptsDir != "" {
		return c.ScriptsDir
	}
	return filepath.Join(c.DataDir, "scripts")
}

// ProfilesPath returns the root of the per-session browser profiles.
func (c *Config) ProfilesPath() string {
	if c.Browser.ProfilesDir != "" {
		return c.Browser.ProfilesDir
	}
	return filepath.Join(c.DataDir, "profiles")
}
