package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func hasField(errs criterio.FieldErrors, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Platforms[0].Scripts = []string{"pdd/**/*.js", "common.js"}

	err := cfg.ValidateDeep("")
	assert.NoError(t, err, "expected valid config")
}

func TestValidateDeep_InvalidNoticeTemplate(t *testing.T) {
	cfg := validConfig(t)
	cfg.Notifications.Title = "{{ .Name }"
	cfg.Notifications.Body = "{{ .Invalid }}"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Equal(t, "notifications.title", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "template error")
	assert.Equal(t, "notifications.body", fieldErrs[1].Field)
}

func TestValidateDeep_ValidNoticeTemplate(t *testing.T) {
	cfg := validConfig(t)
	cfg.Notifications.Title = "{{ trunc 10 .Name }} ({{ .Platform }})"
	cfg.Notifications.Body = "{{ .Count }} unread"

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_DuplicatePlatform(t *testing.T) {
	cfg := validConfig(t)
	cfg.Platforms = append(cfg.Platforms, Platform{ID: "pdd", ChatURL: "https://example.com"})

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "platforms[4].id", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "duplicate")
}

func TestValidateDeep_InvalidPlatformID(t *testing.T) {
	cfg := validConfig(t)
	cfg.Platforms[1].ID = "Dou Dian"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.True(t, hasField(fieldErrs, "platforms[1].id"))
}

func TestValidateDeep_InvalidChatURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"relative", "/chat"},
		{"no scheme", "mms.pinduoduo.com/chat"},
		{"other scheme", "ftp://example.com"},
		{"unparsable", "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Platforms[0].ChatURL = tt.url

			err := cfg.ValidateDeep("")

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.True(t, hasField(fieldErrs, "platforms[0].chat_url"))
		})
	}
}

func TestValidateDeep_InvalidScriptPattern(t *testing.T) {
	cfg := validConfig(t)
	cfg.Platforms[2].Scripts = []string{"ok.js", "broken[.js"}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "platforms[2].scripts[1]", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "invalid glob")
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "notadir")
	require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

	cfg := validConfig(t)
	cfg.DataDir = tmpFile

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.True(t, hasField(fieldErrs, "data_dir"), "expected error about data dir")
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := validConfig(t)

	err := cfg.ValidateDeep(tmpDir)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.True(t, hasField(fieldErrs, "config_file"), "expected error about config file being a directory")
}

func TestWarnings_MissingScriptsDir(t *testing.T) {
	cfg := validConfig(t)

	warnings := cfg.Warnings()

	require.Len(t, warnings, 1)
	assert.Equal(t, "scripts_dir", warnings[0].Item)
}

func TestWarnings_PlatformWithoutScript(t *testing.T) {
	cfg := validConfig(t)
	dir := cfg.ScriptsPath()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "jd"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pdd.js"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doudian.js"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jd", "main.js"), []byte("1"), 0o644))
	cfg.Platforms[3].Scripts = []string{"jd/*.js"}

	warnings := cfg.Warnings()

	var items []string
	for _, w := range warnings {
		if w.Category == "Scripts" {
			items = append(items, w.Item)
		}
	}
	assert.Equal(t, []string{"kuaishou"}, items)
}

func TestWarnings_AllPlatformsDisabled(t *testing.T) {
	cfg := validConfig(t)
	off := false
	for i := range cfg.Platforms {
		cfg.Platforms[i].Enabled = &off
	}

	hasWarning := false
	for _, w := range cfg.Warnings() {
		if w.Category == "Platforms" && strings.Contains(w.Message, "disabled") {
			hasWarning = true
			break
		}
	}
	assert.True(t, hasWarning, "expected warning about disabled platforms")
}
