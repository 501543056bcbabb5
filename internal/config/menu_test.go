package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeMenuFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMenuSettingsMissingFile(t *testing.T) {
	settings := LoadMenuSettings(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop().Sugar())

	require.NotNil(t, settings)
	assert.False(t, settings.DiskCache)
	assert.Empty(t, settings.PluginOverrides)
}

func TestLoadMenuSettingsMalformedFile(t *testing.T) {
	path := writeMenuFile(t, "{not json")

	settings := LoadMenuSettings(path, zap.NewNop().Sugar())

	require.NotNil(t, settings)
	assert.Empty(t, settings.Title)
}

func TestLoadMenuSettingsFull(t *testing.T) {
	path := writeMenuFile(t, `{
		"plugin_blacklist": ["debug"],
		"disk_cache": true,
		"expand_commands": true,
		"title": "My Bot",
		"accent_color": "#abc",
		"plugin_overrides": [
			{"plugin_name": "music", "display_name": "Tunes", "order": 2, "extra_commands": ["lyrics|Show lyrics"]}
		],
		"custom_categories": [
			{"name": "Links", "commands": ["docs|Documentation|"]}
		]
	}`)

	settings := LoadMenuSettings(path, zap.NewNop().Sugar())

	assert.Equal(t, []string{"debug"}, settings.PluginBlacklist)
	assert.True(t, settings.DiskCache)
	assert.True(t, settings.ExpandCommands)
	assert.Equal(t, "My Bot", settings.Title)

	require.Len(t, settings.PluginOverrides, 1)
	o := settings.PluginOverrides[0]
	assert.Equal(t, "music", o.PluginName)
	assert.Equal(t, "Tunes", o.DisplayName)
	require.NotNil(t, o.Order)
	assert.Equal(t, 2, *o.Order)

	require.Len(t, settings.CustomCategories, 1)
	assert.Equal(t, "Links", settings.CustomCategories[0].Name)
}

func TestLoadMenuSettingsSkipsMalformedEntries(t *testing.T) {
	path := writeMenuFile(t, `{
		"plugin_overrides": [
			{"plugin_name": "good"},
			{"plugin_name": 42},
			{"display_name": "nameless"}
		],
		"custom_categories": [
			{"name": "kept"},
			"just a string",
			{"description": "nameless"}
		]
	}`)

	settings := LoadMenuSettings(path, zap.NewNop().Sugar())

	require.Len(t, settings.PluginOverrides, 1)
	assert.Equal(t, "good", settings.PluginOverrides[0].PluginName)
	require.Len(t, settings.CustomCategories, 1)
	assert.Equal(t, "kept", settings.CustomCategories[0].Name)
}

func TestLoadMenuSettingsMalformedOrderKeepsEntry(t *testing.T) {
	path := writeMenuFile(t, `{
		"plugin_overrides": [
			{"plugin_name": "music", "display_name": "Tunes", "order": "abc", "extra_commands": ["foo|B"]}
		],
		"custom_categories": [
			{"name": "Links", "order": [3], "commands": ["docs|Documentation"]}
		]
	}`)

	settings := LoadMenuSettings(path, zap.NewNop().Sugar())

	require.Len(t, settings.PluginOverrides, 1)
	o := settings.PluginOverrides[0]
	assert.Equal(t, "Tunes", o.DisplayName)
	assert.Equal(t, []string{"foo|B"}, o.ExtraCommands)
	assert.Nil(t, o.Order, "a bad order is dropped, the entry is not")

	require.Len(t, settings.CustomCategories, 1)
	c := settings.CustomCategories[0]
	assert.Equal(t, []string{"docs|Documentation"}, c.Commands)
	assert.Nil(t, c.Order)
}

func TestLoadMenuSettingsOrderAbsentStaysNil(t *testing.T) {
	path := writeMenuFile(t, `{"plugin_overrides": [{"plugin_name": "music"}]}`)

	settings := LoadMenuSettings(path, zap.NewNop().Sugar())

	require.Len(t, settings.PluginOverrides, 1)
	assert.Nil(t, settings.PluginOverrides[0].Order)
}
