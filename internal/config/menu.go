package config

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"
)

// Override reshapes one plugin's menu entry. Order is a pointer so "not set"
// and "set to the default" stay distinguishable.
type Override struct {
	PluginName    string   `json:"plugin_name"`
	DisplayName   string   `json:"display_name"`
	Description   string   `json:"description"`
	Order         *int     `json:"order"`
	ExtraCommands []string `json:"extra_commands"` // "name|description|prefix"
}

// Category is a synthetic menu section built purely from configured commands.
type Category struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Order       *int     `json:"order"`
	Commands    []string `json:"commands"` // "name|description|prefix"
}

// MenuSettings is the menu.json configuration surface.
type MenuSettings struct {
	PluginBlacklist []string `json:"plugin_blacklist"`
	ShowBuiltinCmds bool     `json:"show_builtin_cmds"`
	DiskCache       bool     `json:"disk_cache"`
	ExpandCommands  bool     `json:"expand_commands"`
	AdminShowAll    bool     `json:"admin_show_all"`
	CustomTemplates bool     `json:"custom_templates"`

	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	FooterText  string `json:"footer_text"`
	AccentColor string `json:"accent_color"`
	BannerImage string `json:"banner_image"` // relative to the data dir
	HeaderLogo  string `json:"header_logo"`  // relative to the data dir

	FontURLs        []string `json:"font_urls"`
	FontFamily      string   `json:"font_family"`
	LatinFontFamily string   `json:"latin_font_family"`
	MonoFontFamily  string   `json:"mono_font_family"`

	PluginOverrides  []Override `json:"-"`
	CustomCategories []Category `json:"-"`
}

// menuFile keeps override and category entries raw so one malformed entry
// can be skipped without rejecting the whole file.
type menuFile struct {
	MenuSettings
	PluginOverrides  []json.RawMessage `json:"plugin_overrides"`
	CustomCategories []json.RawMessage `json:"custom_categories"`
}

// LoadMenuSettings reads the settings file. A missing or unreadable file
// yields defaults; malformed override/category entries are skipped.
func LoadMenuSettings(path string, log *zap.SugaredLogger) *MenuSettings {
	settings := &MenuSettings{}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnw("menu settings unreadable, using defaults", "path", path, "error", err)
		}
		return settings
	}

	var file menuFile
	if err := json.Unmarshal(raw, &file); err != nil {
		log.Warnw("menu settings malformed, using defaults", "path", path, "error", err)
		return settings
	}

	*settings = file.MenuSettings
	for _, entry := range file.PluginOverrides {
		// Order is decoded separately: a bad order must not cost the rest
		// of the entry.
		var o struct {
			Override
			Order json.RawMessage `json:"order"`
		}
		if err := json.Unmarshal(entry, &o); err != nil || o.PluginName == "" {
			log.Warnw("skipping malformed plugin override", "entry", string(entry))
			continue
		}
		o.Override.Order = lenientOrder(o.Order, "plugin override", o.PluginName, log)
		settings.PluginOverrides = append(settings.PluginOverrides, o.Override)
	}
	for _, entry := range file.CustomCategories {
		var c struct {
			Category
			Order json.RawMessage `json:"order"`
		}
		if err := json.Unmarshal(entry, &c); err != nil || c.Name == "" {
			log.Warnw("skipping malformed custom category", "entry", string(entry))
			continue
		}
		c.Category.Order = lenientOrder(c.Order, "custom category", c.Name, log)
		settings.CustomCategories = append(settings.CustomCategories, c.Category)
	}
	return settings
}

// lenientOrder coerces a raw order value to an int, treating anything
// uncoercible the same as absent.
func lenientOrder(raw json.RawMessage, what, name string, log *zap.SugaredLogger) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		log.Warnw("ignoring malformed order", "in", what, "name", name, "value", string(raw))
		return nil
	}
	return &n
}
