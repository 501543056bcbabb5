package menu

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/keshon/helpdeck/internal/config"
	"github.com/keshon/helpdeck/internal/version"
)

const defaultAccentColor = "#4e96f7"

// Template payloads carry json tags because their canonical JSON form is the
// cache key: identical visible content must hash identically.

type CommandEntry struct {
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases,omitempty"`
	Usage       string   `json:"usage,omitempty"`
	AdminOnly   bool     `json:"admin_only"`
}

type PluginTile struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	IconURL     string         `json:"icon_url"`
	CmdCount    int            `json:"cmd_count,omitempty"`
	Commands    []CommandEntry `json:"commands,omitempty"`
}

type FontConfig struct {
	FontURLs        []string `json:"font_urls,omitempty"`
	FontFamily      string   `json:"font_family,omitempty"`
	LatinFontFamily string   `json:"latin_font_family,omitempty"`
	MonoFontFamily  string   `json:"mono_font_family,omitempty"`
}

type MainMenuData struct {
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle"`
	Prefix      string       `json:"prefix"`
	AccentColor string       `json:"accent_color"`
	BannerImage string       `json:"banner_image,omitempty"`
	HeaderLogo  string       `json:"header_logo"`
	Fonts       FontConfig   `json:"fonts"`
	Plugins     []PluginTile `json:"plugins"`
	Footer      string       `json:"footer"`
}

type SubMenuData struct {
	Plugin      PluginTile     `json:"plugin"`
	Commands    []CommandEntry `json:"commands"`
	Prefix      string         `json:"prefix"`
	AccentColor string         `json:"accent_color"`
	Fonts       FontConfig     `json:"fonts"`
	Footer      string         `json:"footer"`
}

// Presenter shapes the catalog into template payloads.
type Presenter struct {
	settings *config.MenuSettings
	dataDir  string
	icons    *IconResolver
	log      *zap.SugaredLogger
}

func NewPresenter(settings *config.MenuSettings, dataDir string, icons *IconResolver, log *zap.SugaredLogger) *Presenter {
	return &Presenter{settings: settings, dataDir: dataDir, icons: icons, log: log}
}

// MainMenu builds the main-menu payload. Expanded mode inlines each plugin's
// commands; compact mode shows a command count per tile.
func (pr *Presenter) MainMenu(plugins []*PluginInfo, prefix string, expand bool) MainMenuData {
	title := pr.settings.Title
	if title == "" {
		title = "Help Menu"
	}
	subtitle := pr.settings.Subtitle
	if subtitle == "" {
		subtitle = "Send " + prefix + "help <plugin> for detailed commands"
	}

	tiles := make([]PluginTile, 0, len(plugins))
	for _, p := range plugins {
		tile := PluginTile{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Description: p.Description,
			IconURL:     p.IconURL,
		}
		if expand {
			tile.Commands = commandEntries(p.Commands, prefix, false)
		} else {
			tile.CmdCount = len(p.Commands)
		}
		tiles = append(tiles, tile)
	}

	return MainMenuData{
		Title:       title,
		Subtitle:    subtitle,
		Prefix:      prefix,
		AccentColor: pr.accentColor(),
		BannerImage: pr.bannerDataURI(),
		HeaderLogo:  pr.headerLogoURI(),
		Fonts:       pr.fontConfig(),
		Plugins:     tiles,
		Footer:      pr.footer(),
	}
}

// SubMenu builds the payload for one plugin's detail page.
func (pr *Presenter) SubMenu(p *PluginInfo, prefix string) SubMenuData {
	return SubMenuData{
		Plugin: PluginTile{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Description: p.Description,
			IconURL:     p.IconURL,
		},
		Commands:    commandEntries(p.Commands, prefix, true),
		Prefix:      prefix,
		AccentColor: pr.accentColor(),
		Fonts:       pr.fontConfig(),
		Footer:      pr.footer(),
	}
}

func commandEntries(cmds []CommandInfo, prefix string, detailed bool) []CommandEntry {
	entries := make([]CommandEntry, 0, len(cmds))
	for _, c := range cmds {
		entry := CommandEntry{
			DisplayName: commandDisplayName(c, prefix),
			Description: c.Description,
			AdminOnly:   c.AdminOnly,
		}
		if detailed {
			entry.Aliases = c.Aliases
			entry.Usage = c.Usage
		}
		entries = append(entries, entry)
	}
	return entries
}

// commandDisplayName joins the effective prefix with the command name.
func commandDisplayName(c CommandInfo, prefix string) string {
	if c.CustomPrefix != nil {
		return *c.CustomPrefix + c.Name
	}
	return prefix + c.Name
}

func (pr *Presenter) footer() string {
	if pr.settings.FooterText != "" {
		return pr.settings.FooterText
	}
	return version.AppName + " v" + version.Version
}

func (pr *Presenter) accentColor() string {
	color := pr.settings.AccentColor
	if !strings.HasPrefix(color, "#") || (len(color) != 4 && len(color) != 7) {
		return defaultAccentColor
	}
	return color
}

func (pr *Presenter) fontConfig() FontConfig {
	urls := make([]string, 0, len(pr.settings.FontURLs))
	for _, u := range pr.settings.FontURLs {
		if s := strings.TrimSpace(u); s != "" {
			urls = append(urls, s)
		}
	}
	return FontConfig{
		FontURLs:        urls,
		FontFamily:      strings.TrimSpace(pr.settings.FontFamily),
		LatinFontFamily: strings.TrimSpace(pr.settings.LatinFontFamily),
		MonoFontFamily:  strings.TrimSpace(pr.settings.MonoFontFamily),
	}
}

func (pr *Presenter) bannerDataURI() string {
	if pr.settings.BannerImage == "" {
		return ""
	}
	path, ok := pr.resolveDataPath(pr.settings.BannerImage)
	if !ok {
		return ""
	}
	return pr.icons.ReadImageDataURI(path)
}

func (pr *Presenter) headerLogoURI() string {
	if pr.settings.HeaderLogo != "" {
		if path, ok := pr.resolveDataPath(pr.settings.HeaderLogo); ok {
			if uri := pr.icons.ReadImageDataURI(path); uri != "" {
				return uri
			}
		}
	}
	return dataURI("image/svg+xml", defaultLogoBytes)
}

// resolveDataPath anchors a configured relative path inside the data
// directory and rejects anything that escapes it.
func (pr *Presenter) resolveDataPath(raw string) (string, bool) {
	path := raw
	if !filepath.IsAbs(path) {
		path = filepath.Join(pr.dataDir, path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	absData, err := filepath.Abs(pr.dataDir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absData, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		pr.log.Warnw("rejected path outside data dir", "path", raw)
		return "", false
	}
	return absPath, true
}
