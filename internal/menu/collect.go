package menu

import (
	"strings"

	"go.uber.org/zap"

	"github.com/keshon/helpdeck/internal/config"
	"github.com/keshon/helpdeck/internal/registry"
	"github.com/keshon/helpdeck/internal/version"
)

// Collector rebuilds the plugin catalog from the live registry on every call.
type Collector struct {
	src      registry.Source
	settings *config.MenuSettings
	icons    *IconResolver
	log      *zap.SugaredLogger
}

func NewCollector(src registry.Source, settings *config.MenuSettings, icons *IconResolver, log *zap.SugaredLogger) *Collector {
	return &Collector{src: src, settings: settings, icons: icons, log: log}
}

// Collect runs discovery, command extraction, configured overrides, custom
// categories, icon defaulting, and the final sort. A registry failure yields
// an empty catalog: "no commands" is a displayable state, not an error.
func (c *Collector) Collect(skipBlacklist bool) []*PluginInfo {
	plugins, moduleToPlugin := c.discoverPlugins(skipBlacklist)
	assignCommands(plugins, moduleToPlugin, c.src.Handlers())
	c.applyOverrides(plugins)
	c.applyCustomCategories(plugins)
	c.assignDefaultIcons(plugins)

	list := make([]*PluginInfo, 0, len(plugins))
	for _, p := range plugins {
		list = append(list, p)
	}
	sortPlugins(list)
	return list
}

func (c *Collector) discoverPlugins(skipBlacklist bool) (map[string]*PluginInfo, map[string]string) {
	blacklist := make(map[string]struct{})
	if !skipBlacklist {
		for _, name := range c.settings.PluginBlacklist {
			blacklist[name] = struct{}{}
		}
	}
	// The menu never lists itself.
	blacklist[version.AppName] = struct{}{}

	all, err := c.src.Plugins()
	if err != nil {
		c.log.Errorw("failed to enumerate plugins", "error", err)
		return map[string]*PluginInfo{}, map[string]string{}
	}

	plugins := make(map[string]*PluginInfo)
	moduleToPlugin := make(map[string]string)
	for _, pl := range all {
		if !pl.Activated || pl.Name == "" || pl.ModulePath == "" {
			continue
		}
		if _, banned := blacklist[pl.Name]; banned {
			continue
		}
		if pl.Reserved && !c.settings.ShowBuiltinCmds {
			continue
		}

		info := newPluginInfo(pl.Name)
		if pl.DisplayName != "" {
			info.DisplayName = pl.DisplayName
		}
		info.Description = pl.Description
		info.IconURL = c.icons.PluginIcon(pl.RootDir)
		plugins[pl.Name] = info
		moduleToPlugin[pl.ModulePath] = pl.Name
	}
	return plugins, moduleToPlugin
}

func (c *Collector) applyOverrides(plugins map[string]*PluginInfo) {
	for _, o := range c.settings.PluginOverrides {
		if o.PluginName == "" {
			continue
		}
		p, ok := plugins[o.PluginName]
		if !ok {
			p = newPluginInfo(o.PluginName)
			plugins[o.PluginName] = p
		}
		if o.DisplayName != "" {
			p.DisplayName = o.DisplayName
		}
		if o.Description != "" {
			p.Description = o.Description
		}
		if o.Order != nil {
			p.Order = *o.Order
		}
		for _, raw := range o.ExtraCommands {
			cmd := parsePipeCommand(raw)
			if cmd == nil {
				continue
			}
			// Overrides win over discovery.
			p.removeCommand(cmd.Name)
			p.Commands = append(p.Commands, *cmd)
		}
	}
}

func (c *Collector) applyCustomCategories(plugins map[string]*PluginInfo) {
	for _, cat := range c.settings.CustomCategories {
		if cat.Name == "" {
			continue
		}
		p := newPluginInfo("custom_" + cat.Name)
		p.DisplayName = cat.Name
		p.Description = cat.Description
		if cat.Order != nil {
			p.Order = *cat.Order
		}
		for _, raw := range cat.Commands {
			if cmd := parsePipeCommand(raw); cmd != nil {
				p.Commands = append(p.Commands, *cmd)
			}
		}
		// An empty category would render as a blank menu section.
		if len(p.Commands) > 0 {
			plugins[p.Name] = p
		}
	}
}

func (c *Collector) assignDefaultIcons(plugins map[string]*PluginInfo) {
	for _, p := range plugins {
		if p.IconURL == "" {
			p.IconURL = c.icons.Default()
		}
	}
}

// parsePipeCommand parses "name|description|prefix". The prefix segment is
// optional: absent means "inherit the global wake prefix", an explicit empty
// third segment means "no prefix at all".
func parsePipeCommand(raw string) *CommandInfo {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return nil
	}
	cmd := &CommandInfo{Name: name}
	if len(parts) > 1 {
		cmd.Description = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		prefix := strings.TrimSpace(parts[2])
		cmd.CustomPrefix = &prefix
	}
	return cmd
}
