// Package menu aggregates the plugin catalog and renders it into help-menu
// images through the content-addressed render cache.
package menu

import "sort"

const defaultOrder = 99

// CommandInfo is one invocable command as shown on the menu.
type CommandInfo struct {
	Name        string
	Description string
	Aliases     []string
	Usage       string
	AdminOnly   bool
	// CustomPrefix selects the prefix shown before the command name:
	// nil = the bot's global wake prefix, "" = no prefix, anything else
	// is used literally.
	CustomPrefix *string
}

// PluginInfo is one plugin's aggregated menu entry. Command names are unique
// within a plugin: discovery keeps the first occurrence, overrides replace.
type PluginInfo struct {
	Name        string
	DisplayName string
	Description string
	IconURL     string
	Order       int
	Commands    []CommandInfo
}

func newPluginInfo(name string) *PluginInfo {
	return &PluginInfo{Name: name, DisplayName: name, Order: defaultOrder}
}

func (p *PluginInfo) hasCommand(name string) bool {
	for _, c := range p.Commands {
		if c.Name == name {
			return true
		}
	}
	return false
}

// removeCommand drops any command with the given name, keeping order.
func (p *PluginInfo) removeCommand(name string) {
	kept := p.Commands[:0]
	for _, c := range p.Commands {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	p.Commands = kept
}

// sortPlugins orders the catalog by (order asc, name asc); this is the
// on-screen menu order.
func sortPlugins(plugins []*PluginInfo) {
	sort.Slice(plugins, func(i, j int) bool {
		if plugins[i].Order != plugins[j].Order {
			return plugins[i].Order < plugins[j].Order
		}
		return plugins[i].Name < plugins[j].Name
	})
}
