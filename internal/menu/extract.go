package menu

import (
	"github.com/keshon/helpdeck/internal/registry"
)

// Command extraction is a two-pass walk over the handler registry. A handler
// that backs a grouped sub-command is also present in the flat registry, and
// its filters alone do not say so; the first pass therefore marks every
// handler reachable through some group filter, plus every group name that is
// nested inside another group of the same module. The second pass emits
// commands only for handlers that survived both marks.

type groupIndex struct {
	groupedIDs   map[registry.HandlerID]struct{}
	nestedGroups map[string]map[string]struct{} // module path -> nested group names
}

// scanGroups is pass one.
func scanGroups(handlers []registry.Handler) groupIndex {
	idx := groupIndex{
		groupedIDs:   make(map[registry.HandlerID]struct{}),
		nestedGroups: make(map[string]map[string]struct{}),
	}
	for _, h := range handlers {
		for _, f := range h.Filters {
			if f.Kind != registry.FilterGroup {
				continue
			}
			collectGroupedIDs(f.Group, idx.groupedIDs)
			names := idx.nestedGroups[h.ModulePath]
			if names == nil {
				names = make(map[string]struct{})
				idx.nestedGroups[h.ModulePath] = names
			}
			collectNestedGroupNames(f.Group, names)
		}
	}
	return idx
}

// collectGroupedIDs records the handler behind every command leaf, recursively.
func collectGroupedIDs(g *registry.GroupFilter, ids map[registry.HandlerID]struct{}) {
	for _, sub := range g.Subs {
		switch sub.Kind {
		case registry.FilterCommand:
			if sub.Command.Handler != registry.NoHandler {
				ids[sub.Command.Handler] = struct{}{}
			}
		case registry.FilterGroup:
			collectGroupedIDs(sub.Group, ids)
		}
	}
}

// collectNestedGroupNames records group names that appear inside another
// group; such sub-groups are reachable through their parent and must not be
// surfaced as independent top-level entries.
func collectNestedGroupNames(g *registry.GroupFilter, names map[string]struct{}) {
	for _, sub := range g.Subs {
		if sub.Kind == registry.FilterGroup {
			names[sub.Group.Name] = struct{}{}
			collectNestedGroupNames(sub.Group, names)
		}
	}
}

// suppressed reports whether pass two must skip the handler entirely.
func (idx groupIndex) suppressed(h registry.Handler) bool {
	if _, ok := idx.groupedIDs[h.ID]; ok {
		return true
	}
	nested := idx.nestedGroups[h.ModulePath]
	if nested == nil {
		return false
	}
	for _, f := range h.Filters {
		if f.Kind == registry.FilterGroup {
			if _, ok := nested[f.Group.Name]; ok {
				return true
			}
		}
	}
	return false
}

// assignCommands is pass two: it resolves each surviving handler to its
// plugin and emits commands in encounter order.
func assignCommands(plugins map[string]*PluginInfo, moduleToPlugin map[string]string, handlers []registry.Handler) {
	idx := scanGroups(handlers)
	byID := make(map[registry.HandlerID]registry.Handler, len(handlers))
	for _, h := range handlers {
		byID[h.ID] = h
	}

	for _, h := range handlers {
		if idx.suppressed(h) {
			continue
		}
		name, ok := moduleToPlugin[h.ModulePath]
		if !ok {
			continue
		}
		plugin, ok := plugins[name]
		if !ok {
			continue
		}
		extractHandlerCommands(h, byID, plugin)
	}
}

// extractHandlerCommands emits at most one artifact per handler: a plain
// command when present, otherwise a flattened command group.
func extractHandlerCommands(h registry.Handler, byID map[registry.HandlerID]registry.Handler, plugin *PluginInfo) {
	var cmdFilter *registry.CommandFilter
	var groupFilter *registry.GroupFilter
	isAdmin := false

	for _, f := range h.Filters {
		switch f.Kind {
		case registry.FilterCommand:
			cmdFilter = f.Command
		case registry.FilterGroup:
			groupFilter = f.Group
		case registry.FilterPermission:
			if f.Permission.Kind == registry.PermissionAdmin {
				isAdmin = true
			}
		}
	}

	switch {
	case cmdFilter != nil:
		if plugin.hasCommand(cmdFilter.Name) {
			return
		}
		plugin.Commands = append(plugin.Commands, CommandInfo{
			Name:        cmdFilter.Name,
			Description: h.Description,
			Aliases:     append([]string(nil), cmdFilter.Aliases...),
			AdminOnly:   isAdmin,
		})
	case groupFilter != nil:
		extractGroupCommands(groupFilter, byID, plugin, isAdmin, "")
	}
}

// extractGroupCommands flattens a group: each leaf's full name is the
// space-joined ancestor path, and the parent's admin flag is the default
// unless the leaf's own handler demands admin itself.
func extractGroupCommands(g *registry.GroupFilter, byID map[registry.HandlerID]registry.Handler, plugin *PluginInfo, parentAdmin bool, prefix string) {
	groupPrefix := prefix + g.Name + " "

	for _, sub := range g.Subs {
		switch sub.Kind {
		case registry.FilterCommand:
			fullName := groupPrefix + sub.Command.Name
			if plugin.hasCommand(fullName) {
				continue
			}
			desc := ""
			admin := parentAdmin
			if leaf, ok := byID[sub.Command.Handler]; ok {
				desc = leaf.Description
				for _, f := range leaf.Filters {
					if f.Kind == registry.FilterPermission && f.Permission.Kind == registry.PermissionAdmin {
						admin = true
					}
				}
			}
			plugin.Commands = append(plugin.Commands, CommandInfo{
				Name:        fullName,
				Description: desc,
				Aliases:     append([]string(nil), sub.Command.Aliases...),
				AdminOnly:   admin,
			})
		case registry.FilterGroup:
			extractGroupCommands(sub.Group, byID, plugin, parentAdmin, groupPrefix)
		}
	}
}
