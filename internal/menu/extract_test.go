package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/helpdeck/internal/registry"
)

func extractInto(t *testing.T, reg *registry.Registry, pluginName, modulePath string) *PluginInfo {
	t.Helper()
	plugin := newPluginInfo(pluginName)
	plugins := map[string]*PluginInfo{pluginName: plugin}
	assignCommands(plugins, map[string]string{modulePath: pluginName}, reg.Handlers())
	return plugin
}

func commandNames(p *PluginInfo) []string {
	names := make([]string, 0, len(p.Commands))
	for _, c := range p.Commands {
		names = append(names, c.Name)
	}
	return names
}

func TestNestedGroupFlattening(t *testing.T) {
	reg := registry.New()
	module := "plugins/demo"

	leaf := reg.AddHandler(module, "the leaf", registry.Command("x"))
	childGroup := registry.Group("child", registry.SubCommand(leaf, "x"))
	// The child group is also registered standalone, as hosts do.
	reg.AddHandler(module, "child group", childGroup)
	reg.AddHandler(module, "parent group", registry.Group("parent", childGroup))

	plugin := extractInto(t, reg, "demo", module)

	// Exactly one command, reachable only through the parent path.
	assert.Equal(t, []string{"parent child x"}, commandNames(plugin))
}

func TestGroupedHandlerSuppression(t *testing.T) {
	reg := registry.New()
	module := "plugins/demo"

	sub := reg.AddHandler(module, "grouped sub", registry.Command("sub"))
	reg.AddHandler(module, "the group", registry.Group("grp", registry.SubCommand(sub, "sub")))
	reg.AddHandler(module, "standalone", registry.Command("solo"))

	plugin := extractInto(t, reg, "demo", module)

	assert.ElementsMatch(t, []string{"grp sub", "solo"}, commandNames(plugin))
}

func TestDuplicateNameFirstWins(t *testing.T) {
	reg := registry.New()
	module := "plugins/demo"

	reg.AddHandler(module, "first", registry.Command("foo"))
	reg.AddHandler(module, "second", registry.Command("foo"))

	plugin := extractInto(t, reg, "demo", module)

	require.Len(t, plugin.Commands, 1)
	assert.Equal(t, "first", plugin.Commands[0].Description)
}

func TestAdminInheritance(t *testing.T) {
	reg := registry.New()
	module := "plugins/demo"

	plain := reg.AddHandler(module, "inherits", registry.Command("plain"))
	elevated := reg.AddHandler(module, "own admin", registry.Command("strict"), registry.AdminOnly())
	reg.AddHandler(module, "admin group",
		registry.Group("adm",
			registry.SubCommand(plain, "plain"),
			registry.SubCommand(elevated, "strict"),
		),
		registry.AdminOnly(),
	)
	reg.AddHandler(module, "free group",
		registry.Group("free", registry.SubCommand(elevated, "strict")),
	)

	plugin := extractInto(t, reg, "demo", module)

	byName := make(map[string]CommandInfo)
	for _, c := range plugin.Commands {
		byName[c.Name] = c
	}
	// Parent admin propagates to leaves lacking their own permission.
	assert.True(t, byName["adm plain"].AdminOnly)
	assert.True(t, byName["adm strict"].AdminOnly)
	// A leaf's own admin filter elevates it even under a non-admin parent.
	assert.True(t, byName["free strict"].AdminOnly)
}

func TestCommandWinsOverGroup(t *testing.T) {
	reg := registry.New()
	module := "plugins/demo"

	reg.AddHandler(module, "both filters",
		registry.Command("direct"),
		registry.Group("side", registry.Command("ignored")),
	)

	plugin := extractInto(t, reg, "demo", module)

	assert.Contains(t, commandNames(plugin), "direct")
	assert.NotContains(t, commandNames(plugin), "side ignored")
}

func TestOtherPermissionKindsIgnored(t *testing.T) {
	reg := registry.New()
	module := "plugins/demo"

	reg.AddHandler(module, "moderated", registry.Command("post"),
		registry.Permission(registry.PermissionOther))

	plugin := extractInto(t, reg, "demo", module)

	require.Len(t, plugin.Commands, 1)
	assert.False(t, plugin.Commands[0].AdminOnly)
}

func TestAliasesCarriedThrough(t *testing.T) {
	reg := registry.New()
	module := "plugins/demo"

	reg.AddHandler(module, "aliased", registry.Command("about", "info", "credits"))

	plugin := extractInto(t, reg, "demo", module)

	require.Len(t, plugin.Commands, 1)
	assert.Equal(t, []string{"info", "credits"}, plugin.Commands[0].Aliases)
}
