// Package builtin registers reserved host commands; the menu hides them
// unless show_builtin_cmds is enabled.
package builtin

import "github.com/keshon/helpdeck/internal/registry"

const modulePath = "helpdeck/plugins/builtin"

func Register(reg *registry.Registry) {
	reg.AddPlugin(registry.Plugin{
		Name:        "builtin",
		DisplayName: "Built-in",
		Description: "Host maintenance commands.",
		ModulePath:  modulePath,
		RootDir:     "builtin",
		Activated:   true,
		Reserved:    true,
	})

	reg.AddHandler(modulePath, "Reload plugins without restarting.",
		registry.Command("reload"), registry.AdminOnly())
	reg.AddHandler(modulePath, "Shut the bot down.",
		registry.Command("shutdown"), registry.AdminOnly())
}
