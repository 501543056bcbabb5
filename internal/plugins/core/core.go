// Package core registers the bot's basic information commands.
package core

import "github.com/keshon/helpdeck/internal/registry"

const modulePath = "helpdeck/plugins/core"

func Register(reg *registry.Registry) {
	reg.AddPlugin(registry.Plugin{
		Name:        "core",
		DisplayName: "Core",
		Description: "General bot information and status.",
		ModulePath:  modulePath,
		RootDir:     "core",
		Activated:   true,
	})

	reg.AddHandler(modulePath, "Check whether the bot is responsive.", registry.Command("ping"))
	reg.AddHandler(modulePath, "Show bot version and credits.", registry.Command("about", "info"))
	reg.AddHandler(modulePath, "Show how long the bot has been running.", registry.Command("uptime"))
	reg.AddHandler(modulePath, "Invite the bot to another server.", registry.Command("invite"))
}
