// Package mod registers the moderation command group. Its layout mirrors how
// host frameworks register grouped commands: every sub-command handler is
// present in the flat registry, and the group filter links back to them.
package mod

import "github.com/keshon/helpdeck/internal/registry"

const modulePath = "helpdeck/plugins/mod"

func Register(reg *registry.Registry) {
	reg.AddPlugin(registry.Plugin{
		Name:        "mod",
		DisplayName: "Moderation",
		Description: "Warnings, purges, and other moderation tools.",
		ModulePath:  modulePath,
		RootDir:     "mod",
		Activated:   true,
	})

	// Leaf handlers of the "mod warn" sub-group.
	warnAdd := reg.AddHandler(modulePath, "Issue a warning to a member.", registry.Command("add"))
	warnList := reg.AddHandler(modulePath, "List a member's warnings.", registry.Command("list"))
	warnClear := reg.AddHandler(modulePath, "Clear a member's warnings.",
		registry.Command("clear"), registry.AdminOnly())

	warnGroup := registry.Group("warn",
		registry.SubCommand(warnAdd, "add"),
		registry.SubCommand(warnList, "list"),
		registry.SubCommand(warnClear, "clear"),
	)
	// The sub-group is itself a registered handler; nested-group suppression
	// keeps it from surfacing twice.
	reg.AddHandler(modulePath, "Warning management.", warnGroup)

	purge := reg.AddHandler(modulePath, "Delete recent messages in bulk.", registry.Command("purge"))

	// Top-level "mod" group requires admin; leaves inherit unless they
	// declare their own permission.
	reg.AddHandler(modulePath, "Moderation tools.",
		registry.Group("mod",
			registry.SubCommand(purge, "purge"),
			warnGroup,
		),
		registry.AdminOnly(),
	)

	reg.AddHandler(modulePath, "Report a member to the moderators.", registry.Command("report"))
}
