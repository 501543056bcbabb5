package version

const (
	// AppName doubles as the bot's own plugin name in the catalog; the
	// collector always blacklists it so the help menu does not list itself.
	AppName = "helpdeck"
	Version = "0.4.2"
)
