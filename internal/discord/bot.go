// Package discord runs the bot and exposes the help command surface.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/helpdeck/internal/config"
	"github.com/keshon/helpdeck/internal/menu"
	"github.com/keshon/helpdeck/internal/registry"
	"github.com/keshon/helpdeck/internal/storage"
	"github.com/keshon/helpdeck/internal/version"
	"github.com/keshon/helpdeck/pkg/ratelimit"
)

// Bot wires the help command to Discord messages.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	settings *config.MenuSettings
	svc      *menu.Service
	store    *storage.Storage
	log      *zap.SugaredLogger

	// per-guild help cooldown
	limits *ratelimit.Keyed
}

func New(cfg *config.Config, settings *config.MenuSettings, svc *menu.Service, store *storage.Storage, log *zap.SugaredLogger) *Bot {
	return &Bot{
		cfg:      cfg,
		settings: settings,
		svc:      svc,
		store:    store,
		log:      log,
		limits:   ratelimit.NewKeyed(1, 3),
	}
}

// RegisterSelf publishes the bot's own command surface into the host
// registry. The collector always blacklists this plugin, so the menu never
// lists itself; registering it anyway keeps the registry an honest mirror
// of what is loaded.
func RegisterSelf(reg *registry.Registry) {
	module := "helpdeck/internal/discord"
	reg.AddPlugin(registry.Plugin{
		Name:        version.AppName,
		DisplayName: "Helpdeck",
		Description: "Renders the help menu as an image.",
		ModulePath:  module,
		Activated:   true,
	})
	reg.AddHandler(module, "Show the help menu.", registry.Command("help", "menu", "commands"))
}

// Run opens the session and blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer dg.Close()

	go b.sweepLimiters(ctx)

	<-ctx.Done()
	b.log.Infow("shutdown signal received, closing session")
	return nil
}

func (b *Bot) sweepLimiters(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.limits.Sweep(time.Hour)
		}
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Infow("bot ready", "user", r.User.Username, "guilds", len(r.Guilds))
}

// allowRequest enforces a light cooldown per guild (or per DM user) so help
// spam cannot stampede the render engine.
func (b *Bot) allowRequest(key string) bool {
	return b.limits.Allow(key)
}

func (b *Bot) isAdmin(userID string) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
