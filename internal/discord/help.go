package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/helpdeck/internal/menu"
	"github.com/keshon/helpdeck/internal/storage"
)

var helpAliases = map[string]struct{}{
	"help":     {},
	"menu":     {},
	"commands": {},
}

const adminFlag = "--admin"

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, b.cfg.WakePrefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(content, b.cfg.WakePrefix))
	if len(fields) == 0 {
		return
	}
	if _, ok := helpAliases[strings.ToLower(fields[0])]; !ok {
		return
	}
	if !b.allowRequest(cooldownKey(m)) {
		b.log.Debugw("help request rate limited", "guild", m.GuildID, "user", m.Author.ID)
		return
	}

	query, showAll := b.parseQuery(fields[1:], m.Author.ID)
	b.recordRequest(m, query)

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	if query == "" {
		b.replyMainMenu(ctx, s, m.ChannelID, showAll)
	} else {
		b.replySubMenu(ctx, s, m.ChannelID, query, showAll)
	}
}

// cooldownKey buckets guild traffic per guild; direct messages have no guild
// and are bucketed per author so DM users never throttle each other.
func cooldownKey(m *discordgo.MessageCreate) string {
	if m.GuildID != "" {
		return m.GuildID
	}
	return m.Author.ID
}

// parseQuery strips the admin flag token from the query. The blacklist is
// only bypassed for configured admins, either on demand via the flag or
// always when admin_show_all is set.
func (b *Bot) parseQuery(args []string, userID string) (string, bool) {
	hasFlag := false
	kept := make([]string, 0, len(args))
	for _, a := range args {
		if a == adminFlag {
			hasFlag = true
			continue
		}
		kept = append(kept, a)
	}
	isAdmin := b.isAdmin(userID)
	showAll := isAdmin && (hasFlag || b.settings.AdminShowAll)
	return strings.Join(kept, " "), showAll
}

func (b *Bot) recordRequest(m *discordgo.MessageCreate, query string) {
	if m.GuildID == "" {
		return
	}
	err := b.store.AddHelpRequest(m.GuildID, storage.HelpRequest{
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		Username:  m.Author.Username,
		Query:     query,
		Datetime:  time.Now().UTC(),
	})
	if err != nil {
		b.log.Warnw("failed to record help request", "error", err)
	}
}

func (b *Bot) replyMainMenu(ctx context.Context, s *discordgo.Session, channelID string, showAll bool) {
	img, err := b.svc.MainMenu(ctx, showAll)
	switch {
	case errors.Is(err, menu.ErrEmptyCatalog):
		b.sendText(s, channelID, "No plugin commands available.")
	case err != nil:
		b.log.Errorw("main menu render failed", "error", err)
		b.sendText(s, channelID, "Failed to render the help menu, please try again later.")
	default:
		b.sendImage(s, channelID, "help_menu.png", img)
	}
}

func (b *Bot) replySubMenu(ctx context.Context, s *discordgo.Session, channelID, query string, showAll bool) {
	img, err := b.svc.SubMenu(ctx, query, showAll)
	switch {
	case errors.Is(err, menu.ErrPluginNotFound):
		b.sendText(s, channelID, fmt.Sprintf(
			"Plugin %q not found. Send %shelp to list all available plugins.", query, b.cfg.WakePrefix))
	case err != nil:
		b.log.Errorw("sub menu render failed", "query", query, "error", err)
		b.sendText(s, channelID, "Failed to render the help menu, please try again later.")
	default:
		b.sendImage(s, channelID, "help_"+strings.ReplaceAll(query, " ", "_")+".png", img)
	}
}

func (b *Bot) sendText(s *discordgo.Session, channelID, text string) {
	if _, err := s.ChannelMessageSend(channelID, text); err != nil {
		b.log.Warnw("failed to send message", "channel", channelID, "error", err)
	}
}

func (b *Bot) sendImage(s *discordgo.Session, channelID, name string, img []byte) {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        name,
			ContentType: "image/png",
			Reader:      bytes.NewReader(img),
		}},
	})
	if err != nil {
		b.log.Warnw("failed to send image", "channel", channelID, "error", err)
	}
}
