package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/keshon/helpdeck/internal/config"
)

func newTestBot(settings *config.MenuSettings) *Bot {
	cfg := &config.Config{WakePrefix: "!", AdminIDs: []string{"admin-1"}}
	return New(cfg, settings, nil, nil, zap.NewNop().Sugar())
}

func TestParseQuery(t *testing.T) {
	b := newTestBot(&config.MenuSettings{})

	query, showAll := b.parseQuery([]string{"music"}, "user-1")
	assert.Equal(t, "music", query)
	assert.False(t, showAll)

	// The flag is stripped from the query either way; only admins get the
	// unfiltered view.
	query, showAll = b.parseQuery([]string{"music", "--admin"}, "user-1")
	assert.Equal(t, "music", query)
	assert.False(t, showAll)

	query, showAll = b.parseQuery([]string{"--admin", "music", "player"}, "admin-1")
	assert.Equal(t, "music player", query)
	assert.True(t, showAll)

	query, showAll = b.parseQuery(nil, "admin-1")
	assert.Equal(t, "", query)
	assert.False(t, showAll)
}

func TestParseQueryAdminShowAll(t *testing.T) {
	b := newTestBot(&config.MenuSettings{AdminShowAll: true})

	_, showAll := b.parseQuery(nil, "admin-1")
	assert.True(t, showAll, "configured admins see everything without the flag")

	_, showAll = b.parseQuery(nil, "user-1")
	assert.False(t, showAll)
}

func TestAllowRequestCooldown(t *testing.T) {
	b := newTestBot(&config.MenuSettings{})

	for i := 0; i < 3; i++ {
		assert.True(t, b.allowRequest("guild-1"), "burst request %d", i)
	}
	assert.False(t, b.allowRequest("guild-1"))
	assert.True(t, b.allowRequest("guild-2"), "other guilds are unaffected")
}

func TestCooldownKey(t *testing.T) {
	inGuild := &discordgo.MessageCreate{Message: &discordgo.Message{
		GuildID: "guild-1",
		Author:  &discordgo.User{ID: "user-1"},
	}}
	assert.Equal(t, "guild-1", cooldownKey(inGuild))

	// DMs carry no guild; each user gets their own bucket.
	dmAlice := &discordgo.MessageCreate{Message: &discordgo.Message{
		Author: &discordgo.User{ID: "user-1"},
	}}
	dmBob := &discordgo.MessageCreate{Message: &discordgo.Message{
		Author: &discordgo.User{ID: "user-2"},
	}}
	assert.Equal(t, "user-1", cooldownKey(dmAlice))
	assert.NotEqual(t, cooldownKey(dmAlice), cooldownKey(dmBob))
}
