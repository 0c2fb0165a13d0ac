package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/p2pbot/internal/i18n"
)

func TestRefLinkCarriesPrefix(t *testing.T) {
	a := &App{cfg: &Config{}}
	a.cfg.Exchange.BotUsername = "p2pbot"

	assert.Equal(t, "https://t.me/p2pbot?start=ref_42", a.refLink(42))
}

func TestParseReferralPayload(t *testing.T) {
	refID, ok := parseReferralPayload("ref_42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), refID)

	refID, ok = parseReferralPayload("  ref_42  ")
	assert.True(t, ok)
	assert.Equal(t, int64(42), refID)

	// a bare ID, garbage, or a non-positive ID is not a referral
	for _, bad := range []string{"", "42", "ref_", "ref_abc", "ref_-1", "ref_0", "promo"} {
		_, ok := parseReferralPayload(bad)
		assert.False(t, ok, "payload %q", bad)
	}
}

func TestIDTargetEchoesChatInGroups(t *testing.T) {
	key, id := idTarget(&tele.Chat{ID: -100123, Type: tele.ChatSuperGroup}, 42)
	assert.Equal(t, "id.chat_reply", key)
	assert.Equal(t, int64(-100123), id)

	key, id = idTarget(&tele.Chat{ID: 42, Type: tele.ChatPrivate}, 42)
	assert.Equal(t, "id.reply", key)
	assert.Equal(t, int64(42), id)

	key, id = idTarget(nil, 42)
	assert.Equal(t, "id.reply", key)
	assert.Equal(t, int64(42), id)
}

func TestNewUserBroadcastMessage(t *testing.T) {
	msg := i18n.T(i18n.DefaultLang, "admin.new_user", "Test User", int64(42))
	assert.NotEqual(t, "admin.new_user", msg, "catalog must carry the key")
	assert.Contains(t, msg, "Test User")
	assert.Contains(t, msg, "42")
}
