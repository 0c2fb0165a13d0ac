package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/p2pbot/core/telegram/format"
	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"github.com/m3rciful/p2pbot/core/telegram/state"
	"github.com/m3rciful/p2pbot/internal/i18n"
	"github.com/m3rciful/p2pbot/internal/service"
)

// handleStart greets the user with the main menu. A ref_<id> /start
// payload is a referral: it is remembered until registration finishes.
func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "start")
	userID := c.Sender().ID
	a.fsm.Clear(userID)

	user, err := a.users.Get(ctx, userID)
	if errors.Is(err, service.ErrUserNotFound) {
		if refID, ok := parseReferralPayload(c.Message().Payload); ok && refID != userID {
			a.fsm.SetDraft(userID, &RegisterDraft{ReferrerID: refID})
		}
		lang := i18n.DefaultLang
		return tghelpers.SendMD(c, i18n.T(lang, "menu.guest"), mainMenuMarkup(lang, false))
	}
	if err != nil {
		return a.replyError(c, err)
	}

	lang := user.Language
	return tghelpers.SendMD(c, i18n.T(lang, "menu.welcome", mdSafe(user.FullName)), mainMenuMarkup(lang, true))
}

func (a *App) handleBackToMain(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "back_to_main")
	userID := c.Sender().ID
	a.fsm.ClearState(userID)
	a.fsm.ClearDraft(userID)

	user, err := a.users.Get(ctx, userID)
	if errors.Is(err, service.ErrUserNotFound) {
		lang := i18n.DefaultLang
		return tghelpers.EditOrSendMD(c, i18n.T(lang, "menu.guest"), mainMenuMarkup(lang, false))
	}
	if err != nil {
		return a.replyError(c, err)
	}
	lang := user.Language
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "menu.welcome", mdSafe(user.FullName)), mainMenuMarkup(lang, true))
}

// handleRegister starts the name dialog.
func (a *App) handleRegister(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "register")
	userID := c.Sender().ID

	if ok, err := a.users.IsRegistered(ctx, userID); err != nil {
		return a.replyError(c, err)
	} else if ok {
		return tghelpers.SendMD(c, i18n.T(a.lang(c), "register.already"))
	}

	a.fsm.SetState(userID, StateRegisterName)
	lang := i18n.DefaultLang
	return tghelpers.SendMD(c, i18n.T(lang, "register.ask_name"), registerMarkup(lang))
}

// handleUseProfileName registers with the Telegram profile name.
func (a *App) handleUseProfileName(c tele.Context) error {
	sender := c.Sender()
	name := strings.TrimSpace(sender.FirstName + " " + sender.LastName)
	return a.completeRegistration(c, name)
}

// handleRegisterNameInput consumes the typed name while in the dialog.
func (a *App) handleRegisterNameInput(c tele.Context) error {
	return a.completeRegistration(c, c.Text())
}

func (a *App) completeRegistration(c tele.Context, name string) error {
	ctx := tghelpers.WithHandler(c, "register_name")
	userID := c.Sender().ID
	lang := i18n.DefaultLang

	var referrerID int64
	if draft, ok := state.DraftAs[*RegisterDraft](a.fsm, userID); ok {
		referrerID = draft.ReferrerID
	}

	created, err := a.users.Register(ctx, userID, c.Sender().Username, name, referrerID)
	if errors.Is(err, service.ErrInvalidName) {
		return tghelpers.SendMD(c, i18n.T(lang, "register.name_invalid"))
	}
	if err != nil {
		return a.replyError(c, err)
	}
	a.fsm.Clear(userID)
	if !created {
		return tghelpers.SendMD(c, i18n.T(lang, "register.already"))
	}

	user, err := a.users.Get(ctx, userID)
	if err != nil {
		return a.replyError(c, err)
	}
	a.notify.Broadcast(ctx, i18n.T(i18n.DefaultLang, "admin.new_user", mdSafe(user.FullName), userID), nil)
	if err := tghelpers.SendMD(c, i18n.T(user.Language, "register.done", mdSafe(user.FullName))); err != nil {
		return err
	}
	return tghelpers.SendMD(c, i18n.T(user.Language, "menu.welcome", mdSafe(user.FullName)), mainMenuMarkup(user.Language, true))
}

// mdSafe escapes user-provided text for Markdown messages.
func mdSafe(s string) string {
	escaped, err := format.EscapeMarkdown(s, format.MarkdownV1)
	if err != nil {
		return s
	}
	return escaped
}

// idTarget picks what /id should echo: the chat ID in groups, the
// sender ID in private chats.
func idTarget(chat *tele.Chat, senderID int64) (key string, id int64) {
	if chat != nil && chat.Type != tele.ChatPrivate {
		return "id.chat_reply", chat.ID
	}
	return "id.reply", senderID
}

// handleID echoes the sender's ID, or the chat's ID in groups so
// admins can read group IDs for the config without extra tooling.
func (a *App) handleID(c tele.Context) error {
	key, id := idTarget(c.Chat(), c.Sender().ID)
	return tghelpers.SendText(c, i18n.T(a.lang(c), key, id))
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, i18n.T(a.lang(c), "help.text"))
}

// userLang resolves the interface language of an arbitrary user.
func (a *App) userLang(ctx context.Context, userID int64) string {
	user, err := a.users.Get(ctx, userID)
	if err != nil || !i18n.Supported(user.Language) {
		return i18n.DefaultLang
	}
	return user.Language
}

// lang resolves the interface language of the current sender.
func (a *App) lang(c tele.Context) string {
	ctx := tghelpers.BuildContext(c)
	user, err := a.users.Get(ctx, c.Sender().ID)
	if err != nil {
		return i18n.DefaultLang
	}
	if !i18n.Supported(user.Language) {
		return i18n.DefaultLang
	}
	return user.Language
}

// requireUser loads the registered user or answers with a hint.
func (a *App) requireUser(c tele.Context) (ok bool, lang string, err error) {
	ctx := tghelpers.BuildContext(c)
	user, err := a.users.Get(ctx, c.Sender().ID)
	if errors.Is(err, service.ErrUserNotFound) {
		return false, i18n.DefaultLang, tghelpers.SendMD(c, i18n.T(i18n.DefaultLang, "err.not_registered"))
	}
	if err != nil {
		return false, i18n.DefaultLang, a.replyError(c, err)
	}
	lang = user.Language
	if !i18n.Supported(lang) {
		lang = i18n.DefaultLang
	}
	return true, lang, nil
}

func (a *App) replyError(c tele.Context, err error) error {
	_ = tghelpers.SendMD(c, i18n.T(a.lang(c), "err.generic"))
	return err
}

// refLink builds the personal referral link for a user.
func (a *App) refLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=ref_%d", a.cfg.Exchange.BotUsername, userID)
}

// parseReferralPayload extracts the inviter ID from a /start payload.
// Only the ref_<id> form counts; anything else is ignored.
func parseReferralPayload(payload string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(payload), "ref_")
	if !ok {
		return 0, false
	}
	refID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || refID <= 0 {
		return 0, false
	}
	return refID, true
}
