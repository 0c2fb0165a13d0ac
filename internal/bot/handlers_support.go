package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/p2pbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"github.com/m3rciful/p2pbot/core/telegram/state"
	"github.com/m3rciful/p2pbot/internal/i18n"
)

// handleSupportMessage is the text fallback: any free-form private
// message outside a dialog is relayed to the admin groups with a
// reply button attached.
func (a *App) handleSupportMessage(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "support_message")
	if c.Chat() == nil || c.Chat().Type != tele.ChatPrivate {
		return nil
	}
	sender := c.Sender()

	a.notify.Broadcast(ctx,
		i18n.T(i18n.DefaultLang, "support.from_user", sender.ID, sender.Username, c.Text()),
		supportReplyMarkup(sender.ID),
	)
	return tghelpers.SendMD(c, i18n.T(a.lang(c), "support.received"))
}

// handleReplyToSupport arms the reply dialog for an admin; the next
// text message goes to the chosen user.
func (a *App) handleReplyToSupport(c tele.Context) error {
	targetID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}
	adminID := c.Sender().ID
	a.fsm.SetDraft(adminID, &SupportReplyDraft{TargetUserID: targetID})
	a.fsm.SetState(adminID, StateSupportReply)
	return tghelpers.SendText(c, i18n.T(i18n.DefaultLang, "support.ask_reply", targetID))
}

// handleSupportReplyInput forwards the admin's text to the user.
func (a *App) handleSupportReplyInput(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "support_reply")
	adminID := c.Sender().ID

	draft, ok := state.DraftAs[*SupportReplyDraft](a.fsm, adminID)
	if !ok {
		a.fsm.Clear(adminID)
		return nil
	}
	a.fsm.Clear(adminID)

	a.notify.NotifyUser(ctx, draft.TargetUserID,
		i18n.T(a.userLang(ctx, draft.TargetUserID), "support.reply", c.Text()))
	return tghelpers.SendText(c, i18n.T(i18n.DefaultLang, "support.reply_sent", draft.TargetUserID))
}
