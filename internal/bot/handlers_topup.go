package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"github.com/m3rciful/p2pbot/core/telegram/state"
	"github.com/m3rciful/p2pbot/internal/i18n"
	"github.com/m3rciful/p2pbot/internal/service"
)

// handleTopUp asks for the amount to deposit.
func (a *App) handleTopUp(c tele.Context) error {
	ok, lang, err := a.requireUser(c)
	if !ok {
		return err
	}
	a.fsm.SetState(c.Sender().ID, StateTopUpAmount)
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "topup.ask_amount"))
}

// handleTopUpAmountInput shows the deposit wallet and waits for the
// user to confirm the transfer was sent.
func (a *App) handleTopUpAmountInput(c tele.Context) error {
	userID := c.Sender().ID
	lang := a.lang(c)

	amount, err := service.ParseAmount(c.Text())
	if err != nil {
		return tghelpers.SendMD(c, i18n.T(lang, "deal.invalid_amount"))
	}

	a.fsm.SetDraft(userID, &TopUpDraft{Amount: amount})
	a.fsm.SetState(userID, StateTopUpConfirm)
	return tghelpers.SendMD(c,
		i18n.T(lang, "topup.instructions", amount.String(), a.deals.DepositWallet()),
		topUpConfirmMarkup(lang))
}

// handleConfirmTopUp records the pending top-up and notifies admins.
// The balance stays untouched until an admin verifies the transfer.
func (a *App) handleConfirmTopUp(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "confirm_top_up")
	userID := c.Sender().ID
	lang := a.lang(c)

	draft, ok := state.DraftAs[*TopUpDraft](a.fsm, userID)
	if !ok {
		return a.handleBackToMain(c)
	}

	deal, err := a.deals.CreateTopUp(ctx, userID, draft.Amount)
	if err != nil {
		return a.replyError(c, err)
	}
	a.fsm.Clear(userID)

	a.notify.Broadcast(ctx,
		i18n.T(i18n.DefaultLang, "deal.admin_topup",
			deal.ID, deal.SenderID, deal.Amount.String(), deal.Currency),
		dealReviewMarkup(deal.ID),
	)
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "topup.sent", deal.ID))
}

func (a *App) handleCancelTopUp(c tele.Context) error {
	userID := c.Sender().ID
	a.fsm.Clear(userID)
	if err := tghelpers.EditOrSendMD(c, i18n.T(a.lang(c), "topup.cancelled")); err != nil {
		return err
	}
	return a.handleBackToMain(c)
}
