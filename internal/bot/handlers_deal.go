package bot

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/p2pbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"github.com/m3rciful/p2pbot/core/telegram/state"
	"github.com/m3rciful/p2pbot/internal/i18n"
	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/m3rciful/p2pbot/internal/service"
)

// handleCreateDeal opens the withdrawal flow: destination type first,
// then the destination itself, then the amount.
func (a *App) handleCreateDeal(c tele.Context) error {
	ok, lang, err := a.requireUser(c)
	if !ok {
		return err
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "deal.choose_recipient_type"), recipientTypeMarkup(lang))
}

func (a *App) handleRecipientType(rt models.RecipientType) tele.HandlerFunc {
	return func(c tele.Context) error {
		ok, lang, err := a.requireUser(c)
		if !ok {
			return err
		}
		userID := c.Sender().ID
		a.fsm.SetDraft(userID, &DealDraft{RecipientType: rt})
		a.fsm.SetState(userID, StateDealRecipient)

		key := "deal.ask_wallet"
		if rt == models.RecipientCard {
			key = "deal.ask_card"
		}
		return tghelpers.SendMD(c, i18n.T(lang, key))
	}
}

// handleDealRecipientInput validates the typed destination and moves
// on to the amount question.
func (a *App) handleDealRecipientInput(c tele.Context) error {
	userID := c.Sender().ID
	lang := a.lang(c)

	draft, ok := state.DraftAs[*DealDraft](a.fsm, userID)
	if !ok {
		a.fsm.Clear(userID)
		return a.handleBackToMain(c)
	}

	recipient, err := service.ValidateRecipient(draft.RecipientType, c.Text())
	if err != nil {
		key := "deal.invalid_wallet"
		if draft.RecipientType == models.RecipientCard {
			key = "deal.invalid_card"
		}
		return tghelpers.SendMD(c, i18n.T(lang, key))
	}

	draft.Recipient = recipient
	a.fsm.SetDraft(userID, draft)
	a.fsm.SetState(userID, StateDealAmount)
	return tghelpers.SendMD(c, i18n.T(lang, "deal.ask_amount"))
}

// handleDealAmountInput validates the amount against the current
// balance and shows the request summary. Nothing is reserved yet; the
// user can still walk away.
func (a *App) handleDealAmountInput(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "deal_amount")
	userID := c.Sender().ID
	lang := a.lang(c)

	draft, ok := state.DraftAs[*DealDraft](a.fsm, userID)
	if !ok || draft.Recipient == "" {
		a.fsm.Clear(userID)
		return a.handleBackToMain(c)
	}

	amount, err := service.ParseAmount(c.Text())
	if err != nil {
		return tghelpers.SendMD(c, i18n.T(lang, "deal.invalid_amount"))
	}

	err = a.deals.PrepareWithdrawal(ctx, userID, draft.RecipientType, draft.Recipient, amount)
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		return tghelpers.SendMD(c, i18n.T(lang, "deal.insufficient"))
	case err != nil:
		return a.replyError(c, err)
	}

	draft.Amount = amount
	a.fsm.SetDraft(userID, draft)
	a.fsm.SetState(userID, StateDealConfirm)

	typeKey := "btn.recipient_wallet"
	if draft.RecipientType == models.RecipientCard {
		typeKey = "btn.recipient_card"
	}
	return tghelpers.SendMD(c,
		i18n.T(lang, "deal.confirm_summary",
			i18n.T(lang, typeKey), draft.Recipient,
			amount.String(), service.CurrencyFor(draft.RecipientType)),
		dealConfirmMarkup(lang))
}

// handleConfirmWithdrawal fires on the user's confirm button: this is
// the first and only point where funds are reserved.
func (a *App) handleConfirmWithdrawal(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "confirm_withdrawal")
	userID := c.Sender().ID
	lang := a.lang(c)

	draft, ok := state.DraftAs[*DealDraft](a.fsm, userID)
	if !ok || draft.Recipient == "" || !draft.Amount.IsPositive() {
		a.fsm.Clear(userID)
		return a.handleBackToMain(c)
	}

	deal, err := a.deals.CreateWithdrawal(ctx, userID, draft.RecipientType, draft.Recipient, draft.Amount)
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		// The balance shrank between the summary and the press.
		a.fsm.Clear(userID)
		return tghelpers.EditOrSendMD(c, i18n.T(lang, "deal.insufficient"))
	case err != nil:
		return a.replyError(c, err)
	}
	a.fsm.Clear(userID)

	a.notify.Broadcast(ctx,
		i18n.T(i18n.DefaultLang, "deal.admin_new",
			deal.ID, deal.SenderID, deal.Recipient, string(deal.RecipientType),
			deal.Amount.String(), deal.Currency),
		dealReviewMarkup(deal.ID),
	)
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "deal.sent", deal.ID, deal.Amount.String(), deal.Currency))
}

// handleCancelDeal abandons the request before anything was reserved.
func (a *App) handleCancelDeal(c tele.Context) error {
	userID := c.Sender().ID
	a.fsm.Clear(userID)
	if err := tghelpers.EditOrSendMD(c, i18n.T(a.lang(c), "deal.cancelled")); err != nil {
		return err
	}
	return a.handleBackToMain(c)
}

// handleConfirmDeal is pressed in the admin group. The status change
// happens first; notifications go out only after it sticks, so a
// repeated press cannot double-pay anyone.
func (a *App) handleConfirmDeal(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "confirm_deal")
	dealID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}

	out, err := a.deals.Confirm(ctx, dealID)
	if errors.Is(err, service.ErrAlreadyProcessed) {
		return tghelpers.SendMD(c, i18n.T(i18n.DefaultLang, "deal.admin_already", dealID))
	}
	if err != nil {
		return a.replyError(c, err)
	}

	deal := out.Deal
	if deal.Kind == models.DealTopUp {
		a.notify.NotifyUser(ctx, deal.SenderID,
			i18n.T(a.userLang(ctx, deal.SenderID), "topup.confirmed_user", deal.ID, deal.Amount.String()))
	} else {
		a.notify.NotifyUser(ctx, deal.SenderID,
			i18n.T(a.userLang(ctx, deal.SenderID), "deal.confirmed_user", deal.ID))
		if out.CreditedUserID != 0 && out.CreditedUserID != deal.SenderID {
			a.notify.NotifyUser(ctx, out.CreditedUserID,
				i18n.T(a.userLang(ctx, out.CreditedUserID), "deal.credited_user",
					deal.Amount.String(), deal.Currency, deal.ID))
		}
	}
	return tghelpers.EditOrSendMD(c, i18n.T(i18n.DefaultLang, "deal.admin_confirmed", dealID))
}

// handleDeclineDeal rejects the deal and, for withdrawals, refunds.
func (a *App) handleDeclineDeal(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "decline_deal")
	dealID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}

	out, err := a.deals.Decline(ctx, dealID)
	if errors.Is(err, service.ErrAlreadyProcessed) {
		return tghelpers.SendMD(c, i18n.T(i18n.DefaultLang, "deal.admin_already", dealID))
	}
	if err != nil {
		return a.replyError(c, err)
	}

	deal := out.Deal
	key := "deal.declined_user"
	if deal.Kind == models.DealTopUp {
		key = "topup.declined_user"
	}
	a.notify.NotifyUser(ctx, deal.SenderID,
		i18n.T(a.userLang(ctx, deal.SenderID), key, deal.ID))
	return tghelpers.EditOrSendMD(c, i18n.T(i18n.DefaultLang, "deal.admin_declined", dealID))
}
