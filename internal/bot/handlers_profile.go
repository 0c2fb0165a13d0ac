package bot

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"github.com/m3rciful/p2pbot/internal/i18n"
	"github.com/m3rciful/p2pbot/internal/service"
)

// handleProfile shows the profile card with balance, stats, payout
// details, and the personal referral link.
func (a *App) handleProfile(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "profile")
	user, err := tghelpers.CurrentUser(ctx, a.users, c.Sender().ID)
	if errors.Is(err, service.ErrUserNotFound) {
		return tghelpers.SendMD(c, i18n.T(i18n.DefaultLang, "err.not_registered"))
	}
	if err != nil {
		return a.replyError(c, err)
	}
	lang := user.Language

	wallet := maskWallet(user.TonWallet)
	if wallet == "" {
		wallet = i18n.T(lang, "profile.none")
	}
	card := maskCard(user.CardNumber)
	if card == "" {
		card = i18n.T(lang, "profile.none")
	}

	body := i18n.T(lang, "profile.body",
		mdSafe(user.FullName), mdSafe(user.Username),
		user.Balance.String(), user.DealsCount, user.RefCount,
		mdSafe(wallet), mdSafe(card), a.refLink(user.UserID),
	)
	return tghelpers.EditOrSendMD(c, body, profileMarkup(lang))
}

// maskWallet keeps the first and last 8 characters of a TON address.
// Full payout details never appear on screen.
func maskWallet(addr string) string {
	if len(addr) <= 16 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-8:]
}

// maskCard shows only the last four digits of a card number.
func maskCard(card string) string {
	if len(card) < 4 {
		return card
	}
	return "**** **** **** " + card[len(card)-4:]
}

func (a *App) handleAddChangeWallet(c tele.Context) error {
	ok, lang, err := a.requireUser(c)
	if !ok {
		return err
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "btn.add_change_wallet"), payoutDetailsMarkup(lang))
}

// handleAddTonWallet starts the wallet input dialog.
func (a *App) handleAddTonWallet(c tele.Context) error {
	ok, lang, err := a.requireUser(c)
	if !ok {
		return err
	}
	a.fsm.SetState(c.Sender().ID, StateWalletInput)
	return tghelpers.SendMD(c, i18n.T(lang, "wallet.ask"))
}

// handleWalletInput consumes the typed wallet address.
func (a *App) handleWalletInput(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "wallet_input")
	userID := c.Sender().ID
	lang := a.lang(c)

	err := a.users.SetWallet(ctx, userID, c.Text())
	if errors.Is(err, service.ErrInvalidWallet) {
		return tghelpers.SendMD(c, i18n.T(lang, "wallet.invalid"))
	}
	if err != nil {
		return a.replyError(c, err)
	}
	a.fsm.ClearState(userID)
	return tghelpers.SendMD(c, i18n.T(lang, "wallet.saved"), profileMarkup(lang))
}

// handleAddCard starts the card input dialog.
func (a *App) handleAddCard(c tele.Context) error {
	ok, lang, err := a.requireUser(c)
	if !ok {
		return err
	}
	a.fsm.SetState(c.Sender().ID, StateCardInput)
	return tghelpers.SendMD(c, i18n.T(lang, "card.ask"))
}

// handleCardInput consumes the typed card number.
func (a *App) handleCardInput(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "card_input")
	userID := c.Sender().ID
	lang := a.lang(c)

	err := a.users.SetCard(ctx, userID, c.Text())
	if errors.Is(err, service.ErrInvalidCard) {
		return tghelpers.SendMD(c, i18n.T(lang, "card.invalid"))
	}
	if err != nil {
		return a.replyError(c, err)
	}
	a.fsm.ClearState(userID)
	return tghelpers.SendMD(c, i18n.T(lang, "card.saved"), profileMarkup(lang))
}

func (a *App) handleChangeLanguage(c tele.Context) error {
	lang := a.lang(c)
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "lang.choose"), languageMarkup(lang))
}

func (a *App) handleSetLanguage(langCode string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.WithHandler(c, "set_language")
		err := a.users.SetLanguage(ctx, c.Sender().ID, langCode)
		if errors.Is(err, service.ErrUserNotFound) {
			return tghelpers.SendMD(c, i18n.T(langCode, "err.not_registered"))
		}
		if err != nil {
			return a.replyError(c, err)
		}
		if err := tghelpers.EditOrSendMD(c, i18n.T(langCode, "lang.saved")); err != nil {
			return err
		}
		return a.handleBackToMain(c)
	}
}
