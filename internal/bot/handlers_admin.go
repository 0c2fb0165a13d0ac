package bot

import (
	"errors"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/p2pbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"github.com/m3rciful/p2pbot/core/telegram/state"
	"github.com/m3rciful/p2pbot/internal/i18n"
	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/m3rciful/p2pbot/internal/service"
)

// isAdmin guards admin callbacks. Commands go through the admin-only
// middleware; callbacks check explicitly because anyone can forge a
// callback query.
func (a *App) isAdmin(c tele.Context) bool {
	if c.Sender() != nil && a.cfg.Core.IsAdmin(c.Sender().ID) {
		return true
	}
	return c.Chat() != nil && a.cfg.Core.IsAdminChat(c.Chat().ID)
}

func (a *App) adminOnly(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !a.isAdmin(c) {
			return tghelpers.SendMD(c, i18n.T(a.lang(c), "admin.not_authorized"))
		}
		return h(c)
	}
}

func (a *App) handleAdminPanel(c tele.Context) error {
	lang := a.lang(c)
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.panel_title"), adminPanelMarkup(lang))
}

func (a *App) handleAdminP2PMenu(c tele.Context) error {
	lang := a.lang(c)
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.p2p_menu"), adminP2PMarkup(lang))
}

// handleAdminAddPair starts the pair name dialog.
func (a *App) handleAdminAddPair(c tele.Context) error {
	a.fsm.SetState(c.Sender().ID, StateAdminPairName)
	return tghelpers.SendMD(c, i18n.T(a.lang(c), "admin.ask_pair_name"))
}

func (a *App) handleAdminPairNameInput(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "admin_pair_name")
	if !a.isAdmin(c) {
		a.fsm.Clear(c.Sender().ID)
		return nil
	}
	lang := a.lang(c)

	pair, err := a.listings.AddPair(ctx, c.Text())
	if errors.Is(err, service.ErrPairExists) {
		a.fsm.ClearState(c.Sender().ID)
		return tghelpers.SendMD(c, i18n.T(lang, "admin.pair_exists", c.Text()), adminP2PMarkup(lang))
	}
	if err != nil {
		return a.replyError(c, err)
	}
	a.fsm.ClearState(c.Sender().ID)
	return tghelpers.SendMD(c, i18n.T(lang, "admin.pair_added", pair.Name), adminP2PMarkup(lang))
}

// handleAdminRemovePair shows the pair picker.
func (a *App) handleAdminRemovePair(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "admin_remove_pair")
	lang := a.lang(c)
	pairs, err := a.listings.Pairs(ctx)
	if err != nil {
		return a.replyError(c, err)
	}
	if len(pairs) == 0 {
		return tghelpers.EditOrSendMD(c, i18n.T(lang, "p2p.no_pairs"), adminP2PMarkup(lang))
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.choose_pair_remove"),
		adminPairsMarkup(lang, pairs, cbPickRemovePair))
}

func (a *App) handleAdminPickRemovePair(c tele.Context) error {
	lang := a.lang(c)
	pair := callbacks.CallbackPayload(c)
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.confirm_remove_pair", pair),
		confirmRemovePairMarkup(lang, pair))
}

func (a *App) handleAdminConfirmRemovePair(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "confirm_remove_pair")
	lang := a.lang(c)
	pair := callbacks.CallbackPayload(c)

	err := a.listings.RemovePair(ctx, pair)
	if errors.Is(err, service.ErrPairNotFound) {
		return a.handleAdminP2PMenu(c)
	}
	if err != nil {
		return a.replyError(c, err)
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.pair_removed", pair), adminP2PMarkup(lang))
}

// handleAdminManageListings shows the pair picker for listing management.
func (a *App) handleAdminManageListings(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "admin_manage_listings")
	lang := a.lang(c)
	pairs, err := a.listings.Pairs(ctx)
	if err != nil {
		return a.replyError(c, err)
	}
	if len(pairs) == 0 {
		return tghelpers.EditOrSendMD(c, i18n.T(lang, "p2p.no_pairs"), adminP2PMarkup(lang))
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.choose_pair_listings"),
		adminPairsMarkup(lang, pairs, cbSelectListingPair))
}

func (a *App) handleAdminSelectListingPair(c tele.Context) error {
	lang := a.lang(c)
	pair := callbacks.CallbackPayload(c)
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.listings_menu", pair), adminListingsMarkup(lang, pair))
}

// handleAdminAddListingStart begins the listing dialog for a pair.
func (a *App) handleAdminAddListingStart(c tele.Context) error {
	userID := c.Sender().ID
	pair := callbacks.CallbackPayload(c)
	a.fsm.SetDraft(userID, &ListingDraft{Pair: pair})
	a.fsm.SetState(userID, StateAdminListingNickname)
	return tghelpers.SendMD(c, i18n.T(a.lang(c), "admin.ask_listing_nickname"))
}

func (a *App) handleAdminListingNicknameInput(c tele.Context) error {
	userID := c.Sender().ID
	draft, ok := state.DraftAs[*ListingDraft](a.fsm, userID)
	if !ok {
		a.fsm.Clear(userID)
		return nil
	}
	draft.Nickname = c.Text()
	a.fsm.SetDraft(userID, draft)
	a.fsm.SetState(userID, StateAdminListingPrice)
	return tghelpers.SendMD(c, i18n.T(a.lang(c), "admin.ask_listing_price"))
}

func (a *App) handleAdminListingPriceInput(c tele.Context) error {
	userID := c.Sender().ID
	draft, ok := state.DraftAs[*ListingDraft](a.fsm, userID)
	if !ok {
		a.fsm.Clear(userID)
		return nil
	}
	draft.Price = c.Text()
	a.fsm.SetDraft(userID, draft)
	a.fsm.SetState(userID, StateAdminListingLimit)
	return tghelpers.SendMD(c, i18n.T(a.lang(c), "admin.ask_listing_limit"))
}

func (a *App) handleAdminListingLimitInput(c tele.Context) error {
	userID := c.Sender().ID
	lang := a.lang(c)
	draft, ok := state.DraftAs[*ListingDraft](a.fsm, userID)
	if !ok {
		a.fsm.Clear(userID)
		return nil
	}
	draft.Limit = c.Text()
	a.fsm.SetDraft(userID, draft)
	a.fsm.ClearState(userID)
	return tghelpers.SendMD(c, i18n.T(lang, "admin.ask_listing_action"), listingActionMarkup(lang))
}

func (a *App) handleAdminListingAction(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "add_listing_action")
	userID := c.Sender().ID
	lang := a.lang(c)

	draft, ok := state.DraftAs[*ListingDraft](a.fsm, userID)
	if !ok {
		return a.handleAdminP2PMenu(c)
	}
	action := models.ListingAction(callbacks.CallbackPayload(c))
	if action != models.ListingSell && action != models.ListingBuy {
		return nil
	}

	listing, err := a.listings.AddListing(ctx, draft.Pair, draft.Nickname, draft.Price, draft.Limit, action)
	if errors.Is(err, service.ErrPairNotFound) {
		a.fsm.Clear(userID)
		return a.handleAdminP2PMenu(c)
	}
	if err != nil {
		return a.replyError(c, err)
	}
	a.fsm.Clear(userID)
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.listing_added", listing.ID),
		adminListingsMarkup(lang, draft.Pair))
}

// handleAdminRemoveListingStart lists removable listings of a pair.
func (a *App) handleAdminRemoveListingStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "remove_listing_start")
	lang := a.lang(c)
	pair := callbacks.CallbackPayload(c)

	all, err := a.listings.ListingsOf(ctx, pair)
	if errors.Is(err, service.ErrPairNotFound) {
		return a.handleAdminP2PMenu(c)
	}
	if err != nil {
		return a.replyError(c, err)
	}
	if len(all) == 0 {
		return tghelpers.EditOrSendMD(c, i18n.T(lang, "p2p.empty"), adminListingsMarkup(lang, pair))
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.choose_listing_remove"),
		listingsRemoveMarkup(lang, all))
}

func (a *App) handleAdminConfirmRemoveListing(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "confirm_remove_listing")
	lang := a.lang(c)
	listingID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}
	if err := a.listings.RemoveListing(ctx, listingID); err != nil && !errors.Is(err, service.ErrListingNotFound) {
		return a.replyError(c, err)
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "admin.listing_removed"), adminP2PMarkup(lang))
}

// parseVipGrant reads /addvip arguments: <user_id> <days>.
func parseVipGrant(args []string) (targetID int64, d time.Duration, ok bool) {
	if len(args) != 2 {
		return 0, 0, false
	}
	targetID, err1 := strconv.ParseInt(args[0], 10, 64)
	days, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || days <= 0 {
		return 0, 0, false
	}
	return targetID, time.Duration(days) * 24 * time.Hour, true
}

// handleAddVip grants time-limited VIP: /addvip <user_id> <days>.
func (a *App) handleAddVip(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "addvip")
	lang := a.lang(c)
	targetID, duration, ok := parseVipGrant(c.Args())
	if !ok {
		return tghelpers.SendMD(c, i18n.T(lang, "vip.usage_addvip"))
	}

	expires, err := a.vip.Grant(ctx, targetID, duration)
	if err != nil {
		return a.replyError(c, err)
	}
	return tghelpers.SendMD(c, i18n.T(lang, "vip.granted", targetID, expires.Format("2006-01-02 15:04")))
}

// handleRemoveVip revokes VIP: /rmvip <user_id>.
func (a *App) handleRemoveVip(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "rmvip")
	lang := a.lang(c)
	args := c.Args()
	if len(args) != 1 {
		return tghelpers.SendMD(c, i18n.T(lang, "vip.usage_rmvip"))
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return tghelpers.SendMD(c, i18n.T(lang, "vip.usage_rmvip"))
	}
	if err := a.vip.Revoke(ctx, targetID); err != nil {
		return a.replyError(c, err)
	}
	return tghelpers.SendMD(c, i18n.T(lang, "vip.revoked", targetID))
}

// handleBalance shows the balance; with a signed argument a VIP user
// can adjust their own balance, never below zero.
func (a *App) handleBalance(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "balance")
	userID := c.Sender().ID
	lang := a.lang(c)
	args := c.Args()

	if len(args) == 0 {
		user, err := a.users.Get(ctx, userID)
		if errors.Is(err, service.ErrUserNotFound) {
			return tghelpers.SendMD(c, i18n.T(i18n.DefaultLang, "err.not_registered"))
		}
		if err != nil {
			return a.replyError(c, err)
		}
		return tghelpers.SendMD(c, i18n.T(lang, "balance.reply", user.Balance.String()))
	}

	delta, err := service.ParseSignedDelta(args[0])
	if err != nil {
		return tghelpers.SendMD(c, i18n.T(lang, "vip.balance_usage"))
	}
	balance, err := a.vip.AdjustOwnBalance(ctx, userID, delta)
	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		return tghelpers.SendMD(c, i18n.T(lang, "vip.not_vip"))
	case errors.Is(err, service.ErrInsufficientFunds):
		return tghelpers.SendMD(c, i18n.T(lang, "deal.insufficient"))
	case errors.Is(err, service.ErrUserNotFound):
		return tghelpers.SendMD(c, i18n.T(i18n.DefaultLang, "err.not_registered"))
	case err != nil:
		return a.replyError(c, err)
	}
	return tghelpers.SendMD(c, i18n.T(lang, "vip.balance_adjusted", balance.String()))
}
