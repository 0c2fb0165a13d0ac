package bot

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/p2pbot/core/telegram/keyboard"
	"github.com/m3rciful/p2pbot/internal/i18n"
	"github.com/m3rciful/p2pbot/internal/models"
)

// Callback keys. Keyboards attach them as button uniques and the
// registry routes presses back to handlers; dynamic parts travel in
// the payload, never in the key.
const (
	cbRegister       = "register"
	cbUseProfileName = "use_profile_name"
	cbProfile        = "profile"
	cbBackToMain     = "back_to_main"
	cbCreateDeal     = "create_deal"
	cbTopUpWallet    = "top_up_wallet"
	cbP2P            = "p2p"
	cbP2PPair        = "p2p_pair"
	cbChangeLanguage = "change_language"
	cbSetRussian     = "set_russian"
	cbSetEnglish     = "set_english"

	cbAddChangeWallet = "add_change_wallet"
	cbAddTonWallet    = "add_ton_wallet"
	cbAddCard         = "add_card"

	cbRecipientWallet = "recipient_ton_wallet"
	cbRecipientCard   = "recipient_card"

	cbConfirmDeal = "confirm_deal"
	cbCancelDeal  = "cancel_deal"

	cbAdminConfirmDeal = "admin_confirm_deal"
	cbAdminDeclineDeal = "admin_decline_deal"

	cbConfirmTopUp = "confirm_top_up"
	cbCancelTopUp  = "cancel_top_up"

	cbAdminP2PManage       = "admin_p2p_manage"
	cbAdminAddPair         = "admin_p2p_add_pair"
	cbAdminRemovePair      = "admin_p2p_remove_pair"
	cbAdminManageListings  = "admin_p2p_manage_listings"
	cbBackToAdminPanel     = "back_to_admin_panel"
	cbPickRemovePair       = "admin_pick_remove_pair"
	cbConfirmRemovePair    = "confirm_remove_pair"
	cbSelectListingPair    = "select_listing_pair"
	cbAddListingStart      = "add_listing_start"
	cbRemoveListingStart   = "remove_listing_start"
	cbConfirmRemoveListing = "confirm_remove_listing"
	cbAddListingAction     = "add_listing_action"
	cbReplyToSupport       = "reply_to_support"
)

func mainMenuMarkup(lang string, registered bool) *tele.ReplyMarkup {
	if !registered {
		return keyboard.InlineButtons([]keyboard.InlineBtn{
			{Text: i18n.T(lang, "btn.register"), Unique: cbRegister},
			{Text: i18n.T(lang, "btn.change_language"), Unique: cbChangeLanguage},
		})
	}
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: i18n.T(lang, "btn.profile"), Unique: cbProfile},
			{Text: i18n.T(lang, "btn.create_deal"), Unique: cbCreateDeal},
		},
		[]keyboard.InlineBtn{
			{Text: i18n.T(lang, "btn.top_up"), Unique: cbTopUpWallet},
			{Text: i18n.T(lang, "btn.p2p"), Unique: cbP2P},
		},
		[]keyboard.InlineBtn{
			{Text: i18n.T(lang, "btn.change_language"), Unique: cbChangeLanguage},
		},
	)
}

func profileMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: i18n.T(lang, "btn.add_change_wallet"), Unique: cbAddChangeWallet},
		{Text: i18n.T(lang, "btn.back_to_main"), Unique: cbBackToMain},
	})
}

func payoutDetailsMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: i18n.T(lang, "btn.add_ton_wallet"), Unique: cbAddTonWallet},
		{Text: i18n.T(lang, "btn.add_card"), Unique: cbAddCard},
		{Text: i18n.T(lang, "btn.back"), Unique: cbProfile},
	})
}

func languageMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: i18n.T(lang, "btn.lang_ru"), Unique: cbSetRussian},
			{Text: i18n.T(lang, "btn.lang_en"), Unique: cbSetEnglish},
		},
		[]keyboard.InlineBtn{
			{Text: i18n.T(lang, "btn.back_to_main"), Unique: cbBackToMain},
		},
	)
}

func registerMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: i18n.T(lang, "register.use_profile_name"), Unique: cbUseProfileName},
	})
}

func recipientTypeMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: i18n.T(lang, "btn.recipient_wallet"), Unique: cbRecipientWallet},
			{Text: i18n.T(lang, "btn.recipient_card"), Unique: cbRecipientCard},
		},
		[]keyboard.InlineBtn{
			{Text: i18n.T(lang, "btn.back_to_main"), Unique: cbBackToMain},
		},
	)
}

// dealConfirmMarkup is the user-facing review step shown before any
// funds are reserved.
func dealConfirmMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: i18n.T(lang, "btn.deal_confirm"), Unique: cbConfirmDeal},
		{Text: i18n.T(lang, "btn.deal_cancel"), Unique: cbCancelDeal},
	})
}

// dealReviewMarkup goes to the admin group; payload carries the deal id.
func dealReviewMarkup(dealID int64) *tele.ReplyMarkup {
	payload := strconv.FormatInt(dealID, 10)
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: i18n.T(i18n.DefaultLang, "btn.admin_confirm"), Unique: cbAdminConfirmDeal, Data: payload},
		{Text: i18n.T(i18n.DefaultLang, "btn.admin_decline"), Unique: cbAdminDeclineDeal, Data: payload},
	})
}

func topUpConfirmMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: i18n.T(lang, "btn.topup_confirm"), Unique: cbConfirmTopUp},
		{Text: i18n.T(lang, "btn.topup_cancel"), Unique: cbCancelTopUp},
	})
}

func pairsMarkup(lang string, pairs []*models.Pair, unique string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(pairs)+1)
	for _, p := range pairs {
		buttons = append(buttons, keyboard.InlineBtn{Text: p.Name, Unique: unique, Data: p.Name})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: i18n.T(lang, "btn.back_to_main"), Unique: cbBackToMain})
	return keyboard.InlineButtonsNPerRow(buttons, 2)
}

func adminPanelMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: i18n.T(lang, "btn.admin_p2p"), Unique: cbAdminP2PManage},
	})
}

func adminP2PMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: i18n.T(lang, "btn.admin_add_pair"), Unique: cbAdminAddPair},
		{Text: i18n.T(lang, "btn.admin_remove_pair"), Unique: cbAdminRemovePair},
		{Text: i18n.T(lang, "btn.admin_manage_listings"), Unique: cbAdminManageListings},
	})
}

func adminPairsMarkup(lang string, pairs []*models.Pair, unique string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(pairs)+1)
	for _, p := range pairs {
		buttons = append(buttons, keyboard.InlineBtn{Text: p.Name, Unique: unique, Data: p.Name})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: i18n.T(lang, "btn.admin_back"), Unique: cbBackToAdminPanel})
	return keyboard.InlineButtonsNPerRow(buttons, 2)
}

func confirmRemovePairMarkup(lang, pair string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: i18n.T(lang, "btn.admin_confirm"), Unique: cbConfirmRemovePair, Data: pair},
			{Text: i18n.T(lang, "btn.admin_back"), Unique: cbAdminP2PManage},
		},
	)
}

func adminListingsMarkup(lang, pair string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: i18n.T(lang, "btn.admin_add_listing"), Unique: cbAddListingStart, Data: pair},
		{Text: i18n.T(lang, "btn.admin_remove_listing"), Unique: cbRemoveListingStart, Data: pair},
		{Text: i18n.T(lang, "btn.admin_back"), Unique: cbBackToAdminPanel},
	})
}

func listingActionMarkup(lang string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: i18n.T(lang, "btn.listing_sell"), Unique: cbAddListingAction, Data: string(models.ListingSell)},
		{Text: i18n.T(lang, "btn.listing_buy"), Unique: cbAddListingAction, Data: string(models.ListingBuy)},
	})
}

func listingsRemoveMarkup(lang string, listings []*models.Listing) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(listings)+1)
	for _, l := range listings {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   l.Nickname + " #" + strconv.FormatInt(l.ID, 10),
			Unique: cbConfirmRemoveListing,
			Data:   strconv.FormatInt(l.ID, 10),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: i18n.T(lang, "btn.admin_back"), Unique: cbBackToAdminPanel})
	return keyboard.InlineButtonsNPerRow(buttons, 1)
}

func supportReplyMarkup(userID int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Ответить", Unique: cbReplyToSupport, Data: strconv.FormatInt(userID, 10)},
	})
}
