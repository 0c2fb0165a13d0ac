package bot

import (
	"github.com/m3rciful/p2pbot/core/telegram/state"
	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/shopspring/decimal"
)

// Conversation states. Each multi-step flow owns its states and a
// typed draft; DraftAs recovers the draft with the right type.
const (
	StateRegisterName state.State = "register_name"

	StateWalletInput state.State = "wallet_input"
	StateCardInput   state.State = "card_input"

	StateDealRecipient state.State = "deal_recipient"
	StateDealAmount    state.State = "deal_amount"
	StateDealConfirm   state.State = "deal_confirm"

	StateTopUpAmount  state.State = "topup_amount"
	StateTopUpConfirm state.State = "topup_confirm"

	StateAdminPairName        state.State = "admin_pair_name"
	StateAdminListingNickname state.State = "admin_listing_nickname"
	StateAdminListingPrice    state.State = "admin_listing_price"
	StateAdminListingLimit    state.State = "admin_listing_limit"

	StateSupportReply state.State = "support_reply"
)

// RegisterDraft keeps the inviter id between /start and registration.
type RegisterDraft struct {
	ReferrerID int64
}

// DealDraft accumulates the withdrawal flow input. Nothing is reserved
// while the draft exists; the ledger is touched only after the user
// confirms the summary.
type DealDraft struct {
	RecipientType models.RecipientType
	Recipient     string
	Amount        decimal.Decimal
}

// TopUpDraft accumulates the top-up flow input.
type TopUpDraft struct {
	Amount decimal.Decimal
}

// ListingDraft accumulates the admin add-listing flow input.
type ListingDraft struct {
	Pair     string
	Nickname string
	Price    string
	Limit    string
}

// SupportReplyDraft remembers which user an admin is replying to.
type SupportReplyDraft struct {
	TargetUserID int64
}
