package service

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/p2pbot/core/logger"
	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/m3rciful/p2pbot/internal/storage"
)

// Deals runs the withdrawal and top-up lifecycle. Withdrawals debit the
// sender when the request is created; the debit is refunded exactly
// once if an admin declines. Top-ups never touch the balance until an
// admin confirms the transfer arrived.
type Deals struct {
	store         storage.Store
	depositWallet string
}

// NewDeals constructs the deal service. depositWallet is the exchange
// wallet shown to users topping up.
func NewDeals(store storage.Store, depositWallet string) *Deals {
	return &Deals{store: store, depositWallet: depositWallet}
}

// DepositWallet returns the exchange top-up address.
func (s *Deals) DepositWallet() string {
	return s.depositWallet
}

// Outcome describes what a confirm or decline actually did.
type Outcome struct {
	Deal *models.Deal
	// CreditedUserID is the account whose balance was credited, 0 when
	// the payout destination belongs to no registered user.
	CreditedUserID int64
	// Refunded is set when a declined withdrawal returned the funds.
	Refunded bool
	// MultipleOwners is set when several accounts share the destination.
	MultipleOwners bool
}

// PrepareWithdrawal runs the same validation as CreateWithdrawal but
// performs no mutation. The review step shown to the user before the
// final confirmation relies on this: an uncovered or malformed request
// is rejected here, before anything is reserved.
func (s *Deals) PrepareWithdrawal(ctx context.Context, senderID int64, rt models.RecipientType, recipient string, amount decimal.Decimal) error {
	if _, err := ValidateRecipient(rt, recipient); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	u, err := s.store.GetUser(ctx, senderID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("prepare withdrawal: %w", err)
	}
	if amount.GreaterThan(u.Balance) {
		return ErrInsufficientFunds
	}
	return nil
}

// CreateWithdrawal validates the destination, reserves the amount from
// the sender's balance, and records a pending deal. The reserve is a
// single guarded update, so two concurrent requests can never spend the
// same funds twice.
func (s *Deals) CreateWithdrawal(ctx context.Context, senderID int64, rt models.RecipientType, recipient string, amount decimal.Decimal) (*models.Deal, error) {
	validRecipient, err := ValidateRecipient(rt, recipient)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	applied, err := s.store.ReserveBalance(ctx, senderID, amount)
	if err != nil {
		return nil, fmt.Errorf("create withdrawal: %w", err)
	}
	if !applied {
		return nil, ErrInsufficientFunds
	}

	deal := &models.Deal{
		SenderID:      senderID,
		Kind:          models.DealWithdrawal,
		RecipientType: rt,
		Recipient:     validRecipient,
		Amount:        amount,
		Currency:      CurrencyFor(rt),
		Status:        models.DealPending,
	}
	if err := s.store.CreateDeal(ctx, deal); err != nil {
		// The reserve already happened; give the money back rather than
		// leave it in limbo.
		if refundErr := s.store.CreditBalance(ctx, senderID, amount); refundErr != nil {
			logger.Error(ctx, "service.deals", "deal.orphaned_reserve",
				slog.String("status", "error"),
				slog.Int64("user_id", senderID),
				slog.String("amount", amount.String()),
				slog.String("err", refundErr.Error()),
			)
		}
		return nil, fmt.Errorf("create withdrawal: %w", err)
	}

	logger.Info(ctx, "service.deals", "deal.created",
		slog.String("status", "ok"),
		slog.Int64("deal_id", deal.ID),
		slog.String("deal_kind", string(deal.Kind)),
		slog.Int64("user_id", senderID),
		slog.String("amount", amount.String()),
		slog.String("currency", deal.Currency),
	)
	return deal, nil
}

// CreateTopUp records a pending top-up. Nothing is credited until an
// admin confirms the incoming transfer.
func (s *Deals) CreateTopUp(ctx context.Context, senderID int64, amount decimal.Decimal) (*models.Deal, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	deal := &models.Deal{
		SenderID:      senderID,
		Kind:          models.DealTopUp,
		RecipientType: models.RecipientWallet,
		Recipient:     s.depositWallet,
		Amount:        amount,
		Currency:      "TON",
		Status:        models.DealPending,
	}
	if err := s.store.CreateDeal(ctx, deal); err != nil {
		return nil, fmt.Errorf("create top-up: %w", err)
	}
	logger.Info(ctx, "service.deals", "deal.created",
		slog.String("status", "ok"),
		slog.Int64("deal_id", deal.ID),
		slog.String("deal_kind", string(deal.Kind)),
		slog.Int64("user_id", senderID),
		slog.String("amount", amount.String()),
	)
	return deal, nil
}

// Get fetches a deal by id.
func (s *Deals) Get(ctx context.Context, id int64) (*models.Deal, error) {
	d, err := s.store.GetDeal(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrAlreadyProcessed
	}
	return d, err
}

// Confirm settles a pending deal. The pending-to-confirmed transition
// is a compare-and-set, so a second press of the confirm button comes
// back as ErrAlreadyProcessed and no balance moves twice.
func (s *Deals) Confirm(ctx context.Context, dealID int64) (*Outcome, error) {
	deal, err := s.Get(ctx, dealID)
	if err != nil {
		return nil, err
	}

	applied, err := s.store.TransitionDeal(ctx, dealID, models.DealPending, models.DealConfirmed)
	if err != nil {
		return nil, fmt.Errorf("confirm deal %d: %w", dealID, err)
	}
	if !applied {
		return nil, ErrAlreadyProcessed
	}
	deal.Status = models.DealConfirmed

	out := &Outcome{Deal: deal}
	switch deal.Kind {
	case models.DealTopUp:
		if err := s.store.CreditBalance(ctx, deal.SenderID, deal.Amount); err != nil {
			logger.Error(ctx, "service.deals", "deal.credit_failed",
				slog.String("status", "error"),
				slog.Int64("deal_id", dealID),
				slog.Int64("user_id", deal.SenderID),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("confirm deal %d: %w", dealID, err)
		}
		out.CreditedUserID = deal.SenderID
	case models.DealWithdrawal:
		if err := s.settleWithdrawal(ctx, deal, out); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "service.deals", "deal.confirmed",
		slog.String("status", "ok"),
		slog.Int64("deal_id", dealID),
		slog.String("deal_kind", string(deal.Kind)),
		slog.Int64("user_id", out.CreditedUserID),
		slog.String("amount", deal.Amount.String()),
	)
	return out, nil
}

// settleWithdrawal credits the counterparty if the payout destination
// belongs to a registered user. Ownership lookup is a single indexed
// query; with several owners the lowest user_id wins and the anomaly
// is logged.
func (s *Deals) settleWithdrawal(ctx context.Context, deal *models.Deal, out *Outcome) error {
	owners, err := s.store.FindUsersByRecipient(ctx, deal.RecipientType, deal.Recipient)
	if err != nil {
		return fmt.Errorf("settle deal %d: %w", deal.ID, err)
	}
	if len(owners) > 1 {
		out.MultipleOwners = true
		logger.Warn(ctx, "service.deals", "deal.multiple_owners",
			slog.String("status", "error"),
			slog.Int64("deal_id", deal.ID),
			slog.String("recipient_type", string(deal.RecipientType)),
			slog.Int("count", len(owners)),
		)
	}
	if len(owners) > 0 {
		recipient := owners[0]
		if err := s.store.CreditBalance(ctx, recipient.UserID, deal.Amount); err != nil {
			logger.Error(ctx, "service.deals", "deal.credit_failed",
				slog.String("status", "error"),
				slog.Int64("deal_id", deal.ID),
				slog.Int64("user_id", recipient.UserID),
				slog.String("err", err.Error()),
			)
			return fmt.Errorf("settle deal %d: %w", deal.ID, err)
		}
		out.CreditedUserID = recipient.UserID
	}
	// Only the sender's deal counter moves; receiving a payout is not a
	// completed deal for the counterparty.
	if err := s.store.IncrementDealsCount(ctx, deal.SenderID); err != nil {
		logger.Warn(ctx, "service.deals", "deal.stats_failed",
			slog.String("status", "error"),
			slog.Int64("user_id", deal.SenderID),
			slog.String("err", err.Error()),
		)
	}
	return nil
}

// Decline rejects a pending deal. A declined withdrawal refunds the
// reserved amount to the sender; the compare-and-set guarantees the
// refund happens at most once no matter how many admins press decline.
func (s *Deals) Decline(ctx context.Context, dealID int64) (*Outcome, error) {
	deal, err := s.Get(ctx, dealID)
	if err != nil {
		return nil, err
	}

	applied, err := s.store.TransitionDeal(ctx, dealID, models.DealPending, models.DealDeclined)
	if err != nil {
		return nil, fmt.Errorf("decline deal %d: %w", dealID, err)
	}
	if !applied {
		return nil, ErrAlreadyProcessed
	}
	deal.Status = models.DealDeclined

	out := &Outcome{Deal: deal}
	if deal.Kind == models.DealWithdrawal {
		if err := s.store.CreditBalance(ctx, deal.SenderID, deal.Amount); err != nil {
			logger.Error(ctx, "service.deals", "deal.refund_failed",
				slog.String("status", "error"),
				slog.Int64("deal_id", dealID),
				slog.Int64("user_id", deal.SenderID),
				slog.String("err", err.Error()),
			)
			return nil, fmt.Errorf("decline deal %d: %w", dealID, err)
		}
		out.Refunded = true
	}

	logger.Info(ctx, "service.deals", "deal.declined",
		slog.String("status", "ok"),
		slog.Int64("deal_id", dealID),
		slog.String("deal_kind", string(deal.Kind)),
		slog.Bool("refunded", out.Refunded),
	)
	return out, nil
}
