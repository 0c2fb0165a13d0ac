// Package bot wires the exchange services to the Telegram runtime:
// commands, callbacks, conversation states, and admin notifications.
package bot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/p2pbot/core/bootstrap"
	coretelegram "github.com/m3rciful/p2pbot/core/telegram"
	"github.com/m3rciful/p2pbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"github.com/m3rciful/p2pbot/core/telegram/middleware"
	"github.com/m3rciful/p2pbot/core/telegram/router"
	"github.com/m3rciful/p2pbot/core/telegram/state"
	"github.com/m3rciful/p2pbot/internal/i18n"
	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/m3rciful/p2pbot/internal/service"
	"github.com/m3rciful/p2pbot/internal/storage"
)

// App aggregates the services and Telegram wiring of the exchange bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	users    *service.Users
	deals    *service.Deals
	listings *service.Listings
	vip      *service.Vip
	fsm      state.Manager
	notify   *notifier
	registry *coretelegram.Registry
}

// NewApp bootstraps infrastructure and registers all handlers.
func NewApp(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config provided")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.New(res.DB)
	app := &App{
		cfg:      cfg,
		db:       res.DB,
		users:    service.NewUsers(store),
		deals:    service.NewDeals(store, cfg.Exchange.DepositWallet),
		listings: service.NewListings(store),
		vip:      service.NewVip(store),
		fsm:      state.NewMemoryManager(),
		notify:   newNotifier(cfg.Core.Admins.GroupIDs),
		registry: coretelegram.NewRegistry(),
	}

	app.registerCommands()
	app.registerCallbacks()
	app.registerStates()
	return app, nil
}

func (a *App) registerCommands() {
	reg := a.registry
	reg.RegisterCommand("/start", commands.Command{Handler: a.handleStart, Description: "Главное меню"})
	reg.RegisterCommand("/id", commands.Command{Handler: a.handleID, Description: "Ваш Telegram ID"})
	reg.RegisterCommand("/help", commands.Command{Handler: a.handleHelp, Description: "Справка"})
	reg.RegisterCommand("/balance", commands.Command{Handler: a.handleBalance, Description: "Баланс"})
	reg.RegisterCommand("/admin", commands.Command{Handler: a.handleAdminPanel, Description: "Панель администратора", AdminOnly: true})
	reg.RegisterCommand("/addvip", commands.Command{Handler: a.handleAddVip, Description: "Выдать VIP", AdminOnly: true, Hidden: true})
	reg.RegisterCommand("/rmvip", commands.Command{Handler: a.handleRemoveVip, Description: "Снять VIP", AdminOnly: true, Hidden: true})
}

func (a *App) registerCallbacks() {
	reg := a.registry

	// user-facing
	_ = reg.RegisterCallback(cbRegister, a.handleRegister)
	_ = reg.RegisterCallback(cbUseProfileName, a.handleUseProfileName)
	_ = reg.RegisterCallback(cbBackToMain, a.handleBackToMain)
	_ = reg.RegisterCallback(cbProfile, a.handleProfile)
	_ = reg.RegisterCallback(cbAddChangeWallet, a.handleAddChangeWallet)
	_ = reg.RegisterCallback(cbAddTonWallet, a.handleAddTonWallet)
	_ = reg.RegisterCallback(cbAddCard, a.handleAddCard)
	_ = reg.RegisterCallback(cbChangeLanguage, a.handleChangeLanguage)
	_ = reg.RegisterCallback(cbSetRussian, a.handleSetLanguage("ru"))
	_ = reg.RegisterCallback(cbSetEnglish, a.handleSetLanguage("en"))
	_ = reg.RegisterCallback(cbCreateDeal, a.handleCreateDeal)
	_ = reg.RegisterCallback(cbRecipientWallet, a.handleRecipientType(models.RecipientWallet))
	_ = reg.RegisterCallback(cbRecipientCard, a.handleRecipientType(models.RecipientCard))
	_ = reg.RegisterCallback(cbTopUpWallet, a.handleTopUp)

	// confirm/cancel buttons only make sense while their draft is armed
	awaitDeal := middleware.State(fsmStates{a.fsm}, string(StateDealConfirm))
	_ = reg.RegisterCallback(cbConfirmDeal, awaitDeal(a.handleConfirmWithdrawal))
	_ = reg.RegisterCallback(cbCancelDeal, awaitDeal(a.handleCancelDeal))
	awaitTopUp := middleware.State(fsmStates{a.fsm}, string(StateTopUpConfirm))
	_ = reg.RegisterCallback(cbConfirmTopUp, awaitTopUp(a.handleConfirmTopUp))
	_ = reg.RegisterCallback(cbCancelTopUp, awaitTopUp(a.handleCancelTopUp))
	_ = reg.RegisterCallback(cbP2P, a.handleP2P)
	_ = reg.RegisterCallback(cbP2PPair, a.handleP2PPair)

	// admin-facing; explicit admin check on every entry point
	_ = reg.RegisterCallback(cbAdminConfirmDeal, a.adminOnly(a.handleConfirmDeal))
	_ = reg.RegisterCallback(cbAdminDeclineDeal, a.adminOnly(a.handleDeclineDeal))
	_ = reg.RegisterCallback(cbAdminP2PManage, a.adminOnly(a.handleAdminP2PMenu))
	_ = reg.RegisterCallback(cbBackToAdminPanel, a.adminOnly(a.handleAdminPanel))
	_ = reg.RegisterCallback(cbAdminAddPair, a.adminOnly(a.handleAdminAddPair))
	_ = reg.RegisterCallback(cbAdminRemovePair, a.adminOnly(a.handleAdminRemovePair))
	_ = reg.RegisterCallback(cbPickRemovePair, a.adminOnly(a.handleAdminPickRemovePair))
	_ = reg.RegisterCallback(cbConfirmRemovePair, a.adminOnly(a.handleAdminConfirmRemovePair))
	_ = reg.RegisterCallback(cbAdminManageListings, a.adminOnly(a.handleAdminManageListings))
	_ = reg.RegisterCallback(cbSelectListingPair, a.adminOnly(a.handleAdminSelectListingPair))
	_ = reg.RegisterCallback(cbAddListingStart, a.adminOnly(a.handleAdminAddListingStart))
	_ = reg.RegisterCallback(cbAddListingAction, a.adminOnly(a.handleAdminListingAction))
	_ = reg.RegisterCallback(cbRemoveListingStart, a.adminOnly(a.handleAdminRemoveListingStart))
	_ = reg.RegisterCallback(cbConfirmRemoveListing, a.adminOnly(a.handleAdminConfirmRemoveListing))
	_ = reg.RegisterCallback(cbReplyToSupport, a.adminOnly(a.handleReplyToSupport))

	reg.SetTextFallback(a.handleSupportMessage)
}

func (a *App) registerStates() {
	state.RegisterHandler(StateRegisterName, a.handleRegisterNameInput)
	state.RegisterHandler(StateWalletInput, a.handleWalletInput)
	state.RegisterHandler(StateCardInput, a.handleCardInput)
	state.RegisterHandler(StateDealRecipient, a.handleDealRecipientInput)
	state.RegisterHandler(StateDealAmount, a.handleDealAmountInput)
	state.RegisterHandler(StateTopUpAmount, a.handleTopUpAmountInput)
	state.RegisterHandler(StateAdminPairName, a.handleAdminPairNameInput)
	state.RegisterHandler(StateAdminListingNickname, a.handleAdminListingNicknameInput)
	state.RegisterHandler(StateAdminListingPrice, a.handleAdminListingPriceInput)
	state.RegisterHandler(StateAdminListingLimit, a.handleAdminListingLimitInput)
	state.RegisterHandler(StateSupportReply, a.handleSupportReplyInput)
}

// fsmStates adapts the session manager to the state-guard middleware.
type fsmStates struct {
	m state.Manager
}

func (f fsmStates) GetState(userID int64) string {
	return string(f.m.GetState(userID))
}

// TelegramRunOptions builds the runtime wiring consumed by the shared runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	cfg := &a.cfg.Core

	onReject := func(c tele.Context) error {
		return tghelpers.SendMD(c, i18n.T(a.lang(c), "admin.not_authorized"))
	}

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminIDs:      cfg.Admins.UserIDs,
		OnAdminReject: onReject,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.fsm, a.registry, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      cfg,
		Registry:    a.registry,
		Middlewares: append(
			coretelegram.DefaultMiddlewares(cfg, nil),
			coretelegram.Middleware{Name: "session", Use: state.WithSession(a.fsm)},
		),
		Routes:  routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.notify.attach(rt.Bot)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
