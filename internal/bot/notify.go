package bot

import (
	"context"
	"sync/atomic"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/p2pbot/core/logger"
)

// notifier fans messages out to the configured admin groups and sends
// direct notifications to users. The bot handle appears only once the
// runtime is up, so it is stored atomically from the OnStart hook.
type notifier struct {
	bot    atomic.Pointer[tele.Bot]
	groups []int64
}

func newNotifier(groups []int64) *notifier {
	return &notifier{groups: groups}
}

func (n *notifier) attach(bot *tele.Bot) {
	n.bot.Store(bot)
}

// Broadcast delivers the message to every admin group. A failure in
// one group never blocks delivery to the others.
func (n *notifier) Broadcast(ctx context.Context, text string, markup *tele.ReplyMarkup) {
	bot := n.bot.Load()
	if bot == nil {
		logger.Warn(ctx, "tg", "notify.skipped",
			slog.String("status", "error"),
			slog.String("cause", "bot not started"),
		)
		return
	}

	failed := 0
	for _, groupID := range n.groups {
		var err error
		if markup != nil {
			_, err = bot.Send(tele.ChatID(groupID), text, markup)
		} else {
			_, err = bot.Send(tele.ChatID(groupID), text)
		}
		if err != nil {
			failed++
			logger.Warn(ctx, "tg", "notify.group_failed",
				slog.String("status", "error"),
				slog.Int64("chat_id", groupID),
				slog.String("err", err.Error()),
			)
		}
	}
	logger.Debug(ctx, "tg", "notify.broadcast",
		slog.String("status", "ok"),
		slog.Int("groups_total", len(n.groups)),
		slog.Int("groups_failed", failed),
	)
}

// NotifyUser sends a direct message to the user. Errors are logged,
// not returned: the state change already happened and must not be
// rolled back because a notification failed.
func (n *notifier) NotifyUser(ctx context.Context, userID int64, text string) {
	bot := n.bot.Load()
	if bot == nil {
		return
	}
	if _, err := bot.Send(tele.ChatID(userID), text); err != nil {
		logger.Warn(ctx, "tg", "notify.user_failed",
			slog.String("status", "error"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}
