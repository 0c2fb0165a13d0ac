package middleware

import (
	"github.com/m3rciful/p2pbot/core/logger"
	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// StateGetter is the slice of the session manager the guard needs.
type StateGetter interface {
	GetState(userID int64) string
}

// State admits the update only while the user sits in the expected
// conversation step. Stale callback taps, for example a top-up confirm
// pressed after the flow was cancelled, are dropped silently.
func State(mgr StateGetter, expected string) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID
			current := mgr.GetState(userID)
			ctx := tghelpers.BuildContext(c)

			event := "fsm.match"
			if current != expected {
				event = "fsm.skip"
			}
			logger.TG.LogAttrs(ctx, slog.LevelDebug, event,
				slog.Int64("user_id", userID),
				slog.String("state", current),
				slog.String("expected", expected),
				slog.String("rid", logger.RIDFrom(ctx)),
			)

			if current != expected {
				return nil
			}
			return next(c)
		}
	}
}
