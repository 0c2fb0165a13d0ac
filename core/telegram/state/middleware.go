package state

import tele "gopkg.in/telebot.v4"

const sessionKey = "fsm_session"

// WithSession puts the sender's session into the Telebot context so
// downstream handlers see a consistent snapshot for the update.
func WithSession(mgr Manager) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}
			c.Set(sessionKey, mgr.Get(sender.ID))
			return next(c)
		}
	}
}
