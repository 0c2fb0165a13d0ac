package state

import tele "gopkg.in/telebot.v4"

// handlers maps a conversation step to the text handler that consumes
// the next message. Registration happens once during app wiring.
var handlers = map[State]tele.HandlerFunc{}

// RegisterHandler associates a conversation step with its input handler.
// Nil handlers are ignored.
func RegisterHandler(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	handlers[st] = h
}
