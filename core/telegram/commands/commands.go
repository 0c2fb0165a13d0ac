// Package commands declares the slash-command descriptor used by the registry.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command binds a handler to a slash command. AdminOnly commands are
// rejected for regular users at routing time; Hidden ones are left out
// of the command list pushed to Telegram.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
