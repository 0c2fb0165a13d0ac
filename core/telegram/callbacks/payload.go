// Package callbacks extracts payloads from Telebot callback queries.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// split decodes Telebot's \f<unique>|<payload> callback data.
func split(cb *tele.Callback) (unique, payload string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\\f")
	unique, payload, _ = strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// CallbackPayload returns the payload part of the callback data.
// cb.Unique may be empty under the generic OnCallback endpoint, so the
// raw data is always parsed.
func CallbackPayload(c tele.Context) string {
	_, payload := split(c.Callback())
	return payload
}

// PayloadInt64 parses the callback payload as an int64, typically a
// deal or listing id embedded in a review keyboard.
func PayloadInt64(c tele.Context) (int64, error) {
	return strconv.ParseInt(CallbackPayload(c), 10, 64)
}
