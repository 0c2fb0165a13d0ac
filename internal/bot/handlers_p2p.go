package bot

import (
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/p2pbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/p2pbot/core/telegram/helpers"
	"github.com/m3rciful/p2pbot/internal/i18n"
	"github.com/m3rciful/p2pbot/internal/models"
	"github.com/m3rciful/p2pbot/internal/service"
)

// handleP2P shows the pair selector for the public listing board.
func (a *App) handleP2P(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "p2p")
	ok, lang, err := a.requireUser(c)
	if !ok {
		return err
	}

	pairs, err := a.listings.Pairs(ctx)
	if err != nil {
		return a.replyError(c, err)
	}
	if len(pairs) == 0 {
		return tghelpers.EditOrSendMD(c, i18n.T(lang, "p2p.no_pairs"))
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "p2p.choose_pair"), pairsMarkup(lang, pairs, cbP2PPair))
}

// handleP2PPair renders the buy/sell board of the selected pair.
func (a *App) handleP2PPair(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "p2p_pair")
	lang := a.lang(c)
	pairName := callbacks.CallbackPayload(c)

	sell, buy, err := a.listings.Board(ctx, pairName)
	if errors.Is(err, service.ErrPairNotFound) {
		return a.handleP2P(c)
	}
	if err != nil {
		return a.replyError(c, err)
	}

	var b strings.Builder
	b.WriteString(i18n.T(lang, "p2p.board_title", strings.ToUpper(pairName)))
	b.WriteString("\n\n")
	if len(sell) == 0 && len(buy) == 0 {
		b.WriteString(i18n.T(lang, "p2p.empty"))
	} else {
		writeBoardSide(&b, i18n.T(lang, "p2p.sell_header"), sell, lang)
		writeBoardSide(&b, i18n.T(lang, "p2p.buy_header"), buy, lang)
	}

	markup := pairsMarkup(lang, nil, cbP2PPair)
	return tghelpers.EditOrSendMD(c, b.String(), markup)
}

func writeBoardSide(b *strings.Builder, header string, side []*models.Listing, lang string) {
	if len(side) == 0 {
		return
	}
	b.WriteString(header)
	b.WriteString("\n")
	for _, l := range side {
		b.WriteString(i18n.T(lang, "p2p.listing_line", mdSafe(l.Nickname), mdSafe(l.Price), mdSafe(l.Limit)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
