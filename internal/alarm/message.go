package alarm

import (
	"fmt"

	"coin-alarm-telegram-bot/internal/market"
	"coin-alarm-telegram-bot/lib/helpers"
	"coin-alarm-telegram-bot/lib/translation"
)

const timeLayout = "2006-01-02 15:04:05"

// TickMessage renders the notification for one qualifying trade.
func TickMessage(t market.Tick) string {
	inst := t.Instrument

	msg := fmt.Sprintf("%s %s %s\n\n", inst.Exchange, inst.Pair(), translation.Translate("trade executed!"))
	msg += fmt.Sprintf("%s: %s\n", translation.Translate("Time"), t.Time.Format(timeLayout))
	msg += fmt.Sprintf("%s %s %s @ %s %s\n",
		tickSideLabel(t.Side),
		helpers.FormatQuantity(t.Quantity), inst.BaseSymbol,
		helpers.FormatPrice(t.Price), inst.QuoteSymbol)
	msg += fmt.Sprintf("%s: %s %s", translation.Translate("Total"), helpers.FormatPrice(t.Total()), inst.QuoteSymbol)

	return msg
}

// WhaleMessage renders the notification for one qualifying order-book level.
func WhaleMessage(w market.OrderbookUnit) string {
	inst := w.Instrument

	msg := fmt.Sprintf("%s %s %s\n\n", inst.Exchange, inst.Pair(), translation.Translate("whale spotted!"))
	msg += fmt.Sprintf("%s: %s\n", translation.Translate("Time"), w.Time.Format(timeLayout))
	msg += fmt.Sprintf("%s %s %s @ %s %s\n",
		wallSideLabel(w.Side),
		helpers.FormatQuantity(w.Quantity), inst.BaseSymbol,
		helpers.FormatPrice(w.Price), inst.QuoteSymbol)
	msg += fmt.Sprintf("%s: %s %s", translation.Translate("Total value"), helpers.FormatPrice(w.TotalValue), inst.QuoteSymbol)

	return msg
}

func tickSideLabel(side market.Side) string {
	if side == market.SideAsk {
		return translation.Translate("Ask")
	}
	return translation.Translate("Bid")
}

func wallSideLabel(side market.Side) string {
	if side == market.SideAsk {
		return translation.Translate("Ask wall")
	}
	return translation.Translate("Bid wall")
}
