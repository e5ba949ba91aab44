package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"coin-alarm-telegram-bot/internal/market"
	"coin-alarm-telegram-bot/internal/types"
)

func TestTickMessage(t *testing.T) {
	inst := types.Instrument{Exchange: types.ExchangeUpbit, BaseSymbol: "BTC", QuoteSymbol: "KRW"}
	at := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)

	msg := TickMessage(market.Tick{
		Instrument: inst,
		Time:       at,
		Side:       market.SideAsk,
		Price:      50000000,
		Quantity:   12.5,
	})

	assert.Contains(t, msg, "Upbit BTC/KRW")
	assert.Contains(t, msg, "2024-06-01 12:30:45")
	assert.Contains(t, msg, "Ask 12.500 BTC @ 50,000,000.00 KRW")
	assert.Contains(t, msg, "625,000,000.00 KRW")
}

func TestWhaleMessage(t *testing.T) {
	inst := types.Instrument{Exchange: types.ExchangeBinance, BaseSymbol: "BTC", QuoteSymbol: "USDT"}
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	msg := WhaleMessage(market.NewOrderbookUnit(inst, at, market.SideBid, 100, 12000))

	assert.Contains(t, msg, "Binance BTC/USDT")
	assert.Contains(t, msg, "2024-06-01 09:00:00")
	assert.Contains(t, msg, "Bid wall 12,000.000 BTC @ 100.00 USDT")
	assert.Contains(t, msg, "1,200,000.00 USDT")
}
