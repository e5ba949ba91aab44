package market

import (
	"time"

	"coin-alarm-telegram-bot/internal/types"
)

// Side of a trade or order-book level.
type Side string

const (
	SideAsk Side = "ask"
	SideBid Side = "bid"
)

// Tick is one executed trade observed on an exchange. Ticks are fetched fresh
// each sweep and never persisted.
type Tick struct {
	Instrument types.Instrument
	Time       time.Time
	Side       Side
	Price      float64
	Quantity   float64
}

// Total returns the traded value of the tick.
func (t Tick) Total() float64 {
	return t.Price * t.Quantity
}

// OrderbookUnit is one price level on one side of a live order book.
type OrderbookUnit struct {
	Instrument types.Instrument
	Time       time.Time
	Side       Side
	Price      float64
	Quantity   float64
	TotalValue float64
}

// NewOrderbookUnit builds a unit with its derived total value.
func NewOrderbookUnit(inst types.Instrument, at time.Time, side Side, price, quantity float64) OrderbookUnit {
	return OrderbookUnit{
		Instrument: inst,
		Time:       at,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
		TotalValue: price * quantity,
	}
}

// Orderbook is the full set of standing ask and bid levels for an instrument
// as of one snapshot instant.
type Orderbook struct {
	Instrument types.Instrument
	Time       time.Time
	Asks       []OrderbookUnit
	Bids       []OrderbookUnit
}

// FindWhales returns every level whose total value reaches the threshold.
// Both sides are scanned independently, asks first. The comparison is
// inclusive.
func (ob Orderbook) FindWhales(threshold float64) []OrderbookUnit {
	var whales []OrderbookUnit
	for _, unit := range ob.Asks {
		if unit.TotalValue >= threshold {
			whales = append(whales, unit)
		}
	}
	for _, unit := range ob.Bids {
		if unit.TotalValue >= threshold {
			whales = append(whales, unit)
		}
	}
	return whales
}
