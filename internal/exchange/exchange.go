// Package exchange adapts exchange-specific REST conventions behind one
// market data capability set shared by all alarm kinds.
package exchange

import (
	"context"
	"net/http"
	"time"

	"coin-alarm-telegram-bot/internal/market"
	"coin-alarm-telegram-bot/internal/types"
)

// Source yields fresh market data for one exchange. Implementations must
// surface network and parse failures as errors rather than empty results, so
// the sweep can skip just the affected alarm.
type Source interface {
	// GetRecentTicks returns ticks strictly newer than now-lookback, up to
	// limit most recent entries as reported by the exchange. The window
	// filtering is done here, not assumed of the exchange.
	GetRecentTicks(ctx context.Context, inst types.Instrument, lookback time.Duration, limit int) ([]market.Tick, error)

	// GetOrderbook returns the current ask and bid levels as of one snapshot.
	GetOrderbook(ctx context.Context, inst types.Instrument) (market.Orderbook, error)
}

// Sources maps exchange ids to their data source.
type Sources map[types.Exchange]Source

// NewSources wires the default Upbit and Binance clients.
func NewSources() Sources {
	return Sources{
		types.ExchangeUpbit:   NewUpbit(),
		types.ExchangeBinance: NewBinance(),
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// tickCutoff computes the exclusive lower bound of the recency window.
// Sub-second precision is dropped so the boundary lines up with exchange
// timestamps reported at whole-second resolution.
func tickCutoff(now time.Time, lookback time.Duration) time.Time {
	return now.Truncate(time.Second).Add(-lookback)
}
