package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"coin-alarm-telegram-bot/internal/market"
	"coin-alarm-telegram-bot/internal/types"
)

const upbitTimeLayout = "2006-01-02 15:04:05"

// Upbit talks to the Upbit public REST API. Market codes are quoted as
// "QUOTE-BASE" (e.g. KRW-BTC).
type Upbit struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewUpbit() *Upbit {
	return &Upbit{
		baseURL: "https://api.upbit.com",
		client:  newHTTPClient(),
		now:     time.Now,
	}
}

func (u *Upbit) marketCode(inst types.Instrument) string {
	return inst.QuoteSymbol + "-" + inst.BaseSymbol
}

type upbitTick struct {
	TradeDateUTC string  `json:"trade_date_utc"`
	TradeTimeUTC string  `json:"trade_time_utc"`
	AskBid       string  `json:"ask_bid"`
	TradePrice   float64 `json:"trade_price"`
	TradeVolume  float64 `json:"trade_volume"`
}

// GetRecentTicks fetches the most recent trades and keeps only those strictly
// newer than now-lookback.
func (u *Upbit) GetRecentTicks(ctx context.Context, inst types.Instrument, lookback time.Duration, limit int) ([]market.Tick, error) {
	url := fmt.Sprintf("%s/v1/trades/ticks?market=%s&count=%d", u.baseURL, u.marketCode(inst), limit)

	var raw []upbitTick
	if err := u.getJSON(ctx, url, &raw); err != nil {
		return nil, errors.Wrapf(err, "upbit: recent ticks for %s", inst.Pair())
	}

	cutoff := tickCutoff(u.now().UTC(), lookback)

	var ticks []market.Tick
	for _, t := range raw {
		tradeTime, err := time.Parse(upbitTimeLayout, t.TradeDateUTC+" "+t.TradeTimeUTC)
		if err != nil {
			return nil, errors.Wrapf(err, "upbit: bad trade time for %s", inst.Pair())
		}
		if !tradeTime.After(cutoff) {
			continue
		}

		side := market.SideBid
		if t.AskBid == "ASK" {
			side = market.SideAsk
		}
		ticks = append(ticks, market.Tick{
			Instrument: inst,
			Time:       tradeTime,
			Side:       side,
			Price:      t.TradePrice,
			Quantity:   t.TradeVolume,
		})
	}
	return ticks, nil
}

type upbitOrderbook struct {
	Timestamp int64 `json:"timestamp"`
	Units     []struct {
		AskPrice float64 `json:"ask_price"`
		AskSize  float64 `json:"ask_size"`
		BidPrice float64 `json:"bid_price"`
		BidSize  float64 `json:"bid_size"`
	} `json:"orderbook_units"`
}

// GetOrderbook fetches the current order book snapshot. Upbit reports ask and
// bid levels pairwise in one unit list.
func (u *Upbit) GetOrderbook(ctx context.Context, inst types.Instrument) (market.Orderbook, error) {
	url := fmt.Sprintf("%s/v1/orderbook?markets=%s", u.baseURL, u.marketCode(inst))

	var raw []upbitOrderbook
	if err := u.getJSON(ctx, url, &raw); err != nil {
		return market.Orderbook{}, errors.Wrapf(err, "upbit: orderbook for %s", inst.Pair())
	}
	if len(raw) == 0 {
		return market.Orderbook{}, errors.Errorf("upbit: empty orderbook response for %s", inst.Pair())
	}

	snapshot := raw[0]
	checkTime := time.UnixMilli(snapshot.Timestamp).UTC()

	ob := market.Orderbook{Instrument: inst, Time: checkTime}
	for _, unit := range snapshot.Units {
		ob.Asks = append(ob.Asks, market.NewOrderbookUnit(inst, checkTime, market.SideAsk, unit.AskPrice, unit.AskSize))
		ob.Bids = append(ob.Bids, market.NewOrderbookUnit(inst, checkTime, market.SideBid, unit.BidPrice, unit.BidSize))
	}
	return ob, nil
}

func (u *Upbit) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "could not create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "could not parse response")
	}
	return nil
}
