package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"coin-alarm-telegram-bot/internal/market"
	"coin-alarm-telegram-bot/internal/types"
)

// Binance talks to the Binance public REST API. Symbols are the concatenated
// base and quote (e.g. BTCUSDT); prices and quantities arrive as strings.
type Binance struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewBinance() *Binance {
	return &Binance{
		baseURL: "https://api.binance.com",
		client:  newHTTPClient(),
		now:     time.Now,
	}
}

func (b *Binance) symbol(inst types.Instrument) string {
	return inst.BaseSymbol + inst.QuoteSymbol
}

type binanceTrade struct {
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
}

// GetRecentTicks fetches the most recent trades and keeps only those strictly
// newer than now-lookback. A trade where the buyer was the maker is reported
// as an ask-side fill.
func (b *Binance) GetRecentTicks(ctx context.Context, inst types.Instrument, lookback time.Duration, limit int) ([]market.Tick, error) {
	url := fmt.Sprintf("%s/api/v3/trades?symbol=%s&limit=%d", b.baseURL, b.symbol(inst), limit)

	var raw []binanceTrade
	if err := b.getJSON(ctx, url, &raw); err != nil {
		return nil, errors.Wrapf(err, "binance: recent ticks for %s", inst.Pair())
	}

	cutoff := tickCutoff(b.now().UTC(), lookback)

	var ticks []market.Tick
	for _, t := range raw {
		tradeTime := time.UnixMilli(t.Time).UTC()
		if !tradeTime.After(cutoff) {
			continue
		}

		price, err := strconv.ParseFloat(t.Price, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "binance: bad trade price for %s", inst.Pair())
		}
		qty, err := strconv.ParseFloat(t.Qty, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "binance: bad trade quantity for %s", inst.Pair())
		}

		side := market.SideBid
		if t.IsBuyerMaker {
			side = market.SideAsk
		}
		ticks = append(ticks, market.Tick{
			Instrument: inst,
			Time:       tradeTime,
			Side:       side,
			Price:      price,
			Quantity:   qty,
		})
	}
	return ticks, nil
}

type binanceDepth struct {
	Asks [][2]string `json:"asks"`
	Bids [][2]string `json:"bids"`
}

// GetOrderbook fetches the current depth snapshot. Binance does not report a
// snapshot time, so the local clock is used.
func (b *Binance) GetOrderbook(ctx context.Context, inst types.Instrument) (market.Orderbook, error) {
	url := fmt.Sprintf("%s/api/v3/depth?symbol=%s", b.baseURL, b.symbol(inst))

	var raw binanceDepth
	if err := b.getJSON(ctx, url, &raw); err != nil {
		return market.Orderbook{}, errors.Wrapf(err, "binance: orderbook for %s", inst.Pair())
	}

	checkTime := b.now().UTC()
	ob := market.Orderbook{Instrument: inst, Time: checkTime}

	for _, level := range raw.Asks {
		unit, err := b.parseLevel(inst, checkTime, market.SideAsk, level)
		if err != nil {
			return market.Orderbook{}, err
		}
		ob.Asks = append(ob.Asks, unit)
	}
	for _, level := range raw.Bids {
		unit, err := b.parseLevel(inst, checkTime, market.SideBid, level)
		if err != nil {
			return market.Orderbook{}, err
		}
		ob.Bids = append(ob.Bids, unit)
	}
	return ob, nil
}

func (b *Binance) parseLevel(inst types.Instrument, at time.Time, side market.Side, level [2]string) (market.OrderbookUnit, error) {
	price, err := strconv.ParseFloat(level[0], 64)
	if err != nil {
		return market.OrderbookUnit{}, errors.Wrapf(err, "binance: bad %s price for %s", side, inst.Pair())
	}
	qty, err := strconv.ParseFloat(level[1], 64)
	if err != nil {
		return market.OrderbookUnit{}, errors.Wrapf(err, "binance: bad %s quantity for %s", side, inst.Pair())
	}
	return market.NewOrderbookUnit(inst, at, side, price, qty), nil
}

func (b *Binance) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "could not create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
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
