package alarm

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-alarm-telegram-bot/internal/database"
	"coin-alarm-telegram-bot/internal/exchange"
	"coin-alarm-telegram-bot/internal/market"
	"coin-alarm-telegram-bot/internal/telegram"
	"coin-alarm-telegram-bot/internal/types"
)

var (
	upbitBTC = types.Instrument{Exchange: types.ExchangeUpbit, BaseSymbol: "BTC", QuoteSymbol: "KRW"}
	upbitETH = types.Instrument{Exchange: types.ExchangeUpbit, BaseSymbol: "ETH", QuoteSymbol: "KRW"}
)

type fakeStore struct {
	alarms map[types.AlarmKind][]types.Alarm
	err    error
}

func (f *fakeStore) GetEnabledAlarms(kind types.AlarmKind) ([]types.Alarm, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.alarms[kind], nil
}

type spySource struct {
	mu        sync.Mutex
	tickCalls []types.Instrument
	bookCalls []types.Instrument

	ticks   map[types.Instrument][]market.Tick
	tickErr map[types.Instrument]error
	books   map[types.Instrument]market.Orderbook
	bookErr map[types.Instrument]error
}

func newSpySource() *spySource {
	return &spySource{
		ticks:   make(map[types.Instrument][]market.Tick),
		tickErr: make(map[types.Instrument]error),
		books:   make(map[types.Instrument]market.Orderbook),
		bookErr: make(map[types.Instrument]error),
	}
}

func (s *spySource) GetRecentTicks(_ context.Context, inst types.Instrument, _ time.Duration, _ int) ([]market.Tick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickCalls = append(s.tickCalls, inst)
	if err := s.tickErr[inst]; err != nil {
		return nil, err
	}
	return s.ticks[inst], nil
}

func (s *spySource) GetOrderbook(_ context.Context, inst types.Instrument) (market.Orderbook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookCalls = append(s.bookCalls, inst)
	if err := s.bookErr[inst]; err != nil {
		return market.Orderbook{}, err
	}
	return s.books[inst], nil
}

type fakeSender struct {
	mu       sync.Mutex
	messages []telegram.Message
	err      error
}

func (f *fakeSender) SendMessage(m telegram.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
	return f.err
}

func (f *fakeSender) sent() []telegram.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]telegram.Message(nil), f.messages...)
}

func newTestService(store Store, source exchange.Source, sender Sender) *Service {
	return NewService(store, exchange.Sources{types.ExchangeUpbit: source}, sender, Config{})
}

func tickAlarm(id int64, inst types.Instrument, threshold float64) types.Alarm {
	return types.Alarm{ID: id, ChatID: 1000 + id, Kind: types.TickAlarm, Instrument: inst, Threshold: threshold, Enabled: true}
}

func TestTickSweepNotifiesOnQualifyingTick(t *testing.T) {
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{
		types.TickAlarm: {tickAlarm(1, upbitBTC, 10.0)},
	}}
	source := newSpySource()
	source.ticks[upbitBTC] = []market.Tick{
		{Instrument: upbitBTC, Time: time.Now(), Side: market.SideAsk, Price: 50000000, Quantity: 12.5},
	}
	sender := &fakeSender{}

	newTestService(store, source, sender).CheckTickAlarms()

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1001), msgs[0].ChatID)
	assert.Contains(t, msgs[0].Text, "12.500")
	assert.Contains(t, msgs[0].Text, "50,000,000.00")
	assert.Contains(t, msgs[0].Text, "Ask")
}

func TestTickSweepIgnoresTickBelowThreshold(t *testing.T) {
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{
		types.TickAlarm: {tickAlarm(1, upbitBTC, 10.0)},
	}}
	source := newSpySource()
	source.ticks[upbitBTC] = []market.Tick{
		{Instrument: upbitBTC, Time: time.Now(), Side: market.SideAsk, Price: 50000000, Quantity: 9.999},
	}
	sender := &fakeSender{}

	newTestService(store, source, sender).CheckTickAlarms()

	assert.Empty(t, sender.sent())
}

func TestTickSweepThresholdIsInclusive(t *testing.T) {
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{
		types.TickAlarm: {tickAlarm(1, upbitBTC, 10.0)},
	}}
	source := newSpySource()
	source.ticks[upbitBTC] = []market.Tick{
		{Instrument: upbitBTC, Time: time.Now(), Side: market.SideBid, Price: 100, Quantity: 10.0},
	}
	sender := &fakeSender{}

	newTestService(store, source, sender).CheckTickAlarms()

	require.Len(t, sender.sent(), 1)
	assert.Contains(t, sender.sent()[0].Text, "Bid")
}

func TestTickSweepDoesNotCoalesceMultipleTicks(t *testing.T) {
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{
		types.TickAlarm: {tickAlarm(1, upbitBTC, 1.0)},
	}}
	source := newSpySource()
	source.ticks[upbitBTC] = []market.Tick{
		{Instrument: upbitBTC, Time: time.Now(), Side: market.SideAsk, Price: 100, Quantity: 2},
		{Instrument: upbitBTC, Time: time.Now(), Side: market.SideBid, Price: 101, Quantity: 3},
		{Instrument: upbitBTC, Time: time.Now(), Side: market.SideAsk, Price: 102, Quantity: 0.5},
	}
	sender := &fakeSender{}

	newTestService(store, source, sender).CheckTickAlarms()

	assert.Len(t, sender.sent(), 2)
}

func TestWhaleSweepNotifiesPerQualifyingLevel(t *testing.T) {
	alarm := types.Alarm{ID: 1, ChatID: 7, Kind: types.WhaleAlarm, Instrument: upbitBTC, Threshold: 1000000, Enabled: true}
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{types.WhaleAlarm: {alarm}}}

	now := time.Now()
	source := newSpySource()
	source.books[upbitBTC] = market.Orderbook{
		Instrument: upbitBTC,
		Time:       now,
		Asks:       []market.OrderbookUnit{market.NewOrderbookUnit(upbitBTC, now, market.SideAsk, 100, 12000)},
		Bids:       []market.OrderbookUnit{market.NewOrderbookUnit(upbitBTC, now, market.SideBid, 100, 500)},
	}
	sender := &fakeSender{}

	newTestService(store, source, sender).CheckWhaleAlarms()

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(7), msgs[0].ChatID)
	assert.Contains(t, msgs[0].Text, "Ask wall")
	assert.Contains(t, msgs[0].Text, "1,200,000.00")
}

func TestWhaleSweepIsIdempotentAcrossSweeps(t *testing.T) {
	alarm := types.Alarm{ID: 1, ChatID: 7, Kind: types.WhaleAlarm, Instrument: upbitBTC, Threshold: 1000000, Enabled: true}
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{types.WhaleAlarm: {alarm}}}

	now := time.Now()
	source := newSpySource()
	source.books[upbitBTC] = market.Orderbook{
		Instrument: upbitBTC,
		Time:       now,
		Asks:       []market.OrderbookUnit{market.NewOrderbookUnit(upbitBTC, now, market.SideAsk, 100, 12000)},
	}
	sender := &fakeSender{}
	service := newTestService(store, source, sender)

	service.CheckWhaleAlarms()
	service.CheckWhaleAlarms()

	msgs := sender.sent()
	require.Len(t, msgs, 2)
	assert.Equal(t, msgs[0].Text, msgs[1].Text)
}

func TestFetchFailureSkipsOnlyThatAlarm(t *testing.T) {
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{
		types.TickAlarm: {tickAlarm(1, upbitBTC, 1.0), tickAlarm(2, upbitETH, 1.0)},
	}}
	source := newSpySource()
	source.tickErr[upbitBTC] = errors.New("connection reset")
	source.ticks[upbitETH] = []market.Tick{
		{Instrument: upbitETH, Time: time.Now(), Side: market.SideAsk, Price: 100, Quantity: 5},
	}
	sender := &fakeSender{}

	newTestService(store, source, sender).CheckTickAlarms()

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1002), msgs[0].ChatID)
}

func TestDeliveryFailureDoesNotAbortSweep(t *testing.T) {
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{
		types.TickAlarm: {tickAlarm(1, upbitBTC, 1.0)},
	}}
	source := newSpySource()
	source.ticks[upbitBTC] = []market.Tick{
		{Instrument: upbitBTC, Time: time.Now(), Side: market.SideAsk, Price: 100, Quantity: 5},
		{Instrument: upbitBTC, Time: time.Now(), Side: market.SideBid, Price: 100, Quantity: 6},
	}
	sender := &fakeSender{err: errors.New("bot was blocked by the user")}

	newTestService(store, source, sender).CheckTickAlarms()

	// both sends are attempted despite the first failure
	assert.Len(t, sender.sent(), 2)
}

func TestMissingSourceSkipsAlarm(t *testing.T) {
	binanceBTC := types.Instrument{Exchange: types.ExchangeBinance, BaseSymbol: "BTC", QuoteSymbol: "USDT"}
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{
		types.TickAlarm: {tickAlarm(1, binanceBTC, 1.0)},
	}}
	source := newSpySource()
	sender := &fakeSender{}

	newTestService(store, source, sender).CheckTickAlarms()

	assert.Empty(t, source.tickCalls)
	assert.Empty(t, sender.sent())
}

// Disabled alarms and alarms of recipients with delivery switched off must
// never reach the market data source. Exercised against the real sqlite
// store so the SQL-level filter is what is under test.
func TestDisabledAlarmsAreNotFetched(t *testing.T) {
	store, err := database.Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.AddChat(1, true))
	require.NoError(t, store.AddChat(2, false)) // delivery off

	_, err = store.AddAlarm(types.Alarm{ChatID: 1, Kind: types.TickAlarm, Instrument: upbitBTC, Threshold: 10, Enabled: true})
	require.NoError(t, err)
	_, err = store.AddAlarm(types.Alarm{ChatID: 1, Kind: types.TickAlarm, Instrument: upbitETH, Threshold: 10, Enabled: false})
	require.NoError(t, err)
	_, err = store.AddAlarm(types.Alarm{ChatID: 2, Kind: types.TickAlarm, Instrument: upbitETH, Threshold: 10, Enabled: true})
	require.NoError(t, err)

	source := newSpySource()
	sender := &fakeSender{}

	newTestService(store, source, sender).CheckTickAlarms()

	require.Len(t, source.tickCalls, 1)
	assert.Equal(t, upbitBTC, source.tickCalls[0])
}

func TestChannelAlarmDeliversToChannelID(t *testing.T) {
	channelAlarm := types.Alarm{
		ID: 1, ChatID: -100123, IsChannel: true,
		Kind: types.TickAlarm, Instrument: upbitBTC, Threshold: 1, Enabled: true,
	}
	store := &fakeStore{alarms: map[types.AlarmKind][]types.Alarm{types.TickAlarm: {channelAlarm}}}
	source := newSpySource()
	source.ticks[upbitBTC] = []market.Tick{
		{Instrument: upbitBTC, Time: time.Now(), Side: market.SideAsk, Price: 100, Quantity: 5},
	}
	sender := &fakeSender{}

	newTestService(store, source, sender).CheckTickAlarms()

	require.Len(t, sender.sent(), 1)
	assert.Equal(t, int64(-100123), sender.sent()[0].ChatID)
}
