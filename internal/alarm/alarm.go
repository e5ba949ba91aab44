// Package alarm implements the alert evaluation and delivery loop: two
// periodic sweeps that poll exchange market data, evaluate every enabled
// alarm rule against it and deliver one notification per qualifying event.
package alarm

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"coin-alarm-telegram-bot/internal/exchange"
	"coin-alarm-telegram-bot/internal/telegram"
	"coin-alarm-telegram-bot/internal/types"
)

// Store yields the enabled alarm rules. Disabled alarms and alarms whose
// recipient has delivery switched off must not be returned, so no market
// data is fetched for them.
type Store interface {
	GetEnabledAlarms(kind types.AlarmKind) ([]types.Alarm, error)
}

// Sender delivers one rendered notification.
type Sender interface {
	SendMessage(m telegram.Message) error
}

// Config tunes the sweep loop.
type Config struct {
	// TickInterval is both the tick sweep period and the recency window
	// passed to the tick fetch. Keeping them equal is what makes each tick
	// visible in at most one sweep without persistent last-seen tracking.
	TickInterval  time.Duration
	WhaleInterval time.Duration

	// FetchTimeout bounds one market data call so a slow exchange cannot
	// stall a whole sweep. Should stay shorter than TickInterval.
	FetchTimeout time.Duration

	RecentTickLimit  int
	SweepConcurrency int
}

func (c *Config) fillDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = 5 * time.Second
	}
	if c.WhaleInterval <= 0 {
		c.WhaleInterval = 30 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 3 * time.Second
	}
	if c.RecentTickLimit <= 0 {
		c.RecentTickLimit = 500
	}
	if c.SweepConcurrency <= 0 {
		c.SweepConcurrency = 8
	}
}

// Service runs the alarm sweeps against its injected collaborators.
type Service struct {
	store   Store
	sources exchange.Sources
	sender  Sender
	cfg     Config
}

func NewService(store Store, sources exchange.Sources, sender Sender, cfg Config) *Service {
	cfg.fillDefaults()
	return &Service{
		store:   store,
		sources: sources,
		sender:  sender,
		cfg:     cfg,
	}
}

// Start registers both sweeps on a fresh scheduler and launches it. The
// returned scheduler is owned by the caller and stopped at shutdown.
func (s *Service) Start() *Scheduler {
	scheduler := NewScheduler()
	scheduler.Every(s.cfg.TickInterval, "tick_alarm", s.CheckTickAlarms)
	scheduler.Every(s.cfg.WhaleInterval, "whale_alarm", s.CheckWhaleAlarms)
	scheduler.Start()

	log.Infof("alarm service started (tick sweep every %s, whale sweep every %s)",
		s.cfg.TickInterval, s.cfg.WhaleInterval)
	return scheduler
}

// CheckTickAlarms runs one tick-alarm sweep over all enabled tick alarms.
func (s *Service) CheckTickAlarms() {
	s.sweep(types.TickAlarm, s.checkTickAlarm)
}

// CheckWhaleAlarms runs one whale-alarm sweep over all enabled whale alarms.
func (s *Service) CheckWhaleAlarms() {
	s.sweep(types.WhaleAlarm, s.checkWhaleAlarm)
}

// sweep fans the per-alarm checks out over a bounded group. A failing alarm
// is logged and skipped for this cycle; it never aborts the rest of the
// sweep.
func (s *Service) sweep(kind types.AlarmKind, check func(context.Context, types.Alarm) error) {
	alarms, err := s.store.GetEnabledAlarms(kind)
	if err != nil {
		log.Errorf("failed to fetch enabled %s alarms: %v", kind, err)
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.SweepConcurrency)

	for _, a := range alarms {
		a := a
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout)
			defer cancel()

			AlarmsEvaluated.Inc()
			if err := check(ctx, a); err != nil {
				fetchErrors.Inc()
				log.Errorf("alarm %d (%s %s): %v", a.ID, a.Instrument.Exchange, a.Instrument.Pair(), err)
			}
			return nil
		})
	}
	g.Wait()

	sweepsTotal.WithLabelValues(string(kind)).Inc()
	log.Debugf("%s sweep completed over %d alarms", kind, len(alarms))
}

func (s *Service) source(e types.Exchange) (exchange.Source, error) {
	src, ok := s.sources[e]
	if !ok {
		return nil, errors.Errorf("no data source for exchange %s", e)
	}
	return src, nil
}

// checkTickAlarm fetches the recent ticks for the alarm's instrument and
// notifies once per tick whose quantity reaches the threshold. Qualifying
// ticks are never coalesced.
func (s *Service) checkTickAlarm(ctx context.Context, a types.Alarm) error {
	src, err := s.source(a.Instrument.Exchange)
	if err != nil {
		return err
	}

	ticks, err := src.GetRecentTicks(ctx, a.Instrument, s.cfg.TickInterval, s.cfg.RecentTickLimit)
	if err != nil {
		return err
	}

	for _, tick := range ticks {
		if tick.Quantity >= a.Threshold {
			s.deliver(a, TickMessage(tick))
		}
	}
	return nil
}

// checkWhaleAlarm fetches the current order book and notifies once per level
// whose total value reaches the threshold. A persistent wall is reported
// again every sweep; that is the intended behavior, not missing dedup.
func (s *Service) checkWhaleAlarm(ctx context.Context, a types.Alarm) error {
	src, err := s.source(a.Instrument.Exchange)
	if err != nil {
		return err
	}

	orderbook, err := src.GetOrderbook(ctx, a.Instrument)
	if err != nil {
		return err
	}

	for _, whale := range orderbook.FindWhales(a.Threshold) {
		s.deliver(a, WhaleMessage(whale))
	}
	return nil
}

// deliver sends one notification to the alarm's recipient. Delivery failures
// (blocked bot, deleted chat) are logged and skipped so the remaining
// notifications still go out.
func (s *Service) deliver(a types.Alarm, text string) {
	err := s.sender.SendMessage(telegram.Message{
		ChatID: a.RecipientID(),
		Text:   text,
	})
	if err != nil {
		deliveryErrors.Inc()
		log.Errorf("failed to deliver alarm %d notification to %d: %v", a.ID, a.RecipientID(), err)
		return
	}
	NotificationsSent.Inc()
}
