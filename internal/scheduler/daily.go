package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"momentum/internal/broker"
	"momentum/internal/notifications"
)

// MarketCalendar answers the two questions the scheduler has: is today a
// trading day, and is the market open right now.
type MarketCalendar interface {
	IsTradingDay(ctx context.Context, day time.Time) (bool, error)
	Clock(ctx context.Context) (broker.Clock, error)
}

// Jobs are the two daily runs. Update loads the day's quotes after the
// close; Trade rebalances while the market is open.
type Jobs struct {
	Update func(ctx context.Context) error
	Trade  func(ctx context.Context) error
}

// TimeOfDay is a wall-clock trigger time in the market timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid HH:MM time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Due reports whether the trigger time has passed on now's day.
func (t TimeOfDay) Due(now time.Time) bool {
	return now.Hour()*60+now.Minute() >= t.Hour*60+t.Minute
}

type Config struct {
	UpdateAt     TimeOfDay
	TradeAt      TimeOfDay
	Location     *time.Location
	PollInterval time.Duration
	JobTimeout   time.Duration
}

// DailyScheduler replaces the cloud cron triggers: it polls the wall clock
// and fires each job at most once per trading day.
type DailyScheduler struct {
	cal    MarketCalendar
	jobs   Jobs
	cfg    Config
	notify *notifications.Sender

	mu            sync.Mutex
	running       bool
	stopCh        chan struct{}
	lastUpdateDay string
	lastTradeDay  string

	cachedDay     string
	cachedTrading bool
}

func NewDailyScheduler(cal MarketCalendar, jobs Jobs, cfg Config, notify *notifications.Sender) *DailyScheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	return &DailyScheduler{cal: cal, jobs: jobs, cfg: cfg, notify: notify}
}

func (s *DailyScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Warn().Msg("scheduler already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()

	log.Info().
		Str("update_at", fmt.Sprintf("%02d:%02d", s.cfg.UpdateAt.Hour, s.cfg.UpdateAt.Minute)).
		Str("trade_at", fmt.Sprintf("%02d:%02d", s.cfg.TradeAt.Hour, s.cfg.TradeAt.Minute)).
		Str("timezone", s.cfg.Location.String()).
		Msg("scheduler started")
}

func (s *DailyScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	log.Info().Msg("scheduler stopped")
}

func (s *DailyScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *DailyScheduler) tick(ctx context.Context) {
	now := time.Now().In(s.cfg.Location)
	day := now.Format("2006-01-02")

	trading, err := s.isTradingDay(ctx, now)
	if err != nil {
		log.Warn().Err(err).Msg("trading-day check failed")
		return
	}
	if !trading {
		return
	}

	if s.jobs.Trade != nil && s.cfg.TradeAt.Due(now) && s.markRun(&s.lastTradeDay, day) {
		clk, err := s.cal.Clock(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("clock check failed, skipping trade run")
		} else if !clk.IsOpen {
			log.Info().Time("next_open", clk.NextOpen).Msg("market closed at trade time, skipping")
		} else {
			s.runJob(ctx, "trade", s.jobs.Trade)
		}
	}

	if s.jobs.Update != nil && s.cfg.UpdateAt.Due(now) && s.markRun(&s.lastUpdateDay, day) {
		s.runJob(ctx, "update", s.jobs.Update)
	}
}

// markRun claims the day for a job. Claimed even if the job later fails:
// a broken run should page, not loop.
func (s *DailyScheduler) markRun(lastDay *string, day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *lastDay == day {
		return false
	}
	*lastDay = day
	return true
}

func (s *DailyScheduler) runJob(ctx context.Context, name string, job func(ctx context.Context) error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	log.Info().Str("job", name).Msg("job started")
	if err := job(jobCtx); err != nil {
		log.Error().Err(err).Str("job", name).Msg("job failed")
		if s.notify != nil {
			s.notify.Send(fmt.Sprintf("%s job failed: %v", name, err))
		}
		return
	}
	log.Info().Str("job", name).Msg("job finished")
}

func (s *DailyScheduler) isTradingDay(ctx context.Context, now time.Time) (bool, error) {
	day := now.Format("2006-01-02")

	s.mu.Lock()
	if s.cachedDay == day {
		cached := s.cachedTrading
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	trading, err := s.cal.IsTradingDay(ctx, now)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.cachedDay = day
	s.cachedTrading = trading
	s.mu.Unlock()

	if !trading {
		log.Info().Str("day", day).Msg("not a trading day")
	}
	return trading, nil
}
