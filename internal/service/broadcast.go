package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
	"github.com/moodcheck/survey-bot/internal/pkg/metrics"
)

// Roster provides the broadcast recipients
type Roster interface {
	ActiveChats(ctx context.Context) ([]string, error)
}

// Starter starts a survey for one chat and delivers its first prompt
type Starter interface {
	StartSurvey(ctx context.Context, chatID string, kind domain.SurveyKind) error
}

// BroadcastConfig configures the broadcast scheduler
type BroadcastConfig struct {
	Times    map[domain.SurveyKind]time.Duration // local time of day per kind
	Location *time.Location
	Workers  int // concurrent deliveries per fire
}

// BroadcastReport summarizes one fan-out
type BroadcastReport struct {
	RunID     string
	Kind      domain.SurveyKind
	Total     int
	Delivered int
	Failed    int
}

// BroadcastScheduler fires each survey kind at its local time of day to every active chat
type BroadcastScheduler struct {
	roster  Roster
	starter Starter
	cfg     BroadcastConfig
	now     func() time.Time
	logger  zerolog.Logger

	// local day of the last scheduled fire per kind
	firedMu sync.Mutex
	fired   map[domain.SurveyKind]string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBroadcastScheduler creates a new broadcast scheduler
func NewBroadcastScheduler(roster Roster, starter Starter, cfg BroadcastConfig) *BroadcastScheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &BroadcastScheduler{
		roster:  roster,
		starter: starter,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.Component("broadcast"),
		fired:   make(map[domain.SurveyKind]string),
	}
}

// SetClock overrides the time source
func (s *BroadcastScheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start starts one timer per configured kind
func (s *BroadcastScheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, kind := range domain.Kinds {
		offset, ok := s.cfg.Times[kind]
		if !ok {
			continue
		}
		s.wg.Add(1)
		go s.timerLoop(kind, offset)
	}

	s.logger.Info().Str("tz", s.cfg.Location.String()).Int("workers", s.cfg.Workers).Msg("scheduler started")
}

// Stop stops the timers and waits for running fires
func (s *BroadcastScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *BroadcastScheduler) timerLoop(kind domain.SurveyKind, offset time.Duration) {
	defer s.wg.Done()

	for {
		now := s.now()
		next := NextRun(now, offset, s.cfg.Location)
		s.logger.Debug().Str("kind", string(kind)).Time("next", next).Msg("timer armed")

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.fireScheduled(s.ctx, kind)
		}
	}
}

// fireScheduled fires kind unless a scheduled fire already ran today
func (s *BroadcastScheduler) fireScheduled(ctx context.Context, kind domain.SurveyKind) {
	day := s.now().In(s.cfg.Location).Format("2006-01-02")

	s.firedMu.Lock()
	if s.fired[kind] == day {
		s.firedMu.Unlock()
		s.logger.Warn().Str("kind", string(kind)).Str("day", day).Msg("already fired today, skipping")
		return
	}
	s.fired[kind] = day
	s.firedMu.Unlock()

	if _, err := s.Fire(ctx, kind); err != nil {
		s.logger.Error().Err(err).Str("kind", string(kind)).Msg("scheduled broadcast failed")
	}
}

// Fire starts kind for every active chat now. Per-recipient failures are
// counted in the report, never returned; an error means the fan-out did not run.
func (s *BroadcastScheduler) Fire(ctx context.Context, kind domain.SurveyKind) (*BroadcastReport, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	recipients, err := s.roster.ActiveChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	report := &BroadcastReport{RunID: uuid.NewString(), Kind: kind, Total: len(recipients)}
	log := s.logger.With().Str("run_id", report.RunID).Str("kind", string(kind)).Logger()
	log.Info().Int("recipients", report.Total).Msg("broadcast started")

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.cfg.Workers)
	)
	for _, chatID := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(chatID string) {
			defer wg.Done()
			defer func() { <-sem }()

			err := s.deliverOne(ctx, chatID, kind)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				metrics.BroadcastDeliveries.WithLabelValues(string(kind), "failed").Inc()
				log.Warn().Err(err).Str("chat_id", chatID).Msg("broadcast delivery failed")
				return
			}
			report.Delivered++
			metrics.BroadcastDeliveries.WithLabelValues(string(kind), "delivered").Inc()
		}(chatID)
	}
	wg.Wait()

	log.Info().Int("delivered", report.Delivered).Int("failed", report.Failed).Msg("broadcast finished")
	return report, nil
}

// deliverOne isolates one recipient, including panics
func (s *BroadcastScheduler) deliverOne(ctx context.Context, chatID string, kind domain.SurveyKind) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.starter.StartSurvey(ctx, chatID, kind)
}

// NextRun returns the first instant strictly after now at which the local
// wall clock in loc reads offset past midnight
func NextRun(now time.Time, offset time.Duration, loc *time.Location) time.Time {
	local := now.In(loc)
	h, m := int(offset/time.Hour), int(offset%time.Hour/time.Minute)
	next := time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, h, m, 0, 0, loc)
	}
	return next
}
