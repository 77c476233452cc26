package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
	"github.com/moodcheck/survey-bot/internal/pkg/metrics"
)

// MirrorConfig bounds the best-effort spreadsheet append
type MirrorConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration // per Mirror call, all attempts included
}

// DefaultMirrorConfig returns the default mirror retry settings
func DefaultMirrorConfig() MirrorConfig {
	return MirrorConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     4 * time.Second,
		Timeout:        20 * time.Second,
	}
}

// EntrySink writes completed entries. Persist is authoritative; Mirror is best-effort
// and must only be called after Persist succeeded.
type EntrySink struct {
	entries repo.EntryRepo
	mirror  repo.MirrorRepo
	cfg     MirrorConfig
}

// NewEntrySink creates an entry sink. mirror may be nil when no spreadsheet is configured.
func NewEntrySink(entries repo.EntryRepo, mirror repo.MirrorRepo, cfg MirrorConfig) *EntrySink {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &EntrySink{entries: entries, mirror: mirror, cfg: cfg}
}

// Persist writes the entry to the durable store and sets entry.ID
func (s *EntrySink) Persist(ctx context.Context, entry *domain.Entry) error {
	id, err := s.entries.Save(ctx, entry)
	if err != nil {
		metrics.PersistFailures.Inc()
		return fmt.Errorf("save entry: %w", err)
	}
	entry.ID = id
	return nil
}

// MirrorEnabled reports whether an external mirror is configured
func (s *EntrySink) MirrorEnabled() bool {
	return s.mirror != nil
}

// Mirror appends the entry to the external spreadsheet with a bounded retry
func (s *EntrySink) Mirror(ctx context.Context, entry *domain.Entry) error {
	if s.mirror == nil {
		return nil
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.InitialBackoff
	exp.MaxInterval = s.cfg.MaxBackoff
	exp.Multiplier = 2
	exp.Reset()
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.cfg.MaxAttempts-1)), ctx)

	err := backoff.Retry(func() error {
		return s.mirror.Append(ctx, entry)
	}, policy)
	if err != nil {
		metrics.MirrorFailures.Inc()
		return &domain.MirrorError{EntryID: entry.ID, Err: err}
	}
	return nil
}
