package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
)

// StatsUsecase reports entry counts and per-metric daily averages of a chat
type StatsUsecase struct {
	catalog *domain.Catalog
	entries repo.EntryRepo
	loc     *time.Location
	now     func() time.Time
}

// NewStatsUsecase creates the stats use case
func NewStatsUsecase(catalog *domain.Catalog, entries repo.EntryRepo, loc *time.Location) *StatsUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsUsecase{catalog: catalog, entries: entries, loc: loc, now: time.Now}
}

// SetClock overrides the time source
func (uc *StatsUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// Today returns the current local day as YYYY-MM-DD
func (uc *StatsUsecase) Today() string {
	return uc.now().In(uc.loc).Format("2006-01-02")
}

// Stats returns the entry counts of chatID and the averages of today
func (uc *StatsUsecase) Stats(ctx context.Context, chatID string) (*domain.Stats, error) {
	byKind, err := uc.entries.CountByKind(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	stats := &domain.Stats{ChatID: chatID, ByKind: make(map[domain.SurveyKind]int, len(domain.Kinds))}
	for _, kind := range domain.Kinds {
		stats.ByKind[kind] = byKind[kind]
		stats.Total += byKind[kind]
	}

	stats.Day = uc.Today()
	stats.Averages, err = uc.DailyAverages(ctx, chatID, stats.Day)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DailyAverages averages every scale question answered by chatID on day.
// Metrics are ordered by their first appearance in the catalog; metrics with
// no samples are omitted.
func (uc *StatsUsecase) DailyAverages(ctx context.Context, chatID, day string) ([]domain.MetricAverage, error) {
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", day, err)
	}
	entries, err := uc.entries.ListByDay(ctx, chatID, day)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	type acc struct {
		sum   int
		count int
	}
	sums := make(map[string]*acc)
	for _, e := range entries {
		for _, a := range e.Answers {
			q, ok := uc.catalog.Question(a.Key)
			if !ok || q.Type != domain.AnswerScale0to5 {
				continue
			}
			n, err := strconv.Atoi(a.Value)
			if err != nil {
				continue
			}
			if sums[a.Key] == nil {
				sums[a.Key] = &acc{}
			}
			sums[a.Key].sum += n
			sums[a.Key].count++
		}
	}

	var out []domain.MetricAverage
	seen := make(map[string]bool)
	for _, kind := range domain.Kinds {
		for _, q := range uc.catalog.QuestionsFor(kind) {
			s, ok := sums[q.Key]
			if !ok || seen[q.Key] {
				continue
			}
			seen[q.Key] = true
			out = append(out, domain.MetricAverage{
				Key:     q.Key,
				Prompt:  q.Prompt,
				Average: float64(s.sum) / float64(s.count),
				Samples: s.count,
			})
		}
	}
	return out, nil
}
