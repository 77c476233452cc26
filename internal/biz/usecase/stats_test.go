package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

func TestStats(t *testing.T) {
	ctx := context.Background()
	today := testNow.In(testLoc)
	yesterday := today.Add(-24 * time.Hour)

	entries := &mockEntryRepo{}
	for _, e := range []*domain.Entry{
		{ChatID: "42", Kind: domain.KindMorning, CreatedAt: today, Answers: domain.Answers{
			{Key: "mood", Value: "2"}, {Key: "sleep_quality", Value: "5"}, {Key: "anxiety", Value: "1"},
		}},
		{ChatID: "42", Kind: domain.KindEvening, CreatedAt: today, Answers: domain.Answers{
			{Key: "anxiety", Value: "4"}, {Key: "irritability", Value: "0"}, {Key: "suicidal", Value: "нет"},
		}},
		{ChatID: "42", Kind: domain.KindMorning, CreatedAt: yesterday, Answers: domain.Answers{
			{Key: "mood", Value: "5"},
		}},
		{ChatID: "7", Kind: domain.KindDay, CreatedAt: today, Answers: domain.Answers{
			{Key: "mood", Value: "0"},
		}},
	} {
		_, err := entries.Save(ctx, e)
		require.NoError(t, err)
	}

	uc := NewStatsUsecase(testCatalog(), entries, testLoc)
	uc.SetClock(func() time.Time { return testNow })

	stats, err := uc.Stats(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByKind[domain.KindMorning])
	assert.Equal(t, 0, stats.ByKind[domain.KindDay])
	assert.Equal(t, 1, stats.ByKind[domain.KindEvening])
	assert.Equal(t, "2026-03-14", stats.Day)

	require.Len(t, stats.Averages, 4)
	assert.Equal(t, "mood", stats.Averages[0].Key)
	assert.InDelta(t, 2.0, stats.Averages[0].Average, 1e-9)
	assert.Equal(t, "anxiety", stats.Averages[2].Key)
	assert.InDelta(t, 2.5, stats.Averages[2].Average, 1e-9)
	assert.Equal(t, 2, stats.Averages[2].Samples)
	assert.Equal(t, "irritability", stats.Averages[3].Key)
}

func TestDailyAveragesRejectsBadDay(t *testing.T) {
	uc := NewStatsUsecase(testCatalog(), &mockEntryRepo{}, testLoc)
	_, err := uc.DailyAverages(context.Background(), "42", "14.03.2026")
	assert.Error(t, err)
}
