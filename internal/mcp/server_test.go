package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/conf"
)

type mockStats struct {
	day    string
	gotDay string
	err    error
}

func (m *mockStats) Stats(ctx context.Context, chatID string) (*domain.Stats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Stats{
		ChatID:   chatID,
		Total:    3,
		ByKind:   map[domain.SurveyKind]int{domain.KindMorning: 2, domain.KindEvening: 1},
		Day:      m.day,
		Averages: []domain.MetricAverage{{Key: "mood", Prompt: "Настроение", Average: 3.5}},
	}, nil
}

func (m *mockStats) DailyAverages(ctx context.Context, chatID, day string) ([]domain.MetricAverage, error) {
	m.gotDay = day
	return []domain.MetricAverage{{Key: "anxiety", Prompt: "Тревога", Average: 2}}, nil
}

func (m *mockStats) Today() string { return m.day }

func newTestServer(t *testing.T, stats *mockStats) *SurveyMCPServer {
	t.Helper()
	catalog, err := conf.DefaultCatalog()
	require.NoError(t, err)
	return NewServer(stats, catalog, "test")
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t, &mockStats{day: "2026-03-01"})

	_, out, err := s.handleStats(context.Background(), nil, StatsInput{ChatID: "42"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, map[string]int{"morning": 2, "evening": 1}, out.ByKind)
	assert.Equal(t, []Average{{Key: "mood", Prompt: "Настроение", Average: 3.5}}, out.Averages)

	_, _, err = s.handleStats(context.Background(), nil, StatsInput{})
	assert.Error(t, err)
}

func TestHandleStatsError(t *testing.T) {
	s := newTestServer(t, &mockStats{err: errors.New("db closed")})
	_, _, err := s.handleStats(context.Background(), nil, StatsInput{ChatID: "42"})
	assert.EqualError(t, err, "db closed")
}

func TestHandleDailyAveragesDefaultsToToday(t *testing.T) {
	stats := &mockStats{day: "2026-03-01"}
	s := newTestServer(t, stats)

	_, out, err := s.handleDailyAverages(context.Background(), nil, DailyAveragesInput{ChatID: "42"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", stats.gotDay)
	assert.Equal(t, "2026-03-01", out.Day)
	require.Len(t, out.Averages, 1)
	assert.Equal(t, "anxiety", out.Averages[0].Key)

	_, out, err = s.handleDailyAverages(context.Background(), nil, DailyAveragesInput{ChatID: "42", Day: "2026-02-27"})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-27", stats.gotDay)
	assert.Equal(t, "2026-02-27", out.Day)
}

func TestHandleCatalog(t *testing.T) {
	s := newTestServer(t, &mockStats{})

	_, out, err := s.handleCatalog(context.Background(), nil, CatalogInput{})
	require.NoError(t, err)
	require.Len(t, out.Surveys, 3)
	assert.Equal(t, "morning", out.Surveys[0].Kind)
	assert.Len(t, out.Surveys[0].Questions, 10)

	_, out, err = s.handleCatalog(context.Background(), nil, CatalogInput{Kind: "evening"})
	require.NoError(t, err)
	require.Len(t, out.Surveys, 1)
	last := out.Surveys[0].Questions[len(out.Surveys[0].Questions)-1]
	assert.Equal(t, "suicidal", last.Key)
	assert.Equal(t, string(domain.AnswerTristateRisk), last.Type)

	_, _, err = s.handleCatalog(context.Background(), nil, CatalogInput{Kind: "night"})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestToolsListed(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, &mockStats{})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"survey_stats", "survey_daily_averages", "survey_catalog"}, names)
}
