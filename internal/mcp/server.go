// Package mcp exposes read-only survey data as MCP tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

// StatsReader is the part of the stats usecase the tools need
type StatsReader interface {
	Stats(ctx context.Context, chatID string) (*domain.Stats, error)
	DailyAverages(ctx context.Context, chatID, day string) ([]domain.MetricAverage, error)
	Today() string
}

// SurveyMCPServer serves survey statistics and the catalog
type SurveyMCPServer struct {
	server  *mcp.Server
	stats   StatsReader
	catalog *domain.Catalog
}

// NewServer creates the MCP server and registers its tools
func NewServer(stats StatsReader, catalog *domain.Catalog, version string) *SurveyMCPServer {
	s := &SurveyMCPServer{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "survey-tools",
			Version: version,
		}, nil),
		stats:   stats,
		catalog: catalog,
	}
	s.registerTools()
	return s
}

// Run serves over stdio until the client disconnects
func (s *SurveyMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *SurveyMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "survey_stats",
		Description: "Count the stored survey entries of a chat, in total and per survey kind, with today's per-metric averages.",
	}, s.handleStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "survey_daily_averages",
		Description: "Average every 0-5 scale answer of a chat over one local day (YYYY-MM-DD, default today).",
	}, s.handleDailyAverages)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "survey_catalog",
		Description: "List the questions of a survey kind (morning, day, evening) with their accepted answers.",
	}, s.handleCatalog)
}

// StatsInput selects a chat
type StatsInput struct {
	ChatID string `json:"chat_id" jsonschema:"the chat id as stored by the bot"`
}

// Average is one metric mean
type Average struct {
	Key     string  `json:"key"`
	Prompt  string  `json:"prompt"`
	Average float64 `json:"average"`
}

// StatsOutput is the result of survey_stats
type StatsOutput struct {
	ChatID   string         `json:"chat_id"`
	Total    int            `json:"total"`
	ByKind   map[string]int `json:"by_kind"`
	Day      string         `json:"day"`
	Averages []Average      `json:"averages"`
}

func (s *SurveyMCPServer) handleStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	if input.ChatID == "" {
		return nil, StatsOutput{}, fmt.Errorf("chat_id is required")
	}
	stats, err := s.stats.Stats(ctx, input.ChatID)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	out := StatsOutput{
		ChatID:   stats.ChatID,
		Total:    stats.Total,
		ByKind:   make(map[string]int, len(stats.ByKind)),
		Day:      stats.Day,
		Averages: toAverages(stats.Averages),
	}
	for kind, n := range stats.ByKind {
		out.ByKind[string(kind)] = n
	}
	return nil, out, nil
}

// DailyAveragesInput selects a chat and a day
type DailyAveragesInput struct {
	ChatID string `json:"chat_id" jsonschema:"the chat id as stored by the bot"`
	Day    string `json:"day,omitempty" jsonschema:"local day as YYYY-MM-DD, today when empty"`
}

// DailyAveragesOutput is the result of survey_daily_averages
type DailyAveragesOutput struct {
	Day      string    `json:"day"`
	Averages []Average `json:"averages"`
}

func (s *SurveyMCPServer) handleDailyAverages(ctx context.Context, req *mcp.CallToolRequest, input DailyAveragesInput) (*mcp.CallToolResult, DailyAveragesOutput, error) {
	if input.ChatID == "" {
		return nil, DailyAveragesOutput{}, fmt.Errorf("chat_id is required")
	}
	day := input.Day
	if day == "" {
		day = s.stats.Today()
	}
	avgs, err := s.stats.DailyAverages(ctx, input.ChatID, day)
	if err != nil {
		return nil, DailyAveragesOutput{}, err
	}
	return nil, DailyAveragesOutput{Day: day, Averages: toAverages(avgs)}, nil
}

// CatalogInput optionally narrows the listing to one kind
type CatalogInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"morning, day or evening; all kinds when empty"`
}

// CatalogQuestion is one question with its accepted answers
type CatalogQuestion struct {
	Key     string   `json:"key"`
	Prompt  string   `json:"prompt"`
	Type    string   `json:"type"`
	Answers []string `json:"answers"`
}

// CatalogSurvey is the question list of one kind
type CatalogSurvey struct {
	Kind      string            `json:"kind"`
	Title     string            `json:"title"`
	Questions []CatalogQuestion `json:"questions"`
}

// CatalogOutput is the result of survey_catalog
type CatalogOutput struct {
	Version string          `json:"version"`
	Surveys []CatalogSurvey `json:"surveys"`
}

func (s *SurveyMCPServer) handleCatalog(ctx context.Context, req *mcp.CallToolRequest, input CatalogInput) (*mcp.CallToolResult, CatalogOutput, error) {
	kinds := domain.Kinds
	if input.Kind != "" {
		kind, err := domain.ParseKind(input.Kind)
		if err != nil {
			return nil, CatalogOutput{}, err
		}
		kinds = []domain.SurveyKind{kind}
	}

	out := CatalogOutput{Version: s.catalog.Version}
	for _, kind := range kinds {
		survey := CatalogSurvey{Kind: string(kind), Title: s.catalog.Title(kind)}
		for _, q := range s.catalog.QuestionsFor(kind) {
			survey.Questions = append(survey.Questions, CatalogQuestion{
				Key:     q.Key,
				Prompt:  q.Prompt,
				Type:    string(q.Type),
				Answers: s.catalog.ValidValues(q.Type),
			})
		}
		out.Surveys = append(out.Surveys, survey)
	}
	return nil, out, nil
}

func toAverages(in []domain.MetricAverage) []Average {
	out := make([]Average, 0, len(in))
	for _, a := range in {
		out = append(out, Average{Key: a.Key, Prompt: a.Prompt, Average: a.Average})
	}
	return out
}
