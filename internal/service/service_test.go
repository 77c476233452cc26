package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moodcheck/survey-bot/internal/biz"
	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/usecase"
	"github.com/moodcheck/survey-bot/internal/conf"
	"github.com/moodcheck/survey-bot/internal/data"
)

// Mock implementations

type mockEntryRepo struct {
	mu      sync.Mutex
	entries []*domain.Entry
}

func (m *mockEntryRepo) Save(ctx context.Context, entry *domain.Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *entry
	stored.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, &stored)
	return stored.ID, nil
}

func (m *mockEntryRepo) CountByKind(ctx context.Context, chatID string) (map[domain.SurveyKind]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[domain.SurveyKind]int)
	for _, e := range m.entries {
		if e.ChatID == chatID {
			counts[e.Kind]++
		}
	}
	return counts, nil
}

func (m *mockEntryRepo) ListByDay(ctx context.Context, chatID, day string) ([]*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Entry
	for _, e := range m.entries {
		if e.ChatID == chatID && e.Day() == day {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockUserRepo struct {
	mu     sync.Mutex
	order  []string
	active map[string]bool
	err    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{active: make(map[string]bool)}
}

func (m *mockUserRepo) Ensure(ctx context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[chatID]; !ok {
		m.order = append(m.order, chatID)
		m.active[chatID] = true
	}
	return nil
}

func (m *mockUserRepo) SetActive(ctx context.Context, chatID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[chatID]; !ok {
		m.order = append(m.order, chatID)
	}
	m.active[chatID] = active
	return nil
}

func (m *mockUserRepo) Get(ctx context.Context, chatID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active, ok := m.active[chatID]
	if !ok {
		return nil, nil
	}
	return &domain.User{ChatID: chatID, IsActive: active}, nil
}

func (m *mockUserRepo) ListActive(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for _, id := range m.order {
		if m.active[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// ActiveChats lets the repo stand in as the broadcast roster
func (m *mockUserRepo) ActiveChats(ctx context.Context) ([]string, error) {
	return m.ListActive(ctx)
}

type mockMessageRepo struct {
	mu     sync.Mutex
	sent   []domain.Outbound
	failOn map[string]bool
}

func (m *mockMessageRepo) Send(ctx context.Context, msg domain.Outbound) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[msg.ChatID] {
		return errors.New("chat not found")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMessageRepo) to(chatID string) []domain.Outbound {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Outbound
	for _, msg := range m.sent {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out
}

type testEnv struct {
	svc      *SurveyService
	ucs      *biz.Usecases
	entries  *mockEntryRepo
	users    *mockUserRepo
	messages *mockMessageRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	catalog, err := conf.DefaultCatalog()
	require.NoError(t, err)

	env := &testEnv{
		entries:  &mockEntryRepo{},
		users:    newMockUserRepo(),
		messages: &mockMessageRepo{failOn: map[string]bool{}},
	}
	env.ucs = biz.NewUsecases(catalog, biz.Repositories{
		Sessions: data.NewSessionRepo(),
		Entries:  env.entries,
		Users:    env.users,
	}, usecase.DefaultMirrorConfig(), time.UTC)
	env.svc = NewSurveyService(env.ucs, env.messages, "hello")
	return env
}

func (e *testEnv) say(t *testing.T, chatID string, texts ...string) {
	t.Helper()
	for _, text := range texts {
		require.NoError(t, e.svc.HandleText(context.Background(), chatID, text))
	}
}

func repeat(s string, n int) []string {
	return strings.Split(strings.TrimSuffix(strings.Repeat(s+"\n", n), "\n"), "\n")
}
