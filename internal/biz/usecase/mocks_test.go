package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

// Mock implementations

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionRepo) Get(ctx context.Context, chatID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[chatID].Clone(), nil
}

func (m *mockSessionRepo) Save(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ChatID] = session.Clone()
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

func (m *mockSessionRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), nil
}

type mockEntryRepo struct {
	mu      sync.Mutex
	entries []*domain.Entry
	saveErr error
}

func (m *mockEntryRepo) Save(ctx context.Context, entry *domain.Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	stored := *entry
	stored.Answers = entry.Answers.Clone()
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
		if e.ChatID == chatID && strings.HasPrefix(e.CreatedAt.Format(domain.EntryTimeLayout), day) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntryRepo) all() []*domain.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Entry(nil), m.entries...)
}

type mockMirrorRepo struct {
	mu       sync.Mutex
	calls    int
	failures int // number of leading calls that fail
	appended []int64
}

var errSheetDown = errors.New("sheets unavailable")

func (m *mockMirrorRepo) Append(ctx context.Context, entry *domain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return errSheetDown
	}
	m.appended = append(m.appended, entry.ID)
	return nil
}

type mockUserRepo struct {
	mu     sync.Mutex
	order  []string
	active map[string]bool
	err    error
}

func newMockUserRepo(ids ...string) *mockUserRepo {
	m := &mockUserRepo{active: make(map[string]bool)}
	for _, id := range ids {
		_ = m.Ensure(context.Background(), id)
	}
	return m
}

func (m *mockUserRepo) Ensure(ctx context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.active[chatID]; !ok {
		m.order = append(m.order, chatID)
		m.active[chatID] = true
	}
	return nil
}

func (m *mockUserRepo) SetActive(ctx context.Context, chatID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
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

func testRiskPolicy() domain.RiskPolicy {
	return domain.RiskPolicy{
		RiskKey:          "suicidal",
		NoneValue:        "нет",
		TensionKeys:      []string{"anxiety", "irritability", "impulsivity"},
		TensionThreshold: 4,
	}
}

func testCatalog() *domain.Catalog {
	scale := domain.AnswerScale0to5
	return &domain.Catalog{
		Surveys: map[domain.SurveyKind]*domain.Survey{
			domain.KindMorning: {Kind: domain.KindMorning, Title: "Утренний опрос", Questions: []domain.Question{
				{Key: "mood", Prompt: "Настроение", Type: scale},
				{Key: "sleep_quality", Prompt: "Сон", Type: scale},
				{Key: "anxiety", Prompt: "Тревога", Type: scale},
			}},
			domain.KindDay: {Kind: domain.KindDay, Title: "Дневной опрос", Questions: []domain.Question{
				{Key: "mood", Prompt: "Настроение", Type: scale},
				{Key: "took_medication", Prompt: "Лекарства приняты?", Type: domain.AnswerYesNo},
			}},
			domain.KindEvening: {Kind: domain.KindEvening, Title: "Вечерний опрос", Questions: []domain.Question{
				{Key: "anxiety", Prompt: "Тревога", Type: scale},
				{Key: "irritability", Prompt: "Раздражительность", Type: scale},
				{Key: "suicidal", Prompt: "Суицидальные мысли", Type: domain.AnswerTristateRisk},
			}},
		},
		Domains: map[domain.AnswerType]domain.AnswerDomain{
			scale: {Values: []string{"0", "1", "2", "3", "4", "5"}},
			domain.AnswerYesNo: {
				Values:  []string{"да", "нет"},
				Aliases: map[string]string{"yes": "да", "no": "нет"},
			},
			domain.AnswerTristateRisk: {
				Values:  []string{"нет", "мимолётные", "навязчивые"},
				Aliases: map[string]string{"мимолетные": "мимолётные"},
			},
		},
		Risk: testRiskPolicy(),
		Messages: domain.Messages{
			Rejected:        "Выберите один из вариантов.",
			Saved:           "Ответы сохранены.",
			SaveFailed:      "Не удалось сохранить ответы.",
			Cancelled:       "Опрос отменён.",
			NothingToCancel: "Нет активного опроса.",
			AlertRisk:       "RISK",
			AlertTension:    "TENSION",
		},
	}
}
