package data

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/infra/telegram"
)

var cet = time.FixedZone("CET", 3600)

func openTestDB(t *testing.T) *Data {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "nested", "bot.db"))
	require.NoError(t, err)
	d := &Data{DB: db}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(openTestDB(t).DB)

	require.NoError(t, users.Ensure(ctx, "A"))
	require.NoError(t, users.Ensure(ctx, "B"))
	require.NoError(t, users.SetActive(ctx, "B", false))
	// Ensure must not re-activate an opted-out user
	require.NoError(t, users.Ensure(ctx, "B"))

	ids, err := users.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids)

	u, err := users.Get(ctx, "B")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.False(t, u.IsActive)

	u, err = users.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, users.SetActive(ctx, "B", true))
	require.NoError(t, users.SetActive(ctx, "C", true))
	ids, err = users.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids)
}

func TestEntryRepo(t *testing.T) {
	ctx := context.Background()
	entries := NewEntryRepo(openTestDB(t).DB)

	day := time.Date(2026, 3, 14, 23, 30, 0, 0, cet)
	answers := domain.Answers{{Key: "mood", Value: "3"}, {Key: "anxiety", Value: "0"}, {Key: "appetite", Value: "5"}}

	id, err := entries.Save(ctx, &domain.Entry{ChatID: "42", Kind: domain.KindEvening, CreatedAt: day, Answers: answers})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = entries.Save(ctx, &domain.Entry{ChatID: "42", Kind: domain.KindMorning, CreatedAt: day.Add(time.Hour), Answers: answers})
	require.NoError(t, err)
	_, err = entries.Save(ctx, &domain.Entry{ChatID: "7", Kind: domain.KindMorning, CreatedAt: day, Answers: answers})
	require.NoError(t, err)

	counts, err := entries.CountByKind(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, map[domain.SurveyKind]int{domain.KindEvening: 1, domain.KindMorning: 1}, counts)

	list, err := entries.ListByDay(ctx, "42", "2026-03-14")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, domain.KindEvening, list[0].Kind)
	assert.Equal(t, answers, list[0].Answers)
	assert.True(t, day.Equal(list[0].CreatedAt))

	list, err = entries.ListByDay(ctx, "42", "2026-03-15")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEntryRepoStoresOrderedJSON(t *testing.T) {
	ctx := context.Background()
	d := openTestDB(t)
	entries := NewEntryRepo(d.DB)

	answers := domain.Answers{{Key: "suicidal", Value: "нет"}, {Key: "anxiety", Value: "2"}}
	_, err := entries.Save(ctx, &domain.Entry{ChatID: "42", Kind: domain.KindEvening, CreatedAt: time.Now(), Answers: answers})
	require.NoError(t, err)

	var raw string
	require.NoError(t, d.DB.QueryRow(`SELECT answers FROM entries`).Scan(&raw))
	assert.Equal(t, `{"suicidal":"нет","anxiety":"2"}`, raw)
}

func TestSessionRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessionRepo()

	s := domain.NewSession("42", domain.KindMorning, time.Now())
	require.NoError(t, sessions.Save(ctx, s))
	s.Record("mood", "5", time.Now())

	got, err := sessions.Get(ctx, "42")
	require.NoError(t, err)
	assert.Zero(t, got.Cursor)

	got.Record("mood", "1", time.Now())
	again, _ := sessions.Get(ctx, "42")
	assert.Empty(t, again.Answers)

	n, _ := sessions.Count(ctx)
	assert.Equal(t, 1, n)
	require.NoError(t, sessions.Delete(ctx, "42"))
	require.NoError(t, sessions.Delete(ctx, "42"))
	missing, err := sessions.Get(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

type fakeTelegram struct {
	mu   sync.Mutex
	sent []telegram.SendMessageRequest
}

func (f *fakeTelegram) SendMessage(ctx context.Context, req telegram.SendMessageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil
}

func TestTelegramRepoRendering(t *testing.T) {
	ctx := context.Background()
	fake := &fakeTelegram{}
	r := &telegramRepo{client: fake}

	require.NoError(t, r.Send(ctx, domain.Outbound{
		Kind: domain.OutboundPrompt, ChatID: "42", Text: "Настроение",
		Choices: []string{"0", "1", "2", "3", "4", "5"},
	}))
	require.NoError(t, r.Send(ctx, domain.Outbound{Kind: domain.OutboundConfirmation, ChatID: "42", Text: "ok"}))
	require.NoError(t, r.Send(ctx, domain.Outbound{Kind: domain.OutboundNotice, ChatID: "42", Text: "hi"}))

	require.Len(t, fake.sent, 3)
	kb, ok := fake.sent[0].ReplyMarkup.(*telegram.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.Keyboard, 2)
	assert.Equal(t, telegram.ReplyKeyboardRemove{RemoveKeyboard: true}, fake.sent[1].ReplyMarkup)
	assert.Nil(t, fake.sent[2].ReplyMarkup)
}

func TestRenderPlain(t *testing.T) {
	assert.Equal(t, "Принимали лекарства?\n[да] [нет]", renderPlain(domain.Outbound{
		Kind: domain.OutboundPrompt, Text: "Принимали лекарства?", Choices: []string{"да", "нет"},
	}))
	assert.Equal(t, "Ответы сохранены.", renderPlain(domain.Outbound{Kind: domain.OutboundConfirmation, Text: "Ответы сохранены."}))
	assert.Equal(t, "bad", renderPlain(domain.Outbound{Kind: domain.OutboundValidationRejected, Text: "bad", Choices: []string{"да"}}))
}

func TestEntryRow(t *testing.T) {
	created := time.Date(2026, 3, 14, 10, 0, 0, 0, cet)
	row, err := entryRow(&domain.Entry{
		ID: 9, ChatID: "42", Kind: domain.KindMorning, CreatedAt: created,
		Answers: domain.Answers{{Key: "mood", Value: "4"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(9), "2026-03-14T10:00:00.000000+01:00", "42", "morning", `{"mood":"4"}`}, row)
}
