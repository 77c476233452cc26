package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
	"github.com/moodcheck/survey-bot/internal/pkg/metrics"
)

// Chat states and transitions
//
//	idle   --start-->    active
//	active --start-->    active  (restart overwrites the session, last start wins)
//	active --complete--> idle
//	active --cancel-->   idle
const (
	StateIdle   = "idle"
	StateActive = "active"

	eventStart    = "start"
	eventComplete = "complete"
	eventCancel   = "cancel"
)

func newChatMachine(initial string) *fsm.FSM {
	return fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: eventStart, Src: []string{StateIdle, StateActive}, Dst: StateActive},
			{Name: eventComplete, Src: []string{StateActive}, Dst: StateIdle},
			{Name: eventCancel, Src: []string{StateActive}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
}

// transition fires event, treating a self-transition (restart) as success
func transition(ctx context.Context, m *fsm.FSM, event string) error {
	err := m.Event(ctx, event)
	var noTransition fsm.NoTransitionError
	if err == nil || errors.As(err, &noTransition) {
		return nil
	}
	return err
}

// chatState serializes all events of one chat. refs counts callers between
// acquire and release and is guarded by SurveyUsecase.chatsMu.
type chatState struct {
	mu      sync.Mutex
	machine *fsm.FSM
	refs    int
}

// SurveyUsecase is the conversation engine: it sequences questions, validates
// answers, finalizes entries and raises alerts.
//
// Events for the same chat are serialized; events for different chats run
// concurrently. No chat lock is held while the spreadsheet mirror runs, and
// the engine never talks to the transport: it returns outbound messages for
// the caller to deliver.
type SurveyUsecase struct {
	catalog  *domain.Catalog
	sessions repo.SessionRepo
	sink     *EntrySink
	alerts   *AlertEvaluator
	loc      *time.Location
	now      func() time.Time
	logger   zerolog.Logger

	chatsMu sync.Mutex
	chats   map[string]*chatState
}

// NewSurveyUsecase creates the conversation engine. Entry timestamps are
// recorded in loc.
func NewSurveyUsecase(
	catalog *domain.Catalog,
	sessions repo.SessionRepo,
	sink *EntrySink,
	alerts *AlertEvaluator,
	loc *time.Location,
) *SurveyUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &SurveyUsecase{
		catalog:  catalog,
		sessions: sessions,
		sink:     sink,
		alerts:   alerts,
		loc:      loc,
		now:      time.Now,
		logger:   logger.Component("survey"),
		chats:    make(map[string]*chatState),
	}
}

// SetClock overrides the time source
func (uc *SurveyUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// Catalog returns the survey catalog
func (uc *SurveyUsecase) Catalog() *domain.Catalog {
	return uc.catalog
}

// acquire locks the chat and lazily builds its state machine from the session
// store. Every successful acquire must be paired with release.
func (uc *SurveyUsecase) acquire(ctx context.Context, chatID string) (*chatState, error) {
	uc.chatsMu.Lock()
	state, ok := uc.chats[chatID]
	if !ok {
		state = &chatState{}
		uc.chats[chatID] = state
	}
	state.refs++
	uc.chatsMu.Unlock()

	state.mu.Lock()
	if state.machine == nil {
		sess, err := uc.sessions.Get(ctx, chatID)
		if err != nil {
			uc.release(chatID, state)
			return nil, fmt.Errorf("get session: %w", err)
		}
		initial := StateIdle
		if sess != nil {
			initial = StateActive
		}
		state.machine = newChatMachine(initial)
	}
	return state, nil
}

// release unlocks the chat. An idle chat nobody else is waiting on is
// forgotten; its machine is rebuilt from the session store on next use.
func (uc *SurveyUsecase) release(chatID string, state *chatState) {
	idle := state.machine == nil || state.machine.Is(StateIdle)
	state.mu.Unlock()

	uc.chatsMu.Lock()
	defer uc.chatsMu.Unlock()
	state.refs--
	if state.refs == 0 && idle && uc.chats[chatID] == state {
		delete(uc.chats, chatID)
	}
}

// trackedChats returns the number of chats with in-memory state
func (uc *SurveyUsecase) trackedChats() int {
	uc.chatsMu.Lock()
	defer uc.chatsMu.Unlock()
	return len(uc.chats)
}

// State returns the state of chatID (idle or active)
func (uc *SurveyUsecase) State(ctx context.Context, chatID string) (string, error) {
	state, err := uc.acquire(ctx, chatID)
	if err != nil {
		return "", err
	}
	defer uc.release(chatID, state)
	return state.machine.Current(), nil
}

// Start begins kind for chatID and returns the prompt of its first question.
// An in-progress session is overwritten.
func (uc *SurveyUsecase) Start(ctx context.Context, chatID string, kind domain.SurveyKind) ([]domain.Outbound, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	questions := uc.catalog.QuestionsFor(kind)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: kind %s has no questions", domain.ErrCatalog, kind)
	}

	state, err := uc.acquire(ctx, chatID)
	if err != nil {
		return nil, err
	}
	defer uc.release(chatID, state)

	restart := state.machine.Is(StateActive)
	sess := domain.NewSession(chatID, kind, uc.now())
	if err := uc.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := transition(ctx, state.machine, eventStart); err != nil {
		return nil, fmt.Errorf("start transition: %w", err)
	}

	metrics.SurveysStarted.WithLabelValues(string(kind)).Inc()
	uc.logger.Debug().Str("chat_id", chatID).Str("kind", string(kind)).Bool("restart", restart).Msg("survey started")

	return []domain.Outbound{uc.prompt(sess, questions[0])}, nil
}

// Cancel discards the in-progress session of chatID. Cancelling an idle chat
// changes nothing.
func (uc *SurveyUsecase) Cancel(ctx context.Context, chatID string) ([]domain.Outbound, error) {
	state, err := uc.acquire(ctx, chatID)
	if err != nil {
		return nil, err
	}
	defer uc.release(chatID, state)

	if state.machine.Is(StateIdle) {
		return []domain.Outbound{uc.notice(chatID, domain.OutboundConfirmation, uc.catalog.Messages.NothingToCancel)}, nil
	}

	sess, err := uc.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := uc.sessions.Delete(ctx, chatID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	if err := transition(ctx, state.machine, eventCancel); err != nil {
		return nil, fmt.Errorf("cancel transition: %w", err)
	}

	if sess != nil {
		metrics.SurveysCancelled.WithLabelValues(string(sess.Kind)).Inc()
	}
	return []domain.Outbound{uc.notice(chatID, domain.OutboundConfirmation, uc.catalog.Messages.Cancelled)}, nil
}

// SubmitAnswer validates raw against the pending question of chatID.
//
// An invalid answer leaves the session untouched and yields a
// validation_rejected message. A valid answer is stored normalized; the last
// answer finalizes the survey. Without a session ErrNoActiveSession is returned.
//
// When the entry cannot be persisted the session is still cleared and a
// *domain.PersistenceError is returned together with the messages to deliver.
func (uc *SurveyUsecase) SubmitAnswer(ctx context.Context, chatID, raw string) ([]domain.Outbound, error) {
	state, err := uc.acquire(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if state.machine.Is(StateIdle) {
		uc.release(chatID, state)
		return nil, domain.ErrNoActiveSession
	}
	sess, err := uc.sessions.Get(ctx, chatID)
	if err != nil {
		uc.release(chatID, state)
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		// Store lost the session (e.g. replaced); resync the machine
		state.machine.SetState(StateIdle)
		uc.release(chatID, state)
		return nil, domain.ErrNoActiveSession
	}

	questions := uc.catalog.QuestionsFor(sess.Kind)
	current := questions[sess.Cursor]

	value, ok := uc.catalog.Normalize(current.Type, raw)
	if !ok {
		uc.release(chatID, state)
		metrics.AnswersRejected.WithLabelValues(string(sess.Kind)).Inc()
		return []domain.Outbound{uc.rejected(sess, current)}, nil
	}

	sess.Record(current.Key, value, uc.now())
	if !sess.IsComplete(len(questions)) {
		if err := uc.sessions.Save(ctx, sess); err != nil {
			uc.release(chatID, state)
			return nil, fmt.Errorf("save session: %w", err)
		}
		uc.release(chatID, state)
		return []domain.Outbound{uc.prompt(sess, questions[sess.Cursor])}, nil
	}

	entry, signals, persistErr := uc.finalize(ctx, state, sess)
	uc.release(chatID, state)

	// Mirror only what the durable store already holds
	if persistErr == nil && uc.sink.MirrorEnabled() {
		if err := uc.sink.Mirror(ctx, entry); err != nil {
			uc.logger.Warn().Err(err).Str("chat_id", chatID).Int64("entry_id", entry.ID).Msg("mirror failed")
		}
	}

	out := make([]domain.Outbound, 0, 1+len(signals))
	if persistErr != nil {
		out = append(out, uc.notice(chatID, domain.OutboundConfirmation, uc.catalog.Messages.SaveFailed))
	} else {
		out = append(out, uc.notice(chatID, domain.OutboundConfirmation, uc.catalog.Messages.Saved))
	}
	for _, sig := range signals {
		out = append(out, uc.alert(chatID, sig))
	}

	if persistErr != nil {
		return out, &domain.PersistenceError{ChatID: chatID, Kind: sess.Kind, Err: persistErr}
	}
	return out, nil
}

// finalize clears the session, persists the entry and evaluates alerts.
// Called with the chat lock held.
func (uc *SurveyUsecase) finalize(ctx context.Context, state *chatState, sess *domain.Session) (*domain.Entry, []domain.AlertSignal, error) {
	entry := &domain.Entry{
		ChatID:    sess.ChatID,
		Kind:      sess.Kind,
		CreatedAt: uc.now().In(uc.loc),
		Answers:   sess.Answers.Clone(),
	}

	// Cleared even if the store write fails
	if err := uc.sessions.Delete(ctx, sess.ChatID); err != nil {
		uc.logger.Error().Err(err).Str("chat_id", sess.ChatID).Msg("delete finished session")
	}
	if err := transition(ctx, state.machine, eventComplete); err != nil {
		uc.logger.Error().Err(err).Str("chat_id", sess.ChatID).Msg("complete transition")
		state.machine.SetState(StateIdle)
	}

	persistErr := uc.sink.Persist(ctx, entry)
	if persistErr != nil {
		uc.logger.Error().Err(persistErr).
			Str("chat_id", sess.ChatID).
			Str("kind", string(sess.Kind)).
			Interface("answers", entry.Answers).
			Msg("ENTRY LOST: durable store write failed")
	} else {
		metrics.SurveysCompleted.WithLabelValues(string(sess.Kind)).Inc()
		uc.logger.Info().Str("chat_id", sess.ChatID).Str("kind", string(sess.Kind)).Int64("entry_id", entry.ID).Msg("entry saved")
	}

	signals := uc.alerts.Evaluate(sess.Kind, entry.Answers)
	for _, sig := range signals {
		metrics.Alerts.WithLabelValues(string(sig.Kind)).Inc()
		uc.logger.Warn().Str("chat_id", sess.ChatID).Str("signal", string(sig.Kind)).Str("detail", sig.Detail).Msg("alert raised")
	}

	return entry, signals, persistErr
}

func (uc *SurveyUsecase) prompt(sess *domain.Session, q domain.Question) domain.Outbound {
	text := q.Prompt
	if sess.Cursor == 0 {
		text = uc.catalog.Title(sess.Kind) + "\n" + q.Prompt
	}
	total := len(uc.catalog.QuestionsFor(sess.Kind))
	return domain.Outbound{
		Kind:        domain.OutboundPrompt,
		ChatID:      sess.ChatID,
		Text:        fmt.Sprintf("%s (%d/%d)", text, sess.Cursor+1, total),
		QuestionKey: q.Key,
		Choices:     uc.catalog.ValidValues(q.Type),
	}
}

func (uc *SurveyUsecase) rejected(sess *domain.Session, q domain.Question) domain.Outbound {
	choices := uc.catalog.ValidValues(q.Type)
	return domain.Outbound{
		Kind:        domain.OutboundValidationRejected,
		ChatID:      sess.ChatID,
		Text:        uc.catalog.Messages.Rejected + "\n" + q.Prompt + "\n" + strings.Join(choices, " / "),
		QuestionKey: q.Key,
		Choices:     choices,
	}
}

func (uc *SurveyUsecase) alert(chatID string, sig domain.AlertSignal) domain.Outbound {
	text := uc.catalog.Messages.AlertTension
	if sig.Kind == domain.AlertRiskKeyword {
		text = uc.catalog.Messages.AlertRisk
	}
	return domain.Outbound{
		Kind:   domain.OutboundAlert,
		ChatID: chatID,
		Text:   text,
		Signal: sig.Kind,
	}
}

func (uc *SurveyUsecase) notice(chatID string, kind domain.OutboundKind, text string) domain.Outbound {
	return domain.Outbound{Kind: kind, ChatID: chatID, Text: text}
}
