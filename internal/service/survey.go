package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/biz"
	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
	"github.com/moodcheck/survey-bot/internal/biz/usecase"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
	"github.com/moodcheck/survey-bot/internal/pkg/metrics"
)

// SurveyService routes inbound events to the usecases and delivers their
// output through the transport
type SurveyService struct {
	survey      *usecase.SurveyUsecase
	stats       *usecase.StatsUsecase
	roster      *usecase.RosterUsecase
	messageRepo repo.MessageRepo
	catalog     *domain.Catalog
	greeting    string
	logger      zerolog.Logger
}

// NewSurveyService creates a new survey service
func NewSurveyService(ucs *biz.Usecases, messageRepo repo.MessageRepo, greeting string) *SurveyService {
	return &SurveyService{
		survey:      ucs.Survey,
		stats:       ucs.Stats,
		roster:      ucs.Roster,
		messageRepo: messageRepo,
		catalog:     ucs.Survey.Catalog(),
		greeting:    greeting,
		logger:      logger.Component("service"),
	}
}

// Greeting renders the greeting template with the broadcast schedule
func Greeting(catalog *domain.Catalog, times map[domain.SurveyKind]time.Duration, loc *time.Location) string {
	var clocks []string
	for _, kind := range domain.Kinds {
		d, ok := times[kind]
		if !ok {
			continue
		}
		clocks = append(clocks, fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60))
	}
	sort.Strings(clocks)
	zone := "UTC"
	if loc != nil {
		zone = loc.String()
	}
	return fmt.Sprintf(catalog.Messages.Greeting, strings.Join(clocks, ", "), zone)
}

// HandleText handles a text message from chatID. The first message of a chat registers it.
func (s *SurveyService) HandleText(ctx context.Context, chatID, text string) error {
	if err := s.roster.Register(ctx, chatID); err != nil {
		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("register failed")
	}
	return s.Handle(ctx, ParseEvent(chatID, text))
}

// Handle processes one inbound event
func (s *SurveyService) Handle(ctx context.Context, ev domain.Event) error {
	log := s.logger.With().Str("chat_id", ev.ChatID).Str("event", string(ev.Type)).Logger()
	log.Debug().Msg("event received")

	switch ev.Type {
	case domain.EventStartSurvey:
		return s.StartSurvey(ctx, ev.ChatID, ev.Kind)

	case domain.EventAnswerText:
		out, err := s.survey.SubmitAnswer(ctx, ev.ChatID, ev.Text)
		if errors.Is(err, domain.ErrNoActiveSession) {
			return s.notify(ctx, ev.ChatID, s.catalog.Messages.NoSurvey)
		}
		var persistErr *domain.PersistenceError
		if errors.As(err, &persistErr) {
			// Already logged by the engine; the user still gets the save-failed confirmation
			return s.deliver(ctx, out)
		}
		if err != nil {
			return fmt.Errorf("submit answer: %w", err)
		}
		return s.deliver(ctx, out)

	case domain.EventCancel:
		out, err := s.survey.Cancel(ctx, ev.ChatID)
		if err != nil {
			return fmt.Errorf("cancel: %w", err)
		}
		return s.deliver(ctx, out)

	case domain.EventStats:
		stats, err := s.stats.Stats(ctx, ev.ChatID)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		return s.notify(ctx, ev.ChatID, FormatStats(s.catalog, stats))

	case domain.EventOptout:
		if err := s.roster.OptOut(ctx, ev.ChatID); err != nil {
			return err
		}
		return s.notify(ctx, ev.ChatID, s.catalog.Messages.OptedOut)

	case domain.EventOptin:
		if err := s.roster.OptIn(ctx, ev.ChatID); err != nil {
			return err
		}
		return s.notify(ctx, ev.ChatID, s.greeting)

	case domain.EventHelp:
		return s.notify(ctx, ev.ChatID, s.catalog.Messages.Help)

	default:
		return s.notify(ctx, ev.ChatID, s.catalog.Messages.UnknownCommand)
	}
}

// StartSurvey starts kind for chatID and delivers the first prompt
func (s *SurveyService) StartSurvey(ctx context.Context, chatID string, kind domain.SurveyKind) error {
	out, err := s.survey.Start(ctx, chatID, kind)
	if err != nil {
		return fmt.Errorf("start %s: %w", kind, err)
	}
	return s.deliver(ctx, out)
}

func (s *SurveyService) notify(ctx context.Context, chatID, text string) error {
	return s.deliver(ctx, []domain.Outbound{{Kind: domain.OutboundNotice, ChatID: chatID, Text: text}})
}

// deliver sends every message; a failed send does not stop the rest
func (s *SurveyService) deliver(ctx context.Context, out []domain.Outbound) error {
	var first error
	for _, msg := range out {
		if err := s.messageRepo.Send(ctx, msg); err != nil {
			derr := &domain.DeliveryError{ChatID: msg.ChatID, Kind: msg.Kind, Err: err}
			metrics.DeliveryFailures.WithLabelValues(string(msg.Kind)).Inc()
			s.logger.Warn().Err(err).Str("chat_id", msg.ChatID).Str("kind", string(msg.Kind)).Msg("delivery failed")
			if first == nil {
				first = derr
			}
		}
	}
	return first
}

// FormatStats renders counts and today's averages
func FormatStats(catalog *domain.Catalog, stats *domain.Stats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(catalog.Messages.StatsTemplate,
		stats.Total,
		stats.ByKind[domain.KindMorning],
		stats.ByKind[domain.KindDay],
		stats.ByKind[domain.KindEvening],
	))
	if len(stats.Averages) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(catalog.Messages.AveragesHeader)
		for _, a := range stats.Averages {
			sb.WriteString(fmt.Sprintf("\n• %s: %.1f", metricLabel(a.Prompt), a.Average))
		}
	}
	return sb.String()
}

// metricLabel drops the scale hint from a prompt: "Тревога (0–5)" -> "Тревога"
func metricLabel(prompt string) string {
	if i := strings.Index(prompt, " ("); i > 0 {
		return prompt[:i]
	}
	return prompt
}
