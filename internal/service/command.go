package service

import (
	"strings"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

// ParseEvent turns a chat message into an engine event. Anything that is not
// a command is an answer to the pending question.
func ParseEvent(chatID, text string) domain.Event {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return domain.Event{Type: domain.EventAnswerText, ChatID: chatID, Text: text}
	}

	cmd := strings.Fields(text)[0]
	// Telegram group commands carry the bot name: /morning@MoodBot
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	cmd = strings.ToLower(strings.TrimPrefix(cmd, "/"))

	ev := domain.Event{ChatID: chatID}
	switch cmd {
	case "start":
		ev.Type = domain.EventOptin
	case "stop":
		ev.Type = domain.EventOptout
	case "help":
		ev.Type = domain.EventHelp
	case "cancel":
		ev.Type = domain.EventCancel
	case "statistics", "stats":
		ev.Type = domain.EventStats
	default:
		kind, err := domain.ParseKind(cmd)
		if err != nil {
			ev.Type = domain.EventUnknown
			ev.Text = text
			return ev
		}
		ev.Type = domain.EventStartSurvey
		ev.Kind = kind
	}
	return ev
}
