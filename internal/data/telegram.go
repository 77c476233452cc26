package data

import (
	"context"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
	"github.com/moodcheck/survey-bot/internal/infra/telegram"
)

const keyboardRowSize = 3

// telegramSender is the part of the Bot API client the repository needs
type telegramSender interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) error
}

// telegramRepo delivers outbound messages through the Telegram Bot API
type telegramRepo struct {
	client telegramSender
}

// NewTelegramRepo creates a new Telegram message repository
func NewTelegramRepo(client *telegram.Client) repo.MessageRepo {
	return &telegramRepo{client: client}
}

// Send renders choices as a reply keyboard; other messages remove it
func (r *telegramRepo) Send(ctx context.Context, msg domain.Outbound) error {
	req := telegram.SendMessageRequest{ChatID: msg.ChatID, Text: msg.Text}
	switch {
	case msg.HasChoices():
		req.ReplyMarkup = telegram.Keyboard(msg.Choices, keyboardRowSize)
	case msg.Kind == domain.OutboundConfirmation:
		req.ReplyMarkup = telegram.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return r.client.SendMessage(ctx, req)
}
