package data

import (
	"context"
	"strings"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/biz/repo"
	"github.com/moodcheck/survey-bot/internal/infra/feishu"
)

type feishuSender interface {
	SendText(ctx context.Context, chatID, text string) error
}

// feishuRepo delivers outbound messages as Feishu text messages
type feishuRepo struct {
	client feishuSender
}

// NewFeishuRepo creates a new Feishu message repository
func NewFeishuRepo(client *feishu.Client) repo.MessageRepo {
	return &feishuRepo{client: client}
}

// Send appends the choice set as a bracketed line; Feishu text has no reply keyboard
func (r *feishuRepo) Send(ctx context.Context, msg domain.Outbound) error {
	return r.client.SendText(ctx, msg.ChatID, renderPlain(msg))
}

func renderPlain(msg domain.Outbound) string {
	if !msg.HasChoices() || msg.Kind == domain.OutboundValidationRejected {
		// rejections already list the choices
		return msg.Text
	}
	choices := make([]string, len(msg.Choices))
	for i, c := range msg.Choices {
		choices[i] = "[" + c + "]"
	}
	return msg.Text + "\n" + strings.Join(choices, " ")
}
