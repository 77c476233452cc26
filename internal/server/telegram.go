package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/infra/telegram"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
)

// WebhookSecretHeader is set by Telegram on webhook deliveries
const WebhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type telegramTransport interface {
	Poll(ctx context.Context, handler telegram.UpdateHandler) error
	SetWebhook(ctx context.Context, url, secret string) error
	DeleteWebhook(ctx context.Context) error
}

// TelegramServer feeds Telegram updates to the survey service, by long polling
// or, when a webhook URL is configured, as an http.Handler
type TelegramServer struct {
	client     telegramTransport
	handler    TextHandler
	webhookURL string
	secret     string
	seen       *seenCache
	queue      *chatQueue
	logger     zerolog.Logger
}

// NewTelegramServer creates a new Telegram server. An empty webhookURL selects long polling.
func NewTelegramServer(client *telegram.Client, handler TextHandler, webhookURL, secret string) *TelegramServer {
	return newTelegramServer(client, handler, webhookURL, secret)
}

func newTelegramServer(client telegramTransport, handler TextHandler, webhookURL, secret string) *TelegramServer {
	return &TelegramServer{
		client:     client,
		handler:    handler,
		webhookURL: webhookURL,
		secret:     secret,
		seen:       newSeenCache(),
		queue:      newChatQueue(),
		logger:     logger.Component("server.telegram"),
	}
}

// Webhook reports whether updates arrive over HTTP
func (s *TelegramServer) Webhook() bool {
	return s.webhookURL != ""
}

// Start registers the webhook or polls; it blocks until ctx is done
func (s *TelegramServer) Start(ctx context.Context) error {
	if s.Webhook() {
		if err := s.client.SetWebhook(ctx, s.webhookURL, s.secret); err != nil {
			return err
		}
		s.logger.Info().Str("url", s.webhookURL).Msg("webhook registered")
		<-ctx.Done()
		s.queue.Wait()
		return nil
	}

	// getUpdates is refused while a webhook is set
	if err := s.client.DeleteWebhook(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("deleteWebhook failed")
	}
	defer s.queue.Wait()
	return s.client.Poll(ctx, s.dispatchUpdate)
}

// ServeHTTP accepts one webhook delivery
func (s *TelegramServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.secret != "" {
		got := r.Header.Get(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	var u telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Answered before handling; the work outlives the request
	s.dispatchUpdate(context.WithoutCancel(r.Context()), u)
	w.WriteHeader(http.StatusOK)
}

// dispatchUpdate queues a text message behind earlier ones of the same chat;
// other updates, bots and repeats are dropped. A slow chat never holds up the
// poll loop or other chats.
func (s *TelegramServer) dispatchUpdate(ctx context.Context, u telegram.Update) {
	chatID, text, ok := s.accept(u)
	if !ok {
		return
	}
	s.queue.Enqueue(chatID, func() {
		s.handle(ctx, chatID, text)
	})
}

func (s *TelegramServer) accept(u telegram.Update) (chatID, text string, ok bool) {
	msg := u.Message
	if msg == nil || msg.Text == "" {
		return "", "", false
	}
	if msg.From != nil && msg.From.IsBot {
		return "", "", false
	}
	if !s.seen.firstSeen(strconv.FormatInt(u.UpdateID, 10)) {
		s.logger.Debug().Int64("update_id", u.UpdateID).Msg("duplicate update ignored")
		return "", "", false
	}
	return strconv.FormatInt(msg.Chat.ID, 10), msg.Text, true
}

func (s *TelegramServer) handle(ctx context.Context, chatID, text string) {
	s.logger.Debug().Str("chat_id", chatID).Str("text", truncate(text, 50)).Msg("received")
	if err := s.handler.HandleText(ctx, chatID, text); err != nil {
		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("handle update failed")
	}
}
