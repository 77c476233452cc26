package server

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/infra/feishu"
	"github.com/moodcheck/survey-bot/internal/pkg/logger"
)

type feishuTransport interface {
	OnMessage(handler feishu.MessageHandler)
	Start(ctx context.Context) error
	Stop()
}

// FeishuServer feeds Feishu messages to the survey service
type FeishuServer struct {
	client  feishuTransport
	handler TextHandler
	seen    *seenCache
	queue   *chatQueue
	ctx     context.Context
	logger  zerolog.Logger
}

// NewFeishuServer creates a new Feishu server
func NewFeishuServer(client *feishu.Client, handler TextHandler) *FeishuServer {
	return newFeishuServer(client, handler)
}

func newFeishuServer(client feishuTransport, handler TextHandler) *FeishuServer {
	return &FeishuServer{
		client:  client,
		handler: handler,
		seen:    newSeenCache(),
		queue:   newChatQueue(),
		ctx:     context.Background(),
		logger:  logger.Component("server.feishu"),
	}
}

// Start connects and blocks until ctx is done and queued messages are handled
func (s *FeishuServer) Start(ctx context.Context) error {
	s.ctx = ctx
	s.client.OnMessage(s.handleMessage)
	defer s.queue.Wait()
	return s.client.Start(ctx)
}

// Stop disconnects from Feishu
func (s *FeishuServer) Stop() {
	s.client.Stop()
}

func (s *FeishuServer) handleMessage(msg *feishu.Message) {
	if !s.seen.firstSeen(msg.MsgID) {
		s.logger.Debug().Str("msg_id", msg.MsgID).Msg("duplicate message ignored")
		return
	}

	s.logger.Debug().
		Str("chat_id", msg.ChatID).
		Str("chat_type", msg.ChatType).
		Str("text", truncate(msg.Content, 50)).
		Msg("received")

	ctx := s.ctx
	s.queue.Enqueue(msg.ChatID, func() {
		if err := s.handler.HandleText(ctx, msg.ChatID, msg.Content); err != nil {
			s.logger.Error().Err(err).Str("chat_id", msg.ChatID).Msg("handle message failed")
		}
	})
}
