package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/pkg/logger"
)

// Message represents a received Feishu text message
type Message struct {
	ChatID     string
	MsgID      string
	ChatType   string // p2p (private), group
	SenderID   string
	Content    string
	CreateTime int64 // milliseconds Unix timestamp from Feishu
}

// MessageHandler is the callback for received messages. It is called in
// delivery order and must not block.
type MessageHandler func(msg *Message)

// Client is the Feishu API client
type Client struct {
	appID     string
	appSecret string
	larkCli   *lark.Client
	wsCli     *larkws.Client
	onMessage MessageHandler
	cancel    context.CancelFunc
	logger    zerolog.Logger
}

// NewClient creates a new Feishu client
func NewClient(appID, appSecret string) *Client {
	return &Client{
		appID:     appID,
		appSecret: appSecret,
		larkCli:   lark.NewClient(appID, appSecret),
		logger:    logger.Component("feishu"),
	}
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.onMessage = handler
}

// Start connects to Feishu via WebSocket and blocks until ctx is done
func (c *Client) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	// The handler runs on the SDK delivery path, in delivery order, and must
	// return quickly so the SDK can ACK; Feishu redelivers on timeout.
	eventHandler := dispatcher.NewEventDispatcher("", "").
		OnP2MessageReceiveV1(func(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
			c.handleMessage(event)
			return nil
		})

	c.wsCli = larkws.NewClient(c.appID, c.appSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	c.logger.Info().Msg("starting websocket connection")
	return c.wsCli.Start(ctx)
}

// Stop disconnects from Feishu
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Client) handleMessage(event *larkim.P2MessageReceiveV1) {
	if event.Event == nil || event.Event.Message == nil {
		return
	}
	rawMsg := event.Event.Message

	// Ignore the bot's own messages
	if event.Event.Sender != nil && event.Event.Sender.SenderType != nil && *event.Event.Sender.SenderType == "app" {
		return
	}
	if rawMsg.ChatId == nil || rawMsg.MessageId == nil || rawMsg.MessageType == nil || rawMsg.Content == nil {
		return
	}
	if *rawMsg.MessageType != larkim.MsgTypeText {
		c.logger.Debug().Str("msg_type", *rawMsg.MessageType).Msg("unsupported message type")
		return
	}

	msg := &Message{
		ChatID:  *rawMsg.ChatId,
		MsgID:   *rawMsg.MessageId,
		Content: parseTextContent(*rawMsg.Content),
	}
	if rawMsg.ChatType != nil {
		msg.ChatType = *rawMsg.ChatType
	}
	if rawMsg.CreateTime != nil {
		if ts, err := strconv.ParseInt(*rawMsg.CreateTime, 10, 64); err == nil {
			msg.CreateTime = ts
		}
	}
	if s := event.Event.Sender; s != nil && s.SenderId != nil && s.SenderId.OpenId != nil {
		msg.SenderID = *s.SenderId.OpenId
	}

	c.logger.Debug().Str("chat_id", msg.ChatID).Str("msg_id", msg.MsgID).Msg("message received")

	if c.onMessage != nil {
		c.onMessage(msg)
	}
}

// parseTextContent extracts the text of a text message and drops mention placeholders (@_user_1)
func parseTextContent(content string) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}
	fields := strings.Fields(parsed.Text)
	kept := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "@_user_") || f == "@_all" {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// SendText sends a text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: code=%d msg=%s", resp.Code, resp.Msg)
	}

	c.logger.Debug().Str("chat_id", chatID).Msg("message sent")
	return nil
}
