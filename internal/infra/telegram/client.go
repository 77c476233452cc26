// Package telegram is a minimal Telegram Bot API client: text messages with
// reply keyboards, long polling and webhook registration.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/moodcheck/survey-bot/internal/pkg/logger"
)

const (
	DefaultAPIURL = "https://api.telegram.org"

	pollTimeout = 30 * time.Second
	pollBackoff = 3 * time.Second
)

// ErrUnauthorized means the bot token was rejected
var ErrUnauthorized = errors.New("telegram: unauthorized")

// Chat is the chat a message belongs to
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// User is a message sender
type User struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username,omitempty"`
}

// Message is an incoming message
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// Update is one entry of getUpdates or a webhook delivery
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// KeyboardButton is a reply keyboard button
type KeyboardButton struct {
	Text string `json:"text"`
}

// ReplyKeyboardMarkup replaces the user's keyboard with fixed answers
type ReplyKeyboardMarkup struct {
	Keyboard        [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
}

// ReplyKeyboardRemove restores the default keyboard
type ReplyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

// SendMessageRequest is the sendMessage payload
type SendMessageRequest struct {
	ChatID      string      `json:"chat_id"`
	Text        string      `json:"text"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

type envelope[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateHandler receives polled updates in order
type UpdateHandler func(ctx context.Context, u Update)

// Client calls the Bot API
type Client struct {
	client *resty.Client
	logger zerolog.Logger
}

// NewClient creates a client for token. apiURL defaults to the public Bot API.
func NewClient(apiURL, token string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/") + "/bot" + token).
		SetHeader("Content-Type", "application/json").
		SetTimeout(pollTimeout + 10*time.Second)

	return &Client{client: c, logger: logger.Component("telegram")}
}

func call[T any](ctx context.Context, c *Client, method string, body interface{}) (T, error) {
	var env envelope[T]
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&env).
		SetError(&env).
		Post("/" + method)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("telegram %s: %w", method, err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return env.Result, ErrUnauthorized
	}
	if !env.OK {
		return env.Result, fmt.Errorf("telegram %s: status %d: %s", method, resp.StatusCode(), env.Description)
	}
	return env.Result, nil
}

// SendMessage sends text to chatID with an optional reply markup
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) error {
	if _, err := call[Message](ctx, c, "sendMessage", req); err != nil {
		return err
	}
	return nil
}

// GetUpdates long-polls for updates after offset
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	body := map[string]interface{}{
		"offset":          offset,
		"timeout":         int(pollTimeout / time.Second),
		"allowed_updates": []string{"message"},
	}
	return call[[]Update](ctx, c, "getUpdates", body)
}

// SetWebhook registers url; Telegram echoes secret in X-Telegram-Bot-Api-Secret-Token
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	body := map[string]interface{}{
		"url":             url,
		"allowed_updates": []string{"message"},
	}
	if secret != "" {
		body["secret_token"] = secret
	}
	_, err := call[bool](ctx, c, "setWebhook", body)
	return err
}

// DeleteWebhook switches the bot back to getUpdates
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := call[bool](ctx, c, "deleteWebhook", map[string]interface{}{})
	return err
}

// Poll delivers updates to handler until ctx is done. Errors are logged and retried.
func (c *Client) Poll(ctx context.Context, handler UpdateHandler) error {
	var offset int64
	c.logger.Info().Msg("long polling started")
	for {
		if ctx.Err() != nil {
			return nil
		}
		updates, err := c.GetUpdates(ctx, offset)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn().Err(err).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollBackoff):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			handler(ctx, u)
		}
	}
}

// Keyboard lays out choices as a one-time reply keyboard, at most perRow buttons per row
func Keyboard(choices []string, perRow int) *ReplyKeyboardMarkup {
	if perRow <= 0 {
		perRow = len(choices)
	}
	kb := &ReplyKeyboardMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	for i := 0; i < len(choices); i += perRow {
		end := i + perRow
		if end > len(choices) {
			end = len(choices)
		}
		row := make([]KeyboardButton, 0, end-i)
		for _, c := range choices[i:end] {
			row = append(row, KeyboardButton{Text: c})
		}
		kb.Keyboard = append(kb.Keyboard, row)
	}
	return kb
}
