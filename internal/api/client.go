package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
	"github.com/moodcheck/survey-bot/internal/service"
)

// Client calls a running server's trigger endpoint. Broadcasts must run inside
// the serving process, which owns the in-progress sessions.
type Client struct {
	client *resty.Client
}

// NewClient creates a client for baseURL (e.g. http://localhost:8080)
func NewClient(baseURL, triggerSecret string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)
	if triggerSecret != "" {
		c.SetHeader(TriggerSecretHeader, triggerSecret)
	}
	return &Client{client: c}
}

// Trigger fires kind now and returns the server's report
func (c *Client) Trigger(ctx context.Context, kind domain.SurveyKind) (*service.BroadcastReport, error) {
	var report service.BroadcastReport
	var apiErr ErrorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&report).
		SetError(&apiErr).
		Post("/trigger/" + url.PathEscape(string(kind)))
	if err != nil {
		return nil, fmt.Errorf("trigger %s: %w", kind, err)
	}
	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		return nil, fmt.Errorf("trigger %s: status %d: %s", kind, resp.StatusCode(), msg)
	}
	return &report, nil
}

// BaseURL turns a listen address into a local URL: ":8080" -> "http://localhost:8080"
func BaseURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
