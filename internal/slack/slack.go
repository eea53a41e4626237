// Package slack posts operator notices to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/notify"
)

// Client sends Slack notifications via an incoming webhook.
type Client struct {
	webhookURL string
	http       *http.Client
}

var _ notify.Notifier = (*Client)(nil)

func New(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

type block struct {
	Type     string `json:"type"`
	Text     *text  `json:"text,omitempty"`
	Elements []text `json:"elements,omitempty"`
}

type text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type payload struct {
	Blocks []block `json:"blocks"`
}

func emoji(k notify.Kind) string {
	switch k {
	case notify.Success:
		return ":white_check_mark:"
	case notify.Error:
		return ":warning:"
	default:
		return ":bell:"
	}
}

func buildPayload(n notify.Notice) payload {
	p := payload{
		Blocks: []block{
			{
				Type: "section",
				Text: &text{Type: "mrkdwn", Text: fmt.Sprintf("%s *%s*", emoji(n.Kind), n.Message)},
			},
		},
	}
	if n.Detail != "" {
		p.Blocks = append(p.Blocks, block{
			Type:     "context",
			Elements: []text{{Type: "mrkdwn", Text: n.Detail}},
		})
	}
	return p
}

// Notify posts n to the webhook. An unset webhook URL disables delivery.
func (c *Client) Notify(ctx context.Context, n notify.Notice) error {
	if c.webhookURL == "" {
		slog.Debug("slack: webhook not configured", "message", n.Message)
		return nil
	}
	return c.postMessage(ctx, buildPayload(n))
}

func (c *Client) postMessage(ctx context.Context, p payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send slack message: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	return nil
}
