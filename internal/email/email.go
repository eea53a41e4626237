// Package email delivers operator notices through Listmonk's transactional
// API.
package email

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

type Config struct {
	BaseURL    string
	Username   string
	Password   string
	TemplateID int
	// InboxEmail receives contact inquiries and admin alerts.
	InboxEmail string
}

type Client struct {
	config Config
	http   *http.Client
}

var _ notify.Notifier = (*Client)(nil)

func New(cfg Config) *Client {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type txRequest struct {
	SubscriberEmail string            `json:"subscriber_email"`
	TemplateID      int               `json:"template_id"`
	Data            map[string]string `json:"data"`
	ContentType     string            `json:"content_type"`
}

// Notify mails n to the configured inbox. Without a Listmonk URL or inbox
// the notice is only logged.
func (c *Client) Notify(ctx context.Context, n notify.Notice) error {
	if c.config.BaseURL == "" || c.config.InboxEmail == "" {
		slog.Info("email: not configured, notice not mailed", "message", n.Message)
		return nil
	}
	if c.config.TemplateID == 0 {
		slog.Warn("email: template id is 0, listmonk will reject the request", "message", n.Message)
	}

	body := txRequest{
		SubscriberEmail: c.config.InboxEmail,
		TemplateID:      c.config.TemplateID,
		Data: map[string]string{
			"kind":    string(n.Kind),
			"message": n.Message,
			"detail":  n.Detail,
		},
		ContentType: "html",
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/tx", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.config.Username, c.config.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("listmonk returned status %d", resp.StatusCode)
	}

	return nil
}
