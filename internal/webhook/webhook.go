// Package webhook posts signed content-change events to an operator
// configured endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/database"
)

const (
	maxResponseBodyBytes = 1024
	dispatchTimeout      = 30 * time.Second
)

// Event names.
const (
	LectureCreated = "lecture.created"
	LectureDeleted = "lecture.deleted"
	NoteCreated    = "note.created"
	NoteDeleted    = "note.deleted"
)

type Event struct {
	Name      string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Delivery is one attempt to post an event.
type Delivery struct {
	Event        string
	Payload      []byte
	StatusCode   *int
	ResponseBody string
	Attempt      int
}

// DeliveryLog records delivery attempts.
type DeliveryLog interface {
	LogDelivery(ctx context.Context, d Delivery)
}

// Client dispatches events with retries.
type Client struct {
	url         string
	secret      string
	http        *http.Client
	retryDelays []time.Duration
	log         DeliveryLog
}

func New(url, secret string) *Client {
	return &Client{
		url:         url,
		secret:      secret,
		http:        &http.Client{Timeout: 10 * time.Second},
		retryDelays: []time.Duration{1 * time.Second, 4 * time.Second},
		log:         SlogLog{},
	}
}

// SetDeliveryLog replaces the default slog delivery log.
func (c *Client) SetDeliveryLog(l DeliveryLog) {
	c.log = l
}

// SignPayload computes HMAC-SHA256 of the payload using the secret.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Publish dispatches in the background so the caller's request is not held
// up by the receiving endpoint.
func (c *Client) Publish(_ context.Context, event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := c.Dispatch(ctx, event); err != nil {
			slog.Error("webhook: dispatch failed", "event", event.Name, "error", err)
		}
	}()
}

// Dispatch posts event with up to 1+len(retryDelays) attempts.
func (c *Client) Dispatch(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	signature := SignPayload(c.secret, body)
	maxAttempts := 1 + len(c.retryDelays)
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		statusCode, respBody, err := c.doPost(ctx, body, signature)
		c.log.LogDelivery(ctx, Delivery{
			Event:        event.Name,
			Payload:      body,
			StatusCode:   statusCode,
			ResponseBody: respBody,
			Attempt:      attempt,
		})

		if err == nil && statusCode != nil && *statusCode >= 200 && *statusCode < 300 {
			return nil
		}

		if err != nil {
			lastErr = err
		} else if statusCode != nil {
			lastErr = fmt.Errorf("webhook returned status %d", *statusCode)
		}

		if attempt < maxAttempts {
			select {
			case <-time.After(c.retryDelays[attempt-1]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

func (c *Client) doPost(ctx context.Context, body []byte, signature string) (*int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err.Error(), err
	}
	defer func() { _ = resp.Body.Close() }()

	respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, int64(maxResponseBodyBytes)+1))
	respBody := string(respBytes)
	if len(respBody) > maxResponseBodyBytes {
		respBody = respBody[:maxResponseBodyBytes]
	}

	return &resp.StatusCode, respBody, nil
}

// SlogLog writes delivery attempts to the structured log.
type SlogLog struct{}

func (SlogLog) LogDelivery(ctx context.Context, d Delivery) {
	status := 0
	if d.StatusCode != nil {
		status = *d.StatusCode
	}
	slog.InfoContext(ctx, "webhook: delivery", "event", d.Event, "attempt", d.Attempt, "status", status)
}

// PostgresLog keeps delivery attempts in webhook_deliveries.
type PostgresLog struct {
	DB database.DBTX
}

func (p PostgresLog) LogDelivery(ctx context.Context, d Delivery) {
	if _, err := p.DB.Exec(ctx,
		`INSERT INTO webhook_deliveries (event, payload, status_code, response_body, attempt)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.Event, d.Payload, d.StatusCode, d.ResponseBody, d.Attempt,
	); err != nil {
		slog.Error("webhook: failed to log delivery", "event", d.Event, "error", err)
	}
}
