// Package telegram is a minimal Bot API client: message sends for the
// notification dispatcher and long-poll updates for the command loop.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dromero/barberbot/internal/config"
	"github.com/dromero/barberbot/pkg/logger"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
}

func NewClient(cfg config.TelegramConfig, token string, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		token:   token,
		httpClient: &http.Client{
			// Long polls hold the connection open for cfg.PollTimeout.
			Timeout: cfg.PollTimeout + 10*time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.SendRatePerSec), cfg.SendBurst),
		logger:  log,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendMessage delivers text to a chat. markdown enables lightweight markup
// in the rendered message.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, markdown bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	body := sendMessageRequest{ChatID: chatID, Text: text}
	if markdown {
		body.ParseMode = "Markdown"
	}

	var msg Message
	if err := c.call(ctx, "sendMessage", body, &msg); err != nil {
		return err
	}

	c.logger.Debug("message sent", "chat_id", chatID, "message_id", msg.MessageID)
	return nil
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

// GetUpdates long-polls for new updates past offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	req := getUpdatesRequest{Offset: offset, Timeout: int(timeout.Seconds())}

	var updates []Update
	if err := c.call(ctx, "getUpdates", req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s rejected: %s", method, apiResp.Description)
	}

	if result != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}
