// Package notify sends deploy notifications to a WeCom (WeChat Work) group
// robot webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single webhook request
const DefaultTimeout = 10 * time.Second

// ErrWebhook is returned when the webhook answers with a non-2xx status
// or a non-zero errcode
var ErrWebhook = errors.New("webhook rejected message")

type textMessage struct {
	MsgType string      `json:"msgtype"`
	Text    textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

type webhookResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// WeCom posts text messages to a group robot webhook
type WeCom struct {
	url    string
	client *http.Client
}

// NewWeCom creates a notifier for the webhook url. A nil client uses one
// with DefaultTimeout.
func NewWeCom(url string, client *http.Client) *WeCom {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &WeCom{url: url, client: client}
}

// Send posts message as a text payload
func (w *WeCom) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(textMessage{
		MsgType: "text",
		Text:    textContent{Content: message},
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d: %s", ErrWebhook, resp.StatusCode, bytes.TrimSpace(respBody))
	}

	// WeCom reports errors in the body with HTTP 200
	var wr webhookResponse
	if err := json.Unmarshal(respBody, &wr); err == nil && wr.ErrCode != 0 {
		return fmt.Errorf("%w: errcode %d: %s", ErrWebhook, wr.ErrCode, wr.ErrMsg)
	}

	return nil
}

// DeployMessage formats the notification sent after a successful deploy
func DeployMessage(version, alias, host, path string) string {
	return fmt.Sprintf("✅ A2C-SMCP docs deployed\nVersion: %s\nAlias: %s\nServer: %s\nPath: %s",
		version, alias, host, path)
}
