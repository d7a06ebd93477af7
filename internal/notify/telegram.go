// Package notify delivers the finished report to external sinks. Delivery is
// best-effort: a failed or unconfigured sink never fails the pipeline.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/phuslu/log"
)

// maxMessageLen keeps messages under Telegram's 4096-character cap with room
// to spare.
const maxMessageLen = 4000

// Telegram sends messages through the Bot API.
type Telegram struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	log      log.Logger
}

// NewTelegram creates a Telegram sink. Empty credentials are legal; Send then
// reports false without attempting delivery.
func NewTelegram(botToken, chatID string, logger log.Logger) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      logger,
	}
}

// Configured reports whether both credentials are present.
func (t *Telegram) Configured() bool {
	return t.botToken != "" && t.chatID != ""
}

// Send delivers a message and reports whether it was accepted. Failures are
// logged, never returned.
func (t *Telegram) Send(ctx context.Context, message string) bool {
	if !t.Configured() {
		t.log.Info().Msg("Telegram not configured, skipping notification")
		return false
	}

	if len(message) > maxMessageLen {
		message = message[:maxMessageLen-3] + "..."
	}

	payload, err := json.Marshal(telegramSendRequest{
		ChatID:                t.chatID,
		Text:                  message,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		t.log.Error().Err(err).Msg("could not encode Telegram payload")
		return false
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.log.Error().Err(err).Msg("could not build Telegram request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	t.log.Info().Str("chat_id", t.chatID).Msg("sending Telegram notification")
	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Error().Err(err).Msg("failed to send Telegram message")
		return false
	}
	defer resp.Body.Close()

	var result telegramSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.log.Error().Err(err).Msg("could not decode Telegram response")
		return false
	}
	if !result.OK {
		t.log.Warn().Str("description", result.Description).Msg("Telegram API rejected the message")
		return false
	}

	t.log.Info().Msg("Telegram message sent")
	return true
}

// --- Internal Types ---

type telegramSendRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramSendResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}
