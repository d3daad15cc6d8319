// Package telegram provides Telegram notification services.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"time"

	"github.com/fgeck/unifi-block-config/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for Telegram notification operations.
type Service interface {
	SendNotification(ctx context.Context, cfg models.TelegramConfig, msg models.TelegramMessage) (*models.TelegramResult, error)
}

// HTTPClient allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Impl implements the Telegram Service interface.
type Impl struct {
	httpClient HTTPClient
	logger     zerolog.Logger
	baseURL    string
}

// New creates a new Telegram service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:  logger,
		baseURL: "https://api.telegram.org",
	}
}

// NewWithClient creates a new Telegram service with a custom HTTP client (for testing).
func NewWithClient(logger zerolog.Logger, httpClient HTTPClient, baseURL string) *Impl {
	return &Impl{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// sendMessageRequest is the request body for Telegram sendMessage API.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendNotification sends a run summary via Telegram.
func (s *Impl) SendNotification(ctx context.Context, cfg models.TelegramConfig, msg models.TelegramMessage) (*models.TelegramResult, error) {
	result := &models.TelegramResult{}

	s.logger.Info().
		Str("chat_id", cfg.ChatID).
		Bool("success", msg.Success).
		Msg("sending Telegram notification")

	reqBody := sendMessageRequest{
		ChatID:    cfg.ChatID,
		Text:      s.formatMessage(msg),
		ParseMode: "HTML",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		result.Error = fmt.Errorf("failed to marshal request: %w", err)
		return result, nil
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, cfg.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		result.Error = fmt.Errorf("failed to create request: %w", err)
		return result, nil
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// The request URL embeds the bot token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = s.baseURL + "/bot<redacted>/sendMessage"
		}
		result.Error = fmt.Errorf("failed to send request: %w", err)
		return result, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Errorf("telegram API returned status %d", resp.StatusCode)
		return result, nil
	}

	result.MessageSent = true
	s.logger.Info().Msg("Telegram notification sent successfully")

	return result, nil
}

func (s *Impl) formatMessage(msg models.TelegramMessage) string {
	var b bytes.Buffer

	action := "Stations " + pastTense(msg.Command)
	if msg.Success {
		b.WriteString(fmt.Sprintf("✅ <b>%s</b>\n\n", action))
	} else {
		b.WriteString(fmt.Sprintf("❌ <b>%s failed</b>\n\n", html.EscapeString(msg.Command.String())))
	}

	b.WriteString(fmt.Sprintf("🛰 <b>Controller:</b> %s\n", html.EscapeString(msg.Controller)))
	b.WriteString(fmt.Sprintf("🏷 <b>Site:</b> %s\n", html.EscapeString(msg.Site)))
	b.WriteString(fmt.Sprintf("⏰ <b>Started:</b> %s\n", msg.StartTime.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("⏱ <b>Duration:</b> %s\n", msg.Duration.Round(time.Millisecond)))

	if len(msg.Stations) == 0 {
		b.WriteString("\n<i>No stations configured.</i>\n")
	} else {
		b.WriteString(fmt.Sprintf("\n<b>📱 Stations (%d):</b>\n", len(msg.Stations)))
		for _, mac := range msg.Stations {
			b.WriteString(fmt.Sprintf("  • <code>%s</code>\n", html.EscapeString(mac)))
		}
	}

	if msg.Success && msg.StationsWoken > 0 {
		b.WriteString(fmt.Sprintf("\n⚡ Woken: %d\n", msg.StationsWoken))
	}

	if !msg.Success {
		b.WriteString("\n<b>⚠️ Error Details:</b>\n")
		b.WriteString(fmt.Sprintf("  • Failed step: %s\n", html.EscapeString(msg.FailedStep)))
		b.WriteString(fmt.Sprintf("  • Error: <code>%s</code>\n", html.EscapeString(msg.ErrorMessage)))
	}

	return b.String()
}

func pastTense(cmd models.StationCommand) string {
	switch cmd {
	case models.BlockStation:
		return "blocked"
	case models.UnblockStation:
		return "unblocked"
	default:
		return cmd.String()
	}
}
