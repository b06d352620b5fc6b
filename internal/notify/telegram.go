package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"vpswatch/internal/config"
	"vpswatch/internal/model"
	"vpswatch/internal/report"
)

const defaultTelegramEndpoint = "https://api.telegram.org"

// TelegramNotifier delivers notifications through the Telegram Bot API.
type TelegramNotifier struct {
	chatIDs    []int64            // Destination chats
	timeout    time.Duration      // Request timeout
	retry      config.RetryConfig // Retry configuration
	httpClient *resty.Client      // HTTP client
	logger     zerolog.Logger     // Logger
}

// NewTelegramNotifier creates a Telegram Bot API notifier.
func NewTelegramNotifier(cfg config.TelegramConfig, retry config.RetryConfig, logger zerolog.Logger) *TelegramNotifier {
	// Set default timeout if not specified
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = defaultTelegramEndpoint
	}

	// Create resty client
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/") + "/bot" + cfg.Token).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8). // Max wait time for exponential backoff
		AddRetryCondition(retryCondition)

	return &TelegramNotifier{
		chatIDs:    cfg.ChatIDs,
		timeout:    timeout,
		retry:      retry,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "telegram-notifier").Logger(),
	}
}

// retryCondition determines whether a request should be retried.
// Only retry on timeout, 5xx errors, or connection failures.
// Do not retry on 4xx errors.
func retryCondition(resp *resty.Response, err error) bool {
	// Retry on error (timeout, connection failure, etc.)
	if err != nil {
		return true
	}

	// Retry on 5xx server errors
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}

	// Do not retry on 4xx client errors
	return false
}

// Name identifies the channel in logs and error messages.
func (n *TelegramNotifier) Name() string {
	return "telegram"
}

// PushAlert delivers the alert to every configured chat.
func (n *TelegramNotifier) PushAlert(ctx context.Context, alert model.Alert) error {
	return n.broadcast(ctx, report.RenderAlert(alert))
}

// PushReport delivers the health report to every configured chat.
func (n *TelegramNotifier) PushReport(ctx context.Context, rep model.HealthReport) error {
	return n.broadcast(ctx, report.RenderReport(rep))
}

// broadcast sends the message to every chat. A failing chat does not stop
// delivery to the remaining ones.
func (n *TelegramNotifier) broadcast(ctx context.Context, text string) error {
	var errs []error
	for _, chatID := range n.chatIDs {
		if err := n.sendMessage(ctx, chatID, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// telegramMessage is the request body for the sendMessage method.
type telegramMessage struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// telegramResponse is the Bot API response envelope.
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (n *TelegramNotifier) sendMessage(ctx context.Context, chatID int64, text string) error {
	n.logger.Debug().Int64("chat_id", chatID).Msg("sending telegram message")

	var result telegramResponse

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetBody(telegramMessage{
			ChatID:    chatID,
			Text:      text,
			ParseMode: "Markdown",
		}).
		Post("/sendMessage")

	if err != nil {
		n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send telegram message")
		return fmt.Errorf("failed to send telegram message to chat %d: %w", chatID, err)
	}

	// Check HTTP status code
	if resp.StatusCode() != http.StatusOK {
		n.logger.Error().
			Int("status_code", resp.StatusCode()).
			Int64("chat_id", chatID).
			Str("body", string(resp.Body())).
			Msg("telegram API returned non-200 status")
		return fmt.Errorf("telegram API returned status %d for chat %d: %s",
			resp.StatusCode(), chatID, string(resp.Body()))
	}

	// Check Bot API error field
	if !result.OK {
		n.logger.Error().
			Int64("chat_id", chatID).
			Str("api_error", result.Description).
			Msg("telegram API returned error")
		return fmt.Errorf("telegram API error for chat %d: %s", chatID, result.Description)
	}

	n.logger.Debug().Int64("chat_id", chatID).Msg("telegram message sent")
	return nil
}
