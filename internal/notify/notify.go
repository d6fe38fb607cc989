// Package notify sends customer-facing SMS notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// Notifier sends a text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, to, message string) error
}

// Noop is a Notifier that does nothing, used when SMS is not configured.
type Noop struct{}

// Send discards the message.
func (Noop) Send(context.Context, string, string) error { return nil }

// Config contains Twilio API credentials.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
}

// TwilioNotifier sends SMS through the Twilio Messages REST API.
type TwilioNotifier struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTwilioNotifier creates a Twilio-backed notifier.
func NewTwilioNotifier(cfg Config, logger *slog.Logger) *TwilioNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}

	return &TwilioNotifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With("component", "notify.twilio"),
	}
}

// Send posts a message to the Twilio Messages endpoint.
func (n *TwilioNotifier) Send(ctx context.Context, to, message string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(n.cfg.BaseURL, "/"), n.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", n.cfg.FromNumber)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return types.WrapError(types.NOTIFY_SEND_FAILED, "failed to build sms request", err)
	}
	req.SetBasicAuth(n.cfg.AccountSID, n.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return types.WrapError(types.NOTIFY_SEND_FAILED, "sms request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.NewError(types.NOTIFY_SEND_FAILED,
			fmt.Sprintf("twilio returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	n.logger.Info("sms sent", "to", to)
	return nil
}
