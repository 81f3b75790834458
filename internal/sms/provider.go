package sms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Provider delivers one SMS. Implementations report transport failures as
// errors; the caller owns logging and accounting.
type Provider interface {
	Name() string
	Send(ctx context.Context, phone, message string) error
}

// TwilioProvider posts to the Twilio Messages API. The client carries no
// timeout: a hanging provider call blocks only the one request that
// triggered it, and delivery completion never waits on retries.
type TwilioProvider struct {
	accountSID string
	authToken  string
	from       string
	client     *http.Client
}

// NewTwilioProvider constructs a provider from account credentials.
func NewTwilioProvider(accountSID, authToken, from string) *TwilioProvider {
	return &TwilioProvider{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		client:     &http.Client{},
	}
}

// Name implements Provider.
func (p *TwilioProvider) Name() string { return "twilio" }

// Send implements Provider.
func (p *TwilioProvider) Send(ctx context.Context, phone, message string) error {
	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", p.accountSID)
	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", p.from)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build twilio request: %w", err)
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: twilio request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms: twilio responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// NoopProvider is the fallback when no credentials are configured. It logs
// the message and reports success so environments without a live gateway
// still exercise the full delivery flow.
type NoopProvider struct {
	logger *slog.Logger
}

// NewNoopProvider constructs the mock provider.
func NewNoopProvider(logger *slog.Logger) *NoopProvider {
	return &NoopProvider{logger: logger}
}

// Name implements Provider.
func (p *NoopProvider) Name() string { return "mock" }

// Send implements Provider.
func (p *NoopProvider) Send(ctx context.Context, phone, message string) error {
	p.logger.Info("mock sms delivered", slog.String("phone", phone), slog.Int("length", len(message)))
	return nil
}

var (
	_ Provider = (*TwilioProvider)(nil)
	_ Provider = (*NoopProvider)(nil)
)
