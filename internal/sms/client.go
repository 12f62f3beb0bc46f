package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/scantrack/attendance-api/internal/config"
	"github.com/scantrack/attendance-api/internal/models"
)

// Philippine mobile numbers in international form, 639 + 9 digits.
var mobilePattern = regexp.MustCompile(`^639\d{9}$`)

// providerRequest is the JSON body sent to the SMS gateway.
type providerRequest struct {
	Recipient string `json:"recipient"`
	SenderID  string `json:"sender_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

// providerResponse is the JSON envelope the gateway answers with.
type providerResponse struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// SendResult is the terminal outcome of one Send call, after any retries.
type SendResult struct {
	Success          bool
	Status           models.SMSStatus
	MessageID        string
	ProviderResponse map[string]interface{}
	Error            string
	Attempts         int
}

// Client delivers SMS messages through the provider's HTTP API. It performs
// no side effects beyond the network call; audit logging belongs to the
// caller. Mock mode and the disabled flag short-circuit before any I/O.
type Client struct {
	cfg        config.SMSConfig
	httpClient *http.Client
	logger     zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient constructs a delivery client from configuration.
func NewClient(cfg config.SMSConfig, logger zerolog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "sms_client").Logger(),
		sleep:      sleepCtx,
	}
}

// Send attempts delivery to one recipient. Validation failures, the disabled
// flag, and mock mode all return without touching the network.
func (c *Client) Send(ctx context.Context, mobileNumber, message string) SendResult {
	if !mobilePattern.MatchString(mobileNumber) {
		return SendResult{
			Status: models.SMSStatusFailed,
			Error:  "invalid mobile number format, expected 639XXXXXXXXX",
		}
	}

	if strings.TrimSpace(message) == "" {
		return SendResult{
			Status: models.SMSStatusFailed,
			Error:  "message content is empty",
		}
	}

	if !c.cfg.Enabled {
		c.logger.Debug().Msg("sms disabled, skipping send")
		return SendResult{
			Status: models.SMSStatusFailed,
			Error:  "sms service is disabled",
		}
	}

	if c.cfg.MockMode {
		return c.mockSend(mobileNumber, message)
	}

	var lastErr string
	attempts := 0

	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Info().Int("attempt", attempt).Str("recipient", mobileNumber).Msg("retrying sms send")
			if err := c.sleep(ctx, c.cfg.RetryDelay); err != nil {
				lastErr = err.Error()
				break
			}
		}

		attempts++
		result, err := c.post(ctx, mobileNumber, message)
		if err != nil {
			lastErr = err.Error()
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("sms send attempt failed")
			continue
		}

		if result.Success {
			result.Attempts = attempts
			return result
		}
		lastErr = result.Error
	}

	c.logger.Error().Str("recipient", mobileNumber).Int("attempts", attempts).Str("error", lastErr).
		Msg("sms delivery failed after all attempts")

	return SendResult{
		Status:   models.SMSStatusFailed,
		Error:    lastErr,
		Attempts: attempts,
	}
}

func (c *Client) post(ctx context.Context, mobileNumber, message string) (SendResult, error) {
	payload, err := json.Marshal(providerRequest{
		Recipient: mobileNumber,
		SenderID:  c.cfg.SenderID,
		Type:      "plain",
		Message:   message,
	})
	if err != nil {
		return SendResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return SendResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("sms provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return SendResult{}, fmt.Errorf("read sms provider response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return SendResult{}, fmt.Errorf("sms provider returned %d", resp.StatusCode)
	}

	var parsed providerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return SendResult{}, fmt.Errorf("decode sms provider response: %w", err)
	}

	raw := map[string]interface{}{}
	_ = json.Unmarshal(body, &raw)

	if parsed.Status != "success" {
		errMsg := parsed.Message
		if errMsg == "" {
			errMsg = fmt.Sprintf("provider returned status %q", parsed.Status)
		}
		return SendResult{
			Status:           models.SMSStatusFailed,
			ProviderResponse: raw,
			Error:            errMsg,
		}, nil
	}

	return SendResult{
		Success:          true,
		Status:           models.SMSStatusSent,
		MessageID:        extractMessageID(parsed.Data),
		ProviderResponse: raw,
	}, nil
}

func (c *Client) mockSend(mobileNumber, message string) SendResult {
	c.logger.Info().
		Str("recipient", mobileNumber).
		Str("sender_id", c.cfg.SenderID).
		Str("message", message).
		Msg("mock mode, sms not actually sent")

	return SendResult{
		Success:   true,
		Status:    models.SMSStatusMock,
		MessageID: fmt.Sprintf("mock_%d", time.Now().UnixNano()),
		ProviderResponse: map[string]interface{}{
			"status":  "mock",
			"message": "mock mode - sms not actually sent",
		},
	}
}

// extractMessageID pulls a provider message id out of the loosely typed data
// field; gateways answer with different shapes.
func extractMessageID(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		return asString
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err != nil {
		return ""
	}
	for _, key := range []string{"uid", "message_id", "id"} {
		if value, ok := asMap[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
