package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/config"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"

	"github.com/rs/zerolog"
)

// Client talks to the external payment provider's session endpoint. It is
// the only component that makes outbound provider calls for session
// creation.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      RetryPolicy
	logger     *zerolog.Logger
}

func NewClient(cfg config.PaymentsConfig, logger *zerolog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(models.DefaultProviderTimeout) * time.Second
	}
	return &Client{
		baseURL: cfg.ProviderURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: RetryPolicy{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
		logger: logger,
	}
}

type sessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// CreateSession asks the provider for a hosted checkout session. Transient
// failures (network errors, 5xx) are retried with backoff under the same
// idempotency key; client errors are not. All failures surface as
// ErrGateway.
func (c *Client) CreateSession(ctx context.Context, req models.SessionRequest) (*models.CheckoutSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal session request: %v", ErrGateway, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxRetries+1; attempt++ {
		session, retryable, err := c.doCreateSession(ctx, body, req.IdempotencyKey)
		if err == nil {
			return session, nil
		}
		lastErr = err
		if !retryable || attempt > c.retry.MaxRetries {
			break
		}

		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("provider session call failed, retrying")
		select {
		case <-time.After(c.retry.NextDelay(attempt)):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrGateway, ctx.Err())
		}
	}
	return nil, lastErr
}

func (c *Client) doCreateSession(ctx context.Context, body []byte, idempotencyKey string) (*models.CheckoutSession, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("%w: provider returned %d", ErrGateway, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, false, fmt.Errorf("%w: provider returned %d", ErrGateway, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, fmt.Errorf("%w: read response: %v", ErrGateway, err)
	}

	var parsed sessionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, false, fmt.Errorf("%w: parse response: %v", ErrGateway, err)
	}
	if parsed.SessionID == "" || parsed.RedirectURL == "" {
		return nil, false, fmt.Errorf("%w: provider response missing session fields", ErrGateway)
	}

	return &models.CheckoutSession{
		SessionID:   parsed.SessionID,
		RedirectURL: parsed.RedirectURL,
	}, false, nil
}
