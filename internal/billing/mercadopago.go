package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultBaseURL    = "https://api.mercadopago.com"
	DefaultTimeout    = 30 * time.Second
	MaxRetries        = 3
	InitialBackoff    = 1 * time.Second
	MaxBackoff        = 15 * time.Second
	BackoffMultiplier = 2.0
)

// Client handles communication with the Mercado Pago API
type Client struct {
	accessToken string
	httpClient  *http.Client
	baseURL     string
}

// NewClient creates a new Mercado Pago client
func NewClient(accessToken string) *Client {
	return &Client{
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: DefaultBaseURL,
	}
}

// NewClientWithOptions creates a client with custom options
func NewClientWithOptions(accessToken, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// Item is a line item in a checkout preference
type Item struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

// BackURLs are the redirect targets after checkout
type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// PreferenceRequest creates a checkout preference
type PreferenceRequest struct {
	Items             []Item            `json:"items"`
	BackURLs          BackURLs          `json:"back_urls"`
	AutoReturn        string            `json:"auto_return,omitempty"`
	NotificationURL   string            `json:"notification_url,omitempty"`
	ExternalReference string            `json:"external_reference,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Preference is the created checkout preference
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// Payment is a payment looked up from a webhook notification
type Payment struct {
	ID                int64             `json:"id"`
	Status            string            `json:"status"`
	StatusDetail      string            `json:"status_detail"`
	ExternalReference string            `json:"external_reference"`
	TransactionAmount float64           `json:"transaction_amount"`
	Metadata          map[string]string `json:"metadata"`
}

// Payment status values returned by the API
const (
	PaymentStatusApproved = "approved"
	PaymentStatusPending  = "pending"
	PaymentStatusRejected = "rejected"
	PaymentStatusRefunded = "refunded"
)

// APIError represents an error response from the Mercado Pago API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago API error (status %d): %s", e.StatusCode, e.Message)
}

// CreatePreference creates a checkout preference with retry logic
func (c *Client) CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error) {
	var pref Preference
	err := c.doWithRetry(ctx, http.MethodPost, "/checkout/preferences", req, &pref)
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// GetPayment fetches a payment by ID. Used to verify webhook notifications
// against the API instead of trusting the notification payload.
func (c *Client) GetPayment(ctx context.Context, paymentID int64) (*Payment, error) {
	var payment Payment
	path := fmt.Sprintf("/v1/payments/%d", paymentID)
	err := c.doWithRetry(ctx, http.MethodGet, path, nil, &payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, body, out interface{}) error {
	var lastErr error
	backoff := InitialBackoff

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * BackoffMultiplier)
			if backoff > MaxBackoff {
				backoff = MaxBackoff
			}
		}

		err := c.doRequest(ctx, method, path, body, out)
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("failed after %d retries: %w", MaxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// isRetryable reports whether the request should be retried. Rate limit and
// server errors are retryable, client errors are not.
func isRetryable(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		// Network level errors are retryable
		return true
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
}
