// Package paystack is a minimal client for the Paystack transaction API.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"donations/internal/domain"
	"donations/internal/infra"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.paystack.co"

	initializePath = "/transaction/initialize"
	verifyPath     = "/transaction/verify/"
)

var (
	// ErrMissingSecretKey indicates that the client was configured without credentials.
	ErrMissingSecretKey = errors.New("paystack: secret key is required")
	// ErrInvalidResponse is returned for 2xx answers without a usable checkout.
	ErrInvalidResponse = errors.New("paystack: invalid response")
)

// APIError is a non-2xx response from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack: status %d: %s", e.StatusCode, e.Message)
}

// Options configures the Paystack client.
type Options struct {
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Client performs HTTP calls against the Paystack API.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *infra.Logger
}

// Metadata is attached to the transaction and echoed back in webhooks.
type Metadata struct {
	CustomFields domain.CustomFields `json:"custom_fields"`
	Name         string              `json:"name,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	Project      string              `json:"project,omitempty"`
	Organization string              `json:"organization,omitempty"`
}

// InitializeRequest creates a transaction. Amount is in minor units.
type InitializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    Metadata `json:"metadata"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Reference        string `json:"reference"`
		AccessCode       string `json:"access_code"`
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Verification is the gateway's current view of one transaction.
type Verification struct {
	Message     string
	Transaction domain.WebhookEventData
}

type errorResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	secret := strings.TrimSpace(opts.SecretKey)
	if secret == "" {
		return nil, ErrMissingSecretKey
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		l := infra.Logger(zerolog.New(io.Discard))
		logger = &l
	}
	return &Client{
		secretKey:  secret,
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// InitializeTransaction creates a transaction and returns its hosted-checkout handle.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*domain.Checkout, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("paystack: encode request: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, initializePath, body, req.Reference, "initialize transaction")
	if err != nil {
		return nil, err
	}

	var decoded initializeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrInvalidResponse, err)
	}
	if !decoded.Status || decoded.Data == nil || decoded.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, orDefault(decoded.Message, "Invalid response"))
	}
	reference := decoded.Data.Reference
	if reference == "" {
		reference = req.Reference
	}
	return &domain.Checkout{
		Reference:        reference,
		AccessCode:       decoded.Data.AccessCode,
		AuthorizationURL: decoded.Data.AuthorizationURL,
	}, nil
}

// VerifyTransaction fetches the status of the transaction identified by reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Verification, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrInvalidResponse)
	}
	raw, err := c.do(ctx, http.MethodGet, verifyPath+url.PathEscape(reference), nil, reference, "verify transaction")
	if err != nil {
		return nil, err
	}

	var decoded verifyResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrInvalidResponse, err)
	}
	if !decoded.Status {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, orDefault(decoded.Message, "Verification failed"))
	}
	txn := domain.DecodeEventData(decoded.Data)
	if txn.Reference == "" {
		txn.Reference = reference
	}
	return &Verification{Message: decoded.Message, Transaction: txn}, nil
}

// do sends one authenticated request and returns the body of a 2xx answer.
// Other statuses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body []byte, reference, op string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload io.Reader
	if body != nil {
		payload = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("paystack: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("paystack: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("paystack: read response: %w", err)
	}
	c.logger.Debug().
		Str("reference", reference).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("paystack: " + op)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    orDefault(strings.TrimSpace(apiErr.Message), http.StatusText(resp.StatusCode)),
		}
	}
	return raw, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
