// Package notify sends advisory donation notifications through the Web3Forms relay.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"donations/internal/infra"
)

// DefaultEndpoint is the Web3Forms submission URL.
const DefaultEndpoint = "https://api.web3forms.com/submit"

// ErrDisabled is returned when no access key is configured.
var ErrDisabled = errors.New("notify: relay access key not configured")

// Notifier delivers one notification. Errors are advisory; callers log and continue.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Options configures the relay client.
type Options struct {
	AccessKey  string
	Endpoint   string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *infra.Logger
}

// Client posts notifications to the relay.
type Client struct {
	accessKey  string
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	logger     *infra.Logger
}

type relayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RelayError reports a non-success answer from the relay.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("notify: relay returned %d: %s", e.StatusCode, e.Message)
}

// NewClient constructs a relay client with defaults for endpoint, timeout and logger.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	logger := opts.Logger
	if logger == nil {
		l := infra.Logger(zerolog.New(io.Discard))
		logger = &l
	}
	return &Client{
		accessKey:  strings.TrimSpace(opts.AccessKey),
		endpoint:   endpoint,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     logger,
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool { return c.accessKey != "" }

// Notify issues exactly one POST to the relay, bounded by the client timeout.
func (c *Client) Notify(ctx context.Context, msg Message) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	payload := msg.payload(c.accessKey)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var decoded relayResponse
	_ = json.Unmarshal(raw, &decoded)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || (decoded.Message != "" && !decoded.Success) {
		message := decoded.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &RelayError{StatusCode: resp.StatusCode, Message: message}
	}
	c.logger.Debug().Str("kind", msg.Kind.String()).Msg("notify: delivered")
	return nil
}

// Send delivers msg and logs a failure. It never returns the error to the
// caller's response path; the bool tells whether the relay accepted it.
func Send(ctx context.Context, n Notifier, logger *infra.Logger, msg Message) bool {
	if n == nil {
		return false
	}
	err := n.Notify(ctx, msg)
	if err == nil {
		return true
	}
	if logger != nil {
		evt := logger.Warn()
		if errors.Is(err, ErrDisabled) {
			evt = logger.Debug()
		}
		evt.Err(err).Str("kind", msg.Kind.String()).Str("reference", msg.Reference).Msg("notification not delivered")
	}
	return false
}

var _ Notifier = (*Client)(nil)
