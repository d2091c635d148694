package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://www.srfax.com/SRF_SecWebSvc.php"
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	userAgent = "srfax-go"
)

// Request outcomes reported to an Observer.
const (
	OutcomeSuccess   = "success"
	OutcomeRemote    = "remote_error"
	OutcomeTransport = "transport_error"
)

// Doer executes a single HTTP request. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Decoder maps the Result of a successful call onto an operation's schema.
// A returned error marks the response as malformed.
type Decoder func(result json.RawMessage) error

// Observer receives one callback per completed round trip.
type Observer interface {
	ObserveRequest(action, outcome string, duration time.Duration)
}

// Config holds the configuration for creating a new Client.
type Config struct {
	BaseURL        string
	AccessID       string
	AccessPassword string
	HTTPClient     Doer
	Timeout        time.Duration
	Logger         *zap.Logger
	Observer       Observer
}

// Client is the SRFax wire client.
type Client struct {
	baseURL        string
	accessID       string
	accessPassword string
	httpClient     Doer
	timeout        time.Duration
	logger         *zap.Logger
	observer       Observer
}

// New creates a new wire client. Zero-valued Config fields take defaults.
func New(cfg Config) (*Client, error) {
	if cfg.AccessID == "" || cfg.AccessPassword == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		baseURL:        cfg.BaseURL,
		accessID:       cfg.AccessID,
		accessPassword: cfg.AccessPassword,
		httpClient:     cfg.HTTPClient,
		timeout:        cfg.Timeout,
		logger:         cfg.Logger,
		observer:       cfg.Observer,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	return c, nil
}

// BaseURL returns the endpoint requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Do performs one round trip for action. params must not contain the
// credentials; they are added here. On success the envelope's Result is
// passed to decode when decode is non-nil.
func (c *Client) Do(ctx context.Context, action string, params url.Values, decode Decoder) error {
	requestID := uuid.NewString()
	start := time.Now()

	err := c.do(ctx, action, requestID, params, decode)

	outcome := OutcomeSuccess
	var remoteErr *RemoteError
	var transportErr *TransportError
	switch {
	case errors.As(err, &remoteErr):
		outcome = OutcomeRemote
	case errors.As(err, &transportErr):
		outcome = OutcomeTransport
	}

	duration := time.Since(start)
	if c.observer != nil {
		c.observer.ObserveRequest(action, outcome, duration)
	}

	fields := []zap.Field{
		zap.String("action", action),
		zap.String("request_id", requestID),
		zap.Duration("duration", duration),
		zap.String("outcome", outcome),
	}
	if err != nil {
		c.logger.Warn("srfax request failed", append(fields, zap.Error(err))...)
		return err
	}
	c.logger.Debug("srfax request", fields...)
	return nil
}

func (c *Client) do(ctx context.Context, action, requestID string, params url.Values, decode Decoder) error {
	form := url.Values{}
	for k, v := range params {
		form[k] = v
	}
	form.Set("action", action)
	form.Set("access_id", c.accessID)
	form.Set("access_pwd", c.accessPassword)
	form.Set("sResponseFormat", "JSON")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &TransportError{Action: action, RequestID: requestID, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Action: action, RequestID: requestID, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{
			Action:     action,
			RequestID:  requestID,
			StatusCode: resp.StatusCode,
			Timeout:    isTimeout(err),
			Err:        fmt.Errorf("read response: %w", err),
		}
	}

	httpFailed := resp.StatusCode >= http.StatusMultipleChoices
	statusErr := func() error {
		return &TransportError{
			Action:     action,
			RequestID:  requestID,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, truncate(body, 200)),
		}
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if httpFailed {
			return statusErr()
		}
		return &TransportError{Action: action, RequestID: requestID, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	// A JSON error page from a proxy in front of the service is not an envelope.
	if httpFailed && (env.Status == "" || env.Result == nil) {
		return statusErr()
	}

	return decodeEnvelope(action, requestID, &env, decode)
}

// decodeEnvelope maps a decoded envelope to the caller's result or an error.
func decodeEnvelope(action, requestID string, env *Envelope, decode Decoder) error {
	if env.Status == "" || env.Result == nil {
		return malformed(action, requestID, "Status and/or Result not in response")
	}

	if env.Status != StatusSuccess {
		msg := failureMessage(env.Result)
		if msg == "" {
			msg = env.Status
		}
		return &RemoteError{
			Action:    action,
			Status:    env.Status,
			Message:   msg,
			RequestID: requestID,
		}
	}

	if decode == nil {
		return nil
	}
	if err := decode(env.Result); err != nil {
		return malformed(action, requestID, "%v", err)
	}
	return nil
}

// failureMessage extracts the service's error text without rewording it.
// The Result of a failed call is normally a string; some actions return a
// one-element list holding an ErrorCode instead.
// An empty or null Result gives "".
func failureMessage(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && len(list) == 1 {
		if code, ok := list[0]["ErrorCode"]; ok {
			if err := json.Unmarshal(code, &s); err == nil {
				return s
			}
			return string(code)
		}
	}

	return string(bytes.TrimSpace(raw))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
