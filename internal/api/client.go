package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bme-bharat/communityfeed/internal/logging"
	"github.com/bme-bharat/communityfeed/internal/ratelimit"
)

const (
	minTimeout = 5 * time.Second
	maxTimeout = 10 * time.Second

	statusSuccess = "success"
)

// Config holds the settings needed to talk to the command endpoint.
type Config struct {
	// Endpoint is the single command-dispatch URL.
	Endpoint string
	// Token is the bearer token attached to every request.
	Token string
	// UserID identifies the caller for user-scoped commands.
	UserID string
	// Timeout bounds every request; clamped to the 5-10s ceiling.
	Timeout time.Duration
	// MinRequestInterval spaces requests to the endpoint host. Zero disables.
	MinRequestInterval time.Duration
}

// Envelope is the response wrapper every command returns.
type Envelope struct {
	Status           string          `json:"status"`
	Response         json.RawMessage `json:"response"`
	LastEvaluatedKey string          `json:"lastEvaluatedKey,omitempty"`
}

// Client issues command messages against the single dispatch endpoint.
// Every request is a JSON object of shape {"command": <name>, ...parameters}.
type Client struct {
	endpoint string
	host     string
	token    string
	userID   string
	timeout  time.Duration
	http     *http.Client
	limiter  *ratelimit.Limiter
	logger   *logging.Logger
}

// New creates a command client. The timeout is clamped into the 5-10s band
// so no call can hang past the ceiling or flap below the floor.
func New(cfg Config, logger *logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("api endpoint is required")
	}
	parsed, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid api endpoint: %w", err)
	}

	timeout := cfg.Timeout
	if timeout < minTimeout {
		timeout = minTimeout
	}
	if timeout > maxTimeout {
		timeout = maxTimeout
	}

	var limiter *ratelimit.Limiter
	if cfg.MinRequestInterval > 0 {
		limiter = ratelimit.New(cfg.MinRequestInterval)
	}

	c := &Client{
		endpoint: cfg.Endpoint,
		host:     parsed.Host,
		token:    cfg.Token,
		userID:   cfg.UserID,
		timeout:  timeout,
		http:     &http.Client{Timeout: timeout},
		limiter:  limiter,
		logger:   logger,
	}

	c.warnIfTokenExpired()
	return c, nil
}

// UserID returns the caller identity used for user-scoped commands.
func (c *Client) UserID() string {
	return c.userID
}

// Do sends one command and returns the response envelope. A non-success
// status is reported as ErrServerRejected; deadline expiry as ErrTimeout;
// everything else transport-level as ErrTransport.
func (c *Client) Do(ctx context.Context, command string, params map[string]interface{}) (*Envelope, error) {
	if c.limiter != nil {
		c.limiter.Wait(c.host)
	}

	body := make(map[string]interface{}, len(params)+1)
	body["command"] = command
	for k, v := range params {
		body[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal command %q: %w", command, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", command, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("command %q: %w", command, ErrTimeout)
		}
		return nil, fmt.Errorf("command %q: %w: %v", command, ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("command %q: %w: %v", command, ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("command %q: http %d: %w", command, resp.StatusCode, ErrServerRejected)
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("command %q: decode envelope: %w: %v", command, ErrServerRejected, err)
	}
	if envelope.Status != statusSuccess {
		return nil, fmt.Errorf("command %q: status %q: %w", command, envelope.Status, ErrServerRejected)
	}

	return &envelope, nil
}

// warnIfTokenExpired inspects the bearer token's exp claim without verifying
// the signature. Verification belongs to the server; the client only wants an
// early signal that calls are about to start failing with auth errors.
func (c *Client) warnIfTokenExpired() {
	if c.token == "" {
		return
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, claims); err != nil {
		c.logger.Debug("Bearer token is not a parseable JWT", logging.WithField("error", err.Error()))
		return
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if time.Now().After(exp.Time) {
		c.logger.Warn("Bearer token is expired, requests will likely be rejected",
			logging.WithField("expired_at", exp.Time.Format(time.RFC3339)))
	}
}
