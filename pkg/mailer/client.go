package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/expertlane/matchd/internal/config"
)

var ErrCircuitOpen = errors.New("mailer circuit open")

// Client wraps the email provider's HTTP API and adds retries, timeout, and
// circuit breaker.
type Client struct {
	cfg    config.MailerConfig
	client *http.Client

	// simple circuit breaker state
	failures  int32
	openUntil int64 // unix nano
	closed    int32 // atomic flag for Close()
}

// Message is one outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendResult is the provider's acknowledgement of an accepted message.
type SendResult struct {
	ProviderID string          `json:"provider_id"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

// Sender is the delivery contract the dispatcher depends on; the real client
// and test fakes both satisfy it.
type Sender interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// NewClient creates a new mailer client wrapper.
func NewClient(cfg config.MailerConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		cfg:    cfg,
		client: httpClient,
	}
	logger.Info("mailer: NewClient created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return c, nil
}

func NewDefaultClient(cfg config.MailerConfig) (*Client, error) {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(cfg, defaultClient)
}

// package-level logger for pkg/mailer; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/mailer. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// attempt half-open: reset failures and allow a request
	atomic.StoreInt32(&c.failures, 0)
	return false
}

func (c *Client) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
	}
}

// Close releases any resources held by the client. Currently this will close
// idle connections on the underlying HTTP transport when supported. Close is
// idempotent and safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
		}
	}
	return nil
}

// Health pings the provider's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	if c.isCircuitOpen() {
		return ErrCircuitOpen
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return err
	}
	u := base.ResolveReference(&url.URL{Path: "/health"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		c.recordFailure()
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.recordFailure()
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}

	atomic.StoreInt32(&c.failures, 0)
	return nil
}

// Send posts one message to the provider. It retries per configuration and
// respects the circuit breaker; the returned result carries the provider's
// message id for outbox bookkeeping.
func (c *Client) Send(ctx context.Context, msg Message) (SendResult, error) {
	var empty SendResult
	if c.isCircuitOpen() {
		return empty, ErrCircuitOpen
	}

	payload := map[string]string{
		"from":    c.cfg.From,
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Body,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return empty, err
	}

	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return empty, err
	}
	u := base.ResolveReference(&url.URL{Path: "/messages"})

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		ctxReq, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		res, err := c.doSend(ctxReq, u.String(), body)
		cancel()
		if err == nil {
			atomic.StoreInt32(&c.failures, 0)
			return res, nil
		}

		lastErr = err
		c.recordFailure()

		// backoff
		time.Sleep(c.cfg.Backoff * time.Duration(attempt+1))
		if c.isCircuitOpen() {
			return empty, ErrCircuitOpen
		}
	}

	return empty, fmt.Errorf("send failed after retries: %w", lastErr)
}

func (c *Client) doSend(ctx context.Context, u string, body []byte) (SendResult, error) {
	var empty SendResult

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return empty, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return empty, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return empty, fmt.Errorf("messages endpoint returned status %d", resp.StatusCode)
	}

	var raw map[string]any
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&raw); err != nil {
		return empty, err
	}

	id := ""
	if v, ok := raw["id"].(string); ok {
		id = v
	}
	b, _ := json.Marshal(raw)

	return SendResult{ProviderID: id, Raw: b}, nil
}
