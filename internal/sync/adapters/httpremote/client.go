// Package httpremote pushes pending records to the remote sync endpoint over
// JSON/HTTP. Failures come back as ports.RemoteError so the engine can report
// a category per record.
package httpremote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	rmodels "fieldsync/internal/records/models"
	"fieldsync/internal/sync/models"
	"fieldsync/internal/sync/ports"
	"fieldsync/pkg/platform/circuit"
)

const pushPath = "/sync/records"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

type pushRequest struct {
	WorkerID string            `json:"workerId"`
	Module   rmodels.Module    `json:"module"`
	Records  []*rmodels.Record `json:"records"`
}

type pushResponse struct {
	Results []models.Outcome `json:"results"`
}

// Client implements ports.RemoteEndpoint.
type Client struct {
	baseURL string
	http    *http.Client
	signer  *TokenSigner
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithSigningKey enables bearer device tokens.
func WithSigningKey(key string) Option {
	return func(cl *Client) {
		if key != "" {
			cl.signer = NewTokenSigner(key)
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: circuit.New("sync-remote"),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Push(ctx context.Context, workerID string, module rmodels.Module, items []models.Item) ([]models.Outcome, error) {
	if !c.breaker.Allow() {
		return nil, ports.NewRemoteError(ports.ErrorUnavailable, "circuit open", nil)
	}
	outcomes, err := c.push(ctx, workerID, module, items)
	c.record(ctx, err)
	return outcomes, err
}

func (c *Client) push(ctx context.Context, workerID string, module rmodels.Module, items []models.Item) ([]models.Outcome, error) {
	body := pushRequest{WorkerID: workerID, Module: module, Records: make([]*rmodels.Record, 0, len(items))}
	for _, it := range items {
		body.Records = append(body.Records, it.Record)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, ports.NewRemoteError(ports.ErrorBadData, "encode batch", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pushPath, bytes.NewReader(raw))
	if err != nil {
		return nil, ports.NewRemoteError(ports.ErrorInternal, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.signer != nil {
		token, err := c.signer.Sign(workerID, module.String())
		if err != nil {
			return nil, ports.NewRemoteError(ports.ErrorInternal, "sign device token", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, err
	}
	var decoded pushResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return nil, ports.NewRemoteError(ports.ErrorBadData, "decode response", err)
	}
	return decoded.Results, nil
}

func (c *Client) record(ctx context.Context, err error) {
	if err == nil {
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "sync endpoint circuit closed")
		}
		return
	}
	var re *ports.RemoteError
	if errors.As(err, &re) && re.Trips() {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "sync endpoint circuit opened", "category", re.Category)
		}
	}
}

func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return ports.NewRemoteError(ports.ErrorInternal, "request cancelled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ports.NewRemoteError(ports.ErrorTimeout, "request timed out", err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ports.NewRemoteError(ports.ErrorTimeout, "request timed out", err)
	}
	return ports.NewRemoteError(ports.ErrorOutage, "endpoint unreachable", err)
}

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ports.NewRemoteError(ports.ErrorAuthentication, fmt.Sprintf("status %d", code), nil)
	case code == http.StatusTooManyRequests:
		return ports.NewRemoteError(ports.ErrorRateLimited, fmt.Sprintf("status %d", code), nil)
	case code >= 500:
		return ports.NewRemoteError(ports.ErrorOutage, fmt.Sprintf("status %d", code), nil)
	default:
		return ports.NewRemoteError(ports.ErrorRejected, fmt.Sprintf("status %d", code), nil)
	}
}
