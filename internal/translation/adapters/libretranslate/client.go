// Package libretranslate calls a LibreTranslate-compatible /translate endpoint.
package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fieldsync/internal/translation/ports"
	"fieldsync/pkg/platform/circuit"
)

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Client implements ports.Translator.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New targets the full translate URL, e.g. https://libretranslate.com/translate.
func New(endpoint string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		breaker:  circuit.New("libretranslate"),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if !c.breaker.Allow() {
		return "", ports.NewTranslateError(ports.ReasonUnavailable, errors.New("circuit open"))
	}
	out, err := c.translate(ctx, text, source, target)
	if err != nil {
		if reason := ports.ReasonOf(err); reason == ports.ReasonTimeout || reason == ports.ReasonUnavailable {
			if _, change := c.breaker.RecordFailure(); change.Opened {
				c.logger.WarnContext(ctx, "translation circuit opened", "reason", reason)
			}
		}
		return "", err
	}
	c.breaker.RecordSuccess()
	return out, nil
}

func (c *Client) translate(ctx context.Context, text, source, target string) (string, error) {
	body, err := json.Marshal(translateRequest{Q: text, Source: source, Target: target, Format: "text", APIKey: c.apiKey})
	if err != nil {
		return "", ports.NewTranslateError(ports.ReasonInternal, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", ports.NewTranslateError(ports.ReasonInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", ports.NewTranslateError(ports.ReasonTimeout, err)
		}
		return "", ports.NewTranslateError(ports.ReasonUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return "", ports.NewTranslateError(ports.ReasonUnavailable, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return "", ports.NewTranslateError(ports.ReasonRejected, fmt.Errorf("status %d", resp.StatusCode))
	}

	var decoded translateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return "", ports.NewTranslateError(ports.ReasonBadData, err)
	}
	return decoded.TranslatedText, nil
}
