package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"bookcheckout/config"
	"bookcheckout/utils"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const publishableKeyHeader = "x-publishable-api-key"

type customerTokenKey struct{}

// WithCustomerToken attaches the customer's bearer token; calls made with the
// returned context act on behalf of that customer.
func WithCustomerToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, customerTokenKey{}, token)
}

func customerToken(ctx context.Context) string {
	token, _ := ctx.Value(customerTokenKey{}).(string)
	return token
}

// HasCustomerToken reports whether ctx carries a customer's bearer token.
func HasCustomerToken(ctx context.Context) bool {
	return customerToken(ctx) != ""
}

// Client talks to the commerce backend's storefront API.
type Client struct {
	baseURL        string
	publishableKey string
	http           *http.Client
	breaker        *gobreaker.CircuitBreaker[struct{}]
	logger         *zap.Logger
}

var _ CommerceService = (*Client)(nil)

func NewClient(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:        cfg.CommerceURL,
		publishableKey: cfg.CommercePublishableKey,
		http:           httpClient,
		breaker: utils.NewBreaker[struct{}]("commerce", utils.BreakerConfig{
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
			IsSuccessful: func(err error) bool {
				return err == nil || IsClientError(err)
			},
		}, logger),
		logger: logger.Named("commerce"),
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	header http.Header
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.roundTrip(ctx, req, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s: %w", req.method, req.path, ErrUnavailable)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, req request, out any) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("commerce: failed to encode %s body: %w", req.path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("commerce: failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(publishableKeyHeader, c.publishableKey)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := customerToken(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		return fmt.Errorf("commerce: %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); readErr == nil && len(data) > 0 {
			if json.Unmarshal(data, &payload) == nil {
				apiErr.Type = payload.Type
				apiErr.Message = payload.Message
			}
		}
		c.logger.Debug("backend rejected request",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("commerce: failed to decode %s response: %w", req.path, err)
	}
	return nil
}

func fieldsQuery(fields string) url.Values {
	if fields == "" {
		return nil
	}
	return url.Values{"fields": []string{fields}}
}
