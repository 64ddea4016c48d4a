package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pitabwire/util"
	"golang.org/x/time/rate"
)

// Common errors.
var (
	ErrNoAPIKey        = errors.New("no API key configured")
	ErrUnknownProvider = errors.New("unknown AI provider")
	ErrRateLimited     = errors.New("rate limited")
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrContextTooLong  = errors.New("context too long")
	ErrAuthFailed      = errors.New("authentication failed")
)

// Client is the interface for AI provider operations. Implementations retry
// transient failures internally; a returned error is final.
type Client interface {
	// Send submits a prompt and returns the provider's answer.
	Send(ctx context.Context, req *ProviderRequest) (*ProviderResult, error)

	// ValidateConnection checks that the provider is reachable and the
	// configured credentials are accepted.
	ValidateConnection(ctx context.Context) error

	// ProviderName returns the provider identifier.
	ProviderName() string

	// ModelName returns the configured model identifier.
	ModelName() string
}

// NewClient creates a client for the configured provider, wrapped with retry
// and request throttling.
func NewClient(cfg ClientConfig) (Client, error) {
	cfg = cfg.withDefaults()

	var inner Client
	switch cfg.Provider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: anthropic", ErrNoAPIKey)
		}
		inner = NewAnthropicClient(cfg.AnthropicAPIKey, cfg)
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: openai", ErrNoAPIKey)
		}
		inner = NewOpenAIClient(cfg.OpenAIAPIKey, cfg)
	case ProviderGoogle:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("%w: google", ErrNoAPIKey)
		}
		inner = NewGoogleClient(cfg.GoogleAPIKey, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	return newRetryClient(inner, cfg), nil
}

// retryClient decorates a provider client with retries, exponential backoff
// and client-side request throttling.
type retryClient struct {
	inner   Client
	limiter *rate.Limiter
	config  ClientConfig
}

func newRetryClient(inner Client, cfg ClientConfig) *retryClient {
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)),
			cfg.BurstSize,
		)
	}

	return &retryClient{
		inner:   inner,
		limiter: limiter,
		config:  cfg,
	}
}

// Send implements Client. Retries up to MaxRetries attempts with exponential
// backoff; quota, context-length and authentication failures are not retried.
func (c *retryClient) Send(ctx context.Context, req *ProviderRequest) (*ProviderResult, error) {
	log := util.Log(ctx)
	var lastErr error

	for attempt := range c.config.MaxRetries {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.inner.Send(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		backoff := time.Duration(1<<attempt) * time.Duration(c.config.RetryBaseDelayMS) * time.Millisecond
		log.Debug("retrying after error",
			"provider", c.inner.ProviderName(),
			"attempt", attempt+1,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, lastErr
}

// ValidateConnection implements Client.
func (c *retryClient) ValidateConnection(ctx context.Context) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return c.inner.ValidateConnection(ctx)
}

// ProviderName implements Client.
func (c *retryClient) ProviderName() string {
	return c.inner.ProviderName()
}

// ModelName implements Client.
func (c *retryClient) ModelName() string {
	return c.inner.ModelName()
}

// isRetryable reports whether a provider error is worth another attempt.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrContextTooLong),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrAuthFailed):
		return false
	}
	return true
}
