package llm

import (
	"context"
	"errors"
	"log/slog"
)

// namer lets providers identify themselves in logs and responses.
type namer interface {
	ProviderName() string
}

// FallbackClient tries a primary provider and, when it fails for reasons
// other than cancellation, retries the same request on a secondary one.
// Question selection and tagging already degrade to deterministic rules on
// total failure, so the chain stays two-deep.
type FallbackClient struct {
	primary  Client
	fallback Client
	logger   *slog.Logger
}

// NewFallbackClient creates a fallback-enabled client. If fallback is nil,
// only the primary provider is used.
func NewFallbackClient(primary, fallback Client, logger *slog.Logger) *FallbackClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackClient{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return c.stamp(resp, c.primary), nil
	}

	// A cancelled or expired context means the caller's budget is spent;
	// a second provider call would just burn the same deadline.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || c.fallback == nil {
		return Response{}, err
	}

	c.logger.Warn("llm provider failed, trying fallback",
		"provider", providerName(c.primary),
		"fallback", providerName(c.fallback),
		"error", err.Error(),
	)

	resp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback llm provider also failed",
			"provider", providerName(c.fallback),
			"primary_error", err.Error(),
			"error", fallbackErr.Error(),
		)
		return Response{}, fallbackErr
	}

	c.logger.Info("fallback llm provider served the request",
		"provider", providerName(c.fallback),
	)
	return c.stamp(resp, c.fallback), nil
}

func (c *FallbackClient) stamp(resp Response, client Client) Response {
	if resp.Provider == "" {
		resp.Provider = providerName(client)
	}
	return resp
}

func providerName(c Client) string {
	if n, ok := c.(namer); ok {
		return n.ProviderName()
	}
	return "unknown"
}
