package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gatewayplanning/plancheck/internal/gate"
	"github.com/gatewayplanning/plancheck/internal/resilience"
	"github.com/gatewayplanning/plancheck/pkg/anthropic"
)

// ResolverConfig tunes the model call.
type ResolverConfig struct {
	Model       string
	MaxTokens   int64
	Timeout     time.Duration
	MaxAttempts int
	// RequestsPerMinute bounds the call rate across a batch.
	RequestsPerMinute int
}

// DefaultResolverConfig returns the production defaults.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Model:             "claude-haiku-4-5-20251001",
		MaxTokens:         1024,
		Timeout:           60 * time.Second,
		MaxAttempts:       3,
		RequestsPerMinute: 30,
	}
}

// Resolver performs gate-triggered field resolution against the model,
// with timeout, rate limiting, and bounded retry with backoff. It is the
// single external blocking operation in the system.
type Resolver struct {
	client  anthropic.Client
	limiter *rate.Limiter
	cfg     ResolverConfig
}

// NewResolver creates a Resolver around the given client.
func NewResolver(client anthropic.Client, cfg ResolverConfig) *Resolver {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultResolverConfig().RequestsPerMinute
	}
	return &Resolver{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		cfg:     cfg,
	}
}

// Resolve builds the prompt from the gate reason, calls the model, and
// validates the response shape. Transient failures are retried per policy;
// on exhaustion the error wraps resilience.ExternalServiceError so the
// caller records "llm unavailable" and leaves the findings as they were —
// an unreachable model must never read as a pass.
func (r *Resolver) Resolve(ctx context.Context, reason gate.Reason, documentText string) (*Resolution, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "llm: rate limit wait")
	}

	system, user := BuildPrompt(reason, documentText)
	req := anthropic.MessageRequest{
		Model:     r.cfg.Model,
		MaxTokens: r.cfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(system),
		Messages:  []anthropic.Message{{Role: "user", Content: user}},
	}

	retryCfg := resilience.DefaultRetryConfig()
	if r.cfg.MaxAttempts > 0 {
		retryCfg.MaxAttempts = r.cfg.MaxAttempts
	}
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "resolve_fields")

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		callCtx := ctx
		if r.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
			defer cancel()
		}
		resp, err := r.client.CreateMessage(callCtx, req)
		if err != nil {
			return nil, resilience.NewExternalServiceError("anthropic", err, 0)
		}
		return resp, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: resolve fields")
	}

	resp.Usage.LogCost(r.cfg.Model, "field_resolution")

	res, err := ParseResponse([]byte(resp.Text()), reason)
	if err != nil {
		return nil, err
	}

	zap.L().Info("llm: fields resolved",
		zap.String("submission", reason.SubmissionID),
		zap.Int("requested", len(reason.MissingFields)),
		zap.Int("filled", len(res.FilledFields)),
	)

	return res, nil
}
