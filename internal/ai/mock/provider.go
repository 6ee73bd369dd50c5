package mock

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/DukeRupert/chatquota/internal/ai"
)

// Model is reported in usage info for synthetic answers.
const Model = "mock-chat-v1"

var templates = []string{
	"This is a mocked response to: %q. In a real implementation, this would be an AI-generated answer.",
	"Based on your question %q, here's a simulated AI response. The actual implementation would call a hosted model.",
	"Mocked AI response: I understand you're asking about %q. Here's a generated answer for demonstration purposes.",
}

// Provider is a synthetic AI provider for development and testing. It waits a
// random delay within [MinDelay, MaxDelay] and returns one of a few templated
// answers.
type Provider struct {
	logger   *slog.Logger
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand

	// Configurable responses for testing
	AnswerResponse *ai.AnswerResult
	AnswerError    error

	// Call tracking for testing
	calls int
}

// Option configures a Provider.
type Option func(*Provider)

// WithDelay sets the simulated latency range.
func WithDelay(min, max time.Duration) Option {
	return func(p *Provider) {
		p.minDelay = min
		p.maxDelay = max
	}
}

// WithRand sets the random source used for delays and template choice.
func WithRand(rng *rand.Rand) Option {
	return func(p *Provider) {
		p.rng = rng
	}
}

// New creates a new mock AI provider. Without options it answers immediately.
func New(logger *slog.Logger, opts ...Option) *Provider {
	p := &Provider{
		logger: logger,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Answer returns a templated answer after the simulated delay.
func (p *Provider) Answer(ctx context.Context, params ai.AnswerParams) (*ai.AnswerResult, error) {
	start := time.Now()

	p.mu.Lock()
	p.calls++
	respErr, resp := p.AnswerError, p.AnswerResponse
	delay := p.minDelay
	if span := p.maxDelay - p.minDelay; span > 0 {
		delay += time.Duration(p.rng.Int64N(int64(span)))
	}
	template := templates[p.rng.IntN(len(templates))]
	p.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ai.WrapError("answer", fmt.Errorf("%w: %v", ai.EAITimeout, ctx.Err()))
		case <-timer.C:
		}
	}

	// If a custom response or error is set, use it
	if respErr != nil {
		return nil, respErr
	}
	if resp != nil {
		return resp, nil
	}

	answer := fmt.Sprintf(template, params.Question)
	result := &ai.AnswerResult{
		Answer: answer,
		Usage: ai.UsageInfo{
			Model:    Model,
			Tokens:   ai.EstimateTokens(params.Question, answer),
			Duration: time.Since(start),
		},
	}

	p.logger.Debug("mock answer generated",
		"user_id", params.UserID,
		"tokens", result.Usage.Tokens,
		"delay", delay,
	)
	return result, nil
}

// Calls returns how many times Answer was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Reset clears call counters and custom responses for testing
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = 0
	p.AnswerResponse = nil
	p.AnswerError = nil
}
