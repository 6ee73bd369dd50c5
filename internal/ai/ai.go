// Package ai defines the answer provider used by the chat service. Only a
// synthetic provider ships; the interface is the seam for a real model.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Provider produces an answer to a chat question.
type Provider interface {
	// Answer generates a reply for params.Question. Implementations must honour
	// ctx cancellation while waiting on upstream work.
	Answer(ctx context.Context, params AnswerParams) (*AnswerResult, error)
}

// AnswerParams contains parameters for answering one question
type AnswerParams struct {
	Question string    // Trimmed, validated question text
	UserID   uuid.UUID // User ID for usage tracking
}

// AnswerResult is a generated answer with its usage accounting
type AnswerResult struct {
	Answer string
	Usage  UsageInfo
}

// UsageInfo tracks provider usage for monitoring
type UsageInfo struct {
	Model    string        // Model used
	Tokens   int           // Estimated tokens for question plus answer
	Duration time.Duration // Request duration
}

// EstimateTokens approximates token usage at one token per four characters,
// rounded up.
func EstimateTokens(question, answer string) int {
	n := len(question) + len(answer)
	return (n + 3) / 4
}

// Error codes for AI provider operations
var (
	// EAIRateLimit indicates the API rate limit has been exceeded
	EAIRateLimit = errors.New("ai provider rate limit exceeded")

	// EAITimeout indicates the request timed out
	EAITimeout = errors.New("ai request timed out")

	// EAIUnavailable indicates the AI service is temporarily unavailable
	EAIUnavailable = errors.New("ai service temporarily unavailable")
)

// IsRetryable returns true if the error is a transient error that can be retried
func IsRetryable(err error) bool {
	return errors.Is(err, EAIRateLimit) ||
		errors.Is(err, EAITimeout) ||
		errors.Is(err, EAIUnavailable)
}

// WrapError wraps an error with context about the AI operation
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
