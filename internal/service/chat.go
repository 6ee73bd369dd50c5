package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/chatquota/internal/ai"
	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/metrics"
	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ChatService answers questions and keeps the append-only chat log.
type ChatService interface {
	// Send validates the question, checks quota, generates an answer and then
	// debits the quota and records the message in one transaction.
	// Returns domain.EINVALID for a blank question, domain.ENOTFOUND for an
	// unknown user and domain.ESUBSCRIPTIONREQUIRED or domain.EQUOTAEXCEEDED
	// when no quota is left.
	Send(ctx context.Context, userID uuid.UUID, question string) (*domain.ChatMessage, error)

	// Record appends a message without touching quota.
	Record(ctx context.Context, userID uuid.UUID, question, answer string, tokens int) (*domain.ChatMessage, error)

	// History returns up to limit messages, newest first. Non-positive limits
	// use the default page size; larger ones are capped.
	History(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatMessage, error)

	// Get retrieves one message.
	// Returns domain.ENOTFOUND if it does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error)
}

// =============================================================================
// Implementation
// =============================================================================

type chatService struct {
	store    store.Store
	quota    QuotaService
	provider ai.Provider
	logger   *slog.Logger
	now      Clock
}

// NewChatService creates a new ChatService.
func NewChatService(st store.Store, quota QuotaService, provider ai.Provider, logger *slog.Logger) ChatService {
	return &chatService{
		store:    st,
		quota:    quota,
		provider: provider,
		logger:   logger,
		now:      utcNow,
	}
}

func (s *chatService) Send(ctx context.Context, userID uuid.UUID, question string) (*domain.ChatMessage, error) {
	const op = "chat.send"

	question, err := domain.ValidateQuestion(op, question)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, storeErr(err, op, "user", userID.String())
	}

	// Refuse before spending provider time; the debit below re-checks.
	if _, err := s.quota.Evaluate(ctx, userID, s.now()); err != nil {
		s.denied(userID, err)
		return nil, err
	}

	result, err := s.provider.Answer(ctx, ai.AnswerParams{
		Question: question,
		UserID:   userID,
	})
	if err != nil {
		metrics.AICall("error")
		s.logger.Warn("answer generation failed",
			"user_id", userID,
			"error", err,
			"retryable", ai.IsRetryable(err),
		)
		return nil, domain.Unavailable(err, op, "Answer generation failed. Please try again.")
	}
	metrics.AICall("ok")

	tokens := result.Usage.Tokens
	if tokens <= 0 {
		tokens = ai.EstimateTokens(question, result.Answer)
	}

	var (
		msg      *domain.ChatMessage
		decision *domain.QuotaDecision
	)
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		now := s.now()

		d, err := s.quota.Bind(tx).Consume(ctx, userID, now)
		if err != nil {
			return err
		}

		m := &domain.ChatMessage{
			UserID:    userID,
			Question:  question,
			Answer:    result.Answer,
			Tokens:    tokens,
			CreatedAt: now,
		}
		if err := tx.CreateMessage(ctx, m); err != nil {
			return domain.Internal(err, op, "failed to record message")
		}

		msg, decision = m, d
		return nil
	})
	if err != nil {
		s.denied(userID, err)
		return nil, err
	}

	metrics.MessageRecorded(string(decision.Source.Kind), tokens)

	attrs := []any{
		"user_id", userID,
		"message_id", msg.ID,
		"source", decision.Source.Kind,
		"tokens", tokens,
	}
	if decision.Source.BundleID != nil {
		attrs = append(attrs, "bundle_id", *decision.Source.BundleID)
	}
	s.logger.Info("chat message recorded", attrs...)

	return msg, nil
}

// denied counts quota refusals; other errors pass through uncounted.
func (s *chatService) denied(userID uuid.UUID, err error) {
	code := domain.ErrorCode(err)
	if code != domain.ESUBSCRIPTIONREQUIRED && code != domain.EQUOTAEXCEEDED {
		return
	}
	metrics.QuotaDenied(code)
	s.logger.Info("chat request denied", "user_id", userID, "reason", code)
}

func (s *chatService) Record(ctx context.Context, userID uuid.UUID, question, answer string, tokens int) (*domain.ChatMessage, error) {
	const op = "chat.record"

	msg := &domain.ChatMessage{
		UserID:    userID,
		Question:  question,
		Answer:    answer,
		Tokens:    tokens,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, domain.Internal(err, op, "failed to record message")
	}
	return msg, nil
}

func (s *chatService) History(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	const op = "chat.history"

	messages, err := s.store.ListMessages(ctx, userID, domain.ClampHistoryLimit(limit))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list messages")
	}
	return messages, nil
}

func (s *chatService) Get(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error) {
	const op = "chat.get"

	msg, err := s.store.GetMessage(ctx, id)
	if err != nil {
		return nil, storeErr(err, op, "message", id.String())
	}
	return msg, nil
}
