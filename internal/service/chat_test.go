package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/chatquota/internal/ai"
	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_Send(t *testing.T) {
	f := newFixture(t, midMonth)
	ctx := context.Background()
	userID := f.createUser(t)

	msg, err := f.chat.Send(ctx, userID, "  What is Go?  ")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, userID, msg.UserID)
	assert.Equal(t, "What is Go?", msg.Question)
	assert.Contains(t, msg.Answer, "What is Go?")
	assert.Equal(t, ai.EstimateTokens(msg.Question, msg.Answer), msg.Tokens)
	assert.Equal(t, midMonth, msg.CreatedAt)

	usage, err := f.store.GetUsage(ctx, userID, domain.PeriodOf(midMonth))
	require.NoError(t, err)
	assert.Equal(t, 1, usage.MessageCount)
	assert.Equal(t, 1, f.ai.Calls())
}

func TestChatService_Send_Validation(t *testing.T) {
	f := newFixture(t, midMonth)
	userID := f.createUser(t)

	tests := []struct {
		name     string
		question string
	}{
		{"empty", ""},
		{"blank", " \t\n "},
		{"too long", strings.Repeat("a", domain.MaxQuestionLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.chat.Send(context.Background(), userID, tt.question)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		})
	}
	assert.Equal(t, 0, f.ai.Calls())
}

func TestChatService_Send_UnknownUser(t *testing.T) {
	f := newFixture(t, midMonth)

	_, err := f.chat.Send(context.Background(), uuid.New(), "hello")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestChatService_Send_FourthFreeMessageNeedsSubscription(t *testing.T) {
	f := newFixture(t, midMonth)
	ctx := context.Background()
	userID := f.createUser(t)

	for i := 0; i < domain.FreeMessagesPerMonth; i++ {
		_, err := f.chat.Send(ctx, userID, "question")
		require.NoError(t, err)
	}

	_, err := f.chat.Send(ctx, userID, "one more")
	assert.Equal(t, domain.ESUBSCRIPTIONREQUIRED, domain.ErrorCode(err))
	assert.Equal(t, domain.FreeMessagesPerMonth, f.ai.Calls(), "denied requests must not reach the provider")

	count, err := f.store.CountMessages(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.FreeMessagesPerMonth), count)
}

func TestChatService_Send_DebitsBundleAfterFreeQuota(t *testing.T) {
	f := newFixture(t, midMonth)
	ctx := context.Background()
	userID := f.createUser(t)
	f.useFreeQuota(t, userID, midMonth)
	bundle := f.createBundle(t, userID, domain.SubscriptionTierBasic, domain.BillingCycleMonthly, true)

	_, err := f.chat.Send(ctx, userID, "paid question")
	require.NoError(t, err)

	got, err := f.store.GetBundle(ctx, bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, bundle.MaxMessages-1, got.RemainingMessages)
}

func TestChatService_Send_ProviderFailure(t *testing.T) {
	f := newFixture(t, midMonth)
	ctx := context.Background()
	userID := f.createUser(t)
	f.ai.AnswerError = ai.WrapError("answer", ai.EAIUnavailable)

	_, err := f.chat.Send(ctx, userID, "hello")
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	assert.ErrorIs(t, err, ai.EAIUnavailable)

	usage, err := f.store.GetUsage(ctx, userID, domain.PeriodOf(midMonth))
	require.NoError(t, err)
	assert.Equal(t, 0, usage.MessageCount, "quota must not be debited when no answer was produced")
}

func TestChatService_Send_RecordFailureRollsBackDebit(t *testing.T) {
	f := newFixture(t, midMonth)
	ctx := context.Background()
	userID := f.createUser(t)
	f.store.FailOn("CreateMessage", errors.New("insert failed"))

	_, err := f.chat.Send(ctx, userID, "hello")
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))

	usage, err := f.store.GetUsage(ctx, userID, domain.PeriodOf(midMonth))
	require.NoError(t, err)
	assert.Equal(t, 0, usage.MessageCount)
}

func TestChatService_Send_QuotaSpentWhileAnswering(t *testing.T) {
	f := newFixture(t, midMonth)
	ctx := context.Background()
	userID := f.createUser(t)

	for i := 0; i < domain.FreeMessagesPerMonth-1; i++ {
		_, err := f.chat.Send(ctx, userID, "question")
		require.NoError(t, err)
	}

	// A concurrent request takes the last free message after the pre-flight check.
	provider := &racingProvider{Provider: f.ai, onAnswer: func() {
		_, err := f.quota.Consume(ctx, userID, midMonth)
		require.NoError(t, err)
	}}
	f.chat.provider = provider

	_, err := f.chat.Send(ctx, userID, "last one")
	assert.Equal(t, domain.ESUBSCRIPTIONREQUIRED, domain.ErrorCode(err))

	usage, err := f.store.GetUsage(ctx, userID, domain.PeriodOf(midMonth))
	require.NoError(t, err)
	assert.Equal(t, domain.FreeMessagesPerMonth, usage.MessageCount)
}

type racingProvider struct {
	ai.Provider
	onAnswer func()
}

func (p *racingProvider) Answer(ctx context.Context, params ai.AnswerParams) (*ai.AnswerResult, error) {
	p.onAnswer()
	return p.Provider.Answer(ctx, params)
}

func TestChatService_Record(t *testing.T) {
	f := newFixture(t, midMonth)
	ctx := context.Background()
	userID := f.createUser(t)

	msg, err := f.chat.Record(ctx, userID, "q", "a", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, msg.Tokens)

	got, err := f.chat.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Answer)

	usage, err := f.quota.FreeQuota(ctx, userID, midMonth)
	require.NoError(t, err)
	assert.Equal(t, domain.FreeMessagesPerMonth, usage.RemainingMessages)
}

func TestChatService_History(t *testing.T) {
	f := newFixture(t, midMonth)
	ctx := context.Background()
	userID := f.createUser(t)
	other := f.createUser(t)

	for i := 0; i < 5; i++ {
		f.chat.now = fixedClock(midMonth.Add(time.Duration(i) * time.Minute))
		_, err := f.chat.Record(ctx, userID, "q", string(rune('a'+i)), 1)
		require.NoError(t, err)
	}
	_, err := f.chat.Record(ctx, other, "q", "other", 1)
	require.NoError(t, err)

	messages, err := f.chat.History(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 5)
	assert.Equal(t, "e", messages[0].Answer)
	assert.Equal(t, "a", messages[4].Answer)

	messages, err = f.chat.History(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "e", messages[0].Answer)

	messages, err = f.chat.History(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestChatService_Get_NotFound(t *testing.T) {
	f := newFixture(t, midMonth)

	_, err := f.chat.Get(context.Background(), uuid.New())
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
