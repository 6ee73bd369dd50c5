package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DukeRupert/chatquota/internal"
	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/DukeRupert/chatquota/internal/store/postgres"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openStore connects to DATABASE_URL and applies migrations. Tests using it
// are skipped when the variable is unset.
func openStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.PingContext(ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, internal.RunMigrations(ctx, db, logger))
	return postgres.New(db)
}

func createUser(t *testing.T, st *postgres.Store, now time.Time) *domain.User {
	t.Helper()
	u := &domain.User{Email: uuid.NewString() + "@example.com", CreatedAt: now}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func TestStore_Users(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	u := createUser(t, st, now)

	got, err := st.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	dup := &domain.User{Email: u.Email, CreatedAt: now}
	assert.ErrorIs(t, st.CreateUser(ctx, dup), store.ErrConflict)

	_, err = st.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_WithTxRollsBack(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	email := uuid.NewString() + "@example.com"

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, &domain.User{Email: email, CreatedAt: now}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = st.GetUserByEmail(ctx, email)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_UsageLifecycle(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 0, 1, 0, 0, time.UTC)
	u := createUser(t, st, created)
	period := domain.PeriodOf(created)

	err := st.WithTx(ctx, func(tx store.Store) error {
		first, err := tx.EnsureUsage(ctx, u.ID, period, created)
		require.NoError(t, err)
		assert.False(t, first.Swept(), "new rows are not stamped by a sweep")

		again, err := tx.EnsureUsage(ctx, u.ID, period, created.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)

		incremented, err := tx.IncrementUsage(ctx, first.ID, created.Add(2*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, incremented.MessageCount)
		assert.False(t, incremented.Swept())
		return nil
	})
	require.NoError(t, err)

	swept := created.Add(4 * time.Minute)
	usage, err := st.GetUsage(ctx, u.ID, period)
	require.NoError(t, err)
	reset, err := st.ResetUsage(ctx, usage.ID, swept)
	require.NoError(t, err)
	assert.Equal(t, 0, reset.MessageCount)
	assert.True(t, reset.Swept())
	assert.True(t, swept.Equal(reset.LastResetDate))
}
