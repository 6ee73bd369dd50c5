// Package memory implements store.Store in process memory. It keeps the
// ordering and filtering rules of the PostgreSQL adapter and is used by
// tests and local tooling.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/google/uuid"
)

type usageKey struct {
	userID uuid.UUID
	period domain.Period
}

type data struct {
	users     map[uuid.UUID]domain.User
	usage     map[usageKey]domain.MonthlyUsage
	bundles   map[uuid.UUID]domain.SubscriptionBundle
	messages  map[uuid.UUID]domain.ChatMessage
	sweepRuns map[uuid.UUID]domain.SweepRun
	seq       int64 // insertion order for stable sorting of equal timestamps
	order     map[uuid.UUID]int64
}

func newData() *data {
	return &data{
		users:     make(map[uuid.UUID]domain.User),
		usage:     make(map[usageKey]domain.MonthlyUsage),
		bundles:   make(map[uuid.UUID]domain.SubscriptionBundle),
		messages:  make(map[uuid.UUID]domain.ChatMessage),
		sweepRuns: make(map[uuid.UUID]domain.SweepRun),
		order:     make(map[uuid.UUID]int64),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.usage {
		c.usage[k] = v
	}
	for k, v := range d.bundles {
		c.bundles[k] = v
	}
	for k, v := range d.messages {
		c.messages[k] = v
	}
	for k, v := range d.sweepRuns {
		c.sweepRuns[k] = v
	}
	for k, v := range d.order {
		c.order[k] = v
	}
	c.seq = d.seq
	return c
}

func (d *data) track(id uuid.UUID) {
	d.seq++
	d.order[id] = d.seq
}

// Store is an in-memory store.Store. Transactions run on a copy of the data
// and are swapped in on success; they are serialized with each other and with
// plain writes.
type Store struct {
	mu   *sync.Mutex
	d    *data
	inTx bool

	failMu *sync.Mutex
	fail   map[string]error
}

var _ store.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		mu:     &sync.Mutex{},
		d:      newData(),
		failMu: &sync.Mutex{},
		fail:   make(map[string]error),
	}
}

// FailOn makes the named method (e.g. "CreateMessage") return err until
// cleared with a nil err.
func (s *Store) FailOn(method string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.fail, method)
		return
	}
	s.fail[method] = err
}

func (s *Store) injected(method string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.fail[method]
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Ping always succeeds unless a failure is injected.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.injected("Ping"); err != nil {
		return err
	}
	return ctx.Err()
}

// WithTx runs fn against a private copy of the data and commits it when fn
// returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	txStore := &Store{
		mu:     s.mu,
		d:      s.d.clone(),
		inTx:   true,
		failMu: s.failMu,
		fail:   s.fail,
	}
	if err := fn(txStore); err != nil {
		return err
	}
	s.d = txStore.d
	return nil
}

// =============================================================================
// Users
// =============================================================================

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if err := s.injected("CreateUser"); err != nil {
		return err
	}
	defer s.lock()()

	for _, existing := range s.d.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: idx_users_email", store.ErrConflict)
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.UpdatedAt = u.CreatedAt
	s.d.users[u.ID] = *u
	s.d.track(u.ID)
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := s.injected("GetUser"); err != nil {
		return nil, err
	}
	defer s.lock()()

	u, ok := s.d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer s.lock()()

	for _, u := range s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

// =============================================================================
// Usage
// =============================================================================

func (s *Store) EnsureUsage(ctx context.Context, userID uuid.UUID, p domain.Period, now time.Time) (*domain.MonthlyUsage, error) {
	if err := s.injected("EnsureUsage"); err != nil {
		return nil, err
	}
	defer s.lock()()

	key := usageKey{userID: userID, period: p}
	u, ok := s.d.usage[key]
	if !ok {
		u = domain.MonthlyUsage{
			ID:            uuid.New(),
			UserID:        userID,
			Year:          p.Year,
			Month:         p.Month,
			LastResetDate: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		s.d.usage[key] = u
		s.d.track(u.ID)
	}
	return &u, nil
}

func (s *Store) GetUsage(ctx context.Context, userID uuid.UUID, p domain.Period) (*domain.MonthlyUsage, error) {
	defer s.lock()()

	u, ok := s.d.usage[usageKey{userID: userID, period: p}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) updateUsage(id uuid.UUID, fn func(*domain.MonthlyUsage)) (*domain.MonthlyUsage, error) {
	for key, u := range s.d.usage {
		if u.ID == id {
			fn(&u)
			s.d.usage[key] = u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) IncrementUsage(ctx context.Context, id uuid.UUID, now time.Time) (*domain.MonthlyUsage, error) {
	if err := s.injected("IncrementUsage"); err != nil {
		return nil, err
	}
	defer s.lock()()

	return s.updateUsage(id, func(u *domain.MonthlyUsage) {
		u.Increment(now)
	})
}

func (s *Store) ResetUsage(ctx context.Context, id uuid.UUID, now time.Time) (*domain.MonthlyUsage, error) {
	if err := s.injected("ResetUsage"); err != nil {
		return nil, err
	}
	defer s.lock()()

	return s.updateUsage(id, func(u *domain.MonthlyUsage) {
		u.Reset(u.Period(), now)
	})
}

func (s *Store) ListUserIDsOutsidePeriod(ctx context.Context, p domain.Period) ([]uuid.UUID, error) {
	defer s.lock()()

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for key := range s.d.usage {
		if key.period == p || seen[key.userID] {
			continue
		}
		seen[key.userID] = true
		ids = append(ids, key.userID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids, nil
}

// =============================================================================
// Bundles
// =============================================================================

func (s *Store) CreateBundle(ctx context.Context, b *domain.SubscriptionBundle) error {
	if err := s.injected("CreateBundle"); err != nil {
		return err
	}
	defer s.lock()()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if _, exists := s.d.bundles[b.ID]; exists {
		return fmt.Errorf("%w: subscription_bundles_pkey", store.ErrConflict)
	}
	s.d.bundles[b.ID] = *b
	s.d.track(b.ID)
	return nil
}

func (s *Store) GetBundle(ctx context.Context, id uuid.UUID) (*domain.SubscriptionBundle, error) {
	if err := s.injected("GetBundle"); err != nil {
		return nil, err
	}
	defer s.lock()()

	b, ok := s.d.bundles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

// newestFirst sorts by CreatedAt descending, later inserts first on ties.
func (s *Store) newestFirst(bundles []domain.SubscriptionBundle) {
	sort.SliceStable(bundles, func(i, j int) bool {
		if !bundles[i].CreatedAt.Equal(bundles[j].CreatedAt) {
			return bundles[i].CreatedAt.After(bundles[j].CreatedAt)
		}
		return s.d.order[bundles[i].ID] > s.d.order[bundles[j].ID]
	})
}

func (s *Store) filterBundles(keep func(domain.SubscriptionBundle) bool) []domain.SubscriptionBundle {
	bundles := make([]domain.SubscriptionBundle, 0)
	for _, b := range s.d.bundles {
		if keep(b) {
			bundles = append(bundles, b)
		}
	}
	return bundles
}

func (s *Store) ListBundles(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]domain.SubscriptionBundle, error) {
	if err := s.injected("ListBundles"); err != nil {
		return nil, err
	}
	defer s.lock()()

	bundles := s.filterBundles(func(b domain.SubscriptionBundle) bool {
		return b.UserID == userID && (!activeOnly || b.IsActive)
	})
	s.newestFirst(bundles)
	return bundles, nil
}

func (s *Store) ListUsableBundles(ctx context.Context, userID uuid.UUID) ([]domain.SubscriptionBundle, error) {
	if err := s.injected("ListUsableBundles"); err != nil {
		return nil, err
	}
	defer s.lock()()

	bundles := s.filterBundles(func(b domain.SubscriptionBundle) bool {
		return b.UserID == userID && b.CanUse()
	})
	s.newestFirst(bundles)
	return bundles, nil
}

func (s *Store) ListDueForRenewal(ctx context.Context, now time.Time) ([]domain.SubscriptionBundle, error) {
	if err := s.injected("ListDueForRenewal"); err != nil {
		return nil, err
	}
	defer s.lock()()

	bundles := s.filterBundles(func(b domain.SubscriptionBundle) bool {
		return b.DueForRenewal(now)
	})
	sort.SliceStable(bundles, func(i, j int) bool {
		if !bundles[i].RenewalDate.Equal(*bundles[j].RenewalDate) {
			return bundles[i].RenewalDate.Before(*bundles[j].RenewalDate)
		}
		return s.d.order[bundles[i].ID] < s.d.order[bundles[j].ID]
	})
	return bundles, nil
}

func (s *Store) UpdateBundle(ctx context.Context, b *domain.SubscriptionBundle) error {
	if err := s.injected("UpdateBundle"); err != nil {
		return err
	}
	defer s.lock()()

	existing, ok := s.d.bundles[b.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.RemainingMessages = b.RemainingMessages
	existing.RenewalDate = b.RenewalDate
	existing.AutoRenew = b.AutoRenew
	existing.IsActive = b.IsActive
	existing.SupersededBy = b.SupersededBy
	existing.UpdatedAt = b.UpdatedAt
	s.d.bundles[b.ID] = existing
	*b = existing
	return nil
}

// =============================================================================
// Messages
// =============================================================================

func (s *Store) CreateMessage(ctx context.Context, m *domain.ChatMessage) error {
	if err := s.injected("CreateMessage"); err != nil {
		return err
	}
	defer s.lock()()

	if _, ok := s.d.users[m.UserID]; !ok {
		return errors.New("memory: chat_messages_user_id_fkey violation")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	s.d.messages[m.ID] = *m
	s.d.track(m.ID)
	return nil
}

func (s *Store) GetMessage(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error) {
	defer s.lock()()

	m, ok := s.d.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *Store) ListMessages(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	if err := s.injected("ListMessages"); err != nil {
		return nil, err
	}
	defer s.lock()()

	messages := make([]domain.ChatMessage, 0)
	for _, m := range s.d.messages {
		if m.UserID == userID {
			messages = append(messages, m)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.After(messages[j].CreatedAt)
		}
		return s.d.order[messages[i].ID] > s.d.order[messages[j].ID]
	})
	if limit >= 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (s *Store) CountMessages(ctx context.Context, userID uuid.UUID) (int64, error) {
	defer s.lock()()

	var n int64
	for _, m := range s.d.messages {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// Sweep runs
// =============================================================================

func (s *Store) CreateSweepRun(ctx context.Context, r *domain.SweepRun) error {
	if err := s.injected("CreateSweepRun"); err != nil {
		return err
	}
	defer s.lock()()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.d.sweepRuns[r.ID] = *r
	s.d.track(r.ID)
	return nil
}

func (s *Store) FinishSweepRun(ctx context.Context, r *domain.SweepRun) error {
	if err := s.injected("FinishSweepRun"); err != nil {
		return err
	}
	defer s.lock()()

	existing, ok := s.d.sweepRuns[r.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Status = r.Status
	existing.FinishedAt = r.FinishedAt
	existing.Details = r.Details
	existing.ErrorMessage = r.ErrorMessage
	s.d.sweepRuns[r.ID] = existing
	*r = existing
	return nil
}

func (s *Store) ListSweepRuns(ctx context.Context, jobType string, limit int) ([]domain.SweepRun, error) {
	defer s.lock()()

	runs := make([]domain.SweepRun, 0)
	for _, r := range s.d.sweepRuns {
		if jobType == "" || r.JobType == jobType {
			runs = append(runs, r)
		}
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return s.d.order[runs[i].ID] > s.d.order[runs[j].ID]
	})
	if limit >= 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
