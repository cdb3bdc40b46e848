// Package services owns the application state and the operations on it.
package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"warga/internal/core"
	"warga/internal/log"
	"warga/internal/storage"
)

// State is the single owner of every persisted collection. Reads return
// copies. Each mutation runs under the write lock and is persisted before
// the lock is released; a failed write restores the previous value.
type State struct {
	mu       sync.RWMutex
	repo     *storage.Repository
	logger   *log.Logger
	events   *log.StructuredLogger
	now      func() time.Time
	fallback core.Category

	user       *core.User
	residents  []core.Resident
	adminLists core.AdminLists
	payments   []core.DuesPayment
	rates      core.RateConfig
	expenses   []core.Expense
	incomes    []core.OtherIncome

	observers []func(key string)
}

type Option func(*State)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *State) { s.logger = l }
}

// WithFallbackCategory sets the tier used for households without a valid
// category.
func WithFallbackCategory(c core.Category) Option {
	return func(s *State) { s.fallback = c }
}

// NewState loads every key from repo. Unreadable keys fall back to their
// defaults with a warning, so NewState never fails.
func NewState(ctx context.Context, repo *storage.Repository, opts ...Option) *State {
	s := &State{
		repo:     repo,
		now:      time.Now,
		fallback: core.CategoryC,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.FromContext(ctx)
	}
	s.logger = s.logger.WithComponent(log.ComponentStorage)
	s.events = log.NewStructuredLogger(s.logger)
	if !s.fallback.Valid() {
		s.fallback = core.CategoryC
	}
	s.Reload(ctx)
	return s
}

// Reload replaces the in-memory collections with what is stored.
func (s *State) Reload(ctx context.Context) {
	var (
		user      *core.User
		residents []core.Resident
		lists     core.AdminLists
		payments  []core.DuesPayment
		rates     core.RateConfig
		expenses  []core.Expense
		incomes   []core.OtherIncome
	)
	s.load(ctx, storage.KeyUser, &user, func() { user = nil })
	s.load(ctx, storage.KeyResidents, &residents, func() { residents = nil })
	s.load(ctx, storage.KeyAdminLists, &lists, func() { lists = core.DefaultAdminLists() })
	s.load(ctx, storage.KeyPayments, &payments, func() { payments = nil })
	s.load(ctx, storage.KeyRateConfig, &rates, func() { rates = core.DefaultRateConfig() })
	s.load(ctx, storage.KeyExpenses, &expenses, func() { expenses = nil })
	s.load(ctx, storage.KeyOtherIncome, &incomes, func() { incomes = nil })

	if lists == nil {
		lists = core.DefaultAdminLists()
	}
	if err := rates.Validate(); err != nil {
		s.events.LogStorageFallback(ctx, storage.KeyRateConfig, err)
		rates = core.DefaultRateConfig()
	}
	if user != nil && !user.Role.Valid() {
		user = nil
	}

	s.mu.Lock()
	s.user, s.residents, s.adminLists = user, residents, lists
	s.payments, s.rates = payments, rates
	s.expenses, s.incomes = expenses, incomes
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "State loaded",
		"residents", len(residents),
		"payments", len(payments),
		"expenses", len(expenses),
		"incomes", len(incomes))
}

func (s *State) load(ctx context.Context, key string, dst any, reset func()) {
	found, err := s.repo.Load(ctx, key, dst)
	if err != nil {
		s.events.LogStorageFallback(ctx, key, err)
		reset()
		return
	}
	if !found {
		reset()
	}
}

// Subscribe registers fn to be called with the key of every committed
// mutation. fn runs outside the state lock.
func (s *State) Subscribe(fn func(key string)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// mutate applies fn under the write lock and persists the value it
// returns under key. When the write fails, undo runs before the lock is
// released and the error is returned.
func (s *State) mutate(ctx context.Context, key string, fn func() (value any, undo func(), err error)) error {
	s.mu.Lock()
	value, undo, err := fn()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.repo.Save(ctx, key, value); err != nil {
		if undo != nil {
			undo()
		}
		s.mu.Unlock()
		f := log.NewFields()
		f[log.FieldKey] = key
		s.events.LogError(ctx, "Failed to persist change", err, log.ComponentStorage, log.OpSave, f)
		return err
	}
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(key)
	}
	return nil
}

// Now returns the current time from the injected clock.
func (s *State) Now() time.Time {
	return s.now()
}

// Fallback returns the category used for households without one.
func (s *State) Fallback() core.Category {
	return s.fallback
}

func (s *State) Residents() []core.Resident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.residents)
}

func (s *State) Payments() []core.DuesPayment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.payments)
}

func (s *State) Rates() core.RateConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rates.Clone()
}

func (s *State) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.expenses)
}

func (s *State) OtherIncome() []core.OtherIncome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.incomes)
}

func (s *State) AdminLists() core.AdminLists {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminLists.Clone()
}

// User returns the logged-in user, or nil.
func (s *State) User() *core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Books returns a consistent snapshot of the financial collections.
func (s *State) Books() core.Books {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Books{
		Residents:   slices.Clone(s.residents),
		Payments:    slices.Clone(s.payments),
		OtherIncome: slices.Clone(s.incomes),
		Expenses:    slices.Clone(s.expenses),
		Rates:       s.rates.Clone(),
		Fallback:    s.fallback,
	}
}

// Ping checks the backing store when it supports it.
func (s *State) Ping(ctx context.Context) error {
	if p, ok := s.repo.Store().(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
