package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"warga/internal/core"
	"warga/internal/log"
	"warga/internal/storage"
)

const kk = "3201010101010001"

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

// flakyStore wraps a MemoryStore and fails writes while failing is set.
type flakyStore struct {
	*storage.MemoryStore
	mu      sync.Mutex
	failing bool
}

var errDiskFull = errors.New("disk full")

func (s *flakyStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()
	if failing {
		return errDiskFull
	}
	return s.MemoryStore.Put(ctx, key, value)
}

func (s *flakyStore) setFailing(v bool) {
	s.mu.Lock()
	s.failing = v
	s.mu.Unlock()
}

func newTestApp(t *testing.T) (*App, *flakyStore) {
	t.Helper()
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	state := NewState(context.Background(), storage.NewRepository(store),
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(log.Discard()),
		WithFallbackCategory(core.CategoryC))
	auth, err := NewAuth(state, 4,
		Credential{Username: "admin", Password: "password", Role: core.RoleAdmin},
		Credential{Username: "bendahara", Password: "rahasia", Role: core.RoleTreasurer})
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}
	return NewApp(state, auth, nil), store
}

func head(name, kkNo, unit string, cat core.Category) core.Resident {
	return core.Resident{
		Name: name, HouseholdID: kkNo, NIK: "3201019999990001", Sex: core.Male,
		Relationship: core.HeadOfHousehold, Address: "Jl. " + unit, Unit: unit, Category: cat,
	}
}

func member(name, kkNo, rel string) core.Resident {
	return core.Resident{
		Name: name, HouseholdID: kkNo, NIK: "3201019999990002", Sex: core.Female,
		Relationship: rel, Address: "Alamat lain", Unit: "Z9", Category: core.CategoryA,
	}
}

func TestNewStateDefaults(t *testing.T) {
	app, _ := newTestApp(t)
	if len(app.State.Residents()) != 0 || app.State.User() != nil {
		t.Fatalf("expected empty state")
	}
	if got := app.State.Rates(); got[core.CategoryC].RT.Rupiah != 35000 {
		t.Fatalf("expected default rates, got %+v", got)
	}
	if len(app.State.AdminLists()[core.ListUnit]) != 32 {
		t.Fatalf("expected default admin lists")
	}
}

func TestNewStateFallsBackOnCorruptKeys(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = store.Put(ctx, storage.KeyResidents, []byte(`{not json`))
	_ = store.Put(ctx, storage.KeyRateConfig, []byte(`{"version":99,"payload":{}}`))
	_ = store.Put(ctx, storage.KeyExpenses, []byte(`[{"id":"e1","tanggal":"2025-03-01","deskripsi":"Lampu","jumlah":30000}]`))

	state := NewState(ctx, storage.NewRepository(store), WithLogger(log.Discard()))
	if len(state.Residents()) != 0 {
		t.Fatalf("corrupt residents must fall back to empty")
	}
	if state.Rates()[core.CategoryA].RT.Rupiah != 75000 {
		t.Fatalf("unknown version must fall back to default rates")
	}
	if got := state.Expenses(); len(got) != 1 || got[0].Amount.Rupiah != 30000 {
		t.Fatalf("legacy expenses not loaded: %+v", got)
	}
}

func TestWriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	app, store := newTestApp(t)
	if _, err := app.Residents.Save(ctx, head("Budi", kk, "A1", core.CategoryA)); err != nil {
		t.Fatalf("save: %v", err)
	}

	store.setFailing(true)
	_, err := app.Dues.RecordPayment(ctx, core.PaymentKey{HouseholdID: kk, Year: 2025, Month: 3, Type: core.DuesRT})
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected write error, got %v", err)
	}
	if len(app.State.Payments()) != 0 {
		t.Fatalf("failed write must leave payments unchanged")
	}
	if _, err := app.Residents.Save(ctx, member("Siti", kk, "Istri")); !errors.Is(err, errDiskFull) {
		t.Fatalf("expected write error, got %v", err)
	}
	if len(app.State.Residents()) != 1 {
		t.Fatalf("failed write must leave residents unchanged")
	}

	store.setFailing(false)
	if _, err := app.Dues.RecordPayment(ctx, core.PaymentKey{HouseholdID: kk, Year: 2025, Month: 3, Type: core.DuesRT}); err != nil {
		t.Fatalf("record after recovery: %v", err)
	}
}

func TestMutationsPersistAndNotify(t *testing.T) {
	ctx := context.Background()
	app, store := newTestApp(t)

	var keys []string
	app.State.Subscribe(func(key string) { keys = append(keys, key) })

	if _, err := app.Residents.Save(ctx, head("Budi", kk, "A1", core.CategoryA)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(keys) != 1 || keys[0] != storage.KeyResidents {
		t.Fatalf("unexpected notifications %v", keys)
	}

	reloaded := NewState(ctx, storage.NewRepository(store), WithLogger(log.Discard()))
	if got := reloaded.Residents(); len(got) != 1 || got[0].Name != "Budi" {
		t.Fatalf("residents not persisted: %+v", got)
	}
}
