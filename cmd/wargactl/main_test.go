package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"warga/internal/backend"
	"warga/internal/config"
	"warga/internal/core"
	"warga/internal/log"
	"warga/internal/services"
	"warga/internal/storage"
)

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

// useTestApp points every command at one in-memory app for the test.
func useTestApp(t *testing.T) *services.App {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")

	ctx := context.Background()
	state := services.NewState(ctx, storage.NewRepository(storage.NewMemoryStore()),
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithLogger(log.Discard()))
	auth, err := services.NewAuth(state, 4,
		services.Credential{Username: "admin", Password: "password", Role: core.RoleAdmin},
		services.Credential{Username: "bendahara", Password: "rahasia", Role: core.RoleTreasurer})
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}
	shared := services.NewApp(state, auth, nil)

	prev := openApp
	openApp = func(context.Context, *config.Config, *log.Logger) (*services.App, backend.CleanupFunc, error) {
		return shared, func() error { return nil }, nil
	}
	t.Cleanup(func() { openApp = prev })
	return shared
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestSessionCommands(t *testing.T) {
	useTestApp(t)

	if _, err := run(t, "", "residents", "list"); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := run(t, "", "login", "admin", "-p", "salah"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	out, err := run(t, "password\n", "login", "ADMIN")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Logged in as admin (admin)") {
		t.Fatalf("unexpected login output %q", out)
	}
	if out := mustRun(t, "whoami"); strings.TrimSpace(out) != "admin (admin)" {
		t.Fatalf("unexpected whoami output %q", out)
	}

	mustRun(t, "logout")
	if _, err := run(t, "", "whoami"); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("expected logged out, got %v", err)
	}
}

func TestResidentCommands(t *testing.T) {
	app := useTestApp(t)
	mustRun(t, "login", "admin", "-p", "password")

	out := mustRun(t, "residents", "add",
		"--name", "Andi Wijaya", "--kk", "3273010101010009", "--nik", "3273010101900009",
		"--sex", "L", "--birth-date", "1990-01-01", "--unit", "A4")
	if !strings.Contains(out, "Registered Andi Wijaya") || !strings.Contains(out, "household uses C") {
		t.Fatalf("unexpected add output %q", out)
	}

	if _, err := run(t, "", "residents", "add",
		"--name", "Andi Lain", "--kk", "3273010101010009", "--nik", "3273010101900010", "--sex", "L"); !errors.Is(err, core.ErrDuplicateHead) {
		t.Fatalf("expected duplicate head, got %v", err)
	}
	if _, err := run(t, "", "residents", "add",
		"--name", "X", "--kk", "3273010101010010", "--nik", "1", "--sex", "Q"); err == nil {
		t.Fatal("expected invalid sex to fail")
	}

	out = mustRun(t, "households")
	if !strings.Contains(out, "3273010101010009") || !strings.Contains(out, "Andi Wijaya") {
		t.Fatalf("unexpected households output %q", out)
	}

	id := app.Residents.List("andi", 1).Items[0].ID
	out, err := run(t, "n\n", "residents", "delete", id)
	if err != nil || !strings.Contains(out, "Cancelled") {
		t.Fatalf("expected cancelled delete, got %q, %v", out, err)
	}
	if app.Residents.List("", 1).TotalItems != 1 {
		t.Fatal("resident removed without confirmation")
	}
	mustRun(t, "residents", "delete", id, "--yes")
	if app.Residents.List("", 1).TotalItems != 0 {
		t.Fatal("resident not removed")
	}
}

func TestDuesAndCashCommands(t *testing.T) {
	useTestApp(t)
	mustRun(t, "login", "bendahara", "-p", "rahasia")

	if _, err := run(t, "", "seed", "--yes"); !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("treasurer must not seed, got %v", err)
	}
	mustRun(t, "login", "admin", "-p", "password")
	if out := mustRun(t, "seed", "--yes"); !strings.Contains(out, "Seeded 7 residents") {
		t.Fatalf("unexpected seed output %q", out)
	}

	out := mustRun(t, "arrears", "3273010101010001")
	if !strings.Contains(out, "Budi Santoso") || !strings.Contains(out, "Oktober 2024") {
		t.Fatalf("unexpected arrears output %q", out)
	}
	if _, err := run(t, "", "arrears", "123"); !errors.Is(err, core.ErrInvalidHouseholdID) {
		t.Fatalf("expected invalid id, got %v", err)
	}

	out = mustRun(t, "pay", "3273010101010002", "--type", "pkk", "--year", "2025", "--month", "3")
	if !strings.Contains(out, "Rp10.000") {
		t.Fatalf("expected category B PKK rate, got %q", out)
	}

	mustRun(t, "expenses", "add", "--date", "2025-03-20", "--description", "Sapu", "--amount", "10.000")
	if _, err := run(t, "", "expenses", "add", "--date", "2025-03-20", "--description", "Sapu", "--amount", "-5"); err == nil {
		t.Fatal("expected negative amount to fail")
	}
	out = mustRun(t, "expenses", "list", "--year", "2025", "--month", "3")
	if !strings.Contains(out, "Sapu") || !strings.Contains(out, "Rp160.000") {
		t.Fatalf("unexpected expense list %q", out)
	}

	out = mustRun(t, "recap", "--year", "2025", "--month", "3")
	if !strings.Contains(out, "Rp240.000") {
		t.Fatalf("expected balance Rp240.000 after the extra expense and PKK payment, got %q", out)
	}

	mustRun(t, "rates", "set", "a", "--rt", "80.000")
	out = mustRun(t, "rates", "show")
	if !strings.Contains(out, "Rp80.000") || !strings.Contains(out, "Rp15.000") {
		t.Fatalf("unexpected rates %q", out)
	}
}

func TestExportAndPublish(t *testing.T) {
	useTestApp(t)
	mustRun(t, "login", "admin", "-p", "password")
	mustRun(t, "seed", "--yes")

	dir := t.TempDir()
	mustRun(t, "export", "--type", "rt", "--format", "all", "--year", "2025", "--month", "3", "--out", dir)
	for _, name := range []string{"Laporan_RT_Maret_2025.csv", "Laporan_RT_Maret_2025.xlsx"} {
		if info, err := os.Stat(filepath.Join(dir, name)); err != nil || info.Size() == 0 {
			t.Fatalf("missing export %s: %v", name, err)
		}
	}
	if _, err := run(t, "", "export", "--format", "pdf", "--out", dir); err == nil {
		t.Fatal("expected unknown format to fail")
	}

	if _, err := run(t, "", "publish", "--year", "2025", "--month", "3"); !errors.Is(err, services.ErrPublishingDisabled) {
		t.Fatalf("expected publishing disabled, got %v", err)
	}
}

func TestListCommands(t *testing.T) {
	useTestApp(t)
	mustRun(t, "login", "admin", "-p", "password")

	mustRun(t, "lists", "add", "pekerjaan", "Petani")
	if out := mustRun(t, "lists", "show", "pekerjaan"); !strings.Contains(out, "Petani") {
		t.Fatalf("expected new item, got %q", out)
	}
	if _, err := run(t, "", "lists", "add", "hobi", "x"); !errors.Is(err, core.ErrUnknownListCategory) {
		t.Fatalf("expected unknown category, got %v", err)
	}
}

func TestExpenseReceiptFile(t *testing.T) {
	app := useTestApp(t)
	mustRun(t, "login", "bendahara", "-p", "rahasia")

	dir := t.TempDir()
	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0x42}, 12000)...)
	photo := filepath.Join(dir, "nota.png")
	if err := os.WriteFile(photo, png, 0o644); err != nil {
		t.Fatalf("write receipt: %v", err)
	}

	mustRun(t, "expenses", "add", "--date", "2025-03-05", "--description", "Lampu", "--amount", "30.000", "--receipt-file", photo)
	got := app.Cashbook.Expenses(2025, 3)
	if len(got) != 1 || !strings.HasPrefix(got[0].Receipt, "data:image/png;base64,") || len(got[0].Receipt) < 16000 {
		t.Fatalf("receipt not embedded: %+v", got)
	}

	notes := filepath.Join(dir, "nota.txt")
	if err := os.WriteFile(notes, []byte("bukan gambar"), 0o644); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if _, err := run(t, "", "expenses", "add", "--date", "2025-03-05", "--description", "x", "--amount", "1000", "--receipt-file", notes); !errors.Is(err, core.ErrInvalidReceipt) {
		t.Fatalf("expected invalid receipt, got %v", err)
	}
	if len(app.Cashbook.Expenses(0, 0)) != 1 {
		t.Fatal("rejected receipt must not add an expense")
	}
}
