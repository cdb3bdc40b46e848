package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"warga/internal/core"
	"warga/internal/export"
)

type fakePublisher struct {
	tab  string
	rows [][]string
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, tab string, rows [][]string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.tab, p.rows = tab, rows
	return "sheet!A1", nil
}

func seededApp(t *testing.T) *App {
	t.Helper()
	app, _ := newTestApp(t)
	sum, err := Seed(context.Background(), app)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if sum.Residents != 7 || sum.Payments != 4 || sum.Expenses != 1 || sum.Incomes != 1 {
		t.Fatalf("unexpected seed summary %+v", sum)
	}
	return app
}

func TestReportsRecap(t *testing.T) {
	app := seededApp(t)

	rc, err := app.Reports.Recap(2025, 3)
	if err != nil {
		t.Fatalf("recap: %v", err)
	}
	// February's payment for household 3 stays out of March.
	if rc.CollectedByType[core.DuesRT].Rupiah != 125000 || rc.CollectedByType[core.DuesPKK].Rupiah != 15000 {
		t.Fatalf("unexpected dues by type %+v", rc.CollectedByType)
	}
	if rc.TotalIncome.Rupiah != 390000 || rc.ExpenseTotal.Rupiah != 150000 || rc.Balance.Rupiah != 240000 {
		t.Fatalf("unexpected totals %+v", rc)
	}
	// A + B + C + a headed household without a category billed as C.
	if rc.ExpectedDuesTotal.Rupiah != 230000 {
		t.Fatalf("expected dues target 230000, got %d", rc.ExpectedDuesTotal.Rupiah)
	}
	if rc.TotalResidents != 7 || rc.TotalHouseholds != 4 {
		t.Fatalf("unexpected counts %+v", rc)
	}

	if _, err := app.Reports.Recap(2025, 13); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestReportsPublicHidesHouseholds(t *testing.T) {
	app := seededApp(t)
	pub, err := app.Reports.Public(2025, 3)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if len(pub.Transactions) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(pub.Transactions))
	}
	for _, tx := range pub.Transactions {
		if tx.HouseholdID != "" || strings.Contains(tx.Description, "Santoso") {
			t.Fatalf("public transaction leaks household data: %+v", tx)
		}
	}
	if pub.Demographics.TotalResidents != 7 {
		t.Fatalf("unexpected demographics %+v", pub.Demographics)
	}
}

func TestReportsBundle(t *testing.T) {
	app := seededApp(t)
	b, err := app.Reports.Bundle(context.Background(), export.ReportRT, 2025, 3)
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if b.CSV.FileName != "Laporan_RT_Maret_2025.csv" || b.XLSX.FileName != "Laporan_RT_Maret_2025.xlsx" {
		t.Fatalf("unexpected file names %q, %q", b.CSV.FileName, b.XLSX.FileName)
	}

	csvRows, err := export.ReadCSV(bytes.NewReader(b.CSV.Body))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	xlsxRows, err := export.ReadXLSXRows(bytes.NewReader(b.XLSX.Body))
	if err != nil {
		t.Fatalf("read xlsx: %v", err)
	}
	if csvRows[0][0] != "Laporan Pemasukan Iuran RT" || xlsxRows[0][0] != csvRows[0][0] {
		t.Fatalf("unexpected titles %q, %q", csvRows[0][0], xlsxRows[0][0])
	}
	if !strings.Contains(string(b.CSV.Body), "Budi Santoso") {
		t.Fatalf("RT report must name the paying household")
	}

	if _, err := app.Reports.Export(context.Background(), export.ReportRT, "pdf", 2025, 3); !errors.Is(err, export.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestReportsRenderHonoursCancellation(t *testing.T) {
	app := seededApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := app.Reports.Export(ctx, export.ReportCombined, export.FormatXLSX, 2025, 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("export: expected context.Canceled, got %v", err)
	}
	if _, err := app.Reports.Bundle(ctx, export.ReportRT, 2025, 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("bundle: expected context.Canceled, got %v", err)
	}
}

func TestReportsPublish(t *testing.T) {
	app := seededApp(t)
	ctx := context.Background()

	if _, err := app.Reports.Publish(ctx, export.ReportCombined, 2025, 3); !errors.Is(err, ErrPublishingDisabled) {
		t.Fatalf("expected ErrPublishingDisabled, got %v", err)
	}

	pub := &fakePublisher{}
	reports := NewReports(app.State, pub)
	ref, err := reports.Publish(ctx, export.ReportPKK, 2025, 3)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ref != "sheet!A1" || pub.tab != "PKK Maret 2025" || len(pub.rows) == 0 {
		t.Fatalf("unexpected publish: ref=%q tab=%q rows=%d", ref, pub.tab, len(pub.rows))
	}

	pub.err = errors.New("quota exceeded")
	if _, err := reports.Publish(ctx, export.ReportPKK, 2025, 3); err == nil || !strings.Contains(err.Error(), "PKK Maret 2025") {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}
