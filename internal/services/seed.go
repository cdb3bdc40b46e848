package services

import (
	"context"
	"fmt"

	"warga/internal/core"
)

// SeedSummary reports what Seed added.
type SeedSummary struct {
	Residents int
	Payments  int
	Expenses  int
	Incomes   int
}

func sampleResidents() []core.Resident {
	m := func(name, kk, nik string, sex core.Sex, rel, unit string, cat core.Category, born core.Date, religion, edu, job, marital string) core.Resident {
		return core.Resident{
			Name: name, HouseholdID: kk, NIK: nik, Sex: sex, Relationship: rel,
			Address: "Jl. Melati Blok " + unit, Unit: unit, Category: cat,
			BirthPlace: "Bandung", BirthDate: born,
			Religion: religion, Education: edu, Occupation: job, MaritalStatus: marital,
		}
	}
	return []core.Resident{
		m("Budi Santoso", "3273010101010001", "3273011203800001", core.Male, core.HeadOfHousehold, "A1", core.CategoryA, core.NewDate(1980, 3, 12), "Islam", "S1", "Karyawan Swasta", "Kawin"),
		m("Sri Wahyuni", "3273010101010001", "3273014506820002", core.Female, "Istri", "A1", "", core.NewDate(1982, 6, 5), "Islam", "SMA/SMK", "Wiraswasta", "Kawin"),
		m("Rizky Santoso", "3273010101010001", "3273011010120003", core.Male, "Anak", "A1", "", core.NewDate(2012, 10, 10), "Islam", "SD", "Pelajar/Mahasiswa", "Belum Kawin"),
		m("Made Wirawan", "3273010101010002", "3273010202750004", core.Male, core.HeadOfHousehold, "B3", core.CategoryB, core.NewDate(1975, 2, 2), "Hindu", "Diploma", "PNS", "Kawin"),
		m("Ketut Ayu", "3273010101010002", "3273014808200005", core.Female, "Anak", "B3", "", core.NewDate(2021, 8, 8), "Hindu", "Tidak Sekolah", "Belum/Tidak Bekerja", "Belum Kawin"),
		m("Yohanes Lim", "3273010101010003", "3273011111600006", core.Male, core.HeadOfHousehold, "C5", core.CategoryC, core.NewDate(1960, 11, 11), "Kristen Katolik", "S2", "Pensiunan", "Cerai Mati"),
		m("Siti Aminah", "3273010101010004", "3273015505900007", core.Female, core.HeadOfHousehold, "D2", "", core.NewDate(1990, 5, 15), "Islam", "SMA/SMK", "Wiraswasta", "Cerai Hidup"),
	}
}

// Seed loads a small sample neighbourhood: residents, the current month's
// dues for part of the households, and a few cash entries.
func Seed(ctx context.Context, app *App) (SeedSummary, error) {
	var sum SeedSummary
	n, err := app.Residents.Import(ctx, sampleResidents())
	sum.Residents = n
	if err != nil {
		return sum, err
	}

	now := app.State.Now()
	year, month := now.Year(), int(now.Month())
	prevYear, prevMonth := core.AddMonths(year, month, -1)
	payments := []core.PaymentKey{
		{HouseholdID: "3273010101010001", Year: year, Month: month, Type: core.DuesRT},
		{HouseholdID: "3273010101010001", Year: year, Month: month, Type: core.DuesPKK},
		{HouseholdID: "3273010101010002", Year: year, Month: month, Type: core.DuesRT},
		{HouseholdID: "3273010101010003", Year: prevYear, Month: prevMonth, Type: core.DuesRT},
	}
	for _, k := range payments {
		if _, err := app.Dues.RecordPayment(ctx, k); err != nil {
			return sum, fmt.Errorf("seed payment: %w", err)
		}
		sum.Payments++
	}

	date := core.NewDate(year, month, 1).String()
	if _, err := app.Cashbook.AddExpense(ctx, CashEntryInput{Date: date, Description: "Perbaikan lampu jalan", Amount: "150.000"}); err != nil {
		return sum, fmt.Errorf("seed expense: %w", err)
	}
	sum.Expenses++
	if _, err := app.Cashbook.AddIncome(ctx, CashEntryInput{Date: date, Description: "Donasi warga", Amount: "250.000"}); err != nil {
		return sum, fmt.Errorf("seed income: %w", err)
	}
	sum.Incomes++
	return sum, nil
}
