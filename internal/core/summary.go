package core

import (
	"fmt"
	"sort"
	"time"
)

const (
	Income  Flow = "income"
	Outflow Flow = "expense"

	KindDues        TransactionKind = "dues"
	KindOtherIncome TransactionKind = "other_income"
	KindExpense     TransactionKind = "expense"
)

type (
	// Flow tells whether a transaction adds to or subtracts from the balance.
	Flow string

	// TransactionKind is the structured source of a transaction entry.
	TransactionKind string

	// MonthlyRecap is the financial summary of one calendar month.
	MonthlyRecap struct {
		Year              int                `json:"tahun"`
		Month             int                `json:"bulan"`
		CollectedByType   map[DuesType]Money `json:"iuranPerJenis"`
		DuesTotal         Money              `json:"totalIuran"`
		OtherIncomeTotal  Money              `json:"pemasukanLain"`
		TotalIncome       Money              `json:"totalPemasukan"`
		ExpenseTotal      Money              `json:"totalPengeluaran"`
		Balance           Money              `json:"saldo"`
		ExpectedDuesTotal Money              `json:"targetIuran"`
		TotalResidents    int                `json:"totalWarga"`
		TotalHouseholds   int                `json:"totalKeluarga"`
	}

	// Transaction is one row of the merged monthly transaction list.
	Transaction struct {
		ID          string          `json:"id"`
		Time        time.Time       `json:"tanggal"`
		Description string          `json:"deskripsi"`
		Amount      Money           `json:"jumlah"`
		Flow        Flow            `json:"type"`
		Kind        TransactionKind `json:"kind"`
		DuesType    DuesType        `json:"jenis,omitempty"`
		HouseholdID string          `json:"noKK,omitempty"`
	}

	// Books is the set of collections the financial aggregator reads.
	Books struct {
		Residents   []Resident
		Payments    []DuesPayment
		OtherIncome []OtherIncome
		Expenses    []Expense
		Rates       RateConfig
		Fallback    Category
	}
)

// PaymentsInPeriod returns payments tagged with the given obligation period.
func PaymentsInPeriod(payments []DuesPayment, year, month int) []DuesPayment {
	var out []DuesPayment
	for _, p := range payments {
		if p.Year == year && p.Month == month {
			out = append(out, p)
		}
	}
	return out
}

// BuildMonthlyRecap aggregates dues by period tag and other cash entries
// by their calendar date.
func BuildMonthlyRecap(b Books, year, month int) MonthlyRecap {
	rc := MonthlyRecap{
		Year:            year,
		Month:           month,
		CollectedByType: map[DuesType]Money{DuesRT: {}, DuesPKK: {}},
		TotalResidents:  len(b.Residents),
	}

	for _, p := range PaymentsInPeriod(b.Payments, year, month) {
		rc.CollectedByType[p.Type] = rc.CollectedByType[p.Type].Add(p.Amount)
	}
	rc.DuesTotal = rc.CollectedByType[DuesRT].Add(rc.CollectedByType[DuesPKK])

	for _, in := range b.OtherIncome {
		if in.Date.InMonth(year, month) {
			rc.OtherIncomeTotal = rc.OtherIncomeTotal.Add(in.Amount)
		}
	}
	for _, e := range b.Expenses {
		if e.Date.InMonth(year, month) {
			rc.ExpenseTotal = rc.ExpenseTotal.Add(e.Amount)
		}
	}

	rc.TotalIncome = rc.DuesTotal.Add(rc.OtherIncomeTotal)
	rc.Balance = rc.TotalIncome.Sub(rc.ExpenseTotal)
	rc.ExpectedDuesTotal = ExpectedDues(b.Residents, b.Rates, b.Fallback)

	groups, _ := GroupByHousehold(b.Residents)
	rc.TotalHouseholds = len(groups)
	return rc
}

// ExpectedDues sums RT+PKK at current rates over every household,
// regardless of payment status.
func ExpectedDues(residents []Resident, rates RateConfig, fallback Category) Money {
	var total Money
	groups, order := GroupByHousehold(residents)
	for _, id := range order {
		r := rates.For(Summarize(id, groups[id], fallback).Category)
		total = total.Add(r.RT).Add(r.PKK)
	}
	return total
}

// BuildTransactions merges the month's dues payments, other income and
// expenses, newest first.
func BuildTransactions(b Books, year, month int) []Transaction {
	return buildTransactions(b, year, month, func(p DuesPayment) string {
		name := p.HouseholdID
		if head, ok := HeadOf(b.Residents, p.HouseholdID); ok && head.Name != "" {
			name = head.Name
		}
		return fmt.Sprintf("Iuran %s - %s", p.Type, name)
	})
}

// PublicTransactions is BuildTransactions without household identities.
func PublicTransactions(b Books, year, month int) []Transaction {
	txs := buildTransactions(b, year, month, func(p DuesPayment) string {
		return fmt.Sprintf("Pembayaran Iuran Warga (%s)", p.Type)
	})
	for i := range txs {
		txs[i].HouseholdID = ""
	}
	return txs
}

func buildTransactions(b Books, year, month int, describe func(DuesPayment) string) []Transaction {
	var out []Transaction
	for _, p := range PaymentsInPeriod(b.Payments, year, month) {
		out = append(out, Transaction{
			ID:          p.ID,
			Time:        p.PaidAt,
			Description: describe(p),
			Amount:      p.Amount,
			Flow:        Income,
			Kind:        KindDues,
			DuesType:    p.Type,
			HouseholdID: p.HouseholdID,
		})
	}
	for _, in := range b.OtherIncome {
		if !in.Date.InMonth(year, month) {
			continue
		}
		out = append(out, Transaction{
			ID:          in.ID,
			Time:        in.Date.Time,
			Description: in.Description,
			Amount:      in.Amount,
			Flow:        Income,
			Kind:        KindOtherIncome,
		})
	}
	for _, e := range b.Expenses {
		if !e.Date.InMonth(year, month) {
			continue
		}
		out = append(out, Transaction{
			ID:          e.ID,
			Time:        e.Date.Time,
			Description: e.Description,
			Amount:      e.Amount,
			Flow:        Outflow,
			Kind:        KindExpense,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	return out
}

// DuesOfType filters dues entries of one type from a transaction list.
func DuesOfType(txs []Transaction, t DuesType) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.Kind == KindDues && tx.DuesType == t {
			out = append(out, tx)
		}
	}
	return out
}

// Sum totals the amounts of a transaction list.
func Sum(txs []Transaction) Money {
	var total Money
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}
