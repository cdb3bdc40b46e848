// Package export renders monthly financial reports as CSV and XLSX.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"warga/internal/core"
)

const (
	ReportRT       ReportType = "RT"
	ReportPKK      ReportType = "PKK"
	ReportCombined ReportType = "Keseluruhan"

	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ReportTypes lists the canned reports.
var ReportTypes = []ReportType{ReportRT, ReportPKK, ReportCombined}

var (
	ErrUnknownReport = errors.New("unknown report type")
	ErrUnknownFormat = errors.New("unknown export format")
)

type (
	// ReportType names one of the canned reports.
	ReportType string

	// Format is an output file format.
	Format string

	// Report is the cell layout of one report. HeaderRow is the index of
	// the table header within Rows.
	Report struct {
		Type      ReportType
		Year      int
		Month     int
		Rows      [][]string
		HeaderRow int
	}
)

// ParseReportType accepts a report name in any case.
func ParseReportType(s string) (ReportType, error) {
	for _, t := range ReportTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownReport)
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// FileName returns the download name, e.g. Laporan_RT_Maret_2025.csv.
func FileName(t ReportType, year, month int, f Format) string {
	return fmt.Sprintf("Laporan_%s_%s_%d.%s", t, core.MonthName(month), year, f)
}

// Build lays out a report for the given month from b.
func Build(t ReportType, b core.Books, year, month int) (Report, error) {
	if !core.ValidPeriod(year, month) {
		return Report{}, core.ErrInvalidMonth
	}
	period := []string{"Periode: " + core.MonthName(month) + " " + strconv.Itoa(year)}
	txs := core.BuildTransactions(b, year, month)

	r := Report{Type: t, Year: year, Month: month}
	switch t {
	case ReportCombined:
		recap := core.BuildMonthlyRecap(b, year, month)
		r.Rows = [][]string{
			{"Laporan Keuangan Keseluruhan"},
			period,
			{},
			{"", "Ringkasan Keuangan"},
			{"", "Total Pemasukan", recap.TotalIncome.Grouped()},
			{"", "Total Pengeluaran", recap.ExpenseTotal.Grouped()},
			{"", "Saldo Akhir", recap.Balance.Grouped()},
			{},
			{"Tanggal", "Keterangan", "Pemasukan (IDR)", "Pengeluaran (IDR)"},
		}
		r.HeaderRow = len(r.Rows) - 1
		for _, tx := range txs {
			in, out := "", ""
			if tx.Flow == core.Income {
				in = tx.Amount.Grouped()
			} else {
				out = tx.Amount.Grouped()
			}
			r.Rows = append(r.Rows, []string{FormatDate(tx), tx.Description, in, out})
		}
	case ReportRT, ReportPKK:
		dues := core.DuesOfType(txs, core.DuesType(t))
		r.Rows = [][]string{
			{"Laporan Pemasukan Iuran " + string(t)},
			period,
			{},
			{"", "Total Pemasukan Iuran", core.Sum(dues).Grouped()},
			{},
			{"Tanggal Bayar", "Keterangan", "Jumlah (IDR)"},
		}
		r.HeaderRow = len(r.Rows) - 1
		for _, tx := range dues {
			r.Rows = append(r.Rows, []string{FormatDate(tx), tx.Description, tx.Amount.Grouped()})
		}
	default:
		return Report{}, fmt.Errorf("%q: %w", t, ErrUnknownReport)
	}
	return r, nil
}

// FormatDate renders a transaction date as d/m/yyyy.
func FormatDate(tx core.Transaction) string {
	return tx.Time.Format("2/1/2006")
}
