package core

import (
	"fmt"
	"time"
)

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
	CategoryD Category = "D"

	DuesRT  DuesType = "RT"
	DuesPKK DuesType = "PKK"
)

// ArrearsWindowMonths is the number of trailing months an arrears scan covers.
const ArrearsWindowMonths = 6

type (
	// Category is the household rate tier.
	Category string

	// DuesType distinguishes the two monthly dues.
	DuesType string

	// Rates holds the monthly amounts for one category.
	Rates struct {
		RT  Money `json:"RT"`
		PKK Money `json:"PKK"`
	}

	// RateConfig maps each category to its monthly rates.
	RateConfig map[Category]Rates

	// DuesPayment settles one (household, year, month, type) obligation.
	DuesPayment struct {
		ID          string    `json:"id"`
		HouseholdID string    `json:"noKK"`
		Year        int       `json:"tahun"`
		Month       int       `json:"bulan"`
		Type        DuesType  `json:"jenis"`
		Amount      Money     `json:"jumlah"`
		PaidAt      time.Time `json:"tanggalBayar"`
	}

	// PaymentKey identifies a single dues obligation.
	PaymentKey struct {
		HouseholdID string
		Year        int
		Month       int
		Type        DuesType
	}

	// Ledger indexes payments by their obligation key.
	Ledger struct {
		byKey map[PaymentKey]DuesPayment
	}

	// ArrearsLine is one month with at least one unpaid obligation.
	// A nil amount means that obligation is paid.
	ArrearsLine struct {
		Year      int    `json:"tahun"`
		Month     int    `json:"bulan"`
		MonthName string `json:"namaBulan"`
		RT        *Money `json:"tagihanRT"`
		PKK       *Money `json:"tagihanPKK"`
	}

	// Arrears is the result of a trailing-window scan for one household.
	Arrears struct {
		HouseholdID      string        `json:"noKK"`
		HeadName         string        `json:"kepalaKeluarga"`
		Category         Category      `json:"kategoriKK"`
		CategoryFallback bool          `json:"kategoriDefault"`
		Lines            []ArrearsLine `json:"tagihan"`
		Total            Money         `json:"total"`
	}
)

// Categories lists the tiers in ordinal order.
var Categories = []Category{CategoryA, CategoryB, CategoryC, CategoryD}

// DuesTypes lists the dues types in reporting order.
var DuesTypes = []DuesType{DuesRT, DuesPKK}

// DuesLabels are the display labels of each dues type.
var DuesLabels = map[DuesType]string{
	DuesRT:  "Iuran RT",
	DuesPKK: "Iuran PKK",
}

func (c Category) Valid() bool {
	switch c {
	case CategoryA, CategoryB, CategoryC, CategoryD:
		return true
	}
	return false
}

func (t DuesType) Valid() bool {
	return t == DuesRT || t == DuesPKK
}

// DefaultRateConfig returns the initial monthly rates.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		CategoryA: {RT: Rp(75000), PKK: Rp(15000)},
		CategoryB: {RT: Rp(50000), PKK: Rp(10000)},
		CategoryC: {RT: Rp(35000), PKK: Rp(5000)},
		CategoryD: {RT: Rp(30000), PKK: Rp(5000)},
	}
}

// For returns the rates of a category, or zero rates if it is not configured.
func (rc RateConfig) For(c Category) Rates {
	return rc[c]
}

// Amount returns the configured rate of one dues type for a category.
func (rc RateConfig) Amount(c Category, t DuesType) Money {
	r := rc[c]
	if t == DuesPKK {
		return r.PKK
	}
	return r.RT
}

// Clone returns an independent copy of the configuration.
func (rc RateConfig) Clone() RateConfig {
	out := make(RateConfig, len(rc))
	for k, v := range rc {
		out[k] = v
	}
	return out
}

func (rc RateConfig) Validate() error {
	for _, c := range Categories {
		r, ok := rc[c]
		if !ok {
			return fmt.Errorf("category %s: %w", c, ErrInvalidCategory)
		}
		if r.RT.Rupiah < 0 || r.PKK.Rupiah < 0 {
			return fmt.Errorf("category %s: %w", c, ErrInvalidAmount)
		}
	}
	for c := range rc {
		if !c.Valid() {
			return fmt.Errorf("category %q: %w", c, ErrInvalidCategory)
		}
	}
	return nil
}

// PaymentID is the canonical id of the payment for a key.
func PaymentID(k PaymentKey) string {
	return fmt.Sprintf("%s-%d-%d-%s", k.HouseholdID, k.Year, k.Month, k.Type)
}

// Key returns the obligation key the payment settles.
func (p DuesPayment) Key() PaymentKey {
	return PaymentKey{HouseholdID: p.HouseholdID, Year: p.Year, Month: p.Month, Type: p.Type}
}

func (p DuesPayment) Validate() error {
	if !ValidHouseholdID(p.HouseholdID) {
		return ErrInvalidHouseholdID
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1 {
		return ErrInvalidDate
	}
	if !p.Type.Valid() {
		return ErrInvalidDuesType
	}
	if p.Amount.Rupiah < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewPayment builds a payment for key with the amount taken from the
// current rate of category.
func NewPayment(key PaymentKey, category Category, rates RateConfig, paidAt time.Time) DuesPayment {
	return DuesPayment{
		ID:          PaymentID(key),
		HouseholdID: key.HouseholdID,
		Year:        key.Year,
		Month:       key.Month,
		Type:        key.Type,
		Amount:      rates.Amount(category, key.Type),
		PaidAt:      paidAt,
	}
}

// UpsertPayment replaces any payment with the same key, or appends p.
func UpsertPayment(payments []DuesPayment, p DuesPayment) []DuesPayment {
	out := make([]DuesPayment, 0, len(payments)+1)
	key := p.Key()
	for _, existing := range payments {
		if existing.Key() == key {
			continue
		}
		out = append(out, existing)
	}
	return append(out, p)
}

// NewLedger indexes payments. A later payment for the same key wins.
func NewLedger(payments []DuesPayment) *Ledger {
	l := &Ledger{byKey: make(map[PaymentKey]DuesPayment, len(payments))}
	for _, p := range payments {
		l.byKey[p.Key()] = p
	}
	return l
}

// IsPaid reports whether a payment exists for exactly this obligation.
func (l *Ledger) IsPaid(householdID string, year, month int, t DuesType) bool {
	_, ok := l.Lookup(householdID, year, month, t)
	return ok
}

// Lookup returns the payment recorded for an obligation.
func (l *Ledger) Lookup(householdID string, year, month int, t DuesType) (DuesPayment, bool) {
	if l == nil {
		return DuesPayment{}, false
	}
	p, ok := l.byKey[PaymentKey{HouseholdID: householdID, Year: year, Month: month, Type: t}]
	return p, ok
}

// ArrearsScan walks the trailing window ending at now's month, newest first,
// and lists every month where RT or PKK is unpaid at the current rates.
func ArrearsScan(householdID string, rates Rates, ledger *Ledger, now time.Time) ([]ArrearsLine, Money) {
	var (
		lines []ArrearsLine
		total Money
	)
	for i := 0; i < ArrearsWindowMonths; i++ {
		year, month := AddMonths(now.Year(), int(now.Month()), -i)
		line := ArrearsLine{Year: year, Month: month, MonthName: MonthName(month)}
		if !ledger.IsPaid(householdID, year, month, DuesRT) {
			amount := rates.RT
			line.RT = &amount
			total = total.Add(amount)
		}
		if !ledger.IsPaid(householdID, year, month, DuesPKK) {
			amount := rates.PKK
			line.PKK = &amount
			total = total.Add(amount)
		}
		if line.RT != nil || line.PKK != nil {
			lines = append(lines, line)
		}
	}
	return lines, total
}

// AddMonths shifts a (year, month) pair by delta months.
func AddMonths(year, month, delta int) (int, int) {
	idx := year*12 + (month - 1) + delta
	y := idx / 12
	m := idx%12 + 1
	if m < 1 {
		m += 12
		y--
	}
	return y, m
}
