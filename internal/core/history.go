package core

import (
	"strings"
	"time"
)

type (
	// DuesStatus is the settlement state of one dues type in a month.
	DuesStatus struct {
		Paid   bool       `json:"lunas"`
		PaidAt *time.Time `json:"tanggal,omitempty"`
	}

	// PaymentStatus is a household's RT and PKK status for one month.
	PaymentStatus struct {
		HouseholdID string     `json:"noKK"`
		HeadName    string     `json:"kepalaKeluarga"`
		Unit        string     `json:"noRumah"`
		RT          DuesStatus `json:"statusRT"`
		PKK         DuesStatus `json:"statusPKK"`
	}
)

// PaymentStatuses lists, for every household with a head, whether RT and
// PKK are settled for the month. Rows are sorted by unit.
func PaymentStatuses(residents []Resident, payments []DuesPayment, year, month int) []PaymentStatus {
	ledger := NewLedger(PaymentsInPeriod(payments, year, month))
	groups, order := GroupByHousehold(residents)

	var out []PaymentStatus
	for _, id := range order {
		head, ok := FindHead(groups[id])
		if !ok {
			continue
		}
		out = append(out, PaymentStatus{
			HouseholdID: id,
			HeadName:    head.Name,
			Unit:        head.Unit,
			RT:          statusOf(ledger, id, year, month, DuesRT),
			PKK:         statusOf(ledger, id, year, month, DuesPKK),
		})
	}
	SortByUnit(out, func(s PaymentStatus) string { return s.Unit }, func(s PaymentStatus) string { return s.HouseholdID })
	return out
}

func statusOf(l *Ledger, id string, year, month int, t DuesType) DuesStatus {
	p, ok := l.Lookup(id, year, month, t)
	if !ok {
		return DuesStatus{}
	}
	paidAt := p.PaidAt
	return DuesStatus{Paid: true, PaidAt: &paidAt}
}

// FilterByHeadName keeps rows whose head name contains term, ignoring case.
func FilterByHeadName(rows []PaymentStatus, term string) []PaymentStatus {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}
	var out []PaymentStatus
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.HeadName), term) {
			out = append(out, r)
		}
	}
	return out
}
