package services

import (
	"context"
	"fmt"
	"strings"

	"warga/internal/core"
	"warga/internal/log"
	"warga/internal/storage"
)

// Dues records RT/PKK payments, manages rates and answers arrears lookups.
type Dues struct {
	state  *State
	events *log.StructuredLogger
}

func NewDues(state *State) *Dues {
	return &Dues{state: state, events: log.NewStructuredLogger(state.logger)}
}

func (d *Dues) Rates() core.RateConfig {
	return d.state.Rates()
}

// SetRates replaces the rate table. Recorded payments keep their amounts.
func (d *Dues) SetRates(ctx context.Context, rc core.RateConfig) error {
	if err := rc.Validate(); err != nil {
		return err
	}
	rc = rc.Clone()
	return d.state.mutate(ctx, storage.KeyRateConfig, func() (any, func(), error) {
		prev := d.state.rates
		d.state.rates = rc
		return rc, func() { d.state.rates = prev }, nil
	})
}

// household resolves a household that has a registered head.
func (d *Dues) household(householdID string) (core.Household, error) {
	if !core.ValidHouseholdID(householdID) {
		return core.Household{}, core.ErrInvalidHouseholdID
	}
	groups, _ := core.GroupByHousehold(d.state.Residents())
	h := core.Summarize(householdID, groups[householdID], d.state.Fallback())
	if !h.HasHead {
		return core.Household{}, fmt.Errorf("%s: %w", householdID, core.ErrHouseholdNotFound)
	}
	return h, nil
}

// RecordPayment marks one obligation as paid at the current rate of the
// household's category. Paying the same obligation again replaces the
// earlier record.
func (d *Dues) RecordPayment(ctx context.Context, key core.PaymentKey) (core.DuesPayment, error) {
	key.HouseholdID = strings.TrimSpace(key.HouseholdID)
	if !key.Type.Valid() {
		return core.DuesPayment{}, core.ErrInvalidDuesType
	}
	if !core.ValidPeriod(key.Year, key.Month) {
		return core.DuesPayment{}, core.ErrInvalidMonth
	}
	h, err := d.household(key.HouseholdID)
	if err != nil {
		return core.DuesPayment{}, err
	}
	if h.CategoryFallback {
		d.events.LogCategoryFallback(ctx, h.ID, "", string(h.Category))
	}

	var p core.DuesPayment
	err = d.state.mutate(ctx, storage.KeyPayments, func() (any, func(), error) {
		p = core.NewPayment(key, h.Category, d.state.rates, d.state.now())
		if err := p.Validate(); err != nil {
			return nil, nil, err
		}
		prev := d.state.payments
		next := core.UpsertPayment(prev, p)
		d.state.payments = next
		return next, func() { d.state.payments = prev }, nil
	})
	if err != nil {
		return core.DuesPayment{}, err
	}
	d.events.LogPaymentRecorded(ctx, p.HouseholdID, p.Year, p.Month, string(p.Type), p.Amount.Rupiah)
	return p, nil
}

// Arrears lists the unpaid months of the trailing window for a household,
// priced at its category's current rates.
func (d *Dues) Arrears(ctx context.Context, householdID string) (core.Arrears, error) {
	householdID = strings.TrimSpace(householdID)
	h, err := d.household(householdID)
	if err != nil {
		return core.Arrears{}, err
	}
	if h.CategoryFallback {
		d.events.LogCategoryFallback(ctx, h.ID, "", string(h.Category))
	}

	ledger := core.NewLedger(d.state.Payments())
	lines, total := core.ArrearsScan(h.ID, d.state.Rates().For(h.Category), ledger, d.state.Now())
	return core.Arrears{
		HouseholdID:      h.ID,
		HeadName:         h.HeadName,
		Category:         h.Category,
		CategoryFallback: h.CategoryFallback,
		Lines:            lines,
		Total:            total,
	}, nil
}

// History returns one page of payment statuses for a month, filtered by
// head name.
func (d *Dues) History(year, month int, q string, page int) (core.Page[core.PaymentStatus], error) {
	if !core.ValidPeriod(year, month) {
		return core.Page[core.PaymentStatus]{}, core.ErrInvalidMonth
	}
	rows := core.PaymentStatuses(d.state.Residents(), d.state.Payments(), year, month)
	rows = core.FilterByHeadName(rows, q)
	return core.Paginate(rows, page, core.PageSize), nil
}
