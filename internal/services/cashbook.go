package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"warga/internal/core"
	"warga/internal/storage"
)

// CashEntryInput is the raw form of an expense or other-income entry.
// Amount accepts Indonesian notation such as "35.000" or "Rp 35.000".
// Receipt is an optional image embedded as a base64 data URL.
type CashEntryInput struct {
	Date        string `json:"tanggal" validate:"required"`
	Description string `json:"deskripsi" validate:"required,max=200"`
	Amount      string `json:"jumlah" validate:"required"`
	Receipt     string `json:"bukti,omitempty" validate:"omitempty,receipt"`
}

type cashEntry struct {
	date        core.Date
	description string
	amount      core.Money
	receipt     string
}

func (in CashEntryInput) parse(v *validator.Validate) (cashEntry, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return cashEntry{}, core.ErrEmptyDescription
	}
	in.Receipt = strings.TrimSpace(in.Receipt)
	if err := v.Struct(in); err != nil {
		return cashEntry{}, err
	}
	date, err := core.ParseDate(strings.TrimSpace(in.Date))
	if err != nil {
		return cashEntry{}, err
	}
	if err := date.Validate(); err != nil {
		return cashEntry{}, err
	}
	amount, err := core.ParseRupiah(in.Amount)
	if err != nil {
		return cashEntry{}, err
	}
	return cashEntry{date: date, description: in.Description, amount: core.Rp(amount), receipt: in.Receipt}, nil
}

// Cashbook manages expenses and other income entries.
type Cashbook struct {
	state    *State
	validate *validator.Validate
}

func NewCashbook(state *State, v *validator.Validate) *Cashbook {
	if v == nil {
		v = NewValidator()
	}
	return &Cashbook{state: state, validate: v}
}

// Expenses lists expenses, newest first. A zero period lists everything.
func (c *Cashbook) Expenses(year, month int) []core.Expense {
	var out []core.Expense
	for _, e := range c.state.Expenses() {
		if year == 0 || e.Date.InMonth(year, month) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out
}

// Incomes lists other income entries, newest first. A zero period lists
// everything.
func (c *Cashbook) Incomes(year, month int) []core.OtherIncome {
	var out []core.OtherIncome
	for _, e := range c.state.OtherIncome() {
		if year == 0 || e.Date.InMonth(year, month) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out
}

func (c *Cashbook) AddExpense(ctx context.Context, in CashEntryInput) (core.Expense, error) {
	entry, err := in.parse(c.validate)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		ID:          uuid.NewString(),
		Date:        entry.date,
		Description: entry.description,
		Amount:      entry.amount,
		Receipt:     entry.receipt,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	err = c.state.mutate(ctx, storage.KeyExpenses, func() (any, func(), error) {
		prev := c.state.expenses
		next := append(slices.Clone(prev), e)
		c.state.expenses = next
		return next, func() { c.state.expenses = prev }, nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	c.state.logger.InfoContext(ctx, "Expense recorded", "id", e.ID, "amount_rupiah", e.Amount.Rupiah, "date", e.Date.String())
	return e, nil
}

func (c *Cashbook) AddIncome(ctx context.Context, in CashEntryInput) (core.OtherIncome, error) {
	entry, err := in.parse(c.validate)
	if err != nil {
		return core.OtherIncome{}, err
	}
	i := core.OtherIncome{
		ID:          uuid.NewString(),
		Date:        entry.date,
		Description: entry.description,
		Amount:      entry.amount,
	}
	if err := i.Validate(); err != nil {
		return core.OtherIncome{}, err
	}
	err = c.state.mutate(ctx, storage.KeyOtherIncome, func() (any, func(), error) {
		prev := c.state.incomes
		next := append(slices.Clone(prev), i)
		c.state.incomes = next
		return next, func() { c.state.incomes = prev }, nil
	})
	if err != nil {
		return core.OtherIncome{}, err
	}
	c.state.logger.InfoContext(ctx, "Income recorded", "id", i.ID, "amount_rupiah", i.Amount.Rupiah, "date", i.Date.String())
	return i, nil
}

// DeleteExpense removes an expense. It does nothing unless confirm is set.
func (c *Cashbook) DeleteExpense(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return core.ErrConfirmationRequired
	}
	return c.state.mutate(ctx, storage.KeyExpenses, func() (any, func(), error) {
		prev := c.state.expenses
		idx := slices.IndexFunc(prev, func(e core.Expense) bool { return e.ID == id })
		if idx < 0 {
			return nil, nil, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
		}
		next := slices.Delete(slices.Clone(prev), idx, idx+1)
		c.state.expenses = next
		return next, func() { c.state.expenses = prev }, nil
	})
}

// DeleteIncome removes an income entry. It does nothing unless confirm is set.
func (c *Cashbook) DeleteIncome(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return core.ErrConfirmationRequired
	}
	return c.state.mutate(ctx, storage.KeyOtherIncome, func() (any, func(), error) {
		prev := c.state.incomes
		idx := slices.IndexFunc(prev, func(e core.OtherIncome) bool { return e.ID == id })
		if idx < 0 {
			return nil, nil, fmt.Errorf("income %s: %w", id, core.ErrNotFound)
		}
		next := slices.Delete(slices.Clone(prev), idx, idx+1)
		c.state.incomes = next
		return next, func() { c.state.incomes = prev }, nil
	})
}
