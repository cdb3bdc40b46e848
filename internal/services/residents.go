package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"warga/internal/core"
	"warga/internal/storage"
)

// Residents manages the resident registry and the household views
// derived from it.
type Residents struct {
	state    *State
	validate *validator.Validate
}

func NewResidents(state *State, v *validator.Validate) *Residents {
	if v == nil {
		v = NewValidator()
	}
	return &Residents{state: state, validate: v}
}

// List returns one page of residents matching q.
func (r *Residents) List(q string, page int) core.Page[core.Resident] {
	rows := core.Filter(r.state.Residents(), q, core.Resident.SearchFields)
	return core.Paginate(rows, page, core.PageSize)
}

func (r *Residents) Get(id string) (core.Resident, error) {
	for _, res := range r.state.Residents() {
		if res.ID == id {
			return res, nil
		}
	}
	return core.Resident{}, fmt.Errorf("resident %s: %w", id, core.ErrNotFound)
}

// Households returns one page of household summaries matching q.
func (r *Residents) Households(q string, page int) core.Page[core.Household] {
	rows := core.AggregateHouseholds(r.state.Residents(), r.state.Fallback())
	rows = core.Filter(rows, q, core.Household.SearchFields)
	return core.Paginate(rows, page, core.PageSize)
}

// Save creates the resident when it has no id, or replaces the resident
// with the same id. A household may have only one head. A non-head takes
// the address and unit of an existing head and carries no category; a
// head without a category gets the fallback tier.
func (r *Residents) Save(ctx context.Context, in core.Resident) (core.Resident, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.HouseholdID = strings.TrimSpace(in.HouseholdID)
	in.NIK = strings.TrimSpace(in.NIK)
	if err := in.Validate(); err != nil {
		return core.Resident{}, err
	}
	if err := r.validate.Struct(in); err != nil {
		return core.Resident{}, err
	}

	var saved core.Resident
	err := r.state.mutate(ctx, storage.KeyResidents, func() (any, func(), error) {
		prev := r.state.residents
		idx := -1
		if in.ID != "" {
			idx = slices.IndexFunc(prev, func(x core.Resident) bool { return x.ID == in.ID })
			if idx < 0 {
				return nil, nil, fmt.Errorf("resident %s: %w", in.ID, core.ErrNotFound)
			}
		}

		head, hasHead := core.HeadOf(prev, in.HouseholdID)
		if in.IsHead() {
			if hasHead && head.ID != in.ID {
				return nil, nil, fmt.Errorf("household %s head %s: %w", in.HouseholdID, head.Name, core.ErrDuplicateHead)
			}
			if in.Category == "" {
				in.Category = r.state.fallback
			}
		} else {
			if hasHead && head.ID != in.ID {
				in.Address = head.Address
				in.Unit = head.Unit
			}
			in.Category = ""
		}

		next := slices.Clone(prev)
		if idx < 0 {
			in.ID = uuid.NewString()
			next = append(next, in)
		} else {
			next[idx] = in
		}
		saved = in
		r.state.residents = next
		return next, func() { r.state.residents = prev }, nil
	})
	if err != nil {
		return core.Resident{}, err
	}
	r.state.logger.InfoContext(ctx, "Resident saved", "id", saved.ID, "household_id", saved.HouseholdID, "head", saved.IsHead())
	return saved, nil
}

// Delete removes a resident. It does nothing unless confirm is set.
func (r *Residents) Delete(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return core.ErrConfirmationRequired
	}
	return r.state.mutate(ctx, storage.KeyResidents, func() (any, func(), error) {
		prev := r.state.residents
		idx := slices.IndexFunc(prev, func(x core.Resident) bool { return x.ID == id })
		if idx < 0 {
			return nil, nil, fmt.Errorf("resident %s: %w", id, core.ErrNotFound)
		}
		next := slices.Delete(slices.Clone(prev), idx, idx+1)
		r.state.residents = next
		return next, func() { r.state.residents = prev }, nil
	})
}

// Import appends residents in bulk, applying the same rules as Save.
// Used for seeding.
func (r *Residents) Import(ctx context.Context, rows []core.Resident) (int, error) {
	n := 0
	for _, row := range rows {
		row.ID = ""
		if _, err := r.Save(ctx, row); err != nil {
			return n, fmt.Errorf("import %s: %w", row.Name, err)
		}
		n++
	}
	return n, nil
}
