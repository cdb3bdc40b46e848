package services

import (
	"context"

	"warga/internal/core"
	"warga/internal/storage"
)

// AdminLists manages the option lists offered on resident forms.
type AdminLists struct {
	state *State
}

func NewAdminLists(state *State) *AdminLists {
	return &AdminLists{state: state}
}

func (a *AdminLists) All() core.AdminLists {
	return a.state.AdminLists()
}

func (a *AdminLists) Get(c core.AdminListCategory) ([]string, error) {
	if !c.Valid() {
		return nil, core.ErrUnknownListCategory
	}
	return a.state.AdminLists()[c], nil
}

func (a *AdminLists) Add(ctx context.Context, c core.AdminListCategory, item string) error {
	return a.update(ctx, func(l core.AdminLists) error { return l.Add(c, item) })
}

func (a *AdminLists) Remove(ctx context.Context, c core.AdminListCategory, item string) error {
	return a.update(ctx, func(l core.AdminLists) error { return l.Remove(c, item) })
}

func (a *AdminLists) update(ctx context.Context, change func(core.AdminLists) error) error {
	return a.state.mutate(ctx, storage.KeyAdminLists, func() (any, func(), error) {
		prev := a.state.adminLists
		next := prev.Clone()
		if err := change(next); err != nil {
			return nil, nil, err
		}
		a.state.adminLists = next
		return next, func() { a.state.adminLists = prev }, nil
	})
}
