package services

import "warga/internal/sheets"

// App groups the services that share one State.
type App struct {
	State     *State
	Residents *Residents
	Dues      *Dues
	Cashbook  *Cashbook
	Lists     *AdminLists
	Auth      *Auth
	Reports   *Reports
}

// NewApp wires every service to state. publisher may be nil.
func NewApp(state *State, auth *Auth, publisher sheets.ReportPublisher) *App {
	v := NewValidator()
	return &App{
		State:     state,
		Residents: NewResidents(state, v),
		Dues:      NewDues(state),
		Cashbook:  NewCashbook(state, v),
		Lists:     NewAdminLists(state),
		Auth:      auth,
		Reports:   NewReports(state, publisher),
	}
}
