package http

import (
	"net/http"

	"warga/internal/services"
)

// listPeriod returns the requested month, or zeros to list everything
// when neither year nor month is given.
func (s *Server) listPeriod(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	if q.Get("year") == "" && q.Get("month") == "" {
		return 0, 0, nil
	}
	mp, err := ParseMonthParams(q, s.app.State.Now())
	return mp.Year, mp.Month, err
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.listPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Cashbook.Expenses(year, month))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.CashEntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.app.Cashbook.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Cashbook.DeleteExpense(r.Context(), r.PathValue("id"), confirmed(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.listPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Cashbook.Incomes(year, month))
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var in services.CashEntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	i, err := s.app.Cashbook.AddIncome(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, i)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Cashbook.DeleteIncome(r.Context(), r.PathValue("id"), confirmed(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
