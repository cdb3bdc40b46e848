package http

import (
	"net/http"

	"warga/internal/core"
)

type paymentRequest struct {
	HouseholdID string        `json:"noKK"`
	Year        int           `json:"tahun"`
	Month       int           `json:"bulan"`
	Type        core.DuesType `json:"jenis"`
}

func (s *Server) handleArrears(w http.ResponseWriter, r *http.Request) {
	a, err := s.app.Dues.Arrears(r.Context(), r.PathValue("noKK"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Dues.Rates())
}

func (s *Server) handleSetRates(w http.ResponseWriter, r *http.Request) {
	var rc core.RateConfig
	if err := decodeJSON(w, r, &rc); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.app.Dues.SetRates(r.Context(), rc); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Dues.Rates())
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.app.Dues.RecordPayment(r.Context(), core.PaymentKey{
		HouseholdID: req.HouseholdID,
		Year:        req.Year,
		Month:       req.Month,
		Type:        req.Type,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mp, err := ParseMonthParams(q, s.app.State.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.app.Dues.History(mp.Year, mp.Month, searchQuery(q), parsePage(q))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
