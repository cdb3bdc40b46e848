package http

import (
	"net/http"

	"warga/internal/core"
)

func (s *Server) handleListResidents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.app.Residents.List(searchQuery(q), parsePage(q)))
}

func (s *Server) handleGetResident(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.Residents.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateResident(w http.ResponseWriter, r *http.Request) {
	var in core.Resident
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.ID = ""
	saved, err := s.app.Residents.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/residents/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateResident(w http.ResponseWriter, r *http.Request) {
	var in core.Resident
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.ID = r.PathValue("id")
	saved, err := s.app.Residents.Save(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteResident(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Residents.Delete(r.Context(), r.PathValue("id"), confirmed(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListHouseholds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, s.app.Residents.Households(searchQuery(q), parsePage(q)))
}
