package http

import (
	"net/http"

	"warga/internal/core"
)

type listItemRequest struct {
	Item string `json:"item"`
}

func (s *Server) handleAllAdminLists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Lists.All())
}

func (s *Server) handleGetAdminList(w http.ResponseWriter, r *http.Request) {
	items, err := s.app.Lists.Get(core.AdminListCategory(r.PathValue("category")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddAdminListItem(w http.ResponseWriter, r *http.Request) {
	var req listItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c := core.AdminListCategory(r.PathValue("category"))
	if err := s.app.Lists.Add(r.Context(), c, sanitizeInput(req.Item)); err != nil {
		writeError(w, r, err)
		return
	}
	items, _ := s.app.Lists.Get(c)
	writeJSON(w, http.StatusCreated, items)
}

func (s *Server) handleRemoveAdminListItem(w http.ResponseWriter, r *http.Request) {
	c := core.AdminListCategory(r.PathValue("category"))
	if err := s.app.Lists.Remove(r.Context(), c, r.PathValue("item")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
