package http

import (
	"net/http"
	"strconv"

	"warga/internal/export"
	"warga/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Reports.Dashboard())
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	mp, err := ParseMonthParams(r.URL.Query(), s.app.State.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rc, err := s.recap(r.Context(), mp.Year, mp.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (s *Server) handlePublicRecap(w http.ResponseWriter, r *http.Request) {
	mp, err := ParseMonthParams(r.URL.Query(), s.app.State.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	pub, err := s.app.Reports.Public(mp.Year, mp.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pub)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	t, err := export.ParseReportType(r.PathValue("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	mp, err := ParseMonthParams(r.URL.Query(), s.app.State.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := s.app.Reports.Export(r.Context(), t, f, mp.Year, mp.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentReports).InfoContext(r.Context(), "Report exported",
		log.FieldOperation, log.OpExport, "report", string(t), "format", string(f),
		log.FieldYear, mp.Year, log.FieldMonth, mp.Month, "bytes", len(out.Body))

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}
