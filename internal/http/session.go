package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"warga/internal/core"
	"warga/internal/log"
)

const sessionCookie = "warga_session"

type contextKey string

const userContextKey contextKey = "user"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  core.User `json:"user"`
	Token string    `json:"token,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.app.Auth.Verify(req.Username, req.Password)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentAuth).WarnContext(r.Context(), "Login failed",
			log.FieldUser, sanitizeInput(req.Username), log.FieldClientIP, s.detector.ExtractClientIP(r))
		writeError(w, r, err)
		return
	}

	token := uuid.NewString()
	s.sessions.Set(token, u)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).InfoContext(r.Context(), "Login succeeded",
		log.FieldUser, u.Username, log.FieldRole, string(u.Role))
	writeJSON(w, http.StatusOK, sessionResponse{User: u, Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		s.sessions.Delete(token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{User: userFrom(r)})
}

// sessionToken returns the session cookie or bearer token of r.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

// authenticate resolves the caller from a session token or HTTP Basic
// credentials.
func (s *Server) authenticate(r *http.Request) (core.User, error) {
	if token := sessionToken(r); token != "" {
		if u, ok := s.sessions.Get(token); ok {
			return u, nil
		}
	}
	if username, password, ok := r.BasicAuth(); ok {
		return s.app.Auth.Verify(username, password)
	}
	return core.User{}, core.ErrUnauthenticated
}

// require wraps next so that only callers holding one of roles reach it.
func (s *Server) require(next http.HandlerFunc, roles ...core.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.authenticate(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !u.Allows(roles...) {
			log.FromContext(r.Context()).WithComponent(log.ComponentAuth).WarnContext(r.Context(), "Access denied",
				log.FieldUser, u.Username, log.FieldRole, string(u.Role), log.FieldPath, r.URL.Path)
			writeError(w, r, core.ErrForbidden)
			return
		}
		ctx := contextWithUser(r.Context(), u)
		next(w, r.WithContext(ctx))
	}
}
