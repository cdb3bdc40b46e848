package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"warga/internal/core"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// decodeJSON reads one JSON object from the body into dst. Unknown fields
// are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must hold a single JSON object", errBadRequest)
	}
	return nil
}

// MonthParams is a year and month taken from the query string.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month from query, defaulting each to
// now. A value that is present but not a number is an error.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	p := MonthParams{Year: now.Year(), Month: int(now.Month())}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("year %q: %w", v, core.ErrInvalidMonth)
		}
		p.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("month %q: %w", v, core.ErrInvalidMonth)
		}
		p.Month = m
	}
	if !core.ValidPeriod(p.Year, p.Month) {
		return p, fmt.Errorf("%d-%d: %w", p.Year, p.Month, core.ErrInvalidMonth)
	}
	return p, nil
}

// parsePage returns the 1-based page query parameter. Missing or invalid
// values give page 1.
func parsePage(query url.Values) int {
	page, err := strconv.Atoi(strings.TrimSpace(query.Get("page")))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// searchQuery returns the sanitized q parameter.
func searchQuery(query url.Values) string {
	return sanitizeInput(query.Get("q"))
}

// confirmed reports whether the caller passed confirm=true.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func contextWithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// userFrom returns the user attached by require.
func userFrom(r *http.Request) core.User {
	u, _ := r.Context().Value(userContextKey).(core.User)
	return u
}
