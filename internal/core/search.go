package core

import (
	"strconv"
	"strings"
)

// PageSize is the number of rows per page in listings.
const PageSize = 10

// Page is one slice of a filtered listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// Paginate returns the 1-based page of items. Out-of-range pages are
// clamped.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = PageSize
	}
	total := (len(items) + size - 1) / size
	if page < 1 {
		page = 1
	}
	if total > 0 && page > total {
		page = total
	}
	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{
		Items:      append([]T(nil), items[start:end]...),
		Page:       page,
		TotalPages: total,
		TotalItems: len(items),
	}
}

// Filter keeps items for which any of the searchable fields contains term,
// ignoring case.
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	var out []T
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), term) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// SearchFields lists the values of a resident that a listing search
// matches against.
func (r Resident) SearchFields() []string {
	return []string{
		r.ID, r.Name, r.HouseholdID, r.Address, r.NIK, string(r.Sex),
		r.BirthPlace, r.BirthDate.String(), r.Religion, r.Education,
		r.Occupation, r.MaritalStatus, r.MaritalDate.String(),
		r.Relationship, r.Unit, string(r.Category), r.Phone,
	}
}

// SearchFields lists the values of a household row that a listing search
// matches against.
func (h Household) SearchFields() []string {
	return []string{
		h.ID, h.HeadName, h.HeadPhone, h.Address, h.Unit,
		string(h.Category), strconv.Itoa(h.Members),
	}
}
