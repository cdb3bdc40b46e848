package core

import (
	"cmp"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Placeholder is used for household attributes that cannot be resolved.
const Placeholder = "N/A"

// Household is the derived summary of residents sharing a KK number.
type Household struct {
	ID               string   `json:"noKK"`
	HeadName         string   `json:"kepalaKeluarga"`
	HeadPhone        string   `json:"noHP,omitempty"`
	Address          string   `json:"alamat"`
	Unit             string   `json:"noRumah"`
	Category         Category `json:"kategoriKK"`
	CategoryFallback bool     `json:"kategoriDefault"`
	Members          int      `json:"jumlahAnggota"`
	HasHead          bool     `json:"adaKepalaKeluarga"`
}

// GroupByHousehold groups residents by KK number, preserving insertion
// order within each group. The returned order slice lists KK numbers in
// order of first appearance.
func GroupByHousehold(residents []Resident) (map[string][]Resident, []string) {
	groups := make(map[string][]Resident)
	var order []string
	for _, r := range residents {
		if _, ok := groups[r.HouseholdID]; !ok {
			order = append(order, r.HouseholdID)
		}
		groups[r.HouseholdID] = append(groups[r.HouseholdID], r)
	}
	return groups, order
}

// FindHead returns the member tagged as head of household.
func FindHead(members []Resident) (Resident, bool) {
	for _, m := range members {
		if m.IsHead() {
			return m, true
		}
	}
	return Resident{}, false
}

// HeadOf finds the head of a household among all residents.
func HeadOf(residents []Resident, householdID string) (Resident, bool) {
	for _, r := range residents {
		if r.HouseholdID == householdID && r.IsHead() {
			return r, true
		}
	}
	return Resident{}, false
}

// Summarize derives one household row from its members. Address and unit
// come from the head, or from the first member when the head's field is
// empty. The category comes from the head only; an unset category resolves
// to fallback and is flagged.
func Summarize(id string, members []Resident, fallback Category) Household {
	h := Household{ID: id, Members: len(members), HeadName: Placeholder}

	var first, head Resident
	if len(members) > 0 {
		first = members[0]
	}
	if hd, ok := FindHead(members); ok {
		head = hd
		h.HasHead = true
		h.HeadName = hd.Name
		h.HeadPhone = hd.Phone
	} else {
		head = first
	}

	h.Address = orPlaceholder(cmp.Or(head.Address, first.Address))
	h.Unit = orPlaceholder(cmp.Or(head.Unit, first.Unit))
	h.Category = head.Category
	if !h.Category.Valid() {
		h.Category = fallback
		h.CategoryFallback = true
	}
	return h
}

// AggregateHouseholds returns one summary per distinct KK number, sorted by
// unit with Indonesian collation.
func AggregateHouseholds(residents []Resident, fallback Category) []Household {
	groups, order := GroupByHousehold(residents)
	out := make([]Household, 0, len(order))
	for _, id := range order {
		out = append(out, Summarize(id, groups[id], fallback))
	}
	SortByUnit(out, func(h Household) string { return h.Unit }, func(h Household) string { return h.ID })
	return out
}

// SortByUnit orders rows by unit identifier using Indonesian collation,
// breaking ties with a secondary key.
func SortByUnit[T any](rows []T, unit func(T) string, tiebreak func(T) string) {
	c := collate.New(language.Indonesian)
	sort.SliceStable(rows, func(i, j int) bool {
		if cmp := c.CompareString(unit(rows[i]), unit(rows[j])); cmp != 0 {
			return cmp < 0
		}
		return tiebreak(rows[i]) < tiebreak(rows[j])
	})
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
