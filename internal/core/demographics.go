package core

import (
	"sort"
	"time"
)

const (
	AgeToddler = "Balita (0-5)"
	AgeYouth   = "Anak & Remaja (6-17)"
	AgeAdult   = "Dewasa (18-59)"
	AgeSenior  = "Lansia (60+)"
)

// AgeGroups lists the age buckets in display order.
var AgeGroups = []string{AgeToddler, AgeYouth, AgeAdult, AgeSenior}

type (
	// Count is one bucket of a breakdown.
	Count struct {
		Label string `json:"label"`
		Count int    `json:"jumlah"`
	}

	// Demographics summarises the resident population.
	Demographics struct {
		TotalResidents  int     `json:"totalWarga"`
		TotalHouseholds int     `json:"totalKeluarga"`
		BySex           []Count `json:"jenisKelamin"`
		ByAgeGroup      []Count `json:"kelompokUsia"`
		ByReligion      []Count `json:"agama"`
		ByEducation     []Count `json:"pendidikan"`
		ByMaritalStatus []Count `json:"statusPerkawinan"`
	}
)

// AgeAt returns the age in completed years on now, and false when the
// birth date is unknown.
func AgeAt(birth Date, now time.Time) (int, bool) {
	if birth.IsZero() {
		return 0, false
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Time.Month() || (now.Month() == birth.Time.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, true
}

// AgeGroup buckets an age into one of AgeGroups.
func AgeGroup(age int) string {
	switch {
	case age <= 5:
		return AgeToddler
	case age <= 17:
		return AgeYouth
	case age <= 59:
		return AgeAdult
	default:
		return AgeSenior
	}
}

// BuildDemographics computes the dashboard breakdowns at now.
func BuildDemographics(residents []Resident, now time.Time) Demographics {
	groups, _ := GroupByHousehold(residents)
	d := Demographics{
		TotalResidents:  len(residents),
		TotalHouseholds: len(groups),
		BySex:           breakdown(residents, func(r Resident) string { return string(r.Sex) }),
		ByReligion:      breakdown(residents, func(r Resident) string { return r.Religion }),
		ByEducation:     breakdown(residents, func(r Resident) string { return r.Education }),
		ByMaritalStatus: breakdown(residents, func(r Resident) string { return r.MaritalStatus }),
	}

	ages := make(map[string]int, len(AgeGroups))
	for _, r := range residents {
		if age, ok := AgeAt(r.BirthDate, now); ok {
			ages[AgeGroup(age)]++
		}
	}
	for _, g := range AgeGroups {
		d.ByAgeGroup = append(d.ByAgeGroup, Count{Label: g, Count: ages[g]})
	}
	return d
}

// breakdown counts residents per key, largest bucket first. Ties keep
// first-seen order.
func breakdown(residents []Resident, key func(Resident) string) []Count {
	idx := make(map[string]int)
	var out []Count
	for _, r := range residents {
		k := key(r)
		if k == "" {
			k = Placeholder
		}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Count{Label: k})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
