package core

import (
	"errors"
	"slices"
	"strings"
)

const (
	ListReligion      AdminListCategory = "agama"
	ListEducation     AdminListCategory = "pendidikan"
	ListOccupation    AdminListCategory = "pekerjaan"
	ListMaritalStatus AdminListCategory = "statusPerkawinan"
	ListRelationship  AdminListCategory = "statusHubungan"
	ListUnit          AdminListCategory = "noRumah"
)

type (
	// AdminListCategory names one of the editable option lists.
	AdminListCategory string

	// AdminLists holds the option strings offered on resident forms.
	AdminLists map[AdminListCategory][]string
)

// AdminListCategories lists the editable categories in display order.
var AdminListCategories = []AdminListCategory{
	ListReligion, ListEducation, ListOccupation, ListMaritalStatus, ListRelationship, ListUnit,
}

// AdminListLabels are the display labels of each category.
var AdminListLabels = map[AdminListCategory]string{
	ListReligion:      "Agama",
	ListEducation:     "Pendidikan",
	ListOccupation:    "Pekerjaan",
	ListMaritalStatus: "Status Perkawinan",
	ListRelationship:  "Status Hubungan Dalam Keluarga",
	ListUnit:          "Nomor Rumah",
}

var (
	ErrUnknownListCategory = errors.New("unknown admin list category")
	ErrEmptyListItem       = errors.New("empty list item")
	ErrDuplicateListItem   = errors.New("list item already exists")
)

func (c AdminListCategory) Valid() bool {
	return slices.Contains(AdminListCategories, c)
}

// DefaultAdminLists returns the initial option lists.
func DefaultAdminLists() AdminLists {
	units := make([]string, 0, 32)
	for _, block := range []string{"A", "B", "C", "D"} {
		for n := 1; n <= 8; n++ {
			units = append(units, block+string(rune('0'+n)))
		}
	}
	return AdminLists{
		ListReligion:      {"Islam", "Kristen Protestan", "Kristen Katolik", "Hindu", "Buddha", "Konghucu"},
		ListEducation:     {"Tidak Sekolah", "SD", "SMP", "SMA/SMK", "Diploma", "S1", "S2", "S3"},
		ListOccupation:    {"Belum/Tidak Bekerja", "Pelajar/Mahasiswa", "PNS", "TNI/POLRI", "Karyawan Swasta", "Wiraswasta", "Pensiunan"},
		ListMaritalStatus: {"Belum Kawin", "Kawin", "Cerai Hidup", "Cerai Mati"},
		ListRelationship:  {HeadOfHousehold, "Istri", "Anak", "Orang Tua", "Lainnya"},
		ListUnit:          units,
	}
}

// Clone returns a deep copy.
func (l AdminLists) Clone() AdminLists {
	out := make(AdminLists, len(l))
	for k, v := range l {
		out[k] = slices.Clone(v)
	}
	return out
}

// Add appends a trimmed, non-empty item that is not already present.
func (l AdminLists) Add(c AdminListCategory, item string) error {
	if !c.Valid() {
		return ErrUnknownListCategory
	}
	item = strings.TrimSpace(item)
	if item == "" {
		return ErrEmptyListItem
	}
	if slices.Contains(l[c], item) {
		return ErrDuplicateListItem
	}
	l[c] = append(l[c], item)
	return nil
}

// Remove deletes an item by exact value. Missing items are not an error.
func (l AdminLists) Remove(c AdminListCategory, item string) error {
	if !c.Valid() {
		return ErrUnknownListCategory
	}
	l[c] = slices.DeleteFunc(slices.Clone(l[c]), func(s string) bool { return s == item })
	return nil
}
