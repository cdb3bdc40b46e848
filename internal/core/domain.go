package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Male   Sex = "Laki-laki"
	Female Sex = "Perempuan"
)

// HeadOfHousehold is the relationship status that marks the head of a KK.
const HeadOfHousehold = "Kepala Keluarga"

// HouseholdIDLength is the number of digits in a Kartu Keluarga number.
const HouseholdIDLength = 16

type (
	Sex string

	Date struct {
		time.Time
	}

	Resident struct {
		ID            string   `json:"id"`
		Name          string   `json:"nama" validate:"required,max=100"`
		HouseholdID   string   `json:"noKK" validate:"required,kk"`
		Address       string   `json:"alamat" validate:"max=300"`
		NIK           string   `json:"nik" validate:"required,kk"`
		Sex           Sex      `json:"jenisKelamin" validate:"oneof=Laki-laki Perempuan"`
		BirthPlace    string   `json:"tempatLahir" validate:"max=100"`
		BirthDate     Date     `json:"tanggalLahir"`
		Religion      string   `json:"agama"`
		Education     string   `json:"pendidikan"`
		Occupation    string   `json:"pekerjaan"`
		MaritalStatus string   `json:"statusPerkawinan"`
		MaritalDate   Date     `json:"tanggalPerkawinanPerceraian"`
		Relationship  string   `json:"statusHubungan" validate:"required"`
		Unit          string   `json:"noRumah"`
		Category      Category `json:"kategoriKK,omitempty" validate:"omitempty,oneof=A B C D"`
		Phone         string   `json:"noHP,omitempty" validate:"omitempty,max=20"`
	}

	Expense struct {
		ID          string `json:"id"`
		Date        Date   `json:"tanggal"`
		Description string `json:"deskripsi" validate:"required,max=200"`
		Amount      Money  `json:"jumlah"`
		Receipt     string `json:"bukti,omitempty"`
	}

	OtherIncome struct {
		ID          string `json:"id"`
		Date        Date   `json:"tanggal"`
		Description string `json:"deskripsi" validate:"required,max=200"`
		Amount      Money  `json:"jumlah"`
	}
)

var (
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidHouseholdID   = errors.New("household id must be exactly 16 digits")
	ErrInvalidCategory      = errors.New("invalid household category")
	ErrInvalidDuesType      = errors.New("invalid dues type")
	ErrHouseholdNotFound    = errors.New("household not found or not registered to a head of household")
	ErrDuplicateHead        = errors.New("household already has a head")
	ErrNotFound             = errors.New("not found")
	ErrConfirmationRequired = errors.New("confirmation required")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// InMonth reports whether the date falls within the given calendar month.
func (d Date) InMonth(year, month int) bool {
	return !d.IsZero() && d.Year() == year && d.Month() == month
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidHouseholdID reports whether s is exactly 16 ASCII digits.
func ValidHouseholdID(s string) bool {
	if len(s) != HouseholdIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsHead reports whether the resident is tagged as head of household.
func (r Resident) IsHead() bool {
	return r.Relationship == HeadOfHousehold
}

func (r Resident) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if !ValidHouseholdID(r.HouseholdID) {
		return ErrInvalidHouseholdID
	}
	if r.Category != "" && !r.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func (e Expense) Validate() error {
	if e.Receipt != "" && !ValidReceipt(e.Receipt) {
		return ErrInvalidReceipt
	}
	return validateCashEntry(e.Date, e.Description, e.Amount)
}

func (i OtherIncome) Validate() error {
	return validateCashEntry(i.Date, i.Description, i.Amount)
}

func validateCashEntry(d Date, desc string, amount Money) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(desc)) == 0 {
		return ErrEmptyDescription
	}
	if len(desc) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return amount.Validate()
}
