// Package core provides money parsing and handling utilities.
//
// Amounts are whole rupiah. Inputs may carry an "Rp" prefix and dot
// thousands separators ("Rp 35.000"); JSON values are bare numbers.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount in whole rupiah.
type Money struct {
	Rupiah int64
}

// Rp is shorthand for Money{Rupiah: v}.
func Rp(v int64) Money {
	return Money{Rupiah: v}
}

func (m Money) Validate() error {
	if m.Rupiah <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Rupiah: m.Rupiah + o.Rupiah}
}

func (m Money) Sub(o Money) Money {
	return Money{Rupiah: m.Rupiah - o.Rupiah}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Rupiah, 10)), nil
}

// UnmarshalJSON accepts any JSON number and rounds fractional values.
func (m *Money) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.Rupiah = int64(math.Round(f))
	return nil
}

// ParseRupiah converts user input to a positive rupiah amount.
//
// Accepted forms:
//
//	ParseRupiah("35000")     -> 35000, nil
//	ParseRupiah("35.000")    -> 35000, nil
//	ParseRupiah("Rp 35.000") -> 35000, nil
//	ParseRupiah("35000,50")  -> 35001, nil (half-up on the sen part)
func ParseRupiah(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimPrefix(s, "rp")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ",")
	if hasFrac && strings.Contains(fracPart, ",") {
		return 0, ErrInvalidAmount
	}
	intPart = strings.ReplaceAll(intPart, ".", "")
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if len(fracPart) > 0 && fracPart[0] >= '5' {
		v++
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

var idPrinter = message.NewPrinter(language.Indonesian)

// Grouped formats an amount with Indonesian digit grouping ("35.000").
func (m Money) Grouped() string {
	return idPrinter.Sprintf("%d", m.Rupiah)
}

// String formats the amount as Indonesian currency ("Rp35.000").
func (m Money) String() string {
	if m.Rupiah < 0 {
		return "-Rp" + Money{Rupiah: -m.Rupiah}.Grouped()
	}
	return "Rp" + m.Grouped()
}
