package core

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthName returns the Indonesian name of a 1-12 month.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// ValidPeriod reports whether (year, month) is a usable calendar month.
func ValidPeriod(year, month int) bool {
	return year > 0 && month >= 1 && month <= 12
}
