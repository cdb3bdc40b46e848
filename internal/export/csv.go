package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes rows with CRLF line endings. Cells containing commas,
// quotes or line breaks are quoted.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// ReadCSV parses rows written by WriteCSV. Blank rows are skipped and rows
// may have different widths.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}
