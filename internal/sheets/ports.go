package sheets

import "context"

// ReportPublisher pushes a rendered report grid to an external spreadsheet.
type ReportPublisher interface {
	// Publish replaces the contents of tab with rows and returns a
	// reference to the written range.
	Publish(ctx context.Context, tab string, rows [][]string) (ref string, err error)
}
