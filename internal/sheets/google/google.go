package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ports "warga/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Publisher writes report grids to tabs of one spreadsheet.
type Publisher struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ ports.ReportPublisher = (*Publisher)(nil)

// NewPublisher creates a publisher for spreadsheetID. opts usually carries
// the output of CredentialsOption.
func NewPublisher(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Publisher, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	opts = append([]goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}, opts...)
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created successfully", "spreadsheet_id", spreadsheetID)
	return &Publisher{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// CredentialsOption builds service account credentials from inline JSON,
// a file, or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func CredentialsOption(ctx context.Context, serviceAccountJSON, serviceAccountFile string) (goption.ClientOption, error) {
	serviceAccountJSON = strings.TrimSpace(serviceAccountJSON)
	serviceAccountFile = strings.TrimSpace(serviceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	return goption.WithCredentialsJSON(credentialsJSON), nil
}

// Publish creates tab when missing, clears it and writes rows from A1.
func (p *Publisher) Publish(ctx context.Context, tab string, rows [][]string) (string, error) {
	if p.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := p.ensureTab(ctx, tab); err != nil {
		return "", err
	}

	quoted := quoteTab(tab)
	if _, err := p.svc.Spreadsheets.Values.Clear(p.spreadsheetID, quoted, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", tab, err)
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = toValues(row)
	}
	rng := quoted + "!A1"
	resp, err := p.svc.Spreadsheets.Values.Update(p.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}
	ref := resp.UpdatedRange
	if ref == "" {
		ref = rng
	}
	slog.InfoContext(ctx, "Report published to Google Sheets", "tab", tab, "rows", len(rows), "range", ref)
	return ref, nil
}

func (p *Publisher) ensureTab(ctx context.Context, tab string) error {
	ss, err := p.svc.Spreadsheets.Get(p.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
		}},
	}
	if _, err := p.svc.Spreadsheets.BatchUpdate(p.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add tab %s: %w", tab, err)
	}
	return nil
}

// quoteTab wraps a tab name for A1 notation.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func toValues(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
