package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"warga/internal/core"
	"warga/internal/export"
	"warga/internal/log"
	"warga/internal/sheets"
)

var ErrPublishingDisabled = errors.New("report publishing is not configured")

type (
	// PublicRecap is the anonymised monthly view shown without login.
	PublicRecap struct {
		Recap        core.MonthlyRecap  `json:"rekap"`
		Transactions []core.Transaction `json:"transaksi"`
		Demographics core.Demographics  `json:"statistik"`
	}

	// Rendered is one report file.
	Rendered struct {
		FileName    string
		ContentType string
		Body        []byte
	}

	// Bundle holds a report rendered in every format.
	Bundle struct {
		CSV  Rendered
		XLSX Rendered
	}
)

// Reports answers the financial and demographic read models.
type Reports struct {
	state     *State
	publisher sheets.ReportPublisher
}

// NewReports creates the report service. publisher may be nil, in which
// case Publish returns ErrPublishingDisabled.
func NewReports(state *State, publisher sheets.ReportPublisher) *Reports {
	return &Reports{state: state, publisher: publisher}
}

func (r *Reports) Recap(year, month int) (core.MonthlyRecap, error) {
	if !core.ValidPeriod(year, month) {
		return core.MonthlyRecap{}, core.ErrInvalidMonth
	}
	return core.BuildMonthlyRecap(r.state.Books(), year, month), nil
}

func (r *Reports) Transactions(year, month int) ([]core.Transaction, error) {
	if !core.ValidPeriod(year, month) {
		return nil, core.ErrInvalidMonth
	}
	return core.BuildTransactions(r.state.Books(), year, month), nil
}

func (r *Reports) Dashboard() core.Demographics {
	return core.BuildDemographics(r.state.Residents(), r.state.Now())
}

// Public returns the recap with dues entries anonymised.
func (r *Reports) Public(year, month int) (PublicRecap, error) {
	if !core.ValidPeriod(year, month) {
		return PublicRecap{}, core.ErrInvalidMonth
	}
	b := r.state.Books()
	return PublicRecap{
		Recap:        core.BuildMonthlyRecap(b, year, month),
		Transactions: core.PublicTransactions(b, year, month),
		Demographics: core.BuildDemographics(b.Residents, r.state.Now()),
	}, nil
}

// Export renders one report in the requested format.
func (r *Reports) Export(ctx context.Context, t export.ReportType, f export.Format, year, month int) (Rendered, error) {
	rep, err := export.Build(t, r.state.Books(), year, month)
	if err != nil {
		return Rendered{}, err
	}
	return render(ctx, rep, f)
}

// Bundle renders a report as CSV and XLSX concurrently from one snapshot.
func (r *Reports) Bundle(ctx context.Context, t export.ReportType, year, month int) (Bundle, error) {
	rep, err := export.Build(t, r.state.Books(), year, month)
	if err != nil {
		return Bundle{}, err
	}
	var out Bundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.CSV, err = render(gctx, rep, export.FormatCSV)
		return err
	})
	g.Go(func() error {
		var err error
		out.XLSX, err = render(gctx, rep, export.FormatXLSX)
		return err
	})
	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}
	return out, nil
}

// Publish pushes a report to its own spreadsheet tab.
func (r *Reports) Publish(ctx context.Context, t export.ReportType, year, month int) (string, error) {
	if r.publisher == nil {
		return "", ErrPublishingDisabled
	}
	rep, err := export.Build(t, r.state.Books(), year, month)
	if err != nil {
		return "", err
	}
	tab := fmt.Sprintf("%s %s %d", t, core.MonthName(month), year)
	ref, err := r.publisher.Publish(ctx, tab, rep.Rows)
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", tab, err)
	}
	r.state.logger.WithComponent(log.ComponentSheets).InfoContext(ctx, "Report published",
		log.FieldOperation, log.OpPublish, "report", string(t), log.FieldYear, year, log.FieldMonth, month, "ref", ref)
	return ref, nil
}

// render returns ctx.Err() without rendering once ctx is done.
func render(ctx context.Context, rep export.Report, f export.Format) (Rendered, error) {
	if err := ctx.Err(); err != nil {
		return Rendered{}, err
	}
	var buf bytes.Buffer
	out := Rendered{FileName: export.FileName(rep.Type, rep.Year, rep.Month, f)}
	switch f {
	case export.FormatCSV:
		out.ContentType = "text/csv; charset=utf-8"
		if err := export.WriteCSV(&buf, rep.Rows); err != nil {
			return Rendered{}, fmt.Errorf("write csv: %w", err)
		}
	case export.FormatXLSX:
		out.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		if err := export.WriteXLSX(&buf, rep); err != nil {
			return Rendered{}, err
		}
	default:
		return Rendered{}, export.ErrUnknownFormat
	}
	out.Body = buf.Bytes()
	return out, nil
}
