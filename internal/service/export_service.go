package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/infra"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"

	"github.com/shopspring/decimal"
)

// reportDateLayout is used for the date column of CSV exports.
const reportDateLayout = "2006-01-02 15:04"

// ExportService renders read-only reports of the live state.
type ExportService interface {
	Summary(ctx context.Context) (model.Summary, error)
	WriteCSV(ctx context.Context, w io.Writer) error
	WriteXLSX(ctx context.Context, w io.Writer) error
	WritePDF(ctx context.Context, w io.Writer) error
}

type exportService struct {
	ledger       LedgerService
	businessName string
	now          func() time.Time
}

// NewExportService wires the report writers. businessName is used on the PDF
// header when the ledger has none.
func NewExportService(ledger LedgerService, businessName string, now func() time.Time) ExportService {
	if now == nil {
		now = time.Now
	}
	return &exportService{ledger: ledger, businessName: businessName, now: now}
}

func (s *exportService) Summary(context.Context) (model.Summary, error) {
	st, err := s.ledger.Current()
	if err != nil {
		return model.Summary{}, err
	}
	return Summarize(st), nil
}

func (s *exportService) WriteCSV(_ context.Context, w io.Writer) error {
	st, err := s.ledger.Current()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(model.ReportHeader); err != nil {
		return fmt.Errorf("csv: header: %w", err)
	}
	for _, r := range ReportRows(st) {
		record := []string{
			r.Type,
			r.At.Local().Format(reportDateLayout),
			r.Detail,
			strconv.Itoa(r.Qty),
			r.Total.StringFixed(2),
			r.Profit.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv: row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) WriteXLSX(_ context.Context, w io.Writer) error {
	st, err := s.ledger.Current()
	if err != nil {
		return err
	}
	return infra.WriteReportXLSX(w, ReportRows(st))
}

func (s *exportService) WritePDF(_ context.Context, w io.Writer) error {
	st, err := s.ledger.Current()
	if err != nil {
		return err
	}
	business := st.Business
	if business.Name == "" {
		business.Name = s.businessName
	}
	return infra.WriteSummaryPDF(w, business, Summarize(st), ReportRows(st), s.now())
}

// ── Pure report builders ──────────────────────────────────────────────────────

// ReportRows flattens sales, expenses and finished table sessions, newest
// first. Active sessions have no total yet and are left out.
func ReportRows(st *model.State) []model.ReportRow {
	names := make(map[string]string, len(st.Products))
	for _, p := range st.Products {
		names[p.ID] = p.Name
	}

	rows := make([]model.ReportRow, 0, len(st.Sales)+len(st.Expenses)+len(st.Tables))
	for _, s := range st.Sales {
		name, ok := names[s.ProductID]
		if !ok {
			name = model.DeletedProductLabel
		}
		rows = append(rows, model.ReportRow{
			Type:   model.RowSale,
			At:     s.At,
			Detail: name,
			Qty:    s.Qty,
			Total:  s.Total,
			Profit: s.Profit,
		})
	}
	for _, e := range st.Expenses {
		detail := e.Type
		if e.Description != "" {
			detail += ": " + e.Description
		}
		rows = append(rows, model.ReportRow{
			Type:   model.RowExpense,
			At:     e.At,
			Detail: detail,
			Qty:    1,
			Total:  e.Amount,
			Profit: e.Amount.Neg(),
		})
	}
	for _, t := range st.Tables {
		if !t.Finished() || t.Total == nil {
			continue
		}
		rows = append(rows, model.ReportRow{
			Type:   model.RowTable,
			At:     *t.EndAt,
			Detail: fmt.Sprintf("Mesa %d", t.Table),
			Qty:    t.Players,
			Total:  *t.Total,
			Profit: *t.Total,
		})
	}

	slices.SortStableFunc(rows, func(a, b model.ReportRow) int { return b.At.Compare(a.At) })
	return rows
}

// Summarize computes the headline KPIs.
func Summarize(st *model.State) model.Summary {
	sum := model.Summary{
		SalesTotal:    decimal.Zero,
		SalesProfit:   decimal.Zero,
		ExpensesTotal: decimal.Zero,
		TablesTotal:   decimal.Zero,
	}
	for _, s := range st.Sales {
		sum.SalesCount++
		sum.SalesTotal = sum.SalesTotal.Add(s.Total)
		sum.SalesProfit = sum.SalesProfit.Add(s.Profit)
	}
	for _, e := range st.Expenses {
		sum.ExpensesTotal = sum.ExpensesTotal.Add(e.Amount)
	}
	for _, t := range st.Tables {
		switch {
		case t.Active:
			sum.ActiveTables++
		case t.Total != nil:
			sum.TablesCount++
			sum.TablesTotal = sum.TablesTotal.Add(*t.Total)
		}
	}
	for _, p := range st.Products {
		if p.LowStock() {
			sum.LowStock++
		}
	}
	sum.Net = sum.SalesProfit.Add(sum.TablesTotal).Sub(sum.ExpensesTotal)
	return sum
}
