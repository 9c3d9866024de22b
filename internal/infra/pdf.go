package infra

// pdf.go: summary report using go-pdf/fpdf.
// A4 portrait page with:
//   - Business name header and generation timestamp
//   - KPI block (sales, profit, tables, expenses, net)
//   - Movement table (most recent rows first, capped)

import (
	"fmt"
	"io"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// pdfMaxRows caps the movement table so the report stays a summary.
const pdfMaxRows = 200

// WriteSummaryPDF renders the ledger summary and its movements to w.
func WriteSummaryPDF(w io.Writer, business model.Business, sum model.Summary, rows []model.ReportRow, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24
	money := func(d decimal.Decimal) string { return business.Currency + " " + d.StringFixed(2) }

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(business.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Resumen financiero · "+generatedAt.Local().Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── KPIs ──────────────────────────────────────────────────────────────────
	kpis := []struct {
		label string
		value string
	}{
		{fmt.Sprintf("Ventas (%d)", sum.SalesCount), money(sum.SalesTotal)},
		{"Ganancia en ventas", money(sum.SalesProfit)},
		{fmt.Sprintf("Mesas cerradas (%d)", sum.TablesCount), money(sum.TablesTotal)},
		{"Gastos", money(sum.ExpensesTotal)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, k := range kpis {
		pdf.CellFormat(contentW*0.6, 6, tr(k.label), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 6, k.value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW*0.6, 7, "Neto", "T", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 7, money(sum.Net), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Mesas activas: %d · Productos con stock bajo: %d", sum.ActiveTables, sum.LowStock)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Movements ─────────────────────────────────────────────────────────────
	widths := []float64{0.10, 0.17, 0.37, 0.09, 0.135, 0.135}
	aligns := []string{"L", "L", "L", "C", "R", "R"}
	pdf.SetFont("Helvetica", "B", 8)
	for i, h := range model.ReportHeader {
		pdf.CellFormat(contentW*widths[i], 6, tr(h), "B", 0, aligns[i], false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for i, r := range rows {
		if i == pdfMaxRows {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("… y %d movimientos más", len(rows)-pdfMaxRows)), "", 1, "L", false, 0, "")
			break
		}
		detail := r.Detail
		if len([]rune(detail)) > 40 {
			detail = string([]rune(detail)[:39]) + "…"
		}
		cells := []string{
			r.Type,
			r.At.Local().Format("02/01/2006 15:04"),
			detail,
			fmt.Sprintf("%d", r.Qty),
			r.Total.StringFixed(2),
			r.Profit.StringFixed(2),
		}
		for j, c := range cells {
			pdf.CellFormat(contentW*widths[j], 5, tr(c), "", 0, aligns[j], false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}
