package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report row types.
const (
	RowSale    = "venta"
	RowExpense = "gasto"
	RowTable   = "mesa"
)

// DeletedProductLabel replaces the name of a product a sale still points to
// after the product was removed.
const DeletedProductLabel = "Producto eliminado"

// ReportHeader is the column order of every tabular export.
var ReportHeader = []string{"tipo", "fecha", "detalle", "cantidad", "total", "ganancia"}

// ReportRow is one line of the CSV/XLSX export.
type ReportRow struct {
	Type   string
	At     time.Time
	Detail string
	Qty    int
	Total  decimal.Decimal
	Profit decimal.Decimal
}

// Summary holds the headline figures of the ledger.
type Summary struct {
	SalesCount    int             `json:"salesCount"`
	SalesTotal    decimal.Decimal `json:"salesTotal"`
	SalesProfit   decimal.Decimal `json:"salesProfit"`
	ExpensesTotal decimal.Decimal `json:"expensesTotal"`
	TablesCount   int             `json:"tablesCount"`
	TablesTotal   decimal.Decimal `json:"tablesTotal"`
	ActiveTables  int             `json:"activeTables"`
	LowStock      int             `json:"lowStock"`
	// Net = sales profit + tables total - expenses.
	Net decimal.Decimal `json:"net"`
}
