package service

import (
	"context"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	legacyMaxCount        = 1_000_000
	legacyPlaceholderName = "Producto (migrado)"
	legacySaleNote        = "Migrado"
)

// groupedThousands matches amounts like "1,500" or "Q 12,000,000" where every
// comma is followed by exactly three digits. Any other comma is decimal.
var groupedThousands = regexp.MustCompile(`^[^,]*\d,\d{3}(,\d{3})*[^,\d]*$`)

// LegacyImporter converts the old flat storage area into a Domain State.
// It never fails: unreadable collections and unusable records are skipped,
// with read failures reported as warnings. It never writes to the legacy
// area.
type LegacyImporter interface {
	Import(ctx context.Context) (*model.State, []apperror.Warning)
}

type legacyImporter struct {
	repo repository.LegacyRepository
	now  func() time.Time
}

func NewLegacyImporter(repo repository.LegacyRepository, now func() time.Time) LegacyImporter {
	if now == nil {
		now = time.Now
	}
	return &legacyImporter{repo: repo, now: now}
}

func (l *legacyImporter) Import(ctx context.Context) (*model.State, []apperror.Warning) {
	var warnings []apperror.Warning
	st := model.NewState()
	now := l.now()

	products, err := l.repo.Products(ctx)
	warnings = apperror.Collect(warnings, apperror.Soft("legacy.products", err))
	byName := make(map[string]int)
	for _, rec := range products {
		p, ok := legacyProduct(rec)
		if !ok {
			continue
		}
		byName[normalizeName(p.Name)] = len(st.Products)
		st.Products = append(st.Products, p)
	}

	sales, err := l.repo.Sales(ctx)
	warnings = apperror.Collect(warnings, apperror.Soft("legacy.sales", err))
	for _, rec := range sales {
		st.Sales = append(st.Sales, legacySale(st, byName, rec, now))
	}
	slices.SortStableFunc(st.Sales, func(a, b model.Sale) int { return b.At.Compare(a.At) })

	tables, err := l.repo.Tables(ctx)
	warnings = apperror.Collect(warnings, apperror.Soft("legacy.tables", err))
	busy := make(map[int]bool)
	for _, rec := range tables {
		t, ok := legacyTable(rec, now)
		if !ok || busy[t.Table] {
			continue
		}
		busy[t.Table] = true
		st.Tables = append(st.Tables, t)
	}

	return st, warnings
}

// ── Record conversion ─────────────────────────────────────────────────────────

func legacyProduct(rec repository.LegacyRecord) (model.Product, bool) {
	name := strings.TrimSpace(legacyString(rec["nombre"]))
	if name == "" {
		return model.Product{}, false
	}
	category := strings.TrimSpace(legacyString(rec["categoria"]))
	if category == "" {
		category = model.DefaultCategory
	}
	cost := legacyMoney(rec["costo"])
	price := legacyMoney(rec["precio"])
	if price.LessThan(cost) {
		price = cost
	}
	return model.Product{
		ID:       uuid.NewString(),
		Name:     name,
		Category: category,
		Cost:     cost,
		Price:    price,
		Stock:    legacyCount(rec["stock"]),
		StockMin: legacyCount(rec["stockMinimo"]),
	}, true
}

// legacySale keeps the legacy price and profit. The unit cost is derived from
// them, and a placeholder product is added when the name matches nothing.
func legacySale(st *model.State, byName map[string]int, rec repository.LegacyRecord, now time.Time) model.Sale {
	qty := legacyCount(rec["cantidad"])
	if qty == 0 {
		qty = 1
	}
	q := decimal.NewFromInt(int64(qty))

	price := legacyMoney(rec["precio"])
	if price.IsZero() {
		price = legacyMoney(rec["total"]).Div(q).Round(2)
	}
	profit := legacySignedMoney(rec["ganancia"])
	cost := decimal.Max(decimal.Zero, price.Sub(profit.Div(q))).Round(2)

	name := strings.TrimSpace(legacyString(rec["producto"]))
	key := normalizeName(name)
	idx, ok := byName[key]
	if !ok {
		if name == "" {
			name = legacyPlaceholderName
			key = normalizeName(name)
		}
		idx, ok = byName[key]
	}
	if !ok {
		st.Products = append(st.Products, model.Product{
			ID:       uuid.NewString(),
			Name:     name,
			Category: model.DefaultCategory,
			Cost:     decimal.Min(cost, price),
			Price:    price,
		})
		idx = len(st.Products) - 1
		byName[key] = idx
	}

	return model.Sale{
		ID:        uuid.NewString(),
		At:        legacyTime(rec["fecha"], now),
		ProductID: st.Products[idx].ID,
		Qty:       qty,
		UnitPrice: price,
		UnitCost:  cost,
		Total:     q.Mul(price),
		Profit:    q.Mul(price.Sub(cost)),
		Notes:     legacySaleNote,
	}
}

// legacyTable imports only sessions still running. Finished legacy sessions
// carry no usable end time.
func legacyTable(rec repository.LegacyRecord, now time.Time) (model.TableSession, bool) {
	if active, ok := legacyBool(rec["activa"]); ok && !active {
		return model.TableSession{}, false
	}
	table := legacyCount(rec["mesa"])
	if table == 0 {
		return model.TableSession{}, false
	}
	players := legacyCount(rec["jugadores"])
	if players == 0 {
		players = 1
	}
	return model.TableSession{
		ID:      uuid.NewString(),
		Table:   table,
		Players: players,
		Rate:    legacyMoney(rec["tarifa"]),
		StartAt: legacyTime(rec["inicio"], now),
		Active:  true,
	}, true
}

// ── Coercions (never fail) ────────────────────────────────────────────────────

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func legacyString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

func legacyNumber(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		if strings.Contains(x, ".") || groupedThousands.MatchString(x) {
			x = strings.ReplaceAll(x, ",", "")
		}
		cleaned := strings.Map(func(r rune) rune {
			switch {
			case r >= '0' && r <= '9', r == '.', r == '-':
				return r
			case r == ',':
				return '.'
			}
			return -1
		}, x)
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if x {
			f = 1
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// legacyMoney parses a non-negative amount rounded to cents.
func legacyMoney(v any) decimal.Decimal {
	d := legacySignedMoney(v)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// legacySignedMoney keeps the sign; losses are recorded as negative profit.
func legacySignedMoney(v any) decimal.Decimal {
	return decimal.NewFromFloat(legacyNumber(v)).Round(2)
}

// legacyCount parses a whole number clamped to [0, legacyMaxCount].
func legacyCount(v any) int {
	f := math.Floor(legacyNumber(v))
	switch {
	case f < 0:
		return 0
	case f > legacyMaxCount:
		return legacyMaxCount
	default:
		return int(f)
	}
}

func legacyBool(v any) (value, ok bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	default:
		return false, false
	}
}

var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// legacyTime accepts RFC 3339 and a few local layouts, or epoch milliseconds.
func legacyTime(v any, fallback time.Time) time.Time {
	switch x := v.(type) {
	case float64:
		if x > 0 && !math.IsInf(x, 0) {
			return time.UnixMilli(int64(x)).UTC()
		}
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range legacyTimeLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return t
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms).UTC()
		}
	}
	return fallback
}
