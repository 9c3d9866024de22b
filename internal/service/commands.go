package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command is one explicit state transition. Apply mutates st in place; the
// LedgerService always hands it a clone, so a failed command leaves the live
// state untouched.
type Command interface {
	Name() string
	Apply(st *model.State, now time.Time) error
}

func invalid(cmd Command, format string, args ...any) error {
	return apperror.Invalid(cmd.Name(), fmt.Sprintf(format, args...))
}

// ── Products ──────────────────────────────────────────────────────────────────

type ProductFields struct {
	Name     string
	Category string
	Cost     decimal.Decimal
	Price    decimal.Decimal
	Stock    int
	StockMin int
}

func (f ProductFields) validate(cmd Command) error {
	if strings.TrimSpace(f.Name) == "" {
		return invalid(cmd, "el nombre es obligatorio")
	}
	if f.Cost.IsNegative() {
		return invalid(cmd, "el costo no puede ser negativo")
	}
	if f.Price.LessThan(f.Cost) {
		return invalid(cmd, "el precio (%s) no puede ser menor al costo (%s)", f.Price, f.Cost)
	}
	if f.Stock < 0 || f.StockMin < 0 {
		return invalid(cmd, "stock y stock mínimo no pueden ser negativos")
	}
	return nil
}

func (f ProductFields) applyTo(p *model.Product) {
	p.Name = strings.TrimSpace(f.Name)
	p.Category = strings.TrimSpace(f.Category)
	if p.Category == "" {
		p.Category = model.DefaultCategory
	}
	p.Cost = f.Cost
	p.Price = f.Price
	p.Stock = f.Stock
	p.StockMin = f.StockMin
}

type AddProduct struct {
	ProductFields
	// ID is assigned by Apply when empty.
	ID string
}

func (c *AddProduct) Name() string { return "product.add" }

func (c *AddProduct) Apply(st *model.State, _ time.Time) error {
	if err := c.validate(c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if st.ProductByID(c.ID) >= 0 {
		return invalid(c, "ya existe un producto con id %s", c.ID)
	}
	p := model.Product{ID: c.ID}
	c.applyTo(&p)
	st.Products = append(st.Products, p)
	return nil
}

type UpdateProduct struct {
	ProductFields
	ID string
}

func (c *UpdateProduct) Name() string { return "product.update" }

func (c *UpdateProduct) Apply(st *model.State, _ time.Time) error {
	if err := c.validate(c); err != nil {
		return err
	}
	i := st.ProductByID(c.ID)
	if i < 0 {
		return apperror.NotFound(c.Name(), "producto "+c.ID)
	}
	c.applyTo(&st.Products[i])
	return nil
}

// DeleteProduct never cascades: sales keep their dangling ProductID.
type DeleteProduct struct{ ID string }

func (c *DeleteProduct) Name() string { return "product.delete" }

func (c *DeleteProduct) Apply(st *model.State, _ time.Time) error {
	i := st.ProductByID(c.ID)
	if i < 0 {
		return apperror.NotFound(c.Name(), "producto "+c.ID)
	}
	st.Products = append(st.Products[:i], st.Products[i+1:]...)
	return nil
}

// ── Sales ─────────────────────────────────────────────────────────────────────

// RecordSale captures price and cost at sale time and takes qty out of stock.
// UnitPrice overrides the product's current price when set.
type RecordSale struct {
	ProductID string
	Qty       int
	UnitPrice *decimal.Decimal
	Notes     string
	// Sale is filled in by Apply.
	Sale model.Sale
}

func (c *RecordSale) Name() string { return "sale.record" }

func (c *RecordSale) Apply(st *model.State, now time.Time) error {
	if c.Qty <= 0 {
		return invalid(c, "la cantidad debe ser mayor a 0")
	}
	i := st.ProductByID(c.ProductID)
	if i < 0 {
		return apperror.NotFound(c.Name(), "producto "+c.ProductID)
	}
	p := &st.Products[i]
	if p.Stock < c.Qty {
		return invalid(c, "stock insuficiente para %s: disponible %d, solicitado %d", p.Name, p.Stock, c.Qty)
	}
	price := p.Price
	if c.UnitPrice != nil {
		if c.UnitPrice.IsNegative() {
			return invalid(c, "el precio no puede ser negativo")
		}
		price = *c.UnitPrice
	}
	qty := decimal.NewFromInt(int64(c.Qty))
	c.Sale = model.Sale{
		ID:        uuid.NewString(),
		At:        now,
		ProductID: p.ID,
		Qty:       c.Qty,
		UnitPrice: price,
		UnitCost:  p.Cost,
		Total:     qty.Mul(price),
		Profit:    qty.Mul(price.Sub(p.Cost)),
		Notes:     strings.TrimSpace(c.Notes),
	}
	p.Stock -= c.Qty
	st.Sales = append([]model.Sale{c.Sale}, st.Sales...)
	return nil
}

// DeleteSale removes a sale and returns its quantity to stock when the product
// still exists.
type DeleteSale struct{ ID string }

func (c *DeleteSale) Name() string { return "sale.delete" }

func (c *DeleteSale) Apply(st *model.State, _ time.Time) error {
	for i, s := range st.Sales {
		if s.ID != c.ID {
			continue
		}
		if j := st.ProductByID(s.ProductID); j >= 0 {
			st.Products[j].Stock += s.Qty
		}
		st.Sales = append(st.Sales[:i], st.Sales[i+1:]...)
		return nil
	}
	return apperror.NotFound(c.Name(), "venta "+c.ID)
}

// ── Expenses ──────────────────────────────────────────────────────────────────

type AddExpense struct {
	Type        string
	Amount      decimal.Decimal
	Description string
	// At defaults to now.
	At time.Time
	// Expense is filled in by Apply.
	Expense model.Expense
}

func (c *AddExpense) Name() string { return "expense.add" }

func (c *AddExpense) Apply(st *model.State, now time.Time) error {
	if strings.TrimSpace(c.Type) == "" {
		return invalid(c, "el tipo de gasto es obligatorio")
	}
	if !c.Amount.IsPositive() {
		return invalid(c, "el monto debe ser mayor a 0")
	}
	at := c.At
	if at.IsZero() {
		at = now
	}
	c.Expense = model.Expense{
		ID:          uuid.NewString(),
		At:          at,
		Type:        strings.TrimSpace(c.Type),
		Amount:      c.Amount,
		Description: strings.TrimSpace(c.Description),
	}
	st.Expenses = append([]model.Expense{c.Expense}, st.Expenses...)
	return nil
}

type DeleteExpense struct{ ID string }

func (c *DeleteExpense) Name() string { return "expense.delete" }

func (c *DeleteExpense) Apply(st *model.State, _ time.Time) error {
	for i := range st.Expenses {
		if st.Expenses[i].ID == c.ID {
			st.Expenses = append(st.Expenses[:i], st.Expenses[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound(c.Name(), "gasto "+c.ID)
}

// ── Table sessions ────────────────────────────────────────────────────────────

// StartTable opens a session. Only one active session per table number.
type StartTable struct {
	Table   int
	Players int
	Rate    decimal.Decimal
	// Session is filled in by Apply.
	Session model.TableSession
}

func (c *StartTable) Name() string { return "table.start" }

func (c *StartTable) Apply(st *model.State, now time.Time) error {
	if c.Table <= 0 {
		return invalid(c, "número de mesa inválido")
	}
	if c.Players <= 0 {
		return invalid(c, "debe haber al menos un jugador")
	}
	if c.Rate.IsNegative() {
		return invalid(c, "la tarifa no puede ser negativa")
	}
	for _, t := range st.Tables {
		if t.Active && t.Table == c.Table {
			return invalid(c, "la mesa %d ya tiene una sesión activa", c.Table)
		}
	}
	c.Session = model.TableSession{
		ID:      uuid.NewString(),
		Table:   c.Table,
		Players: c.Players,
		Rate:    c.Rate,
		StartAt: now,
		Active:  true,
	}
	st.Tables = append([]model.TableSession{c.Session}, st.Tables...)
	return nil
}

// StopTable closes an active session and computes its total exactly once:
// elapsed hours × rate × players, rounded to cents.
type StopTable struct {
	ID string
	// Session is filled in by Apply.
	Session model.TableSession
}

func (c *StopTable) Name() string { return "table.stop" }

func (c *StopTable) Apply(st *model.State, now time.Time) error {
	for i := range st.Tables {
		t := &st.Tables[i]
		if t.ID != c.ID {
			continue
		}
		if !t.Active {
			return invalid(c, "la sesión de la mesa %d ya fue cerrada", t.Table)
		}
		end := now
		if end.Before(t.StartAt) {
			end = t.StartAt
		}
		total := TableCharge(t.Rate, t.Players, end.Sub(t.StartAt))
		t.EndAt = &end
		t.Total = &total
		t.Active = false
		c.Session = *t
		return nil
	}
	return apperror.NotFound(c.Name(), "sesión de mesa "+c.ID)
}

var msPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

// TableCharge is the amount owed for a session of the given length.
func TableCharge(rate decimal.Decimal, players int, elapsed time.Duration) decimal.Decimal {
	hours := decimal.NewFromInt(elapsed.Milliseconds()).Div(msPerHour)
	return hours.Mul(rate).Mul(decimal.NewFromInt(int64(players))).Round(2)
}

type DeleteTable struct{ ID string }

func (c *DeleteTable) Name() string { return "table.delete" }

func (c *DeleteTable) Apply(st *model.State, _ time.Time) error {
	for i := range st.Tables {
		if st.Tables[i].ID == c.ID {
			st.Tables = append(st.Tables[:i], st.Tables[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound(c.Name(), "sesión de mesa "+c.ID)
}

// ── Business ──────────────────────────────────────────────────────────────────

type SetBusiness struct {
	BusinessName string
	Currency     string
}

func (c *SetBusiness) Name() string { return "business.set" }

func (c *SetBusiness) Apply(st *model.State, _ time.Time) error {
	if strings.TrimSpace(c.BusinessName) == "" {
		return invalid(c, "el nombre del negocio es obligatorio")
	}
	st.Business.Name = strings.TrimSpace(c.BusinessName)
	if cur := strings.TrimSpace(c.Currency); cur != "" {
		st.Business.Currency = strings.ToUpper(cur)
	}
	return nil
}
