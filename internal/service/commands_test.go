package service

import (
	"testing"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)

func TestRecordSaleCapturesPriceAndCost(t *testing.T) {
	st := model.NewState()
	require.NoError(t, soda().Apply(st, t0))

	sale := &RecordSale{ProductID: "soda", Qty: 3}
	require.NoError(t, sale.Apply(st, t0))

	require.Len(t, st.Sales, 1)
	got := st.Sales[0]
	assert.True(t, got.Total.Equal(dec("24")), "total = %s", got.Total)
	assert.True(t, got.Profit.Equal(dec("9")), "profit = %s", got.Profit)
	assert.True(t, got.UnitCost.Equal(dec("5")))
	assert.Equal(t, 7, st.Products[0].Stock)
	assert.Equal(t, t0, got.At)

	// A later price change does not touch recorded sales.
	update := &UpdateProduct{ID: "soda", ProductFields: ProductFields{Name: "Soda", Cost: dec("6"), Price: dec("10"), Stock: 7}}
	require.NoError(t, update.Apply(st, t0))
	assert.True(t, st.Sales[0].Total.Equal(dec("24")))
}

func TestRecordSaleNewestFirstAndPriceOverride(t *testing.T) {
	st := model.NewState()
	require.NoError(t, soda().Apply(st, t0))

	require.NoError(t, (&RecordSale{ProductID: "soda", Qty: 1}).Apply(st, t0))
	price := dec("7.5")
	second := &RecordSale{ProductID: "soda", Qty: 2, UnitPrice: &price, Notes: " promo "}
	require.NoError(t, second.Apply(st, t0.Add(time.Minute)))

	require.Len(t, st.Sales, 2)
	assert.Equal(t, second.Sale.ID, st.Sales[0].ID)
	assert.True(t, st.Sales[0].Total.Equal(dec("15")))
	assert.True(t, st.Sales[0].Profit.Equal(dec("5")))
	assert.Equal(t, "promo", st.Sales[0].Notes)
}

func TestRecordSaleRejections(t *testing.T) {
	cases := []struct {
		name string
		cmd  *RecordSale
		kind apperror.Kind
	}{
		{"zero qty", &RecordSale{ProductID: "soda", Qty: 0}, apperror.KindInvalid},
		{"unknown product", &RecordSale{ProductID: "nope", Qty: 1}, apperror.KindNotFound},
		{"insufficient stock", &RecordSale{ProductID: "soda", Qty: 11}, apperror.KindInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := model.NewState()
			require.NoError(t, soda().Apply(st, t0))
			err := tc.cmd.Apply(st, t0)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperror.KindOf(err))
			assert.Empty(t, st.Sales)
			assert.Equal(t, 10, st.Products[0].Stock)
		})
	}
}

func TestProductValidation(t *testing.T) {
	cases := []struct {
		name   string
		fields ProductFields
	}{
		{"blank name", ProductFields{Name: "  ", Cost: dec("1"), Price: dec("2")}},
		{"price below cost", ProductFields{Name: "Chips", Cost: dec("5"), Price: dec("4")}},
		{"negative cost", ProductFields{Name: "Chips", Cost: dec("-1"), Price: dec("4")}},
		{"negative stock", ProductFields{Name: "Chips", Cost: dec("1"), Price: dec("4"), Stock: -1}},
		{"negative stock min", ProductFields{Name: "Chips", Cost: dec("1"), Price: dec("4"), StockMin: -2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := model.NewState()
			err := (&AddProduct{ProductFields: tc.fields}).Apply(st, t0)
			assert.ErrorIs(t, err, apperror.ErrInvalid)
			assert.Empty(t, st.Products)
		})
	}
}

func TestAddProductDefaultsCategory(t *testing.T) {
	st := model.NewState()
	cmd := &AddProduct{ProductFields: ProductFields{Name: " Taco ", Cost: dec("1"), Price: dec("1")}}
	require.NoError(t, cmd.Apply(st, t0))

	require.Len(t, st.Products, 1)
	assert.NotEmpty(t, cmd.ID)
	assert.Equal(t, "Taco", st.Products[0].Name)
	assert.Equal(t, model.DefaultCategory, st.Products[0].Category)

	dup := &AddProduct{ID: cmd.ID, ProductFields: ProductFields{Name: "Otro", Cost: dec("1"), Price: dec("1")}}
	assert.ErrorIs(t, dup.Apply(st, t0), apperror.ErrInvalid)
}

func TestDeleteProductKeepsSales(t *testing.T) {
	st := model.NewState()
	require.NoError(t, soda().Apply(st, t0))
	require.NoError(t, (&RecordSale{ProductID: "soda", Qty: 1}).Apply(st, t0))

	require.NoError(t, (&DeleteProduct{ID: "soda"}).Apply(st, t0))
	assert.Empty(t, st.Products)
	require.Len(t, st.Sales, 1)
	assert.Equal(t, "soda", st.Sales[0].ProductID)

	assert.ErrorIs(t, (&DeleteProduct{ID: "soda"}).Apply(st, t0), apperror.ErrNotFound)
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	st := model.NewState()
	require.NoError(t, soda().Apply(st, t0))
	sale := &RecordSale{ProductID: "soda", Qty: 4}
	require.NoError(t, sale.Apply(st, t0))
	assert.Equal(t, 6, st.Products[0].Stock)

	require.NoError(t, (&DeleteSale{ID: sale.Sale.ID}).Apply(st, t0))
	assert.Empty(t, st.Sales)
	assert.Equal(t, 10, st.Products[0].Stock)

	assert.ErrorIs(t, (&DeleteSale{ID: sale.Sale.ID}).Apply(st, t0), apperror.ErrNotFound)
}

func TestDeleteSaleOfDeletedProduct(t *testing.T) {
	st := model.NewState()
	require.NoError(t, soda().Apply(st, t0))
	sale := &RecordSale{ProductID: "soda", Qty: 1}
	require.NoError(t, sale.Apply(st, t0))
	require.NoError(t, (&DeleteProduct{ID: "soda"}).Apply(st, t0))

	require.NoError(t, (&DeleteSale{ID: sale.Sale.ID}).Apply(st, t0))
	assert.Empty(t, st.Sales)
	assert.Empty(t, st.Products)
}

func TestExpenses(t *testing.T) {
	st := model.NewState()
	assert.ErrorIs(t, (&AddExpense{Type: "luz", Amount: dec("0")}).Apply(st, t0), apperror.ErrInvalid)
	assert.ErrorIs(t, (&AddExpense{Type: "", Amount: dec("10")}).Apply(st, t0), apperror.ErrInvalid)

	add := &AddExpense{Type: "luz", Amount: dec("120.50"), Description: "octubre"}
	require.NoError(t, add.Apply(st, t0))
	require.Len(t, st.Expenses, 1)
	assert.Equal(t, t0, st.Expenses[0].At)

	require.NoError(t, (&DeleteExpense{ID: add.Expense.ID}).Apply(st, t0))
	assert.Empty(t, st.Expenses)
	assert.ErrorIs(t, (&DeleteExpense{ID: add.Expense.ID}).Apply(st, t0), apperror.ErrNotFound)
}

func TestTableSessionThirtyMinutes(t *testing.T) {
	st := model.NewState()
	start := &StartTable{Table: 1, Players: 2, Rate: dec("10")}
	require.NoError(t, start.Apply(st, t0))
	require.True(t, st.Tables[0].Active)

	stop := &StopTable{ID: start.Session.ID}
	require.NoError(t, stop.Apply(st, t0.Add(30*time.Minute)))

	got := st.Tables[0]
	assert.False(t, got.Active)
	require.NotNil(t, got.EndAt)
	require.NotNil(t, got.Total)
	assert.True(t, got.Total.Equal(dec("10")), "total = %s", got.Total)
	assert.Equal(t, t0.Add(30*time.Minute), *got.EndAt)

	// Stopped sessions are immutable.
	err := (&StopTable{ID: start.Session.ID}).Apply(st, t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, apperror.ErrInvalid)
	assert.True(t, st.Tables[0].Total.Equal(dec("10")))
	assert.Equal(t, t0.Add(30*time.Minute), *st.Tables[0].EndAt)
}

func TestStartTableOneActivePerTable(t *testing.T) {
	st := model.NewState()
	first := &StartTable{Table: 3, Players: 2, Rate: dec("15")}
	require.NoError(t, first.Apply(st, t0))

	err := (&StartTable{Table: 3, Players: 4, Rate: dec("15")}).Apply(st, t0)
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	require.NoError(t, (&StartTable{Table: 4, Players: 1, Rate: dec("15")}).Apply(st, t0))
	require.NoError(t, (&StopTable{ID: first.Session.ID}).Apply(st, t0.Add(time.Hour)))
	require.NoError(t, (&StartTable{Table: 3, Players: 2, Rate: dec("15")}).Apply(st, t0.Add(time.Hour)))
	assert.Len(t, st.Tables, 3)
}

func TestStartTableValidation(t *testing.T) {
	st := model.NewState()
	assert.ErrorIs(t, (&StartTable{Table: 0, Players: 1, Rate: dec("1")}).Apply(st, t0), apperror.ErrInvalid)
	assert.ErrorIs(t, (&StartTable{Table: 1, Players: 0, Rate: dec("1")}).Apply(st, t0), apperror.ErrInvalid)
	assert.ErrorIs(t, (&StartTable{Table: 1, Players: 1, Rate: dec("-1")}).Apply(st, t0), apperror.ErrInvalid)
	assert.ErrorIs(t, (&StopTable{ID: "missing"}).Apply(st, t0), apperror.ErrNotFound)
	assert.ErrorIs(t, (&DeleteTable{ID: "missing"}).Apply(st, t0), apperror.ErrNotFound)
}

func TestTableCharge(t *testing.T) {
	cases := []struct {
		rate    string
		players int
		elapsed time.Duration
		want    string
	}{
		{"10", 2, 30 * time.Minute, "10"},
		{"25", 1, 90 * time.Minute, "37.5"},
		{"10", 3, 20 * time.Minute, "10"},
		{"7", 1, 10 * time.Minute, "1.17"},
		{"0", 4, time.Hour, "0"},
	}
	for _, tc := range cases {
		got := TableCharge(dec(tc.rate), tc.players, tc.elapsed)
		assert.True(t, got.Equal(dec(tc.want)), "rate %s × %d × %s = %s, want %s", tc.rate, tc.players, tc.elapsed, got, tc.want)
	}
}

func TestSetBusiness(t *testing.T) {
	st := model.NewState()
	require.NoError(t, (&SetBusiness{BusinessName: " Billar El Taco ", Currency: "usd"}).Apply(st, t0))
	assert.Equal(t, model.Business{Name: "Billar El Taco", Currency: "USD"}, st.Business)

	require.NoError(t, (&SetBusiness{BusinessName: "Otro"}).Apply(st, t0))
	assert.Equal(t, "USD", st.Business.Currency)

	assert.ErrorIs(t, (&SetBusiness{BusinessName: ""}).Apply(st, t0), apperror.ErrInvalid)
}
