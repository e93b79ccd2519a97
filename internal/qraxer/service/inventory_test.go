package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/internal/testutil/odootest"
)

func quantRow(id, product, location int64, qty float64) map[string]any {
	return map[string]any{
		"id":                 id,
		"product_id":         []any{product, "Product"},
		"location_id":        []any{location, "WH/Stock"},
		"lot_id":             false,
		"quantity":           qty,
		"inventory_quantity": 0,
	}
}

// serveQuants returns the quant of product 10 at location 8 and nothing
// for other products.
func serveQuants(f *fixture) {
	f.odoo.Handle("stock.quant", "search_read", func(c odootest.Call) (any, *odootest.Fault) {
		leaf := c.Domain()[0].([]any)
		if leaf[0] == "product_id" && leaf[2] == 10.0 {
			return []map[string]any{quantRow(55, 10, 8, 3)}, nil
		}
		if leaf[0] == "location_id" {
			return []map[string]any{quantRow(55, 10, 8, 3), quantRow(56, 11, 8, 1.5)}, nil
		}
		return []map[string]any{}, nil
	})
}

func TestInventoryService_Count(t *testing.T) {
	ctx := context.Background()

	items := []domain.CountItem{
		{ProductID: 10, Quantity: decimal.NewFromInt(5)},
		{ProductID: 11, Quantity: decimal.RequireFromString("2.5")},
		{ProductID: 0, Quantity: decimal.NewFromInt(1)},
		{ProductID: 12, Quantity: decimal.NewFromInt(-1)},
	}

	t.Run("updates, creates and applies", func(t *testing.T) {
		f := newFixture(t)
		serveQuants(f)
		f.odoo.Result("stock.quant", "write", true)
		f.odoo.Result("stock.quant", "create", 99)
		f.odoo.Result("stock.quant", "action_apply_inventory", true)

		summary, err := f.stock.Count(ctx, 8, items)
		require.NoError(t, err)
		require.Equal(t, 4, summary.Total)
		require.Equal(t, 2, summary.Succeeded)
		require.Equal(t, 2, summary.Failed)
		require.True(t, summary.Applied)
		require.Empty(t, summary.ApplyError)

		require.Equal(t, domain.CountUpdated, summary.Items[0].Action)
		require.Equal(t, int64(55), summary.Items[0].QuantID)
		require.Equal(t, domain.CountCreated, summary.Items[1].Action)
		require.Equal(t, int64(99), summary.Items[1].QuantID)
		require.Equal(t, domain.CountFailed, summary.Items[2].Action)
		require.Equal(t, domain.CountFailed, summary.Items[3].Action)

		writes := f.odoo.CallsTo("stock.quant", "write")
		require.Len(t, writes, 1)
		require.Equal(t, map[string]any{"inventory_quantity": 5.0}, writes[0].Args[1])

		creates := f.odoo.CallsTo("stock.quant", "create")
		require.Len(t, creates, 1)
		require.Equal(t, 2.5, creates[0].Args[0].(map[string]any)["inventory_quantity"])
		require.Equal(t, map[string]any{"inventory_mode": true}, creates[0].Kwargs["context"])

		applies := f.odoo.CallsTo("stock.quant", "action_apply_inventory")
		require.Len(t, applies, 1)
		require.Equal(t, []any{[]any{55.0, 99.0}}, applies[0].Args)

		require.Equal(t, 1, f.odoo.Auths(), "the shared session is opened once")
	})

	t.Run("item error does not stop the rest", func(t *testing.T) {
		f := newFixture(t)
		serveQuants(f)
		f.odoo.Handle("stock.quant", "write", func(odootest.Call) (any, *odootest.Fault) {
			return nil, &odootest.Fault{Code: 200, Message: "Odoo Server Error", Name: "odoo.exceptions.UserError"}
		})
		f.odoo.Result("stock.quant", "create", 99)
		f.odoo.Result("stock.quant", "action_apply_inventory", true)

		summary, err := f.stock.Count(ctx, 8, items[:2])
		require.NoError(t, err)
		require.Equal(t, 1, summary.Succeeded)
		require.Equal(t, 1, summary.Failed)
		require.Equal(t, "Odoo Server Error", summary.Items[0].Error)
		require.True(t, summary.Applied)
	})

	t.Run("apply failure is reported", func(t *testing.T) {
		f := newFixture(t)
		serveQuants(f)
		f.odoo.Result("stock.quant", "write", true)
		f.odoo.Result("stock.quant", "create", 99)

		summary, err := f.stock.Count(ctx, 8, items[:2])
		require.NoError(t, err)
		require.Equal(t, 2, summary.Succeeded)
		require.False(t, summary.Applied)
		require.Contains(t, summary.ApplyError, "action_apply_inventory")
	})

	t.Run("nothing recorded", func(t *testing.T) {
		f := newFixture(t)
		summary, err := f.stock.Count(ctx, 8, items[2:])
		require.NoError(t, err)
		require.Equal(t, 2, summary.Failed)
		require.False(t, summary.Applied)
		require.Empty(t, f.odoo.CallsTo("stock.quant", "action_apply_inventory"))
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		var verr *ValidationError
		_, err := f.stock.Count(ctx, 0, items)
		require.ErrorAs(t, err, &verr)
		_, err = f.stock.Count(ctx, 8, nil)
		require.ErrorAs(t, err, &verr)
	})
}

func TestInventoryService_Lookups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	serveQuants(f)
	f.odoo.Result("stock.location", "search_read", []map[string]any{
		{"id": 8, "name": "Stock", "complete_name": "WH/Stock", "barcode": false},
	})
	f.odoo.Handle("product.product", "search_read", func(c odootest.Call) (any, *odootest.Fault) {
		leaf := c.Domain()[0].([]any)
		if leaf[0] == "barcode" && leaf[2] == "7790001" {
			return []map[string]any{{
				"id": 10, "name": "Battery", "default_code": "BAT-1", "barcode": "7790001",
				"list_price": 19.99, "qty_available": 3, "uom_id": []any{1, "Units"},
			}}, nil
		}
		return []map[string]any{}, nil
	})

	locations, err := f.stock.Locations(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Location{{ID: 8, Name: "Stock", CompleteName: "WH/Stock"}}, locations)

	stock, err := f.stock.ProductByBarcode(ctx, "7790001", 8)
	require.NoError(t, err)
	require.Equal(t, "Battery", stock.Product.Name)
	require.True(t, stock.Product.ListPrice.Equal(decimal.RequireFromString("19.99")))
	require.Equal(t, "Units", stock.Product.UoM)
	require.True(t, stock.OnHand.Equal(decimal.NewFromInt(3)))
	require.NotNil(t, stock.Location)

	_, err = f.stock.ProductByBarcode(ctx, "nope", 8)
	require.ErrorIs(t, err, ErrNotFound)

	quants, err := f.stock.Quants(ctx, 8)
	require.NoError(t, err)
	require.Len(t, quants, 2)
	require.True(t, quants[1].Quantity.Equal(decimal.RequireFromString("1.5")))

	_, err = f.stock.Quants(ctx, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
