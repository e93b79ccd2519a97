package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/internal/testutil/odootest"
)

func TestProductService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := f.login(t)
	f.odoo.Handle("product.product", "search_read", func(c odootest.Call) (any, *odootest.Fault) {
		dom := c.Domain()
		if len(dom) == 1 {
			leaf := dom[0].([]any)
			if leaf[0] != "default_code" || leaf[2] != "BAT-1" {
				return []map[string]any{}, nil
			}
		}
		return []map[string]any{{
			"id": 10, "name": "Battery", "default_code": "BAT-1", "barcode": false,
			"list_price": 19.99, "qty_available": 0, "uom_id": false,
		}}, nil
	})

	t.Run("barcode falls back to internal reference", func(t *testing.T) {
		p, err := f.products.ByBarcode(ctx, actor, "BAT-1")
		require.NoError(t, err)
		require.Equal(t, int64(10), p.ID)
		require.Empty(t, p.Barcode)

		calls := f.odoo.CallsTo("product.product", "search_read")
		require.Len(t, calls, 2)
		require.Equal(t, "barcode", calls[0].Domain()[0].([]any)[0])
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.products.ByBarcode(ctx, actor, "000")
		require.ErrorIs(t, err, ErrNotFound)
		_, err = f.products.ByBarcode(ctx, actor, "")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("search", func(t *testing.T) {
		found, err := f.products.Search(ctx, actor, "batt", 5)
		require.NoError(t, err)
		require.Equal(t, []domain.Product{{ID: 10, Name: "Battery", DefaultCode: "BAT-1",
			ListPrice: found[0].ListPrice, QtyAvailable: found[0].QtyAvailable}}, found)

		calls := f.odoo.CallsTo("product.product", "search_read")
		last := calls[len(calls)-1]
		require.Equal(t, "|", last.Domain()[0])
		require.Equal(t, 5.0, last.Kwargs["limit"])
	})

	t.Run("runs on the catalog session", func(t *testing.T) {
		s, err := f.catalog.Session(ctx, techLogin)
		require.NoError(t, err)
		calls := f.odoo.CallsTo("product.product", "search_read")
		require.Contains(t, calls[0].Cookie, s.Token)
	})
}
