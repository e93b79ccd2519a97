package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/pkg/odoorpc"
)

const DefaultSearchLimit = 20

// ProductService looks products up on the catalog instance as the
// technician.
type ProductService struct {
	Proxy *odoorpc.Proxy
}

func (s *ProductService) Search(ctx context.Context, actor Actor, q string, limit int) ([]domain.Product, error) {
	var dom []any
	if q = strings.TrimSpace(q); q != "" {
		dom = []any{"|", "|",
			[]any{"name", "ilike", q},
			[]any{"default_code", "ilike", q},
			[]any{"barcode", "=", q},
		}
	}
	return searchProducts(ctx, s.Proxy, actor.Login, dom, clampLimit(limit, DefaultSearchLimit))
}

func (s *ProductService) ByBarcode(ctx context.Context, actor Actor, barcode string) (domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.Product{}, invalidInput("barcode", "is required")
	}
	return findProduct(ctx, s.Proxy, actor.Login, barcode)
}

// findProduct matches barcode first, then the internal reference.
func findProduct(ctx context.Context, proxy *odoorpc.Proxy, identity, code string) (domain.Product, error) {
	for _, field := range []string{"barcode", "default_code"} {
		found, err := searchProducts(ctx, proxy, identity, []any{[]any{field, "=", code}}, 1)
		if err != nil {
			return domain.Product{}, err
		}
		if len(found) > 0 {
			return found[0], nil
		}
	}
	return domain.Product{}, notFound("product %q", code)
}

func searchProducts(ctx context.Context, proxy *odoorpc.Proxy, identity string, dom []any, limit int) ([]domain.Product, error) {
	var rows []struct {
		ID           int64            `json:"id"`
		Name         odoorpc.Text     `json:"name"`
		DefaultCode  odoorpc.Text     `json:"default_code"`
		Barcode      odoorpc.Text     `json:"barcode"`
		ListPrice    decimal.Decimal  `json:"list_price"`
		QtyAvailable decimal.Decimal  `json:"qty_available"`
		UoM          odoorpc.Many2One `json:"uom_id"`
	}
	err := proxy.SearchRead(ctx, identity, productModel, dom, productFields,
		odoorpc.SearchOptions{Limit: limit, Order: "name"}, &rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Product{
			ID:           r.ID,
			Name:         r.Name.String(),
			DefaultCode:  r.DefaultCode.String(),
			Barcode:      r.Barcode.String(),
			ListPrice:    r.ListPrice,
			QtyAvailable: r.QtyAvailable,
			UoM:          r.UoM.Name,
		})
	}
	return out, nil
}
