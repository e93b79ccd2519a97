package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/pkg/odoorpc"
	"github.com/ithesk/qraxer/pkg/slogx"
)

const (
	locationModel = "stock.location"
	quantModel    = "stock.quant"
	productModel  = "product.product"
)

var (
	locationFields = []string{"name", "complete_name", "barcode"}
	quantFields    = []string{"product_id", "location_id", "lot_id", "quantity", "inventory_quantity"}
	productFields  = []string{"name", "default_code", "barcode", "list_price", "qty_available", "uom_id"}
)

// inventoryMode lets stock.quant accept inventory_quantity writes.
var inventoryMode = map[string]any{"context": map[string]any{"inventory_mode": true}}

// InventoryService counts stock through the shared service account.
type InventoryService struct {
	Proxy *odoorpc.Proxy
}

// Locations lists internal stock locations.
func (s *InventoryService) Locations(ctx context.Context) ([]domain.Location, error) {
	var rows []struct {
		ID           int64        `json:"id"`
		Name         odoorpc.Text `json:"name"`
		CompleteName odoorpc.Text `json:"complete_name"`
		Barcode      odoorpc.Text `json:"barcode"`
	}
	err := s.Proxy.SearchRead(ctx, odoorpc.SharedIdentity, locationModel,
		[]any{[]any{"usage", "=", "internal"}}, locationFields,
		odoorpc.SearchOptions{Order: "complete_name"}, &rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Location, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Location{
			ID:           r.ID,
			Name:         r.Name.String(),
			CompleteName: r.CompleteName.String(),
			Barcode:      r.Barcode.String(),
		})
	}
	return out, nil
}

// ProductByBarcode finds a product by barcode, or by internal reference,
// and its stock at locationID. A zero locationID covers every internal
// location.
func (s *InventoryService) ProductByBarcode(ctx context.Context, barcode string, locationID int64) (domain.ProductStock, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.ProductStock{}, invalidInput("barcode", "is required")
	}

	product, err := findProduct(ctx, s.Proxy, odoorpc.SharedIdentity, barcode)
	if err != nil {
		return domain.ProductStock{}, err
	}

	dom := []any{[]any{"product_id", "=", product.ID}}
	if locationID > 0 {
		dom = append(dom, []any{"location_id", "=", locationID})
	} else {
		dom = append(dom, []any{"location_id.usage", "=", "internal"})
	}
	quants, err := s.searchQuants(ctx, dom, 0)
	if err != nil {
		return domain.ProductStock{}, err
	}

	stock := domain.ProductStock{Product: product, Quants: quants, OnHand: decimal.Zero}
	for _, q := range quants {
		stock.OnHand = stock.OnHand.Add(q.Quantity)
	}
	if locationID > 0 && len(quants) > 0 {
		loc := quants[0].Location
		stock.Location = &loc
	}
	return stock, nil
}

// Quants lists the stock held at locationID.
func (s *InventoryService) Quants(ctx context.Context, locationID int64) ([]domain.Quant, error) {
	if locationID <= 0 {
		return nil, invalidInput("locationId", "is required")
	}
	return s.searchQuants(ctx, []any{[]any{"location_id", "=", locationID}}, 0)
}

// Count sets the counted quantity of every item at locationID, one item at
// a time, then applies the touched quants. Item failures do not stop the
// remaining items; nothing is rolled back.
func (s *InventoryService) Count(ctx context.Context, locationID int64, items []domain.CountItem) (domain.CountSummary, error) {
	if locationID <= 0 {
		return domain.CountSummary{}, invalidInput("locationId", "is required")
	}
	if len(items) == 0 {
		return domain.CountSummary{}, invalidInput("items", "must not be empty")
	}

	l := slogx.FromContext(ctx).With(slog.Int64("location_id", locationID))
	summary := domain.CountSummary{LocationID: locationID, Total: len(items), Items: make([]domain.CountItemResult, 0, len(items))}
	var touched []int64

	for _, item := range items {
		res := s.countItem(ctx, locationID, item)
		if res.Action == domain.CountFailed {
			summary.Failed++
			l.Warn("inventory count item failed", slog.Int64("product_id", item.ProductID), slog.String("error", res.Error))
		} else {
			summary.Succeeded++
			touched = append(touched, res.QuantID)
		}
		summary.Items = append(summary.Items, res)
	}

	if len(touched) == 0 {
		summary.ApplyError = "no item was recorded"
		return summary, nil
	}

	if _, err := s.Proxy.Execute(ctx, odoorpc.SharedIdentity, quantModel, "action_apply_inventory", []any{touched}, inventoryMode); err != nil {
		summary.ApplyError = errorMessage(err)
		l.Error("failed to apply inventory", slog.Any("error", err))
		return summary, nil
	}
	summary.Applied = true
	l.Info("inventory counted", slog.Int("succeeded", summary.Succeeded), slog.Int("failed", summary.Failed))
	return summary, nil
}

func (s *InventoryService) countItem(ctx context.Context, locationID int64, item domain.CountItem) domain.CountItemResult {
	res := domain.CountItemResult{ProductID: item.ProductID, LotID: item.LotID, Quantity: item.Quantity}
	fail := func(msg string) domain.CountItemResult {
		res.Action = domain.CountFailed
		res.Error = msg
		return res
	}

	if item.ProductID <= 0 {
		return fail("productId is required")
	}
	if item.Quantity.IsNegative() {
		return fail("quantity must not be negative")
	}

	dom := []any{
		[]any{"product_id", "=", item.ProductID},
		[]any{"location_id", "=", locationID},
	}
	if item.LotID > 0 {
		dom = append(dom, []any{"lot_id", "=", item.LotID})
	} else {
		dom = append(dom, []any{"lot_id", "=", false})
	}
	existing, err := s.searchQuants(ctx, dom, 1)
	if err != nil {
		return fail(errorMessage(err))
	}

	qty := item.Quantity.InexactFloat64()
	if len(existing) > 0 {
		id := existing[0].ID
		if _, err := s.Proxy.Execute(ctx, odoorpc.SharedIdentity, quantModel, "write",
			[]any{[]int64{id}, map[string]any{"inventory_quantity": qty}}, inventoryMode); err != nil {
			return fail(errorMessage(err))
		}
		res.QuantID = id
		res.Action = domain.CountUpdated
		return res
	}

	values := map[string]any{
		"product_id":         item.ProductID,
		"location_id":        locationID,
		"inventory_quantity": qty,
	}
	if item.LotID > 0 {
		values["lot_id"] = item.LotID
	}
	var id int64
	if err := s.Proxy.ExecuteInto(ctx, odoorpc.SharedIdentity, quantModel, "create", []any{values}, inventoryMode, &id); err != nil {
		return fail(errorMessage(err))
	}
	res.QuantID = id
	res.Action = domain.CountCreated
	return res
}

func (s *InventoryService) searchQuants(ctx context.Context, dom []any, limit int) ([]domain.Quant, error) {
	var rows []struct {
		ID                int64            `json:"id"`
		ProductID         odoorpc.Many2One `json:"product_id"`
		LocationID        odoorpc.Many2One `json:"location_id"`
		LotID             odoorpc.Many2One `json:"lot_id"`
		Quantity          decimal.Decimal  `json:"quantity"`
		InventoryQuantity decimal.Decimal  `json:"inventory_quantity"`
	}
	err := s.Proxy.SearchRead(ctx, odoorpc.SharedIdentity, quantModel, dom, quantFields,
		odoorpc.SearchOptions{Limit: limit}, &rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Quant, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Quant{
			ID:                r.ID,
			Product:           domain.Ref{ID: r.ProductID.ID, Name: r.ProductID.Name},
			Location:          domain.Ref{ID: r.LocationID.ID, Name: r.LocationID.Name},
			Lot:               ref(r.LotID),
			Quantity:          r.Quantity,
			InventoryQuantity: r.InventoryQuantity,
		})
	}
	return out, nil
}

// errorMessage is the text shown to technicians for a failed item.
func errorMessage(err error) string {
	var remote *odoorpc.RemoteError
	if errors.As(err, &remote) {
		return remote.UserMessage()
	}
	return err.Error()
}
