package domain

import "github.com/shopspring/decimal"

type Location struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CompleteName string `json:"completeName"`
	Barcode      string `json:"barcode,omitempty"`
}

type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	DefaultCode  string          `json:"defaultCode,omitempty"`
	Barcode      string          `json:"barcode,omitempty"`
	ListPrice    decimal.Decimal `json:"listPrice"`
	QtyAvailable decimal.Decimal `json:"qtyAvailable"`
	UoM          string          `json:"uom,omitempty"`
}

// Quant is the stock of one product (and lot) at one location.
type Quant struct {
	ID                int64           `json:"id"`
	Product           Ref             `json:"product"`
	Location          Ref             `json:"location"`
	Lot               *Ref            `json:"lot,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	InventoryQuantity decimal.Decimal `json:"inventoryQuantity"`
}

// ProductStock is a product together with its quants at a location.
type ProductStock struct {
	Product  Product         `json:"product"`
	Quants   []Quant         `json:"quants"`
	OnHand   decimal.Decimal `json:"onHand"`
	Location *Ref            `json:"location,omitempty"`
}

// CountItem is one counted line submitted by a technician.
type CountItem struct {
	ProductID int64           `json:"productId"`
	LotID     int64           `json:"lotId,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CountAction tells what happened to a counted line.
type CountAction string

const (
	CountUpdated CountAction = "updated"
	CountCreated CountAction = "created"
	CountFailed  CountAction = "failed"
)

type CountItemResult struct {
	ProductID int64           `json:"productId"`
	LotID     int64           `json:"lotId,omitempty"`
	QuantID   int64           `json:"quantId,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Action    CountAction     `json:"action"`
	Error     string          `json:"error,omitempty"`
}

// CountSummary reports per line results. Applied is false when the final
// apply step failed or was skipped; ApplyError then tells why.
type CountSummary struct {
	LocationID int64             `json:"locationId"`
	Total      int               `json:"total"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	Items      []CountItemResult `json:"items"`
	Applied    bool              `json:"applied"`
	ApplyError string            `json:"applyError,omitempty"`
}
