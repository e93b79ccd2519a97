package http

import (
	"net/http"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/internal/qraxer/service"
	"github.com/ithesk/qraxer/pkg/httpx"
)

// InventoryHandler serves stock counting. Calls go through the shared
// service account, not the caller's Odoo session.
type InventoryHandler struct {
	InventoryService *service.InventoryService
}

type countRequest struct {
	LocationID int64              `json:"locationId"`
	Items      []domain.CountItem `json:"items"`
}

// HandleLocations lists internal stock locations.
//
//	@Summary		Stock locations
//	@Tags			Inventory
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		domain.Location
//	@Failure		502	{object}	httpx.ErrorResponse	"Odoo error"
//	@Router			/inventory/locations [get].
func (h *InventoryHandler) HandleLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.InventoryService.Locations(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, locations)
}

// HandleProduct looks up a product by barcode with its stock.
//
//	@Summary		Product stock by barcode
//	@Description	Matches the barcode, then the internal reference. When locationId is given only quants of that location are returned.
//	@Tags			Inventory
//	@Security		BearerAuth
//	@Produce		json
//	@Param			barcode		query		string	true	"Barcode or internal reference"
//	@Param			locationId	query		int		false	"Stock location"
//	@Success		200			{object}	domain.ProductStock
//	@Failure		400			{object}	httpx.ErrorResponse	"Missing barcode"
//	@Failure		404			{object}	httpx.ErrorResponse	"Unknown product"
//	@Router			/inventory/product [get].
func (h *InventoryHandler) HandleProduct(w http.ResponseWriter, r *http.Request) {
	locationID, err := queryInt64(r, "locationId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	stock, err := h.InventoryService.ProductByBarcode(r.Context(), r.URL.Query().Get("barcode"), locationID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stock)
}

// HandleQuants lists the quants of a location.
//
//	@Summary		Quants of a location
//	@Tags			Inventory
//	@Security		BearerAuth
//	@Produce		json
//	@Param			locationId	query		int	true	"Stock location"
//	@Success		200			{array}		domain.Quant
//	@Failure		400			{object}	httpx.ErrorResponse	"Missing locationId"
//	@Router			/inventory/quants [get].
func (h *InventoryHandler) HandleQuants(w http.ResponseWriter, r *http.Request) {
	locationID, err := queryInt64(r, "locationId")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	quants, err := h.InventoryService.Quants(r.Context(), locationID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quants)
}

// HandleCount records counted quantities and applies them.
//
//	@Summary		Count inventory
//	@Description	Items are adjusted one after the other; each result reports its own outcome.
//	@Description	The adjustment is then applied in one call. There is no rollback: a failed apply is reported in applyError.
//	@Tags			Inventory
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qraxersdk.CountRequest	true	"Location and counted items"
//	@Success		200		{object}	domain.CountSummary
//	@Failure		400		{object}	httpx.ErrorResponse	"Missing location or items"
//	@Router			/inventory/count [post].
func (h *InventoryHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	summary, err := h.InventoryService.Count(r.Context(), req.LocationID, req.Items)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}
