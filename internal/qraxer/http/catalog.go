package http

import (
	"net/http"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/internal/qraxer/service"
	"github.com/ithesk/qraxer/pkg/httpx"
)

type ProductHandler struct {
	ProductService *service.ProductService
}

// HandleSearch searches products by name, reference or barcode.
//
//	@Summary		Search products
//	@Tags			Products
//	@Security		BearerAuth
//	@Produce		json
//	@Param			q		query		string	false	"Search text"
//	@Param			limit	query		int		false	"Maximum number of products (default 20)"
//	@Success		200		{array}		domain.Product
//	@Router			/products/search [get].
func (h *ProductHandler) HandleSearch(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	products, err := h.ProductService.Search(r.Context(), actor, r.URL.Query().Get("q"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, products)
}

// HandleByBarcode looks up one product.
//
//	@Summary		Product by barcode
//	@Tags			Products
//	@Security		BearerAuth
//	@Produce		json
//	@Param			barcode	path		string	true	"Barcode or internal reference"
//	@Success		200		{object}	domain.Product
//	@Failure		404		{object}	httpx.ErrorResponse	"Unknown product"
//	@Router			/products/barcode/{barcode} [get].
func (h *ProductHandler) HandleByBarcode(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	product, err := h.ProductService.ByBarcode(r.Context(), actor, r.PathValue("barcode"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

type ClientHandler struct {
	ClientService *service.ClientService
}

// HandleSearch searches customers by name, phone, email or VAT.
//
//	@Summary		Search clients
//	@Tags			Clients
//	@Security		BearerAuth
//	@Produce		json
//	@Param			q		query		string	false	"Search text"
//	@Param			limit	query		int		false	"Maximum number of clients (default 20)"
//	@Success		200		{array}		domain.Client
//	@Router			/clients/search [get].
func (h *ClientHandler) HandleSearch(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	clients, err := h.ClientService.Search(r.Context(), actor, r.URL.Query().Get("q"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, clients)
}

// HandleCreate registers a walk-in customer.
//
//	@Summary		Create a client
//	@Tags			Clients
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		domain.NewClient	true	"Client"
//	@Success		201		{object}	domain.Client
//	@Failure		400		{object}	httpx.ErrorResponse	"Missing name or bad email"
//	@Router			/clients [post].
func (h *ClientHandler) HandleCreate(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var req domain.NewClient
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	client, err := h.ClientService.Create(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, client)
}
