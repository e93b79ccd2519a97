package http

import (
	"net/http"

	"github.com/ithesk/qraxer/internal/qraxer/domain"
	"github.com/ithesk/qraxer/internal/qraxer/service"
	"github.com/ithesk/qraxer/pkg/httpx"
	"github.com/ithesk/qraxer/pkg/qraxersdk"
)

type RepairHandler struct {
	RepairService *service.RepairService
}

// HandleStates lists every repair state with its label.
//
//	@Summary		Repair states
//	@Tags			Repairs
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}	domain.StateOption
//	@Router			/repair/states [get].
func (h *RepairHandler) HandleStates(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.RepairService.States())
}

// HandleScan resolves a QR code to its repair order.
//
//	@Summary		Scan a repair QR code
//	@Description	Accepts a signed code (code|timestamp|signature) or, when enabled, a bare repair code.
//	@Description	Returns the repair and the states it may move to next.
//	@Tags			Repairs
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qraxersdk.QRRequest	true	"Scanned content"
//	@Success		200		{object}	service.ScanResult
//	@Failure		400		{object}	httpx.ErrorResponse	"Rejected QR code, with the reason"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid access token or expired Odoo session"
//	@Failure		404		{object}	httpx.ErrorResponse	"No repair with that code"
//	@Failure		502		{object}	httpx.ErrorResponse	"Odoo error"
//	@Router			/repair/scan [post].
func (h *RepairHandler) HandleScan(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var req qraxersdk.QRRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.RepairService.Scan(r.Context(), actor, req.QRContent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// HandleUpdateState moves a scanned repair to a new state.
//
//	@Summary		Change repair state
//	@Description	Validates the QR code again, checks the transition and writes the new state.
//	@Description	A note is added to the repair chatter when given.
//	@Tags			Repairs
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qraxersdk.UpdateStateRequest	true	"QR content and target state"
//	@Success		200		{object}	domain.StateChange
//	@Failure		400		{object}	httpx.ErrorResponse	"Rejected QR code or unknown state"
//	@Failure		403		{object}	httpx.ErrorResponse	"Transition not allowed"
//	@Failure		404		{object}	httpx.ErrorResponse	"No repair with that code"
//	@Failure		502		{object}	httpx.ErrorResponse	"Odoo error"
//	@Router			/repair/update-state [post].
func (h *RepairHandler) HandleUpdateState(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var req qraxersdk.UpdateStateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	change, err := h.RepairService.UpdateState(r.Context(), actor, req.QRContent, domain.RepairState(req.NewState), req.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, change)
}

// HandleGenerateQR signs a repair code for printing.
//
//	@Summary		Generate a signed QR payload
//	@Tags			Repairs
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qraxersdk.GenerateQRRequest	true	"Repair code"
//	@Success		200		{object}	service.GeneratedQR
//	@Failure		400		{object}	httpx.ErrorResponse	"Empty code or code containing '|'"
//	@Router			/repair/generate-qr [post].
func (h *RepairHandler) HandleGenerateQR(w http.ResponseWriter, r *http.Request) {
	var req qraxersdk.GenerateQRRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	qr, err := h.RepairService.GenerateQR(req.RepairCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, qr)
}

// HandleCreate opens a quick repair order.
//
//	@Summary		Create a repair order
//	@Tags			Repairs
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		domain.NewRepair	true	"Repair order"
//	@Success		201		{object}	domain.Repair
//	@Failure		400		{object}	httpx.ErrorResponse	"Missing partner or bad schedule date"
//	@Failure		502		{object}	httpx.ErrorResponse	"Odoo error"
//	@Router			/repair/create [post].
func (h *RepairHandler) HandleCreate(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var req domain.NewRepair
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	repair, err := h.RepairService.Create(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, repair)
}

// HandleRecent lists the most recently modified repairs.
//
//	@Summary		Recent repairs
//	@Tags			Repairs
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of repairs (default 20, max 100)"
//	@Success		200		{array}		domain.Repair
//	@Failure		400		{object}	httpx.ErrorResponse	"Bad limit"
//	@Router			/repair/recent [get].
func (h *RepairHandler) HandleRecent(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	repairs, err := h.RepairService.Recent(r.Context(), actor, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, repairs)
}
