package http

import (
	"net/http"

	"github.com/ithesk/qraxer/internal/qraxer/service"
	"github.com/ithesk/qraxer/pkg/httpx"
	"github.com/ithesk/qraxer/pkg/qraxersdk"
)

type CheckinHandler struct {
	CheckinService *service.CheckinService
}

// HandleCheckin announces that the caller picked up a repair.
//
//	@Summary		Check in on a repair
//	@Tags			Check-ins
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qraxersdk.QRRequest	true	"Scanned content"
//	@Success		201		{object}	domain.CheckinNotification
//	@Failure		400		{object}	httpx.ErrorResponse	"Rejected QR code"
//	@Failure		404		{object}	httpx.ErrorResponse	"No repair with that code"
//	@Router			/repair/checkin [post].
func (h *CheckinHandler) HandleCheckin(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var req qraxersdk.QRRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	n, err := h.CheckinService.Checkin(r.Context(), actor, req.QRContent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, n)
}

// HandlePending lists unanswered check-ins, newest first.
//
//	@Summary		Pending check-ins
//	@Tags			Check-ins
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}	domain.CheckinNotification
//	@Router			/repair/checkin/pending [get].
func (h *CheckinHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.CheckinService.Pending())
}

// HandleRespond records the front desk answer to a check-in.
//
//	@Summary		Answer a check-in
//	@Tags			Check-ins
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qraxersdk.RespondRequest	true	"Notification id and answer"
//	@Success		200		{object}	domain.CheckinNotification
//	@Failure		404		{object}	httpx.ErrorResponse	"Unknown or evicted notification"
//	@Failure		409		{object}	httpx.ErrorResponse	"Already answered"
//	@Router			/repair/checkin/respond [post].
func (h *CheckinHandler) HandleRespond(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var req qraxersdk.RespondRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	n, err := h.CheckinService.Respond(r.Context(), actor, req.NotificationID, req.Response)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, n)
}
