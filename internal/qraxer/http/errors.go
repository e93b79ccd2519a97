package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ithesk/qraxer/internal/qraxer/service"
	"github.com/ithesk/qraxer/pkg/httpx"
	"github.com/ithesk/qraxer/pkg/odoorpc"
	"github.com/ithesk/qraxer/pkg/qraxersdk"
	"github.com/ithesk/qraxer/pkg/qrsig"
	"github.com/ithesk/qraxer/pkg/slogx"
)

// writeServiceError maps an error returned by the service layer to its
// HTTP reply. Unexpected errors are logged; their text never reaches the
// client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var (
		validation *service.ValidationError
		rejected   *qrsig.RejectError
		remote     *odoorpc.RemoteError
		transport  *odoorpc.TransportError
	)

	switch {
	case errors.As(err, &validation):
		qraxersdk.ErrInvalidRequest.WithDescription(validation.Error()).WriteError(w)

	case errors.Is(err, httpx.ErrBadBody):
		qraxersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)

	case errors.As(err, &rejected):
		qraxersdk.ErrInvalidQR.WithDescription(string(rejected.Reason)).WriteError(w)

	case errors.Is(err, service.ErrInvalidCredentials):
		qraxersdk.ErrInvalidCredentials.WriteError(w)

	case errors.Is(err, service.ErrInvalidRefresh):
		qraxersdk.ErrInvalidToken.WithDescription("invalid or expired refresh token").WriteError(w)

	case errors.Is(err, odoorpc.ErrSessionNotFound), errors.Is(err, odoorpc.ErrAuthenticationFailed),
		odoorpc.IsSessionExpired(err):
		log.Info("erp session could not be restored", "error", err)
		qraxersdk.ErrSessionExpired.WriteError(w)

	case errors.Is(err, service.ErrTransitionNotAllowed):
		qraxersdk.ErrForbidden.WithDescription("state change not allowed: " + detail(err, service.ErrTransitionNotAllowed)).WriteError(w)

	case errors.Is(err, service.ErrNotFound):
		qraxersdk.ErrNotFound.WithDescription(detail(err, service.ErrNotFound) + " not found").WriteError(w)

	case errors.Is(err, service.ErrConflict):
		qraxersdk.ErrConflict.WithDescription(detail(err, service.ErrConflict)).WriteError(w)

	case errors.As(err, &remote):
		if remote.IsAccessDenied() {
			qraxersdk.ErrForbidden.WithDescription(remote.UserMessage()).WriteError(w)
			return
		}
		log.Warn("erp rejected request", "error", err)
		qraxersdk.ErrUpstream.WithDescription(remote.UserMessage()).WriteError(w)

	case errors.As(err, &transport):
		log.Error("erp unreachable", "error", err)
		qraxersdk.ErrServerError.WithDescription("the erp could not be reached").WriteError(w)

	default:
		log.Error("request failed", "error", err)
		qraxersdk.ErrServerError.WriteError(w)
	}
}

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
