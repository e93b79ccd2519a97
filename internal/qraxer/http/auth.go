package http

import (
	"net/http"

	"github.com/ithesk/qraxer/internal/qraxer/service"
	"github.com/ithesk/qraxer/pkg/httpx"
	"github.com/ithesk/qraxer/pkg/qraxersdk"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleLogin authenticates a technician against Odoo.
//
//	@Summary		Log in
//	@Description	Authenticates the technician against Odoo and returns an access token and a refresh token.
//	@Description	The Odoo session is kept server side; the client only ever sees the tokens of this API.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qraxersdk.LoginRequest	true	"Odoo credentials"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		400		{object}	httpx.ErrorResponse	"Missing username or password"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	httpx.ErrorResponse	"Too many attempts"
//	@Failure		500		{object}	httpx.ErrorResponse	"Odoo unreachable"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req qraxersdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleRefresh rotates a refresh token.
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a refresh token for a new token pair. The presented refresh token is revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qraxersdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid, expired or revoked refresh token"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req qraxersdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleLogout ends the technician's sessions.
//
//	@Summary		Log out
//	@Description	Revokes the given refresh token, or all refresh tokens of the caller when the body is empty, and drops the Odoo sessions held for the caller.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	qraxersdk.LogoutRequest	false	"Refresh token to revoke"
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid access token, or refresh token of another user"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	var req qraxersdk.LogoutRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	if err := h.AuthService.Logout(r.Context(), actor, req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the caller as Odoo knows them.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	domain.User
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid access token or expired Odoo session"
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request, actor service.Actor) {
	user, err := h.AuthService.Me(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}
