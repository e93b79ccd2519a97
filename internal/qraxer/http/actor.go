package http

import (
	"net/http"
	"strconv"

	"github.com/ithesk/qraxer/internal/qraxer/service"
	"github.com/ithesk/qraxer/pkg/httpx"
	"github.com/ithesk/qraxer/pkg/qraxersdk"
)

// actorHandlerFunc is a handler that acts on behalf of the authenticated
// technician. It must run behind httpx.AuthnMiddleware.
type actorHandlerFunc func(w http.ResponseWriter, r *http.Request, actor service.Actor)

func (f actorHandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		qraxersdk.ErrInvalidToken.WriteError(w)
		return
	}
	f(w, r, actor)
}

// actorFrom builds the actor from the verified access token. Tokens
// without a username cannot be mapped to an Odoo session.
func actorFrom(r *http.Request) (service.Actor, bool) {
	claims, ok := httpx.ClaimsFrom(r.Context())
	if !ok || claims.Subject == "" || claims.Username == "" {
		return service.Actor{}, false
	}
	return service.Actor{
		ID:    claims.Subject,
		Login: claims.Username,
		Name:  claims.Name,
	}, true
}

// queryInt64 parses an optional non-negative integer query parameter.
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a non-negative integer"}
	}
	return v, nil
}

func queryLimit(r *http.Request) (int, error) {
	v, err := queryInt64(r, "limit")
	return int(v), err
}
