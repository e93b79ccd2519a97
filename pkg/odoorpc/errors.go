package odoorpc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrAuthenticationFailed is returned when Odoo rejects a login, or a
	// login needed to recover an expired session cannot be completed.
	ErrAuthenticationFailed = errors.New("odoorpc: authentication failed")

	// ErrSessionNotFound is returned when no session exists for an identity
	// and the proxy is not allowed to create one on its own.
	ErrSessionNotFound = errors.New("odoorpc: session not found")

	// ErrNoCredentials is returned by a CredentialSource that holds nothing
	// for the requested identity.
	ErrNoCredentials = errors.New("odoorpc: no credentials for identity")
)

// Odoo reports an expired session with this JSON-RPC error code.
const sessionExpiredCode = 100

// DefaultExpiryPatterns are matched, case-insensitively, against the
// message and exception name of a remote error to decide whether the
// session must be re-established.
var DefaultExpiryPatterns = []string{
	"session expired",
	"sessionexpired",
	"session_expired",
	"access denied",
	"accessdenied",
}

// RemoteError is a business error returned by Odoo. Message is passed to
// callers verbatim.
type RemoteError struct {
	Code    int
	Message string
	// Name is the server side exception class, e.g.
	// "odoo.exceptions.AccessDenied".
	Name string
	// Detail is data.message, usually more useful than Message.
	Detail string
	Debug  string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" && e.Detail != e.Message {
		return fmt.Sprintf("odoo: %s: %s", e.Message, e.Detail)
	}
	return "odoo: " + e.Message
}

// UserMessage is the most specific message Odoo provided.
func (e *RemoteError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// IsAccessDenied reports whether Odoo refused the operation for lack of
// rights or bad credentials.
func (e *RemoteError) IsAccessDenied() bool {
	name := strings.ToLower(e.Name)
	return strings.HasSuffix(name, "accessdenied") || strings.HasSuffix(name, "accesserror")
}

func (e *RemoteError) matches(patterns []string) bool {
	if e.Code == sessionExpiredCode {
		return true
	}
	haystack := strings.ToLower(e.Message + " " + e.Name + " " + e.Detail)
	for _, p := range patterns {
		if strings.Contains(haystack, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// TransportError wraps failures reaching Odoo: network errors, non-200
// responses and undecodable bodies.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("odoorpc: %s: unexpected status %d %s", e.Op, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("odoorpc: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsSessionExpired reports whether err is a remote error carrying one of
// the default expiry signatures.
func IsSessionExpired(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.matches(DefaultExpiryPatterns)
}
