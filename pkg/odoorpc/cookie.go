package odoorpc

import "net/http"

// SessionCookieName is the cookie Odoo uses to carry the session token,
// both in Set-Cookie on login and in Cookie on every later call.
const SessionCookieName = "session_id"

// SessionCookie extracts the session token from the Set-Cookie headers of
// a response. The token is opaque. When several session_id cookies are
// set the last non-empty one wins, matching browser behaviour.
func SessionCookie(header http.Header) (string, bool) {
	var token string
	for _, line := range header.Values("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		if err != nil || c.Name != SessionCookieName {
			continue
		}
		if c.Value != "" && c.MaxAge >= 0 {
			token = c.Value
		}
	}
	return token, token != ""
}

func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{Name: SessionCookieName, Value: token}
}
