// Package qrsig signs and validates the contents of repair QR codes.
//
// A signed code has the form "code|timestamp|signature" where timestamp is
// milliseconds since the Unix epoch and signature is the lowercase hex
// HMAC-SHA256 of "code|timestamp" under a shared secret. Simple codes are
// bare identifiers and are only accepted when the deployment allows them.
package qrsig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Separator joins the segments of a signed code.
const Separator = "|"

// Sign returns the lowercase hex HMAC-SHA256 of payload under secret.
func Sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether candidate is the signature of payload under secret.
//
// The hex strings are compared in constant time. A candidate of the wrong
// length returns false early; signature length is public.
func Verify(secret []byte, payload, candidate string) bool {
	if len(candidate) != hex.EncodedLen(sha256.Size) {
		return false
	}
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(candidate))
}
