package qrsig

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default policy values.
const (
	DefaultExpiration = 60 * time.Minute
	DefaultClockSkew  = 5 * time.Minute
)

// Mode tells how a code was accepted.
type Mode string

const (
	ModeSimple Mode = "simple"
	ModeSigned Mode = "signed"
)

// Reason is the human readable cause of a rejected code.
type Reason string

const (
	ReasonUnrecognized   Reason = "unrecognized format"
	ReasonSimpleDisabled Reason = "simple codes disabled"
	ReasonMalformedCode  Reason = "malformed code"
	ReasonBadTimestamp   Reason = "bad timestamp"
	ReasonExpired        Reason = "expired"
	ReasonFuture         Reason = "timestamp in future"
	ReasonBadSignature   Reason = "bad signature"
)

var simpleCodePattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)

// ErrInvalidCode is returned by Generate for codes that cannot be encoded.
var ErrInvalidCode = errors.New("qrsig: code must be non-empty and must not contain '|'")

// Result is the outcome of validating scanned QR content. When Valid is
// false only Reason is set.
type Result struct {
	Valid     bool
	Code      string
	Mode      Mode
	Timestamp int64 // milliseconds since epoch, signed mode only
	Reason    Reason
}

// Err returns a *RejectError for invalid results and nil otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &RejectError{Reason: r.Reason}
}

// RejectError carries the rejection reason across API boundaries.
type RejectError struct {
	Reason Reason
}

func (e *RejectError) Error() string {
	return "invalid qr code: " + string(e.Reason)
}

func invalid(reason Reason) Result {
	return Result{Reason: reason}
}

// Validator applies the signing secret and the acceptance policy.
//
// The zero value of Expiration and ClockSkew selects the defaults. Now
// may be replaced in tests.
type Validator struct {
	Secret      []byte
	Expiration  time.Duration
	ClockSkew   time.Duration
	AllowSimple bool
	Now         func() time.Time
}

// NewValidator returns a Validator with the default windows.
func NewValidator(secret []byte, allowSimple bool) *Validator {
	return &Validator{
		Secret:      secret,
		Expiration:  DefaultExpiration,
		ClockSkew:   DefaultClockSkew,
		AllowSimple: allowSimple,
		Now:         time.Now,
	}
}

func (v *Validator) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

func (v *Validator) expiration() time.Duration {
	if v.Expiration <= 0 {
		return DefaultExpiration
	}
	return v.Expiration
}

func (v *Validator) clockSkew() time.Duration {
	if v.ClockSkew <= 0 {
		return DefaultClockSkew
	}
	return v.ClockSkew
}

// ExpiresInMinutes is the validity window of generated codes.
func (v *Validator) ExpiresInMinutes() int {
	return int(v.expiration() / time.Minute)
}

// Generate returns signed QR content for code stamped with the current time.
func (v *Validator) Generate(code string) (string, error) {
	return v.GenerateAt(code, v.now())
}

// GenerateAt returns signed QR content for code stamped with t.
func (v *Validator) GenerateAt(code string, t time.Time) (string, error) {
	if code == "" || strings.Contains(code, Separator) {
		return "", ErrInvalidCode
	}
	payload := code + Separator + strconv.FormatInt(t.UnixMilli(), 10)
	return payload + Separator + Sign(v.Secret, payload), nil
}

// Validate parses raw scanned text and applies the acceptance policy.
func (v *Validator) Validate(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return invalid(ReasonUnrecognized)
	}

	parts := strings.Split(s, Separator)
	switch len(parts) {
	case 1:
		return v.validateSimple(s)
	case 3:
		return v.validateSigned(parts[0], parts[1], parts[2])
	default:
		return invalid(ReasonUnrecognized)
	}
}

func (v *Validator) validateSimple(code string) Result {
	if !v.AllowSimple {
		return invalid(ReasonSimpleDisabled)
	}
	if !simpleCodePattern.MatchString(code) {
		return invalid(ReasonMalformedCode)
	}
	return Result{Valid: true, Code: code, Mode: ModeSimple}
}

func (v *Validator) validateSigned(code, tsText, signature string) Result {
	if code == "" {
		return invalid(ReasonMalformedCode)
	}

	ts, err := strconv.ParseInt(tsText, 10, 64)
	if err != nil {
		return invalid(ReasonBadTimestamp)
	}

	// Bounds are computed from now so extreme timestamps cannot overflow.
	now := v.now().UnixMilli()
	if ts < now-v.expiration().Milliseconds() {
		return invalid(ReasonExpired)
	}
	if ts > now+v.clockSkew().Milliseconds() {
		return invalid(ReasonFuture)
	}

	if !Verify(v.Secret, code+Separator+tsText, signature) {
		return invalid(ReasonBadSignature)
	}

	return Result{Valid: true, Code: code, Mode: ModeSigned, Timestamp: ts}
}
