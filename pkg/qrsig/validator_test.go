package qrsig

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testNowMillis = int64(1700000000000)

func newTestValidator(allowSimple bool, now int64) *Validator {
	v := NewValidator([]byte("s3cr3t"), allowSimple)
	v.Now = func() time.Time { return time.UnixMilli(now) }
	return v
}

func TestGenerate_ConcreteScenario(t *testing.T) {
	v := newTestValidator(false, testNowMillis)

	content, err := v.Generate("E707640")
	require.NoError(t, err)

	require.Equal(t, "E707640|1700000000000|40bc53d1225b19245db5d3a848e208859773df1ca384a2c0ebdd9dcf8eb31903", content)

	res := v.Validate(content)
	require.True(t, res.Valid)
	require.Equal(t, "E707640", res.Code)
	require.Equal(t, ModeSigned, res.Mode)
	require.Equal(t, testNowMillis, res.Timestamp)
	require.NoError(t, res.Err())
}

func TestValidate_ExpiredAfter61Minutes(t *testing.T) {
	gen := newTestValidator(false, testNowMillis)
	content, err := gen.Generate("E707640")
	require.NoError(t, err)

	later := newTestValidator(false, testNowMillis+61*60*1000)
	res := later.Validate(content)
	require.False(t, res.Valid)
	require.Equal(t, ReasonExpired, res.Reason)

	var rejectErr *RejectError
	require.ErrorAs(t, res.Err(), &rejectErr)
	require.Equal(t, ReasonExpired, rejectErr.Reason)
}

func TestValidate_RoundTrip(t *testing.T) {
	codes := []string{"E707640", "RO-0001", "a_b", "WH/RO/00042", "código 7", "x"}
	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			v := newTestValidator(false, testNowMillis)
			content, err := v.Generate(code)
			require.NoError(t, err)

			res := v.Validate(content)
			require.True(t, res.Valid, "reason: %s", res.Reason)
			require.Equal(t, code, res.Code)
		})
	}
}

func TestValidate_ExpirationBoundary(t *testing.T) {
	v := newTestValidator(false, testNowMillis)
	window := int64(60 * 60 * 1000)

	signedAt := func(ts int64) string {
		content, err := v.GenerateAt("E707640", time.UnixMilli(ts))
		require.NoError(t, err)
		return content
	}

	res := v.Validate(signedAt(testNowMillis - window - 1))
	require.False(t, res.Valid)
	require.Equal(t, ReasonExpired, res.Reason)

	res = v.Validate(signedAt(testNowMillis - window + 1))
	require.True(t, res.Valid)

	res = v.Validate(signedAt(testNowMillis - window))
	require.True(t, res.Valid, "age equal to the window is still accepted")
}

func TestValidate_CustomExpiration(t *testing.T) {
	v := newTestValidator(false, testNowMillis)
	v.Expiration = 5 * time.Minute

	content, err := v.GenerateAt("E707640", time.UnixMilli(testNowMillis-6*60*1000))
	require.NoError(t, err)
	require.Equal(t, ReasonExpired, v.Validate(content).Reason)
	require.Equal(t, 5, v.ExpiresInMinutes())
}

func TestValidate_FutureTimestamp(t *testing.T) {
	v := newTestValidator(false, testNowMillis)

	withinSkew, err := v.GenerateAt("E707640", time.UnixMilli(testNowMillis+60*1000))
	require.NoError(t, err)
	require.True(t, v.Validate(withinSkew).Valid)

	beyondSkew, err := v.GenerateAt("E707640", time.UnixMilli(testNowMillis+DefaultClockSkew.Milliseconds()+1))
	require.NoError(t, err)
	res := v.Validate(beyondSkew)
	require.False(t, res.Valid)
	require.Equal(t, ReasonFuture, res.Reason)
}

func TestValidate_ExtremeTimestamps(t *testing.T) {
	v := newTestValidator(false, testNowMillis)

	tests := []struct {
		name string
		ts   int64
		want Reason
	}{
		{"min int64", math.MinInt64, ReasonExpired},
		{"max int64", math.MaxInt64, ReasonFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := "E707640|" + strconv.FormatInt(tt.ts, 10)
			res := v.Validate(payload + "|" + Sign([]byte("s3cr3t"), payload))
			require.False(t, res.Valid)
			require.Equal(t, tt.want, res.Reason)
		})
	}
}

func TestValidate_TamperDetection(t *testing.T) {
	v := newTestValidator(false, testNowMillis)
	content, err := v.Generate("E707640")
	require.NoError(t, err)

	flip := func(c byte) byte {
		switch {
		case c >= '0' && c <= '8':
			return c + 1
		case c == '9':
			return '0'
		case c >= 'a' && c <= 'e':
			return c + 1
		case c == 'f':
			return 'a'
		default:
			return 'Z'
		}
	}

	for i := 0; i < len(content); i++ {
		if content[i] == '|' {
			continue
		}
		tampered := []byte(content)
		tampered[i] = flip(tampered[i])

		res := v.Validate(string(tampered))
		require.False(t, res.Valid, "flipping index %d (%q) must invalidate", i, content[i])
	}
}

func TestValidate_ModeGating(t *testing.T) {
	t.Run("simple codes disabled", func(t *testing.T) {
		v := newTestValidator(false, testNowMillis)
		res := v.Validate("E707640")
		require.False(t, res.Valid)
		require.Equal(t, ReasonSimpleDisabled, res.Reason)
	})

	t.Run("simple codes enabled", func(t *testing.T) {
		v := newTestValidator(true, testNowMillis)

		tests := []struct {
			input string
			valid bool
		}{
			{"E707640", true},
			{"  E707640  ", true},
			{"RO-12_a", true},
			{"RO 12", false},
			{"WH/RO/0001", false},
			{"código", false},
		}

		for _, tt := range tests {
			res := v.Validate(tt.input)
			require.Equal(t, tt.valid, res.Valid, "input %q", tt.input)
			if tt.valid {
				require.Equal(t, ModeSimple, res.Mode)
				require.Equal(t, strings.TrimSpace(tt.input), res.Code)
			} else {
				require.Equal(t, ReasonMalformedCode, res.Reason)
			}
		}
	})
}

func TestValidate_MalformedSegmentCounts(t *testing.T) {
	v := newTestValidator(true, testNowMillis)

	inputs := []string{
		"",
		"   ",
		"E707640|1700000000000",
		"a|b|c|d",
		"a|b|c|d|e",
		"E707640|1700000000000|deadbeef|extra",
	}

	for _, input := range inputs {
		res := v.Validate(input)
		require.False(t, res.Valid, "input %q", input)
		require.Equal(t, ReasonUnrecognized, res.Reason, "input %q", input)
	}
}

func TestValidate_SignedFieldErrors(t *testing.T) {
	v := newTestValidator(false, testNowMillis)
	ts := strconv.FormatInt(testNowMillis, 10)
	sig := Sign([]byte("s3cr3t"), "E707640|"+ts)

	tests := []struct {
		name   string
		input  string
		reason Reason
	}{
		{"empty code", "|" + ts + "|" + sig, ReasonMalformedCode},
		{"non numeric timestamp", "E707640|abc|" + sig, ReasonBadTimestamp},
		{"empty timestamp", "E707640||" + sig, ReasonBadTimestamp},
		{"wrong signature", "E707640|" + ts + "|" + strings.Repeat("0", 64), ReasonBadSignature},
		{"short signature", "E707640|" + ts + "|abc", ReasonBadSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.input)
			require.False(t, res.Valid)
			require.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestGenerate_RejectsUnencodableCodes(t *testing.T) {
	v := newTestValidator(false, testNowMillis)

	_, err := v.Generate("")
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = v.Generate("A|B")
	require.ErrorIs(t, err, ErrInvalidCode)
}
