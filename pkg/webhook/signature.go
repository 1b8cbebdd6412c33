// Package webhook implements the signature scheme for inbound webhook
// deliveries.
//
// The signature header format is:
//
//	X-Webhook-Signature: t={timestamp},v1={signature}
//
// Where signature = hex(HMAC-SHA256(secret, "{timestamp}.{payload}")). More
// than one v1 entry may be present while a secret is being rotated.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Header is the request header carrying the signature.
const Header = "X-Webhook-Signature"

// DefaultTolerance is the maximum accepted age of a signature timestamp.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("webhook: missing signature")
	ErrInvalidHeader    = errors.New("webhook: malformed signature header")
	ErrExpired          = errors.New("webhook: signature timestamp outside tolerance")
	ErrMismatch         = errors.New("webhook: signature mismatch")
)

// Sign returns the header value for payload signed at timestamp.
func Sign(payload []byte, secret string, timestamp time.Time) string {
	ts := timestamp.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, ComputeSignature(ts, payload, secret))
}

// ComputeSignature computes the hex HMAC-SHA256 of "{timestamp}.{payload}".
func ComputeSignature(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks header against payload. The timestamp must lie within
// tolerance of now in either direction; a tolerance of zero skips the check.
func Verify(header string, payload []byte, secret string, now time.Time, tolerance time.Duration) error {
	if header == "" {
		return ErrMissingSignature
	}

	var (
		ts     int64
		haveTS bool
		sigs   []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return ErrInvalidHeader
		}
		switch key {
		case "t":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: timestamp: %v", ErrInvalidHeader, err)
			}
			ts, haveTS = n, true
		case "v1":
			sigs = append(sigs, value)
		}
	}
	if !haveTS || len(sigs) == 0 {
		return ErrInvalidHeader
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return ErrExpired
		}
	}

	expected := []byte(ComputeSignature(ts, payload, secret))
	for _, sig := range sigs {
		if hmac.Equal(expected, []byte(sig)) {
			return nil
		}
	}
	return ErrMismatch
}
