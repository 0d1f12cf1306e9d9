package payments

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

// DefaultTolerance is how old a webhook timestamp may be before it is
// treated as a replay.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrInvalidSignature = errors.New("signature verification failed")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
)

// ComputeSignature returns the hex HMAC-SHA256 of "<timestamp>.<payload>",
// the scheme Stripe uses for its Stripe-Signature header.
func ComputeSignature(timestamp time.Time, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp.Unix(), payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a "t=<unix>,v1=<hex>" signature header against the
// raw payload. An unverifiable event is the one webhook case that must be
// rejected instead of acknowledged, so the gateway can flag the sender.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if header == "" {
		return ErrMissingSignature
	}

	var timestamp int64 = -1
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp < 0 || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	if tolerance > 0 {
		age := time.Since(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return ErrStaleTimestamp
		}
	}

	expected := ComputeSignature(time.Unix(timestamp, 0), payload, secret)
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
