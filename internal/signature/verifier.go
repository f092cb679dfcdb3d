// Package signature authenticates Paystack webhook deliveries.
package signature

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"donations/internal/domain"
)

// Header carries the hex HMAC-SHA512 of the raw request body.
const Header = "X-Paystack-Signature"

// Sign returns the lowercase hex HMAC-SHA512 of body keyed with secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether provided is the signature of rawBody under secret.
// rawBody must be the bytes exactly as received; the comparison is constant time.
func Verify(secret, rawBody []byte, provided string) bool {
	if len(secret) == 0 || provided == "" {
		return false
	}
	expected := Sign(secret, rawBody)
	return hmac.Equal([]byte(expected), []byte(provided))
}

// Verifier holds the shared secret for one gateway account.
type Verifier struct {
	secret []byte
}

// NewVerifier returns domain.ErrMissingSecret for an empty secret so that a
// misconfigured process fails at startup instead of per request.
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, domain.ConfigurationError("webhook secret is not configured", domain.ErrMissingSecret)
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Check validates a delivery. A missing header is rejected before any hashing.
func (v *Verifier) Check(rawBody []byte, provided string) error {
	if v == nil || len(v.secret) == 0 {
		return domain.ConfigurationError("webhook secret is not configured", domain.ErrMissingSecret)
	}
	provided = strings.TrimSpace(provided)
	if provided == "" {
		return domain.SignatureError("Missing signature", domain.ErrMissingSignature)
	}
	if !Verify(v.secret, rawBody, provided) {
		return domain.SignatureError("Invalid signature", domain.ErrInvalidSignature)
	}
	return nil
}
