// Package signature verifies webhook request authenticity.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const sha256Prefix = "sha256="

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHubSignature checks an X-Hub-Signature-256 header ("sha256=<hex>")
// against the raw body. An empty secret disables verification.
func VerifyHubSignature(secret string, body []byte, header string) bool {
	if secret == "" {
		return true
	}
	if !strings.HasPrefix(header, sha256Prefix) {
		return false
	}
	return VerifyHex(secret, body, strings.TrimPrefix(header, sha256Prefix))
}

// VerifyHex checks a bare hex HMAC-SHA256 digest, as sent by Razorpay.
// An empty secret disables verification.
func VerifyHex(secret string, body []byte, digest string) bool {
	if secret == "" {
		return true
	}
	got, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// VerifyToken compares a shared secret token in constant time.
// An empty secret disables verification.
func VerifyToken(secret, token string) bool {
	if secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(token)) == 1
}
