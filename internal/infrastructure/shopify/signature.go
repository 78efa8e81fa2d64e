package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifyWebhookSignature checks the X-Shopify-Hmac-Sha256 header against the
// raw request bytes. The HMAC must be computed over the exact bytes received;
// re-serializing the parsed body changes the byte layout and breaks the check.
//
// Returns false on any mismatch or malformed header, never an error: a bad
// signature is "not verified", not an exceptional condition. Lengths are
// compared first — length is not secret — and the constant-time comparison
// only runs on equal-length sequences.
func VerifyWebhookSignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if len(expected) != len(header) {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(header))
}
