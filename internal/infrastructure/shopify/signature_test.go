package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "shpss_test_secret"
	body := []byte(`{"id":5001,"name":"#1001"}`)
	valid := signBody(secret, body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		header    string
		wantValid bool
	}{
		{
			name:      "valid signature",
			secret:    secret,
			body:      body,
			header:    valid,
			wantValid: true,
		},
		{
			name:      "empty body signs too",
			secret:    secret,
			body:      []byte{},
			header:    signBody(secret, []byte{}),
			wantValid: true,
		},
		{
			name:      "tampered body",
			secret:    secret,
			body:      []byte(`{"id":5001,"name":"#1002"}`),
			header:    valid,
			wantValid: false,
		},
		{
			name:      "wrong secret",
			secret:    "other_secret",
			body:      body,
			header:    valid,
			wantValid: false,
		},
		{
			name:      "empty header",
			secret:    secret,
			body:      body,
			header:    "",
			wantValid: false,
		},
		{
			name:      "empty secret never verifies",
			secret:    "",
			body:      body,
			header:    signBody("", body),
			wantValid: false,
		},
		{
			name:      "truncated header",
			secret:    secret,
			body:      body,
			header:    valid[:len(valid)-4],
			wantValid: false,
		},
		{
			name:      "garbage header",
			secret:    secret,
			body:      body,
			header:    "not-base64-at-all!",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifyWebhookSignature(tt.secret, tt.body, tt.header)
			assert.Equal(t, tt.wantValid, got)
		})
	}
}

func TestVerifyWebhookSignatureFlippedBit(t *testing.T) {
	secret := "shpss_test_secret"
	body := []byte(`{"id":5001}`)
	valid := signBody(secret, body)

	// Flipping any single character of a valid header must fail verification.
	for i := 0; i < len(valid); i++ {
		mutated := []byte(valid)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		assert.False(t, VerifyWebhookSignature(secret, body, string(mutated)),
			"mutation at index %d should not verify", i)
	}
}
