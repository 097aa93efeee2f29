package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GatewayAdapter is the seam to the external payment processor. Outbound it
// only yields a redirect target; inbound it authenticates webhook payloads.
// The processor itself is out of scope.
type GatewayAdapter struct {
	secret []byte
}

func NewGatewayAdapter(secret string) *GatewayAdapter {
	return &GatewayAdapter{secret: []byte(secret)}
}

// RedirectURL returns the processor hand-off target for a pending payment.
func (g *GatewayAdapter) RedirectURL(paymentID string) string {
	return fmt.Sprintf("/payments/process/%s/", paymentID)
}

// Sign computes the hex HMAC-SHA256 signature of a webhook payload.
func (g *GatewayAdapter) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook payload against the signature header.
// Comparison is constant-time.
func (g *GatewayAdapter) VerifySignature(payload []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}
