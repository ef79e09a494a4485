package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier authenticates gateway callbacks. The gateway signs the canonical
// message "<gateway order id>|<gateway payment id>" with HMAC-SHA-256 over a
// shared secret and sends the hex digest alongside the callback.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify reports whether signature matches the expected digest for the given
// identifiers. Comparison is constant time; callers must never echo the
// expected digest back to the caller.
func (v *Verifier) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
