package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier recomputes confirmation signatures from the gateway key secret.
// It holds no state besides the secret, touches no storage, and never has
// side effects: verification is strictly separated from commit so a forged
// confirmation can never reach the ledger.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a Verifier over the shared gateway secret.
func NewVerifier(keySecret string) *Verifier {
	return &Verifier{secret: []byte(keySecret)}
}

// Verify checks that signature is the HMAC-SHA256 of "orderID|paymentID"
// under the shared secret, using a constant-time comparison. Any blank
// input fails verification.
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign produces the signature the gateway would send for an order/payment
// pair. Exposed for tooling and tests.
func (v *Verifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
