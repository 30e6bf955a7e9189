package gateway

import "testing"

func TestVerify(t *testing.T) {
	v := NewVerifier("key-secret")
	sig := v.Sign("order_1", "pay_1")

	if !v.Verify("order_1", "pay_1", sig) {
		t.Error("valid signature rejected")
	}
	if v.Verify("order_1", "pay_1", sig+"00") {
		t.Error("tampered signature accepted")
	}
	if v.Verify("order_2", "pay_1", sig) {
		t.Error("signature accepted for a different order")
	}
	if v.Verify("order_1", "pay_2", sig) {
		t.Error("signature accepted for a different payment")
	}
}

func TestVerifyRejectsBlankInput(t *testing.T) {
	v := NewVerifier("key-secret")
	sig := v.Sign("order_1", "pay_1")

	cases := []struct {
		name                          string
		orderID, paymentID, signature string
	}{
		{"no order", "", "pay_1", sig},
		{"no payment", "order_1", "", sig},
		{"no signature", "order_1", "pay_1", ""},
	}
	for _, tc := range cases {
		if v.Verify(tc.orderID, tc.paymentID, tc.signature) {
			t.Errorf("%s: blank input accepted", tc.name)
		}
	}
}

func TestVerifyDifferentSecrets(t *testing.T) {
	sig := NewVerifier("secret-a").Sign("order_1", "pay_1")
	if NewVerifier("secret-b").Verify("order_1", "pay_1", sig) {
		t.Error("signature accepted under a different secret")
	}
}
