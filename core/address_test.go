package core

import "testing"

func TestValidateAddress(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{"0x" + "00112233445566778899aabbccddeeff00112233", true},
		{"0x" + "zz", false},
		{"usdtg1abc123", true},
		{"usdtg1", false},
		{"usdtg1UPPERCASE", false},
		{"not-an-address", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidateAddress(c.addr); got != c.want {
			t.Fatalf("ValidateAddress(%q) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestDeriveWalletAddressIsDeterministic(t *testing.T) {
	owner := mustAddr(t, "usdtg1ownerofwallet00000000000000000000")
	a := DeriveWalletAddress(owner, 0)
	b := DeriveWalletAddress(owner, 0)
	if a != b {
		t.Fatalf("derivation is not deterministic: %s != %s", a, b)
	}
	c := DeriveWalletAddress(owner, 1)
	if a == c {
		t.Fatalf("different nonces produced the same address")
	}
	if !ValidateAddress(string(a)) {
		t.Fatalf("derived address %q does not validate", a)
	}
}

func TestCanonicalAddressRejectsMalformed(t *testing.T) {
	if _, err := CanonicalAddress("garbage"); KindOf(err) != ValidationError {
		t.Fatalf("err kind = %v, want ValidationError", KindOf(err))
	}
}
