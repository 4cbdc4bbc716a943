package core

import "testing"

func TestAmountFromMajorRoundTrip(t *testing.T) {
	a := AmountFromMajor(5)
	if got, want := a.String(), "5"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestAmountAddSub(t *testing.T) {
	a := AmountFromMajor(10)
	b := AmountFromMajor(3)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got, want := sum, AmountFromMajor(13); got.Cmp(want) != 0 {
		t.Fatalf("sum = %s, want %s", got, want)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if got, want := diff, AmountFromMajor(7); got.Cmp(want) != 0 {
		t.Fatalf("diff = %s, want %s", got, want)
	}

	if _, err := b.Sub(a); KindOf(err) != InsufficientFunds {
		t.Fatalf("negative sub: err kind = %v, want InsufficientFunds", KindOf(err))
	}
}

func TestValidateTransferAmountBounds(t *testing.T) {
	if err := ValidateTransferAmount(ZeroAmount()); KindOf(err) != ValidationError {
		t.Fatalf("zero amount: err kind = %v, want ValidationError", KindOf(err))
	}
	if err := ValidateTransferAmount(AmountFromMajor(1)); err != nil {
		t.Fatalf("valid amount rejected: %v", err)
	}
	if err := ValidateTransferAmount(AmountFromMajor(perCallCeilingMajor)); err != nil {
		t.Fatalf("ceiling amount rejected: %v", err)
	}
	if err := ValidateTransferAmount(AmountFromMajor(perCallCeilingMajor + 1)); KindOf(err) != ValidationError {
		t.Fatalf("over ceiling: err kind = %v, want ValidationError", KindOf(err))
	}
}

func TestAmountJSONRoundTrip(t *testing.T) {
	a := AmountFromMajor(42)
	data, err := a.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var b Amount
	if err := b.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if a.Cmp(b) != 0 {
		t.Fatalf("round-trip mismatch: %s != %s", a, b)
	}
}
