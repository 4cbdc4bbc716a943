package core

import "testing"

func newTestTransferEngine(t *testing.T) (*TransferEngine, *Ledger) {
	t.Helper()
	led, err := NewLedger(tmpLedgerConfig(t))
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	we := NewWalletEngine(led, AlwaysValidVerifier{}, Sha256Hasher{}, NewSequentialIDGenerator("w"), nil)
	te := NewTransferEngine(led, nil, we)
	we.SetTransferEngine(te)
	return te, led
}

func TestTransferAutoCreatesBareAccount(t *testing.T) {
	te, led := newTestTransferEngine(t)
	from := mustAddr(t, "usdtg1fromaddress0000000000000000000000")
	to := mustAddr(t, "usdtg1brandnewrecipient0000000000000000")

	if _, err := led.Credit(AirdropReserve, from, USDTg, AmountFromMajor(10), "seed", "AIRDROP"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	if _, err := te.Transfer(from, to, USDTg, AmountFromMajor(1), "hi"); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !te.registry.WalletExists(to) {
		t.Fatalf("expected bare account to be registered for %s", to)
	}
}

func TestAirdropCreditsFromReserve(t *testing.T) {
	te, led := newTestTransferEngine(t)
	to := mustAddr(t, "usdtg1toaddress00000000000000000000000")

	if _, err := te.Airdrop(to, USDTg, AmountFromMajor(5), "welcome bonus"); err != nil {
		t.Fatalf("Airdrop: %v", err)
	}
	if got, want := led.GetBalance(to, USDTg), AmountFromMajor(5); got.Cmp(want) != 0 {
		t.Fatalf("balance = %s, want %s", got, want)
	}
}

func TestBatchTransferAppliesEveryLegWhenFunded(t *testing.T) {
	te, led := newTestTransferEngine(t)
	from := mustAddr(t, "usdtg1fromaddress0000000000000000000000")
	okRecipient := mustAddr(t, "usdtg1okrecipient000000000000000000000")
	shortRecipient := mustAddr(t, "usdtg1shortrecipient00000000000000000000")
	lastRecipient := mustAddr(t, "usdtg1lastrecipient0000000000000000000000")

	if _, err := led.Credit(AirdropReserve, from, USDTg, AmountFromMajor(10), "seed", "AIRDROP"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	recipients := []Address{okRecipient, shortRecipient, lastRecipient}
	amounts := []Amount{AmountFromMajor(5), AmountFromMajor(4), AmountFromMajor(1)}

	// The legs total exactly the seeded balance (5+4+1 = 10), so the
	// preflight passes and every leg executes independently and succeeds.
	results, err := te.BatchTransfer(from, recipients, USDTg, amounts, "batch")
	if err != nil {
		t.Fatalf("BatchTransfer: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results len = %d, want 3", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("leg %d unexpected error: %v", i, r.Err)
		}
	}
	if got, want := led.GetBalance(okRecipient, USDTg), AmountFromMajor(5); got.Cmp(want) != 0 {
		t.Fatalf("okRecipient balance = %s, want %s", got, want)
	}
}

func TestBatchTransferPreflightRejectsWhenTotalExceedsBalance(t *testing.T) {
	te, led := newTestTransferEngine(t)
	from := mustAddr(t, "usdtg1fromaddress0000000000000000000000")
	a := mustAddr(t, "usdtg1okrecipient000000000000000000000")
	b := mustAddr(t, "usdtg1lastrecipient0000000000000000000000")

	if _, err := led.Credit(AirdropReserve, from, USDTg, AmountFromMajor(3), "seed", "AIRDROP"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	_, err := te.BatchTransfer(from, []Address{a, b}, USDTg, []Amount{AmountFromMajor(2), AmountFromMajor(2)}, "batch")
	if KindOf(err) != InsufficientFunds {
		t.Fatalf("err kind = %v, want InsufficientFunds", KindOf(err))
	}
	if got := led.GetBalance(a, USDTg); !got.IsZero() {
		t.Fatalf("no leg should have executed, got balance %s", got)
	}
}
