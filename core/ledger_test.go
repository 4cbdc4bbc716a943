package core

import (
	"path/filepath"
	"testing"
)

func tmpLedgerConfig(t *testing.T) LedgerConfig {
	t.Helper()
	dir := t.TempDir()
	return LedgerConfig{
		WALPath:          filepath.Join(dir, "wal.log"),
		SnapshotPath:     filepath.Join(dir, "snap.json.gz"),
		SnapshotInterval: 1000,
	}
}

func mustAddr(t *testing.T, s string) Address {
	t.Helper()
	a, err := CanonicalAddress(s)
	if err != nil {
		t.Fatalf("CanonicalAddress(%q): %v", s, err)
	}
	return a
}

func TestApplyTransferMovesBalance(t *testing.T) {
	led, err := NewLedger(tmpLedgerConfig(t))
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	from := mustAddr(t, "usdtg1fromaddress0000000000000000000000")
	to := mustAddr(t, "usdtg1toaddress00000000000000000000000")

	if _, err := led.Credit(AirdropReserve, from, USDTg, AmountFromMajor(100), "seed", "AIRDROP"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	hash, err := led.ApplyTransfer(from, to, USDTg, AmountFromMajor(40), ZeroAmount(), "payment")
	if err != nil {
		t.Fatalf("ApplyTransfer: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty tx hash")
	}

	if got, want := led.GetBalance(from, USDTg), AmountFromMajor(60); got.Cmp(want) != 0 {
		t.Fatalf("from balance = %s, want %s", got, want)
	}
	if got, want := led.GetBalance(to, USDTg), AmountFromMajor(40); got.Cmp(want) != 0 {
		t.Fatalf("to balance = %s, want %s", got, want)
	}
}

func TestApplyTransferInsufficientFundsRejectsNoMutation(t *testing.T) {
	led, err := NewLedger(tmpLedgerConfig(t))
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	from := mustAddr(t, "usdtg1fromaddress0000000000000000000000")
	to := mustAddr(t, "usdtg1toaddress00000000000000000000000")

	_, err = led.ApplyTransfer(from, to, USDTg, AmountFromMajor(1), ZeroAmount(), "nope")
	if KindOf(err) != InsufficientFunds {
		t.Fatalf("err kind = %v, want InsufficientFunds", KindOf(err))
	}
	if got := led.GetBalance(from, USDTg); !got.IsZero() {
		t.Fatalf("from balance should remain zero, got %s", got)
	}
	if got := led.GetBalance(to, USDTg); !got.IsZero() {
		t.Fatalf("to balance should remain zero, got %s", got)
	}
}

func TestApplyTransferRejectsBadAmount(t *testing.T) {
	led, err := NewLedger(tmpLedgerConfig(t))
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	from := mustAddr(t, "usdtg1fromaddress0000000000000000000000")
	to := mustAddr(t, "usdtg1toaddress00000000000000000000000")

	if _, err := led.ApplyTransfer(from, to, USDTg, ZeroAmount(), ZeroAmount(), ""); KindOf(err) != ValidationError {
		t.Fatalf("zero amount: err kind = %v, want ValidationError", KindOf(err))
	}
	over := AmountFromMajor(perCallCeilingMajor + 1)
	if _, err := led.ApplyTransfer(from, to, USDTg, over, ZeroAmount(), ""); KindOf(err) != ValidationError {
		t.Fatalf("over ceiling: err kind = %v, want ValidationError", KindOf(err))
	}
}

func TestLedgerReplaysFromWAL(t *testing.T) {
	cfg := tmpLedgerConfig(t)
	led, err := NewLedger(cfg)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	to := mustAddr(t, "usdtg1toaddress00000000000000000000000")
	if _, err := led.Credit(AirdropReserve, to, USDTg, AmountFromMajor(25), "seed", "AIRDROP"); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if err := led.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewLedger(cfg)
	if err != nil {
		t.Fatalf("reopen NewLedger: %v", err)
	}
	if got, want := reopened.GetBalance(to, USDTg), AmountFromMajor(25); got.Cmp(want) != 0 {
		t.Fatalf("replayed balance = %s, want %s", got, want)
	}
}

func TestListJournalPagination(t *testing.T) {
	led, err := NewLedger(tmpLedgerConfig(t))
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	to := mustAddr(t, "usdtg1toaddress00000000000000000000000")
	for i := 0; i < 5; i++ {
		if _, err := led.Credit(AirdropReserve, to, USDTg, AmountFromMajor(1), "seed", "AIRDROP"); err != nil {
			t.Fatalf("Credit %d: %v", i, err)
		}
	}

	page, cursor, err := led.ListJournal(to, "", 2)
	if err != nil {
		t.Fatalf("ListJournal: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d, want 2", len(page))
	}
	if cursor == "" {
		t.Fatalf("expected non-empty cursor for partial page")
	}

	rest, _, err := led.ListJournal(to, cursor, 10)
	if err != nil {
		t.Fatalf("ListJournal page2: %v", err)
	}
	if len(rest) != 3 {
		t.Fatalf("remaining page len = %d, want 3", len(rest))
	}
}
