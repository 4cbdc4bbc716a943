package core

import (
	"testing"
	"time"
)

func newActiveTestWallet(t *testing.T) (*WalletEngine, *Ledger, Address, Address) {
	t.Helper()
	led, err := NewLedger(tmpLedgerConfig(t))
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	we := NewWalletEngine(led, AlwaysValidVerifier{}, Sha256Hasher{}, NewSequentialIDGenerator("w"), nil)
	te := NewTransferEngine(led, nil, we)
	we.SetTransferEngine(te)

	owner := mustAddr(t, "usdtg1ownerofwallet00000000000000000000")
	addr, err := we.CreateWallet(owner, AccountSmartContract)
	if err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	if err := we.Initialize(addr, "impl-v1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := we.Activate(addr); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if _, err := led.Credit(AirdropReserve, addr, USDTg, AmountFromMajor(100), "seed", "AIRDROP"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}
	return we, led, addr, owner
}

func TestWalletLifecycleStateMachine(t *testing.T) {
	led, err := NewLedger(tmpLedgerConfig(t))
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	we := NewWalletEngine(led, AlwaysValidVerifier{}, Sha256Hasher{}, NewSequentialIDGenerator("w"), nil)
	owner := mustAddr(t, "usdtg1ownerofwallet00000000000000000000")

	addr, err := we.CreateWallet(owner, AccountEOA)
	if err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}

	mt := &MetaTransaction{From: addr, To: owner, Nonce: 0, Deadline: time.Now().Add(time.Hour), Signature: []byte{1}}
	if _, err := we.ExecuteMetaTx(mt); KindOf(err) != StateConflict {
		t.Fatalf("meta-tx before Active: err kind = %v, want StateConflict", KindOf(err))
	}

	if err := we.Initialize(addr, "impl-v1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := we.Activate(addr); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := we.Deactivate(addr); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if err := we.Activate(addr); err != nil {
		t.Fatalf("re-Activate after Deactivate: %v", err)
	}
}

func TestExecuteMetaTxValidationOrder(t *testing.T) {
	we, _, wallet, owner := newActiveTestWallet(t)

	// Wrong nonce takes precedence over an expired deadline.
	mt := &MetaTransaction{
		From: wallet, To: owner, Nonce: 7,
		Deadline: time.Now().Add(-time.Hour), Signature: []byte{1},
	}
	if _, err := we.ExecuteMetaTx(mt); KindOf(err) != StateConflict {
		t.Fatalf("bad nonce: err kind = %v, want StateConflict", KindOf(err))
	}

	// Correct nonce, expired deadline.
	mt = &MetaTransaction{
		From: wallet, To: owner, Nonce: 0,
		Deadline: time.Now().Add(-time.Hour), Signature: []byte{1},
	}
	if _, err := we.ExecuteMetaTx(mt); KindOf(err) != StateConflict {
		t.Fatalf("expired deadline: err kind = %v, want StateConflict", KindOf(err))
	}

	// Correct nonce, valid deadline, bad signature.
	badWe := we
	badWe.verifier = AlwaysInvalidVerifier{}
	mt = &MetaTransaction{
		From: wallet, To: owner, Nonce: 0,
		Deadline: time.Now().Add(time.Hour), Signature: []byte{1},
	}
	if _, err := badWe.ExecuteMetaTx(mt); KindOf(err) != AuthorizationFailure {
		t.Fatalf("bad signature: err kind = %v, want AuthorizationFailure", KindOf(err))
	}
}

func TestExecuteMetaTxAppliesValueTransferAndIncrementsNonce(t *testing.T) {
	we, led, wallet, owner := newActiveTestWallet(t)

	mt := &MetaTransaction{
		From: wallet, To: owner, Value: AmountFromMajor(10), Nonce: 0,
		Deadline: time.Now().Add(time.Hour), Signature: []byte{1},
	}
	hash, err := we.ExecuteMetaTx(mt)
	if err != nil {
		t.Fatalf("ExecuteMetaTx: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty execution hash")
	}
	if !mt.Executed {
		t.Fatalf("expected mt.Executed = true")
	}

	snap, err := we.Snapshot(wallet)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Nonce != 1 {
		t.Fatalf("nonce = %d, want 1", snap.Nonce)
	}
	if got, want := led.GetBalance(owner, USDTg), AmountFromMajor(10); got.Cmp(want) != 0 {
		t.Fatalf("owner balance = %s, want %s", got, want)
	}

	// Replaying the same (now-executed) meta-tx must fail as Duplicate
	// and must not mutate the nonce again.
	if _, err := we.ExecuteMetaTx(mt); KindOf(err) != Duplicate {
		t.Fatalf("replay: err kind = %v, want Duplicate", KindOf(err))
	}
}

func TestExecuteMetaTxInsufficientFundsLeavesNonceUnchanged(t *testing.T) {
	we, led, wallet, owner := newActiveTestWallet(t)
	_ = led

	mt := &MetaTransaction{
		From: wallet, To: owner, Value: AmountFromMajor(1_000_000), Nonce: 0,
		Deadline: time.Now().Add(time.Hour), Signature: []byte{1},
	}
	if _, err := we.ExecuteMetaTx(mt); KindOf(err) != ValidationError && KindOf(err) != InsufficientFunds {
		t.Fatalf("err kind = %v, want ValidationError or InsufficientFunds", KindOf(err))
	}

	snap, err := we.Snapshot(wallet)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Nonce != 0 {
		t.Fatalf("nonce = %d, want unchanged 0 after failed transfer leg", snap.Nonce)
	}
}

func TestSubmitBatchAtomicFailureLeavesNoSideEffects(t *testing.T) {
	we, led, wallet, owner := newActiveTestWallet(t)

	goodLeg := &MetaTransaction{
		From: wallet, To: owner, Value: AmountFromMajor(1), Nonce: 0,
		Deadline: time.Now().Add(time.Hour), Signature: []byte{1},
	}
	badSigLeg := &MetaTransaction{
		From: wallet, To: owner, Value: AmountFromMajor(1), Nonce: 1,
		Deadline: time.Now().Add(time.Hour), Signature: nil,
	}

	batch := &BatchTransaction{WalletAddress: wallet, MetaTxs: []*MetaTransaction{goodLeg, badSigLeg}}
	err := we.SubmitBatch(batch)
	if KindOf(err) != AuthorizationFailure {
		t.Fatalf("err kind = %v, want AuthorizationFailure", KindOf(err))
	}
	if batch.Executed {
		t.Fatalf("batch should not be marked Executed")
	}

	snap, err := we.Snapshot(wallet)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Nonce != 0 {
		t.Fatalf("nonce = %d, want unchanged 0 after failed batch", snap.Nonce)
	}
	if got, want := led.GetBalance(owner, USDTg), ZeroAmount(); got.Cmp(want) != 0 {
		t.Fatalf("owner balance = %s, want %s (no leg should have settled)", got, want)
	}
	if goodLeg.Executed {
		t.Fatalf("goodLeg.Executed should remain false since the batch was atomic")
	}
}

func TestSubmitBatchAllLegsApplyTogether(t *testing.T) {
	we, led, wallet, owner := newActiveTestWallet(t)

	leg1 := &MetaTransaction{From: wallet, To: owner, Value: AmountFromMajor(1), Nonce: 0, Deadline: time.Now().Add(time.Hour), Signature: []byte{1}}
	leg2 := &MetaTransaction{From: wallet, To: owner, Value: AmountFromMajor(2), Nonce: 1, Deadline: time.Now().Add(time.Hour), Signature: []byte{1}}

	batch := &BatchTransaction{WalletAddress: wallet, MetaTxs: []*MetaTransaction{leg1, leg2}}
	if err := we.SubmitBatch(batch); err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}
	if !batch.Executed {
		t.Fatalf("expected batch.Executed = true")
	}

	snap, err := we.Snapshot(wallet)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Nonce != 2 {
		t.Fatalf("nonce = %d, want 2", snap.Nonce)
	}
	if got, want := led.GetBalance(owner, USDTg), AmountFromMajor(3); got.Cmp(want) != 0 {
		t.Fatalf("owner balance = %s, want %s", got, want)
	}
}
