package core

import "testing"

func TestRecoveryCodeVerifyAndRecover(t *testing.T) {
	led, err := NewLedger(tmpLedgerConfig(t))
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	we := NewWalletEngine(led, AlwaysValidVerifier{}, Sha256Hasher{}, NewSequentialIDGenerator("w"), nil)
	owner := mustAddr(t, "usdtg1ownerofwallet00000000000000000000")
	wallet, err := we.CreateWallet(owner, AccountSocialRecovery)
	if err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}

	re := NewRecoveryEngine(NewSequentialIDGenerator("r"))
	code, err := re.GenerateCode(wallet, "email", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	wrongCode := "000000"
	if wrongCode == code {
		wrongCode = "111111"
	}
	if err := re.VerifyCode(wallet, "email", "user@example.com", wrongCode); KindOf(err) != AuthorizationFailure {
		t.Fatalf("wrong code: err kind = %v, want AuthorizationFailure", KindOf(err))
	}

	if err := re.VerifyCode(wallet, "email", "user@example.com", code); err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}

	newOwner := mustAddr(t, "usdtg1newownerwallet0000000000000000000")
	if err := re.RecoverWallet(we, wallet, newOwner); err != nil {
		t.Fatalf("RecoverWallet: %v", err)
	}

	snap, err := we.Snapshot(wallet)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Owner != newOwner {
		t.Fatalf("owner = %s, want %s", snap.Owner, newOwner)
	}

	// The session returns to Idle: a second recovery attempt without a
	// fresh verified session must fail.
	anotherOwner := mustAddr(t, "usdtg1anotherowner000000000000000000000")
	if err := re.RecoverWallet(we, wallet, anotherOwner); KindOf(err) != AuthorizationFailure {
		t.Fatalf("second recovery without new session: err kind = %v, want AuthorizationFailure", KindOf(err))
	}
}

func TestRecoveryCodeExhaustsAfterThreeAttempts(t *testing.T) {
	re := NewRecoveryEngine(nil)
	wallet := mustAddr(t, "usdtg1ownerofwallet00000000000000000000")
	if _, err := re.GenerateCode(wallet, "sms", "+15555550100"); err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	for i := 0; i < recoveryCodeAttempts; i++ {
		if err := re.VerifyCode(wallet, "sms", "+15555550100", "wrong-code"); KindOf(err) != AuthorizationFailure {
			t.Fatalf("attempt %d: err kind = %v, want AuthorizationFailure", i, KindOf(err))
		}
	}

	if err := re.VerifyCode(wallet, "sms", "+15555550100", "wrong-code"); KindOf(err) != StateConflict {
		t.Fatalf("after exhaustion: err kind = %v, want StateConflict", KindOf(err))
	}
}

func TestBackupCodeSingleUse(t *testing.T) {
	led, err := NewLedger(tmpLedgerConfig(t))
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	we := NewWalletEngine(led, AlwaysValidVerifier{}, Sha256Hasher{}, NewSequentialIDGenerator("w"), nil)
	owner := mustAddr(t, "usdtg1ownerofwallet00000000000000000000")
	wallet, err := we.CreateWallet(owner, AccountSocialRecovery)
	if err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}

	re := NewRecoveryEngine(nil)
	codes, err := re.GenerateBackupCodes(wallet)
	if err != nil {
		t.Fatalf("GenerateBackupCodes: %v", err)
	}
	if len(codes) != recoveryBackupCodes {
		t.Fatalf("len(codes) = %d, want %d", len(codes), recoveryBackupCodes)
	}

	if err := re.UseBackupCode(wallet, codes[0]); err != nil {
		t.Fatalf("UseBackupCode: %v", err)
	}
	if err := re.UseBackupCode(wallet, codes[0]); KindOf(err) != Duplicate {
		t.Fatalf("reuse: err kind = %v, want Duplicate", KindOf(err))
	}

	newOwner := mustAddr(t, "usdtg1newownerwallet0000000000000000000")
	if err := re.RecoverWallet(we, wallet, newOwner); err != nil {
		t.Fatalf("RecoverWallet via backup code: %v", err)
	}
}
