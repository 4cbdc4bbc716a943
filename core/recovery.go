package core

// Recovery Engine (L2b): time-boxed verification codes and single-use
// backup codes that gate a social-recovery ownership transfer (§4.3 /
// "Recovery Engine" component, §8 S-series scenarios).

import (
	"crypto/rand"
	"sync"
	"time"
)

const (
	recoveryCodeTTL       = 600 * time.Second
	recoveryCodeAttempts  = 3
	recoveryBackupCodes   = 5
)

// RecoveryStatus is the state machine governing one verification attempt
// for a wallet: Idle -> Pending -> {Verified | Expired | Exhausted}.
type RecoveryStatus string

const (
	RecoveryIdle      RecoveryStatus = "Idle"
	RecoveryPending   RecoveryStatus = "Pending"
	RecoveryVerified  RecoveryStatus = "Verified"
	RecoveryExpired   RecoveryStatus = "Expired"
	RecoveryExhausted RecoveryStatus = "Exhausted"
)

type recoveryKey struct {
	Wallet     Address
	Channel    string
	Identifier string
}

type recoverySession struct {
	code              string
	expiresAt         time.Time
	attemptsRemaining int
	status            RecoveryStatus
}

// BackupCode is one single-use recovery credential (§3.1).
type BackupCode struct {
	Code string
	Used bool
}

// RecoveryEngine issues and verifies recovery codes and backup codes, and
// gates WalletEngine.setOwner behind a verified session.
type RecoveryEngine struct {
	mu sync.Mutex

	sessions    map[recoveryKey]*recoverySession
	backupCodes map[Address][]*BackupCode
	verified    map[Address]bool

	idGen IDGenerator
	now   func() time.Time
}

// NewRecoveryEngine builds a RecoveryEngine. idGen is unused directly but
// kept for symmetry with the other engines and for future code formats.
func NewRecoveryEngine(idGen IDGenerator) *RecoveryEngine {
	if idGen == nil {
		idGen = UUIDGenerator{}
	}
	return &RecoveryEngine{
		sessions:    make(map[recoveryKey]*recoverySession),
		backupCodes: make(map[Address][]*BackupCode),
		verified:    make(map[Address]bool),
		idGen:       idGen,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GenerateCode issues a fresh 6-digit code for (wallet, channel, identifier),
// superseding any prior pending session for the same key (§4.3).
func (re *RecoveryEngine) GenerateCode(wallet Address, channel, identifier string) (string, error) {
	if !ValidateAddress(string(wallet)) {
		return "", newErr(ValidationError, "GenerateCode", "malformed wallet address")
	}
	if channel == "" || identifier == "" {
		return "", newErr(ValidationError, "GenerateCode", "channel and identifier are required")
	}

	code, err := randomDigitCode(6)
	if err != nil {
		return "", newErr(BackingStoreUnavailable, "GenerateCode", "failed to generate random code")
	}

	re.mu.Lock()
	defer re.mu.Unlock()

	key := recoveryKey{Wallet: wallet, Channel: channel, Identifier: identifier}
	re.sessions[key] = &recoverySession{
		code:              code,
		expiresAt:         re.now().Add(recoveryCodeTTL),
		attemptsRemaining: recoveryCodeAttempts,
		status:            RecoveryPending,
	}
	return code, nil
}

// VerifyCode checks code against the pending session for (wallet, channel,
// identifier). Success marks the wallet Verified; failure decrements the
// remaining attempts and, once exhausted, permanently rejects further
// verification until a new code is generated (§4.3).
func (re *RecoveryEngine) VerifyCode(wallet Address, channel, identifier, code string) error {
	re.mu.Lock()
	defer re.mu.Unlock()

	key := recoveryKey{Wallet: wallet, Channel: channel, Identifier: identifier}
	s, ok := re.sessions[key]
	if !ok {
		return newErr(NotFound, "VerifyCode", "no pending recovery session")
	}

	now := re.now()
	if s.status == RecoveryExhausted {
		return newErr(StateConflict, "VerifyCode", "recovery attempts exhausted")
	}
	if now.After(s.expiresAt) {
		s.status = RecoveryExpired
		return newErr(StateConflict, "VerifyCode", "recovery code has expired")
	}
	if s.code != code {
		s.attemptsRemaining--
		if s.attemptsRemaining <= 0 {
			s.status = RecoveryExhausted
		}
		return newErr(AuthorizationFailure, "VerifyCode", "recovery code does not match")
	}

	s.status = RecoveryVerified
	s.attemptsRemaining = recoveryCodeAttempts
	re.verified[wallet] = true
	return nil
}

// GenerateBackupCodes issues a fresh set of recoveryBackupCodes single-use
// codes for wallet, replacing any prior unused set.
func (re *RecoveryEngine) GenerateBackupCodes(wallet Address) ([]string, error) {
	if !ValidateAddress(string(wallet)) {
		return nil, newErr(ValidationError, "GenerateBackupCodes", "malformed wallet address")
	}

	codes := make([]*BackupCode, 0, recoveryBackupCodes)
	plain := make([]string, 0, recoveryBackupCodes)
	for i := 0; i < recoveryBackupCodes; i++ {
		code, err := randomDigitCode(10)
		if err != nil {
			return nil, newErr(BackingStoreUnavailable, "GenerateBackupCodes", "failed to generate random code")
		}
		codes = append(codes, &BackupCode{Code: code})
		plain = append(plain, code)
	}

	re.mu.Lock()
	re.backupCodes[wallet] = codes
	re.mu.Unlock()

	return plain, nil
}

// UseBackupCode consumes one unused backup code for wallet, marking it
// used and the wallet Verified (§4.3).
func (re *RecoveryEngine) UseBackupCode(wallet Address, code string) error {
	re.mu.Lock()
	defer re.mu.Unlock()

	codes, ok := re.backupCodes[wallet]
	if !ok {
		return newErr(NotFound, "UseBackupCode", "no backup codes issued for wallet")
	}
	for _, bc := range codes {
		if bc.Code == code {
			if bc.Used {
				return newErr(Duplicate, "UseBackupCode", "backup code already used")
			}
			bc.Used = true
			re.verified[wallet] = true
			return nil
		}
	}
	return newErr(NotFound, "UseBackupCode", "backup code not recognised")
}

// RecoverWallet completes a social-recovery ownership transfer on we, but
// only once the wallet has an outstanding Verified session (via either
// VerifyCode or UseBackupCode). On success the session returns to Idle.
func (re *RecoveryEngine) RecoverWallet(we *WalletEngine, wallet, newOwner Address) error {
	if !ValidateAddress(string(newOwner)) {
		return newErr(ValidationError, "RecoverWallet", "malformed new owner address")
	}

	re.mu.Lock()
	if !re.verified[wallet] {
		re.mu.Unlock()
		return newErr(AuthorizationFailure, "RecoverWallet", "no verified recovery session for wallet")
	}
	re.mu.Unlock()

	if err := we.setOwner(wallet, newOwner); err != nil {
		return err
	}

	re.mu.Lock()
	re.verified[wallet] = false
	for k := range re.sessions {
		if k.Wallet == wallet {
			delete(re.sessions, k)
		}
	}
	re.mu.Unlock()
	return nil
}

func randomDigitCode(n int) (string, error) {
	const digits = "0123456789"
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = digits[int(b)%len(digits)]
	}
	return string(out), nil
}
