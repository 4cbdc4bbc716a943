package core

// Wallet Engine (L2a): the smart-contract-wallet registry, its lifecycle
// state machine, meta-transaction execution and atomic batch submission
// (§4.3).

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AccountType distinguishes the ownership/authorization model backing a
// wallet (§3.1).
type AccountType string

const (
	AccountEOA            AccountType = "EOA"
	AccountSmartContract   AccountType = "SmartContract"
	AccountMultiSig        AccountType = "MultiSig"
	AccountSocialRecovery  AccountType = "SocialRecovery"
	// AccountQuantumSafe is accepted as a valid account_type tag (§3.1);
	// its signature fields remain opaque pending the quantum-safe Open
	// Question on wire format, which this type does not resolve.
	AccountQuantumSafe AccountType = "QuantumSafe"
)

// WalletStatus is the wallet lifecycle state (§3.1, §4.3):
// Created -> Initialized -> Active <-> Deactivated.
type WalletStatus string

const (
	WalletCreated     WalletStatus = "Created"
	WalletInitialized WalletStatus = "Initialized"
	WalletActive      WalletStatus = "Active"
	WalletDeactivated WalletStatus = "Deactivated"
)

// Wallet is a smart-contract-wallet record owned by the Wallet Engine.
type Wallet struct {
	Address     Address
	Owner       Address
	AccountType AccountType
	Status      WalletStatus

	Nonce uint64

	RecoverySet       []Address
	RecoveryThreshold int

	ImplementationRef string

	CreatedAt  time.Time
	LastUsedAt time.Time
}

// WalletEngine is the registry and lifecycle authority for smart-contract
// wallets, plus meta-transaction/batch execution.
type WalletEngine struct {
	mu      sync.RWMutex
	wallets map[Address]*Wallet

	// bareAccounts tracks addresses the Transfer Engine has seen as
	// recipients that are not (and never become) smart-contract wallets
	// (§4.2 "auto-creates a bare ledger account").
	bareAccounts map[Address]struct{}

	creationNonce map[Address]uint64 // owner -> next DeriveWalletAddress nonce

	walletLocksMu sync.Mutex
	walletLocks   map[Address]*sync.Mutex

	transfer *TransferEngine // set post-construction; see SetTransferEngine
	ledger   *Ledger

	verifier SignatureVerifier
	hasher   Hasher
	idGen    IDGenerator
	logger   *logrus.Logger

	settlementDenom Denomination
}

// NewWalletEngine builds a WalletEngine bound to ledger. The TransferEngine
// collaborator is wired afterwards via SetTransferEngine, breaking the
// natural construction cycle between the two engines (§3.3).
func NewWalletEngine(ledger *Ledger, verifier SignatureVerifier, hasher Hasher, idGen IDGenerator, logger *logrus.Logger) *WalletEngine {
	if verifier == nil {
		verifier = AlwaysValidVerifier{}
	}
	if hasher == nil {
		hasher = Sha256Hasher{}
	}
	if idGen == nil {
		idGen = UUIDGenerator{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &WalletEngine{
		wallets:         make(map[Address]*Wallet),
		bareAccounts:    make(map[Address]struct{}),
		creationNonce:   make(map[Address]uint64),
		walletLocks:     make(map[Address]*sync.Mutex),
		ledger:          ledger,
		verifier:        verifier,
		hasher:          hasher,
		idGen:           idGen,
		logger:          logger,
		settlementDenom: USDTg,
	}
}

// SetTransferEngine wires the collaborator used to settle meta-tx value
// legs. Must be called before any ExecuteMetaTx/SubmitBatch with value > 0.
func (we *WalletEngine) SetTransferEngine(te *TransferEngine) {
	we.mu.Lock()
	defer we.mu.Unlock()
	we.transfer = te
}

func (we *WalletEngine) lockFor(addr Address) *sync.Mutex {
	we.walletLocksMu.Lock()
	defer we.walletLocksMu.Unlock()
	l, ok := we.walletLocks[addr]
	if !ok {
		l = &sync.Mutex{}
		we.walletLocks[addr] = l
	}
	return l
}

// WalletExists reports whether addr is a known smart-contract wallet or a
// bare ledger account previously auto-created by the Transfer Engine.
func (we *WalletEngine) WalletExists(addr Address) bool {
	we.mu.RLock()
	defer we.mu.RUnlock()
	if _, ok := we.wallets[addr]; ok {
		return true
	}
	_, ok := we.bareAccounts[addr]
	return ok
}

// autoCreateBareAccount registers addr as known to the system without
// creating a smart-contract wallet record for it (§4.2).
func (we *WalletEngine) autoCreateBareAccount(addr Address) {
	we.mu.Lock()
	defer we.mu.Unlock()
	we.bareAccounts[addr] = struct{}{}
}

// CreateWallet derives a new wallet address for owner and registers it in
// state Created (§4.3). The creation nonce used for derivation is
// per-owner and monotonically increasing, independent of the wallet's own
// meta-tx nonce.
func (we *WalletEngine) CreateWallet(owner Address, accountType AccountType) (Address, error) {
	if !ValidateAddress(string(owner)) {
		return "", newErr(ValidationError, "CreateWallet", "malformed owner address")
	}
	switch accountType {
	case AccountEOA, AccountSmartContract, AccountMultiSig, AccountSocialRecovery, AccountQuantumSafe:
	default:
		return "", newErr(ValidationError, "CreateWallet", "unknown account type")
	}

	we.mu.Lock()
	defer we.mu.Unlock()

	nonce := we.creationNonce[owner]
	addr := DeriveWalletAddress(owner, nonce)
	we.creationNonce[owner] = nonce + 1

	if _, exists := we.wallets[addr]; exists {
		return "", newErr(StateConflict, "CreateWallet", "derived address already registered")
	}

	now := time.Now().UTC()
	we.wallets[addr] = &Wallet{
		Address:     addr,
		Owner:       owner,
		AccountType: accountType,
		Status:      WalletCreated,
		CreatedAt:   now,
		LastUsedAt:  now,
	}
	delete(we.bareAccounts, addr)
	we.logger.WithFields(logrus.Fields{"wallet": addr, "owner": owner}).Info("wallet created")
	return addr, nil
}

// Initialize transitions a wallet from Created to Initialized, recording
// the implementation reference it was deployed against (§4.3).
func (we *WalletEngine) Initialize(wallet Address, implementationRef string) error {
	l := we.lockFor(wallet)
	l.Lock()
	defer l.Unlock()

	w, err := we.mustGet(wallet)
	if err != nil {
		return err
	}
	if w.Status != WalletCreated {
		return newErr(StateConflict, "Initialize", "wallet is not in Created state")
	}
	w.Status = WalletInitialized
	w.ImplementationRef = implementationRef
	w.LastUsedAt = time.Now().UTC()
	return nil
}

// Activate transitions Initialized -> Active, the state required for
// ExecuteMetaTx/SubmitBatch.
func (we *WalletEngine) Activate(wallet Address) error {
	l := we.lockFor(wallet)
	l.Lock()
	defer l.Unlock()

	w, err := we.mustGet(wallet)
	if err != nil {
		return err
	}
	if w.Status != WalletInitialized && w.Status != WalletDeactivated {
		return newErr(StateConflict, "Activate", "wallet cannot transition to Active from its current state")
	}
	w.Status = WalletActive
	w.LastUsedAt = time.Now().UTC()
	return nil
}

// Deactivate transitions Active -> Deactivated; no meta-tx executes while
// deactivated.
func (we *WalletEngine) Deactivate(wallet Address) error {
	l := we.lockFor(wallet)
	l.Lock()
	defer l.Unlock()

	w, err := we.mustGet(wallet)
	if err != nil {
		return err
	}
	if w.Status != WalletActive {
		return newErr(StateConflict, "Deactivate", "wallet is not Active")
	}
	w.Status = WalletDeactivated
	w.LastUsedAt = time.Now().UTC()
	return nil
}

// ConfigureRecovery sets the social-recovery guardian set and threshold
// for wallet (§4.3). A threshold of 0 disables social recovery.
func (we *WalletEngine) ConfigureRecovery(wallet Address, guardians []Address, threshold int) error {
	if threshold < 0 || threshold > len(guardians) {
		return newErr(ValidationError, "ConfigureRecovery", "threshold out of range")
	}
	for _, g := range guardians {
		if !ValidateAddress(string(g)) {
			return newErr(ValidationError, "ConfigureRecovery", "malformed guardian address")
		}
	}

	l := we.lockFor(wallet)
	l.Lock()
	defer l.Unlock()

	w, err := we.mustGet(wallet)
	if err != nil {
		return err
	}
	w.RecoverySet = append([]Address(nil), guardians...)
	w.RecoveryThreshold = threshold
	w.LastUsedAt = time.Now().UTC()
	return nil
}

// mustGet fetches a wallet record by address or returns a NotFound error.
// Caller must hold the wallet's per-address lock for any subsequent mutation.
func (we *WalletEngine) mustGet(wallet Address) (*Wallet, error) {
	we.mu.RLock()
	w, ok := we.wallets[wallet]
	we.mu.RUnlock()
	if !ok {
		return nil, newErr(NotFound, "WalletEngine", "unknown wallet")
	}
	return w, nil
}

// setOwner is invoked by the Recovery Engine once a recovery session is
// Verified (§4.3 "social recovery completes ownership transfer").
func (we *WalletEngine) setOwner(wallet, newOwner Address) error {
	l := we.lockFor(wallet)
	l.Lock()
	defer l.Unlock()

	w, err := we.mustGet(wallet)
	if err != nil {
		return err
	}
	w.Owner = newOwner
	w.LastUsedAt = time.Now().UTC()
	return nil
}

// Snapshot returns a copy of the wallet record, for read-only inspection.
func (we *WalletEngine) Snapshot(wallet Address) (Wallet, error) {
	l := we.lockFor(wallet)
	l.Lock()
	defer l.Unlock()
	w, err := we.mustGet(wallet)
	if err != nil {
		return Wallet{}, err
	}
	return *w, nil
}

// validateMetaTxLocked runs the admission checks from §4.3: wallet
// active, already executed, nonce, deadline, call-data size, signature.
// An executed meta-tx is reported as Duplicate before the nonce check,
// because executing it consumed its nonce. The caller must already hold
// wallet's lock.
func (we *WalletEngine) validateMetaTxLocked(w *Wallet, mt *MetaTransaction, now time.Time) error {
	if w.Status != WalletActive {
		return newErr(StateConflict, "ExecuteMetaTx", "wallet is not Active")
	}
	if mt.Executed {
		return newErr(Duplicate, "ExecuteMetaTx", "meta-transaction already executed")
	}
	if mt.Nonce != w.Nonce {
		return newErr(StateConflict, "ExecuteMetaTx", "nonce does not match wallet's expected nonce")
	}
	if now.After(mt.Deadline) {
		return newErr(StateConflict, "ExecuteMetaTx", "meta-transaction deadline has passed")
	}
	if len(mt.Data) > MaxMetaTxDataBytes {
		return newErr(ValidationError, "ExecuteMetaTx", "call data exceeds maximum size")
	}
	if !we.verifier.Verify([]byte(mt.TxID), mt.Signature, w.Owner) {
		return newErr(AuthorizationFailure, "ExecuteMetaTx", "signature verification failed")
	}
	return nil
}

// applyMetaTxLocked commits one already-validated meta-transaction. The
// fallible leg (settlement transfer) runs first: only once it succeeds do
// we mutate the wallet's nonce and the meta-tx's executed bookkeeping, so
// that a failed transfer leaves no trace, matching the "no mutation on
// error" principle even though §4.3 lists nonce-increment first in its
// description of a *successful* call's effects.
func (we *WalletEngine) applyMetaTxLocked(w *Wallet, mt *MetaTransaction, now time.Time) error {
	if mt.Value.Sign() > 0 {
		we.mu.RLock()
		te := we.transfer
		we.mu.RUnlock()
		if te == nil {
			return newErr(BackingStoreUnavailable, "ExecuteMetaTx", "no transfer engine wired")
		}
		if _, err := te.Transfer(mt.From, mt.To, we.settlementDenom, mt.Value, "metatx:"+mt.TxID); err != nil {
			return err
		}
	}

	w.Nonce++
	w.LastUsedAt = now
	mt.Executed = true
	mt.ExecutionHash = we.hasher.Hash([]byte(mt.TxID), uintBytes(w.Nonce), []byte(now.UTC().Format(time.RFC3339Nano))).Hex()
	return nil
}

// ExecuteMetaTx validates and, on success, applies a single meta-transaction
// against its From wallet (§4.3).
func (we *WalletEngine) ExecuteMetaTx(mt *MetaTransaction) (string, error) {
	if mt == nil {
		return "", newErr(ValidationError, "ExecuteMetaTx", "nil meta-transaction")
	}
	if mt.TxID == "" {
		mt.TxID = computeTxID(we.hasher, mt)
	}

	l := we.lockFor(mt.From)
	l.Lock()
	defer l.Unlock()

	w, err := we.mustGet(mt.From)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	if err := we.validateMetaTxLocked(w, mt, now); err != nil {
		return "", err
	}
	if err := we.applyMetaTxLocked(w, mt, now); err != nil {
		return "", err
	}
	return mt.ExecutionHash, nil
}

// SubmitBatch executes every meta-transaction in batch atomically: either
// all legs apply, or none do (§4.3, in contrast to the Transfer Engine's
// permissive BatchTransfer). Admission is checked for every leg - against
// a simulated nonce sequence and a preflighted total settlement balance -
// before any leg is actually applied.
func (we *WalletEngine) SubmitBatch(batch *BatchTransaction) error {
	if batch == nil || len(batch.MetaTxs) == 0 {
		return newErr(ValidationError, "SubmitBatch", "empty batch")
	}
	for _, mt := range batch.MetaTxs {
		if mt.From != batch.WalletAddress {
			return newErr(ValidationError, "SubmitBatch", "meta-tx from does not match batch wallet")
		}
	}

	l := we.lockFor(batch.WalletAddress)
	l.Lock()
	defer l.Unlock()

	w, err := we.mustGet(batch.WalletAddress)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	simNonce := w.Nonce
	total := ZeroAmount()
	for i, mt := range batch.MetaTxs {
		if mt.TxID == "" {
			mt.TxID = computeTxID(we.hasher, mt)
		}
		if w.Status != WalletActive {
			return newErr(StateConflict, "SubmitBatch", "wallet is not Active")
		}
		if mt.Nonce != simNonce {
			return newErr(StateConflict, "SubmitBatch", "leg nonce does not match simulated sequence")
		}
		if now.After(mt.Deadline) {
			return newErr(StateConflict, "SubmitBatch", "leg deadline has passed")
		}
		if len(mt.Data) > MaxMetaTxDataBytes {
			return newErr(ValidationError, "SubmitBatch", "leg call data exceeds maximum size")
		}
		if !we.verifier.Verify([]byte(mt.TxID), mt.Signature, w.Owner) {
			return newErr(AuthorizationFailure, "SubmitBatch", "leg signature verification failed")
		}
		if mt.Executed {
			return newErr(Duplicate, "SubmitBatch", "leg already executed")
		}
		simNonce++
		if mt.Value.Sign() > 0 {
			if !ValidateAddress(string(mt.To)) {
				return newErr(ValidationError, "SubmitBatch", "leg to address is malformed")
			}
			if err := ValidateTransferAmount(mt.Value); err != nil {
				return err
			}
			var addErr error
			total, addErr = total.Add(mt.Value)
			if addErr != nil {
				return addErr
			}
		}
		_ = i
	}

	if total.Sign() > 0 && we.ledger.GetBalance(batch.WalletAddress, we.settlementDenom).Cmp(total) < 0 {
		return newErr(InsufficientFunds, "SubmitBatch", "preflight total exceeds wallet balance")
	}

	for _, mt := range batch.MetaTxs {
		if err := we.applyMetaTxLocked(w, mt, now); err != nil {
			return err
		}
	}

	batch.TotalGasLimit = totalGasLimit(batch.MetaTxs)
	batch.Executed = true
	batch.ExecutionTime = now
	return nil
}
