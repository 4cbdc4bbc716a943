package core

// Orchestrator (L3): thin glue that composes the lower engines for the
// two multi-step flows the system exposes externally - meta-tx execution
// (which already completes inside the Wallet Engine) and purchase
// confirmation (create_bonus -> distribute_bonus) (§4.5).

import (
	"github.com/sirupsen/logrus"
)

// OrchestratorConfig bundles the collaborators and capability
// implementations an Orchestrator is built from.
type OrchestratorConfig struct {
	Ledger   LedgerConfig
	Verifier SignatureVerifier
	Hasher   Hasher
	IDGen    IDGenerator
	Logger   *logrus.Logger
}

// Orchestrator wires together the Ledger Store and every engine above it.
type Orchestrator struct {
	Ledger   *Ledger
	Transfer *TransferEngine
	Wallet   *WalletEngine
	Recovery *RecoveryEngine
	Bonus    *BonusEngine

	logger *logrus.Logger
}

// NewOrchestrator constructs a fully-wired Orchestrator. The construction
// cycle between WalletEngine and TransferEngine is broken by building
// WalletEngine first and wiring TransferEngine into it afterwards.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	verifier := cfg.Verifier
	if verifier == nil {
		verifier = AlwaysValidVerifier{}
	}
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = Sha256Hasher{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = UUIDGenerator{}
	}

	ledgerCfg := cfg.Ledger
	ledgerCfg.Hasher = hasher
	ledgerCfg.IDGen = idGen
	ledgerCfg.Logger = logger

	ledger, err := NewLedger(ledgerCfg)
	if err != nil {
		return nil, wrapErr(BackingStoreUnavailable, "NewOrchestrator", "failed to open ledger", err)
	}

	wallet := NewWalletEngine(ledger, verifier, hasher, idGen, logger)
	transfer := NewTransferEngine(ledger, logger, wallet)
	wallet.SetTransferEngine(transfer)

	recovery := NewRecoveryEngine(idGen)
	bonus := NewBonusEngine(ledger, idGen, logger)

	return &Orchestrator{
		Ledger:   ledger,
		Transfer: transfer,
		Wallet:   wallet,
		Recovery: recovery,
		Bonus:    bonus,
		logger:   logger,
	}, nil
}

// ExecuteMetaTx composes execute_meta_tx -> transfer, already fused inside
// the Wallet Engine (§4.3); the Orchestrator adds no further steps.
func (o *Orchestrator) ExecuteMetaTx(mt *MetaTransaction) (string, error) {
	return o.Wallet.ExecuteMetaTx(mt)
}

// PurchaseBonusReport is the structured, partial-effects-aware result of
// ConfirmPurchase (§4.5 "multi-step orchestrations... must surface a
// structured report listing per-step outcomes").
type PurchaseBonusReport struct {
	BonusID       string
	BonusCreated  bool
	BonusErr      error
	Distributed   bool
	CreditTxHash  string
	DistributeErr error
}

// ConfirmPurchase runs create_bonus then distribute_bonus for wallet's
// purchase, reporting the outcome of each step independently. If
// create_bonus fails, distribute_bonus is never attempted.
func (o *Orchestrator) ConfirmPurchase(wallet Address, userID string, purchaseMajor uint64) (*PurchaseBonusReport, error) {
	report := &PurchaseBonusReport{}

	id, err := o.Bonus.CreateBonus(wallet, userID, purchaseMajor)
	if err != nil {
		report.BonusErr = err
		return report, err
	}
	report.BonusID = id
	report.BonusCreated = true

	hash, err := o.Bonus.DistributeBonus(id)
	if err != nil {
		report.DistributeErr = err
		o.logger.WithFields(logrus.Fields{"bonus_id": id, "wallet": wallet}).Warnf("bonus created but distribution failed: %v", err)
		return report, err
	}
	report.Distributed = true
	report.CreditTxHash = hash
	return report, nil
}

// Close releases the Orchestrator's durable resources (the ledger's WAL
// file handle).
func (o *Orchestrator) Close() error {
	return o.Ledger.Close()
}
