package core

// Transfer Engine (L1): input validation and orchestration around the
// ledger store for externally-initiated transfers, airdrops and batch
// transfers (§4.2).

import (
	"github.com/sirupsen/logrus"
)

// Well-known reserve addresses (§6.3). Both are stable across restarts
// because they are derived from fixed literals rather than any runtime
// state.
const (
	AirdropReserve Address = "usdtg1" + "airdropreserve00000000000000000000000000"
	BonusReserve   Address = "usdtg1" + "bonusreserve000000000000000000000000000"
)

// TransferEngine validates externally-initiated movements and delegates
// the actual mutation to the Ledger store.
type TransferEngine struct {
	ledger *Ledger
	logger *logrus.Logger

	registry *WalletEngine // optional; used to auto-create bare accounts
}

// NewTransferEngine builds a TransferEngine bound to ledger. registry may
// be nil if the caller does not need auto-creation of bare ledger
// accounts for unknown recipients.
func NewTransferEngine(ledger *Ledger, logger *logrus.Logger, registry *WalletEngine) *TransferEngine {
	if logger == nil {
		logger = logrus.New()
	}
	return &TransferEngine{ledger: ledger, logger: logger, registry: registry}
}

// Transfer moves amount of denom from from to to at zero fee (native
// transfers are zero-fee by policy). If to is unknown to the wallet
// registry, a bare ledger account is auto-created (not a smart-contract
// wallet).
func (te *TransferEngine) Transfer(from, to Address, denom Denomination, amount Amount, memo string) (string, error) {
	if !ValidateAddress(string(from)) {
		return "", newErr(ValidationError, "Transfer", "malformed from address")
	}
	if !ValidateAddress(string(to)) {
		return "", newErr(ValidationError, "Transfer", "malformed to address")
	}
	if !ValidDenomination(denom) {
		return "", newErr(ValidationError, "Transfer", "unknown denomination")
	}
	if err := ValidateTransferAmount(amount); err != nil {
		return "", err
	}

	if te.registry != nil && !te.registry.WalletExists(to) {
		te.registry.autoCreateBareAccount(to)
	}

	return te.ledger.ApplyTransfer(from, to, denom, amount, ZeroAmount(), memo)
}

// Airdrop credits to from the airdrop reserve, memo "AIRDROP: "+reason.
func (te *TransferEngine) Airdrop(to Address, denom Denomination, amount Amount, reason string) (string, error) {
	if !ValidateAddress(string(to)) {
		return "", newErr(ValidationError, "Airdrop", "malformed to address")
	}
	if !ValidDenomination(denom) {
		return "", newErr(ValidationError, "Airdrop", "unknown denomination")
	}
	return te.ledger.Credit(AirdropReserve, to, denom, amount, reason, "AIRDROP")
}

// BatchLegResult reports the outcome of one leg of a batch transfer.
type BatchLegResult struct {
	To     Address
	Amount Amount
	TxHash string
	Err    error
}

// BatchTransfer preflights that balance(from, denom) >= sum(amounts),
// then executes each leg independently. On any leg failure the
// remaining legs are skipped; already-applied legs are NOT rolled back
// (partial success is allowed, §4.2 design rationale).
func (te *TransferEngine) BatchTransfer(from Address, recipients []Address, denom Denomination, amounts []Amount, memo string) ([]BatchLegResult, error) {
	if len(recipients) != len(amounts) {
		return nil, newErr(ValidationError, "BatchTransfer", "recipients/amounts length mismatch")
	}
	if !ValidateAddress(string(from)) {
		return nil, newErr(ValidationError, "BatchTransfer", "malformed from address")
	}
	if !ValidDenomination(denom) {
		return nil, newErr(ValidationError, "BatchTransfer", "unknown denomination")
	}

	total := ZeroAmount()
	for _, a := range amounts {
		var err error
		total, err = total.Add(a)
		if err != nil {
			return nil, err
		}
	}
	if te.ledger.GetBalance(from, denom).Cmp(total) < 0 {
		return nil, newErr(InsufficientFunds, "BatchTransfer", "preflight total exceeds balance")
	}

	results := make([]BatchLegResult, 0, len(recipients))
	failed := false
	for i, to := range recipients {
		if failed {
			results = append(results, BatchLegResult{To: to, Amount: amounts[i], Err: newErr(StateConflict, "BatchTransfer", "skipped after earlier leg failure")})
			continue
		}
		hash, err := te.Transfer(from, to, denom, amounts[i], memo)
		if err != nil {
			failed = true
			te.logger.WithFields(logrus.Fields{"from": from, "to": to, "leg": i}).Warnf("batch transfer leg failed: %v", err)
			results = append(results, BatchLegResult{To: to, Amount: amounts[i], Err: err})
			continue
		}
		results = append(results, BatchLegResult{To: to, Amount: amounts[i], TxHash: hash})
	}
	return results, nil
}
