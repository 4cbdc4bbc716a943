package core

import "time"

// PaymentMode enumerates who ultimately settles a meta-transaction's gas
// cost (§3.1). No balance is ever actually debited for gas in this core
// (§4.3 "Gas semantics") - the mode is recorded metadata only.
type PaymentMode string

const (
	PaymentNormal    PaymentMode = "Normal"
	PaymentSponsored PaymentMode = "Sponsored"
	PaymentRelayer   PaymentMode = "Relayer"
	PaymentBatch     PaymentMode = "Batch"
)

// MetaTransaction is a wallet-owner-signed instruction executed by the
// Wallet Engine, carrying its own nonce and deadline (§3.1).
type MetaTransaction struct {
	TxID string `json:"tx_id"`

	From Address `json:"from"`
	To   Address `json:"to"`
	// Value is denominated in the wallet's settlement denomination.
	Value Amount `json:"value"`
	// Data is opaque call payload, bounded to 1 KiB (§3.1).
	Data []byte `json:"data"`

	GasLimit uint64 `json:"gas_limit"`
	GasPrice uint64 `json:"gas_price"`
	Nonce    uint64 `json:"nonce"`

	PaymentMode PaymentMode `json:"payment_mode"`
	Sponsor     Address     `json:"sponsor,omitempty"`
	Relayer     Address     `json:"relayer,omitempty"`

	Deadline  time.Time `json:"deadline"`
	Signature []byte    `json:"signature"`

	Executed      bool   `json:"executed"`
	ExecutionHash string `json:"execution_hash"`
}

// MaxMetaTxDataBytes bounds MetaTransaction.Data per §3.1.
const MaxMetaTxDataBytes = 1024

// GasCost returns gas_limit * gas_price, the metadata-only figure the
// wallet engine exposes (§4.3 "Gas semantics"). No balance is mutated by
// this figure in this core.
func (mt *MetaTransaction) GasCost() uint64 { return mt.GasLimit * mt.GasPrice }

// computeTxID derives a deterministic tx_id from every pre-execution
// field, per §3.1's "tx_id is a deterministic function of all
// pre-execution fields".
func computeTxID(h Hasher, mt *MetaTransaction) string {
	deadline := []byte(mt.Deadline.UTC().Format(time.RFC3339Nano))
	sponsor := []byte(mt.Sponsor)
	relayer := []byte(mt.Relayer)
	digest := h.Hash(
		[]byte(mt.From), []byte(mt.To), []byte(mt.Value.String()), mt.Data,
		uintBytes(mt.GasLimit), uintBytes(mt.GasPrice), uintBytes(mt.Nonce),
		[]byte(mt.PaymentMode), sponsor, relayer, deadline,
	)
	return digest.Hex()
}

func uintBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// BatchTransaction aggregates meta-transactions under one envelope,
// executed atomically; each contained meta-transaction carries and is
// checked against its own owner signature (§3.1, §4.3).
type BatchTransaction struct {
	BatchID        string              `json:"batch_id"`
	WalletAddress  Address             `json:"wallet_address"`
	MetaTxs        []*MetaTransaction  `json:"meta_txs"`
	TotalGasLimit  uint64              `json:"total_gas_limit"`
	Executed       bool                `json:"executed"`
	ExecutionTime  time.Time           `json:"execution_time"`
}

// totalGasLimit sums the gas limits of the contained meta-transactions.
func totalGasLimit(txs []*MetaTransaction) uint64 {
	var total uint64
	for _, tx := range txs {
		total += tx.GasLimit
	}
	return total
}
