package core

// Ledger Store (L0): the sole owner of balance state and the append-only
// journal (§4.1). Durability follows the teacher's write-ahead-log plus
// periodic-snapshot pattern: every confirmed mutation is appended to the
// WAL as a JSON line before the call returns, and a snapshot compacts the
// WAL once SnapshotInterval entries have accumulated.

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// JournalStatus is the lifecycle state of a JournalEntry.
type JournalStatus string

const (
	StatusPending   JournalStatus = "Pending"
	StatusConfirmed JournalStatus = "Confirmed"
	StatusFailed    JournalStatus = "Failed"
	StatusRejected  JournalStatus = "Rejected"
)

// JournalEntry is an immutable record of a successful or attempted
// balance change (§3.1). Entries are never mutated after being written.
type JournalEntry struct {
	Seq       uint64        `json:"seq"`
	TxHash    string        `json:"tx_hash"`
	From      Address       `json:"from"`
	To        Address       `json:"to"`
	Denom     Denomination  `json:"denom"`
	Amount    Amount        `json:"amount"`
	Fee       Amount        `json:"fee"`
	Status    JournalStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Memo      string        `json:"memo"`
}

type balanceKey struct {
	Addr  Address
	Denom Denomination
}

// LedgerConfig configures a Ledger's durability and injected
// capabilities.
type LedgerConfig struct {
	WALPath          string
	SnapshotPath     string
	SnapshotInterval int // entries between snapshots; 0 disables snapshotting
	Hasher           Hasher
	IDGen            IDGenerator
	Logger           *logrus.Logger
}

// Ledger is the L0 ledger store: balances plus an append-only journal,
// guarded by a per-address lock table with canonical lock ordering for
// multi-address operations (§4.1/§5).
type Ledger struct {
	mu sync.RWMutex

	balances      map[balanceKey]*Amount
	journal       []JournalEntry
	journalByHash map[string]int
	journalByAddr map[Address][]int
	seq           uint64

	addrLocksMu sync.Mutex
	addrLocks   map[Address]*sync.Mutex

	hasher Hasher
	idGen  IDGenerator
	logger *logrus.Logger

	walPath          string
	walFile          *os.File
	snapshotPath     string
	snapshotInterval int
	sinceSnapshot    int
}

// NewLedger opens (or creates) the WAL at cfg.WALPath and replays it to
// rebuild balances and the journal. A crash between writes never loses a
// tx_hash that was already returned to a caller, because the WAL append
// plus fsync happens before ApplyTransfer/Credit return.
func NewLedger(cfg LedgerConfig) (*Ledger, error) {
	if cfg.Hasher == nil {
		cfg.Hasher = Sha256Hasher{}
	}
	if cfg.IDGen == nil {
		cfg.IDGen = UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	l := &Ledger{
		balances:         make(map[balanceKey]*Amount),
		journalByHash:    make(map[string]int),
		journalByAddr:    make(map[Address][]int),
		addrLocks:        make(map[Address]*sync.Mutex),
		hasher:           cfg.Hasher,
		idGen:            cfg.IDGen,
		logger:           cfg.Logger,
		walPath:          cfg.WALPath,
		snapshotPath:     cfg.SnapshotPath,
		snapshotInterval: cfg.SnapshotInterval,
	}

	if cfg.WALPath == "" {
		return l, nil
	}

	if err := l.loadSnapshot(); err != nil {
		return nil, wrapErr(BackingStoreUnavailable, "NewLedger", "load snapshot", err)
	}

	wal, err := os.OpenFile(cfg.WALPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600)
	if err != nil {
		return nil, wrapErr(BackingStoreUnavailable, "NewLedger", "open WAL", err)
	}
	l.walFile = wal

	scanner := bufio.NewScanner(wal)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		var e JournalEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			wal.Close()
			return nil, wrapErr(BackingStoreUnavailable, "NewLedger", "WAL unmarshal", err)
		}
		l.replayEntry(e)
	}
	if err := scanner.Err(); err != nil {
		wal.Close()
		return nil, wrapErr(BackingStoreUnavailable, "NewLedger", "WAL scan", err)
	}

	l.logger.Infof("ledger: replayed %d journal entries from %s", len(l.journal), cfg.WALPath)
	return l, nil
}

// replayEntry folds a previously-persisted entry back into in-memory
// state without re-acquiring locks or re-appending to the WAL.
func (l *Ledger) replayEntry(e JournalEntry) {
	l.appendJournalLocked(e)
	if e.Status != StatusConfirmed {
		return
	}
	if !e.From.IsZero() {
		l.adjustLocked(e.From, e.Denom, e.Amount, e.Fee, true)
	}
	l.adjustLocked(e.To, e.Denom, e.Amount, ZeroAmount(), false)
	if e.Seq > l.seq {
		l.seq = e.Seq
	}
}

func (l *Ledger) adjustLocked(addr Address, denom Denomination, amount, fee Amount, debit bool) {
	key := balanceKey{Addr: addr, Denom: denom}
	cur, ok := l.balances[key]
	if !ok {
		z := ZeroAmount()
		cur = &z
		l.balances[key] = cur
	}
	if debit {
		total, _ := amount.Add(fee)
		next, err := cur.Sub(total)
		if err != nil {
			// Replay of a durable WAL must never fail; a mismatch here
			// indicates on-disk corruption, which this core surfaces as
			// an unavailable backing store rather than silently
			// continuing with an inconsistent balance.
			l.logger.Errorf("ledger: WAL replay produced negative balance for %s/%s", addr, denom)
			return
		}
		*cur = next
		return
	}
	next, _ := cur.Add(amount)
	*cur = next
}

func (l *Ledger) lockFor(addr Address) *sync.Mutex {
	l.addrLocksMu.Lock()
	defer l.addrLocksMu.Unlock()
	m, ok := l.addrLocks[addr]
	if !ok {
		m = &sync.Mutex{}
		l.addrLocks[addr] = m
	}
	return m
}

// withAddrLocks acquires the per-address locks for the given addresses
// in canonical (lexicographic) order to avoid deadlock across
// multi-address operations, returning an unlock function.
func (l *Ledger) withAddrLocks(addrs ...Address) func() {
	uniq := make(map[Address]struct{}, len(addrs))
	ordered := make([]Address, 0, len(addrs))
	for _, a := range addrs {
		if a.IsZero() {
			continue
		}
		if _, seen := uniq[a]; seen {
			continue
		}
		uniq[a] = struct{}{}
		ordered = append(ordered, a)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	locks := make([]*sync.Mutex, len(ordered))
	for i, a := range ordered {
		locks[i] = l.lockFor(a)
	}
	for _, m := range locks {
		m.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// GetBalance returns the current balance for (address, denom). Any
// address not yet present is an implicit zero account.
func (l *Ledger) GetBalance(addr Address, denom Denomination) Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if a, ok := l.balances[balanceKey{Addr: addr, Denom: denom}]; ok {
		return *a
	}
	return ZeroAmount()
}

func (l *Ledger) appendJournalLocked(e JournalEntry) {
	idx := len(l.journal)
	l.journal = append(l.journal, e)
	l.journalByHash[e.TxHash] = idx
	if !e.From.IsZero() {
		l.journalByAddr[e.From] = append(l.journalByAddr[e.From], idx)
	}
	if !e.To.IsZero() && e.To != e.From {
		l.journalByAddr[e.To] = append(l.journalByAddr[e.To], idx)
	}
}

// persist appends e to the WAL and fsyncs before returning: a successful
// return from any mutating ledger call implies the entry is durable.
func (l *Ledger) persist(e JournalEntry) error {
	if l.walFile == nil {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return wrapErr(BackingStoreUnavailable, "persist", "marshal journal entry", err)
	}
	if _, err := l.walFile.Write(append(data, '\n')); err != nil {
		return wrapErr(BackingStoreUnavailable, "persist", "write WAL", err)
	}
	if err := l.walFile.Sync(); err != nil {
		return wrapErr(BackingStoreUnavailable, "persist", "fsync WAL", err)
	}
	l.sinceSnapshot++
	if l.snapshotInterval > 0 && l.sinceSnapshot >= l.snapshotInterval {
		if err := l.snapshotLocked(); err != nil {
			l.logger.Warnf("ledger: snapshot failed: %v", err)
		}
		l.sinceSnapshot = 0
	}
	return nil
}

func (l *Ledger) nextSeq() uint64 {
	l.seq++
	return l.seq
}

// txHash derives a deterministic-looking, collision-resistant hash for a
// mutation per the §6.1 hash predicate
// H(from || to || denom || amount || memo || timestamp || counter).
func (l *Ledger) txHash(from, to Address, denom Denomination, amount Amount, memo string, ts time.Time, counter uint64) string {
	h := l.hasher.Hash(
		[]byte(from), []byte(to), []byte(denom), []byte(amount.String()),
		[]byte(memo), []byte(fmt.Sprintf("%d", ts.UnixNano())), []byte(fmt.Sprintf("%d", counter)),
	)
	return h.Hex()
}

// ApplyTransfer atomically debits (from, denom) by amount+fee, credits
// (to, denom) by amount, and appends a Confirmed journal entry. On
// failure no balance is mutated; an insufficient balance additionally
// writes a Rejected entry for auditability, while a bad denomination or
// amount is refused before any entry is written.
func (l *Ledger) ApplyTransfer(from, to Address, denom Denomination, amount, fee Amount, memo string) (string, error) {
	if !ValidDenomination(denom) {
		return "", newErr(ValidationError, "ApplyTransfer", "unknown denomination")
	}
	if err := ValidateTransferAmount(amount); err != nil {
		return "", err
	}

	unlock := l.withAddrLocks(from, to)
	defer unlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().UTC()
	seq := l.nextSeq()
	hash := l.txHash(from, to, denom, amount, memo, ts, seq)

	total, err := amount.Add(fee)
	if err != nil {
		return "", err
	}
	curFrom := l.balances[balanceKey{Addr: from, Denom: denom}]
	var fromBal Amount
	if curFrom != nil {
		fromBal = *curFrom
	}
	if fromBal.Cmp(total) < 0 {
		rejected := JournalEntry{
			Seq: seq, TxHash: hash, From: from, To: to, Denom: denom,
			Amount: amount, Fee: fee, Status: StatusRejected,
			Timestamp: ts, Memo: memo,
		}
		l.appendJournalLocked(rejected)
		if perr := l.persist(rejected); perr != nil {
			return "", perr
		}
		return "", newErr(InsufficientFunds, "ApplyTransfer", "insufficient balance")
	}

	l.adjustLocked(from, denom, amount, fee, true)
	l.adjustLocked(to, denom, amount, ZeroAmount(), false)

	confirmed := JournalEntry{
		Seq: seq, TxHash: hash, From: from, To: to, Denom: denom,
		Amount: amount, Fee: fee, Status: StatusConfirmed,
		Timestamp: ts, Memo: memo,
	}
	l.appendJournalLocked(confirmed)
	if err := l.persist(confirmed); err != nil {
		return "", err
	}

	l.logger.WithFields(logrus.Fields{
		"tx_hash": hash, "from": from, "to": to, "denom": denom, "amount": amount.String(),
	}).Info("ledger: transfer applied")
	return hash, nil
}

// Credit performs a single-sided credit to `to` from a reserved source
// account, bypassing the balance precondition (§5 "Reserve accounts").
// sourceTag distinguishes "AIRDROP"/"BONUS"/"BRIDGE" callers in the
// journal memo and is not otherwise interpreted by the ledger.
func (l *Ledger) Credit(from, to Address, denom Denomination, amount Amount, memo, sourceTag string) (string, error) {
	if !ValidDenomination(denom) {
		return "", newErr(ValidationError, "Credit", "unknown denomination")
	}
	if amount.Sign() <= 0 {
		return "", newErr(ValidationError, "Credit", "amount must be positive")
	}

	unlock := l.withAddrLocks(to)
	defer unlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().UTC()
	seq := l.nextSeq()
	taggedMemo := sourceTag + ": " + memo
	hash := l.txHash(from, to, denom, amount, taggedMemo, ts, seq)

	l.adjustLocked(to, denom, amount, ZeroAmount(), false)

	entry := JournalEntry{
		Seq: seq, TxHash: hash, From: from, To: to, Denom: denom,
		Amount: amount, Fee: ZeroAmount(), Status: StatusConfirmed,
		Timestamp: ts, Memo: taggedMemo,
	}
	l.appendJournalLocked(entry)
	if err := l.persist(entry); err != nil {
		return "", err
	}

	l.logger.WithFields(logrus.Fields{
		"tx_hash": hash, "to": to, "denom": denom, "amount": amount.String(), "source": sourceTag,
	}).Info("ledger: credit applied")
	return hash, nil
}

// ListJournal returns entries touching address, newest first, with
// stable pagination. The empty cursor starts from the most recent entry.
func (l *Ledger) ListJournal(address Address, cursor string, limit int) ([]JournalEntry, string, error) {
	if limit <= 0 {
		limit = 50
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	before := decodeCursor(cursor)
	idxs := l.journalByAddr[address]

	out := make([]JournalEntry, 0, limit)
	for i := len(idxs) - 1; i >= 0; i-- {
		e := l.journal[idxs[i]]
		if before != 0 && e.Seq >= before {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			next := encodeCursor(e.Seq)
			return out, next, nil
		}
	}
	return out, "", nil
}

func encodeCursor(seq uint64) string { return fmt.Sprintf("%d", seq) }

func decodeCursor(cursor string) uint64 {
	if cursor == "" {
		return 0
	}
	var seq uint64
	_, _ = fmt.Sscanf(cursor, "%d", &seq)
	return seq
}

// snapshotState is the on-disk shape written by snapshotLocked.
type snapshotState struct {
	Balances map[string]map[Denomination]Amount `json:"balances"`
	Journal  []JournalEntry                     `json:"journal"`
	Seq      uint64                              `json:"seq"`
}

func (l *Ledger) snapshotLocked() error {
	if l.snapshotPath == "" {
		return nil
	}
	state := snapshotState{
		Balances: make(map[string]map[Denomination]Amount),
		Journal:  l.journal,
		Seq:      l.seq,
	}
	for k, v := range l.balances {
		m, ok := state.Balances[string(k.Addr)]
		if !ok {
			m = make(map[Denomination]Amount)
			state.Balances[string(k.Addr)] = m
		}
		m[k.Denom] = *v
	}

	f, err := os.Create(l.snapshotPath)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(state); err != nil {
		gz.Close()
		f.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if l.walFile != nil {
		if err := l.walFile.Truncate(0); err != nil {
			return err
		}
		if _, err := l.walFile.Seek(0, 0); err != nil {
			return err
		}
	}
	l.logger.Infof("ledger: snapshot saved to %s; WAL truncated", l.snapshotPath)
	return nil
}

func (l *Ledger) loadSnapshot() error {
	if l.snapshotPath == "" {
		return nil
	}
	f, err := os.Open(l.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	var state snapshotState
	if err := json.NewDecoder(gz).Decode(&state); err != nil {
		return err
	}
	for addr, denoms := range state.Balances {
		for denom, amt := range denoms {
			a := amt
			l.balances[balanceKey{Addr: Address(addr), Denom: denom}] = &a
		}
	}
	for _, e := range state.Journal {
		l.appendJournalLocked(e)
	}
	l.seq = state.Seq
	return nil
}

// Close releases the underlying WAL file handle, if any.
func (l *Ledger) Close() error {
	if l == nil || l.walFile == nil {
		return nil
	}
	return l.walFile.Close()
}
