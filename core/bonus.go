package core

// Bonus Engine (L2c): tiered loyalty bonuses computed from a purchase
// amount and credited into the ledger from the bonus reserve (§4.4,
// §6.3).

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Tier describes one loyalty bracket (§4.4). Thresholds and bonus amounts
// are expressed in whole major units of USDTg. RatePercent is the tier's
// nominal rate, reported alongside the quote; it is not added to the
// credited amount, which is always BonusMajor.
type Tier struct {
	Name           string
	ThresholdMajor uint64
	BonusMajor     uint64
	RatePercent    float64
}

// tierTable is ordered ascending by threshold; ComputeBonus picks the
// highest tier the purchase qualifies for.
var tierTable = []Tier{
	{Name: "Bronze", ThresholdMajor: 10_000, BonusMajor: 10, RatePercent: 0.10},
	{Name: "Silver", ThresholdMajor: 50_000, BonusMajor: 75, RatePercent: 0.15},
	{Name: "Gold", ThresholdMajor: 100_000, BonusMajor: 200, RatePercent: 0.20},
	{Name: "Platinum", ThresholdMajor: 500_000, BonusMajor: 1_500, RatePercent: 0.30},
	{Name: "Diamond", ThresholdMajor: 1_000_000, BonusMajor: 5_000, RatePercent: 0.50},
}

// minBonusThresholdMajor is the floor below which no bonus is awarded.
const minBonusThresholdMajor = tierTableFirstThreshold

const tierTableFirstThreshold = 10_000

// BonusQuote is the pure result of ComputeBonus.
type BonusQuote struct {
	Qualifies   bool
	Tier        string
	RatePercent float64
	Amount      Amount
}

// ComputeBonus is a pure function of purchaseMajor: it performs no I/O and
// mutates no state (§4.4).
func ComputeBonus(purchaseMajor uint64) BonusQuote {
	if purchaseMajor < minBonusThresholdMajor {
		return BonusQuote{Qualifies: false}
	}
	best := tierTable[0]
	for _, t := range tierTable {
		if purchaseMajor >= t.ThresholdMajor {
			best = t
		}
	}
	return BonusQuote{Qualifies: true, Tier: best.Name, RatePercent: best.RatePercent, Amount: AmountFromMajor(best.BonusMajor)}
}

// BonusRecord is the durable record of one awarded bonus (§3.1).
type BonusRecord struct {
	BonusID         string
	Wallet          Address
	UserID          string
	PurchaseMajor   uint64
	Tier            string
	RatePercent     float64
	BonusAmount     Amount
	CreatedAt       time.Time
	Distributed     bool
	DistributedAt   time.Time
	CreditTxHash    string
}

// UserBonusStats aggregates a wallet's bonus history (§4.4).
type UserBonusStats struct {
	Wallet         Address
	TotalPurchases uint64
	TotalBonuses   Amount
	BonusCount     int
	HighestTier    string
	IsVIP          bool
}

// vipTierRank assigns an ordinal to tier names so "highest tier" can be
// tracked across bonuses; higher is better.
var vipTierRank = map[string]int{
	"Bronze": 1, "Silver": 2, "Gold": 3, "Platinum": 4, "Diamond": 5,
}

// vipBonusCountThreshold is the bonus_count at or above which a wallet is
// flagged VIP, regardless of tier (§3.1/§4.5).
const vipBonusCountThreshold = 3

// vipDiamondTier also flags VIP on its own, regardless of bonus_count.
const vipDiamondTier = "Diamond"

// BonusEngine creates and distributes bonuses, and tracks per-wallet and
// system-wide statistics.
type BonusEngine struct {
	mu sync.Mutex

	records map[string]*BonusRecord
	stats   map[Address]*UserBonusStats

	ledger *Ledger
	idGen  IDGenerator
	logger *logrus.Logger

	settlementDenom Denomination
}

// NewBonusEngine builds a BonusEngine that credits bonuses through ledger
// from the BonusReserve address.
func NewBonusEngine(ledger *Ledger, idGen IDGenerator, logger *logrus.Logger) *BonusEngine {
	if idGen == nil {
		idGen = UUIDGenerator{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &BonusEngine{
		records:         make(map[string]*BonusRecord),
		stats:           make(map[Address]*UserBonusStats),
		ledger:          ledger,
		idGen:           idGen,
		logger:          logger,
		settlementDenom: USDTg,
	}
}

// CreateBonus computes and durably records a bonus for wallet based on
// purchaseMajor, without yet crediting it (§4.4). Returns PolicyRejection
// if the purchase does not meet the minimum threshold.
func (be *BonusEngine) CreateBonus(wallet Address, userID string, purchaseMajor uint64) (string, error) {
	if !ValidateAddress(string(wallet)) {
		return "", newErr(ValidationError, "CreateBonus", "malformed wallet address")
	}
	quote := ComputeBonus(purchaseMajor)
	if !quote.Qualifies {
		return "", newErr(PolicyRejection, "CreateBonus", "purchase does not meet bonus threshold")
	}

	be.mu.Lock()
	defer be.mu.Unlock()

	id := be.idGen.NewID()
	now := time.Now().UTC()
	be.records[id] = &BonusRecord{
		BonusID:       id,
		Wallet:        wallet,
		UserID:        userID,
		PurchaseMajor: purchaseMajor,
		Tier:          quote.Tier,
		RatePercent:   quote.RatePercent,
		BonusAmount:   quote.Amount,
		CreatedAt:     now,
	}

	s, ok := be.stats[wallet]
	if !ok {
		s = &UserBonusStats{Wallet: wallet, TotalBonuses: ZeroAmount()}
		be.stats[wallet] = s
	}
	s.TotalPurchases += purchaseMajor
	s.BonusCount++
	if vipTierRank[quote.Tier] > vipTierRank[s.HighestTier] {
		s.HighestTier = quote.Tier
	}
	s.IsVIP = s.BonusCount >= vipBonusCountThreshold || s.HighestTier == vipDiamondTier

	be.logger.WithFields(logrus.Fields{"bonus_id": id, "wallet": wallet, "tier": quote.Tier}).Info("bonus created")
	return id, nil
}

// DistributeBonus credits a previously created bonus's amount from the
// bonus reserve into wallet's ledger balance. It is idempotent: a second
// call for the same bonus_id returns the original credit tx hash without
// crediting again (§4.4 "(bonus_id, distributed) is the sole source of
// truth for idempotency").
func (be *BonusEngine) DistributeBonus(bonusID string) (string, error) {
	be.mu.Lock()
	defer be.mu.Unlock()

	r, ok := be.records[bonusID]
	if !ok {
		return "", newErr(NotFound, "DistributeBonus", "unknown bonus_id")
	}
	if r.Distributed {
		return r.CreditTxHash, nil
	}

	hash, err := be.ledger.Credit(BonusReserve, r.Wallet, be.settlementDenom, r.BonusAmount, "BONUS:"+r.Tier, "BONUS")
	if err != nil {
		return "", err
	}

	r.Distributed = true
	r.DistributedAt = time.Now().UTC()
	r.CreditTxHash = hash

	if s, ok := be.stats[r.Wallet]; ok {
		total, err := s.TotalBonuses.Add(r.BonusAmount)
		if err == nil {
			s.TotalBonuses = total
		}
	}

	be.logger.WithFields(logrus.Fields{"bonus_id": bonusID, "wallet": r.Wallet, "tx": hash}).Info("bonus distributed")
	return hash, nil
}

// UserStats returns a snapshot of wallet's bonus statistics.
func (be *BonusEngine) UserStats(wallet Address) (UserBonusStats, error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	s, ok := be.stats[wallet]
	if !ok {
		return UserBonusStats{}, newErr(NotFound, "UserStats", "no bonus history for wallet")
	}
	return *s, nil
}

// SystemStats aggregates bonus activity across all wallets. Counters are
// summed under the engine lock but the resulting snapshot is not a
// point-in-time transactional view across ledger state - callers needing
// that should cross-reference with the ledger directly.
type SystemStats struct {
	TotalWallets    int
	TotalBonusCount int
	TotalBonuses    Amount
	VIPCount        int
}

func (be *BonusEngine) SystemStats() SystemStats {
	be.mu.Lock()
	defer be.mu.Unlock()

	out := SystemStats{TotalBonuses: ZeroAmount()}
	for _, s := range be.stats {
		out.TotalWallets++
		out.TotalBonusCount += s.BonusCount
		if sum, err := out.TotalBonuses.Add(s.TotalBonuses); err == nil {
			out.TotalBonuses = sum
		}
		if s.IsVIP {
			out.VIPCount++
		}
	}
	return out
}
