package services

import (
	core "usdtgverse-core/core"
)

// BonusService adapts the core BonusEngine and Orchestrator to HTTP
// request/response shapes.
type BonusService struct {
	orc *core.Orchestrator
}

func NewService(orc *core.Orchestrator) *BonusService {
	return &BonusService{orc: orc}
}

func (s *BonusService) Quote(purchaseMajor uint64) core.BonusQuote {
	return core.ComputeBonus(purchaseMajor)
}

func (s *BonusService) ConfirmPurchase(wallet string, userID string, purchaseMajor uint64) (*core.PurchaseBonusReport, error) {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return nil, err
	}
	return s.orc.ConfirmPurchase(addr, userID, purchaseMajor)
}

func (s *BonusService) UserStats(wallet string) (core.UserBonusStats, error) {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return core.UserBonusStats{}, err
	}
	return s.orc.Bonus.UserStats(addr)
}

func (s *BonusService) SystemStats() core.SystemStats {
	return s.orc.Bonus.SystemStats()
}
