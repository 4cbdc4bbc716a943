package services

import (
	core "usdtgverse-core/core"
)

// WalletService wraps the Orchestrator's wallet, transfer, recovery and
// bonus operations for the HTTP API.
type WalletService struct {
	orc *core.Orchestrator
}

func NewService(orc *core.Orchestrator) *WalletService { return &WalletService{orc: orc} }

func (ws *WalletService) CreateWallet(owner string, accountType core.AccountType) (core.Address, error) {
	ownerAddr, err := core.CanonicalAddress(owner)
	if err != nil {
		return "", err
	}
	return ws.orc.Wallet.CreateWallet(ownerAddr, accountType)
}

func (ws *WalletService) InitializeWallet(wallet, implementationRef string) error {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return err
	}
	return ws.orc.Wallet.Initialize(addr, implementationRef)
}

func (ws *WalletService) ActivateWallet(wallet string) error {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return err
	}
	return ws.orc.Wallet.Activate(addr)
}

func (ws *WalletService) WalletSnapshot(wallet string) (core.Wallet, error) {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return core.Wallet{}, err
	}
	return ws.orc.Wallet.Snapshot(addr)
}

func (ws *WalletService) Transfer(from, to string, denom core.Denomination, amountMajor uint64, memo string) (string, error) {
	fromAddr, err := core.CanonicalAddress(from)
	if err != nil {
		return "", err
	}
	toAddr, err := core.CanonicalAddress(to)
	if err != nil {
		return "", err
	}
	return ws.orc.Transfer.Transfer(fromAddr, toAddr, denom, core.AmountFromMajor(amountMajor), memo)
}

func (ws *WalletService) ExecuteMetaTx(mt *core.MetaTransaction) (string, error) {
	return ws.orc.ExecuteMetaTx(mt)
}

func (ws *WalletService) SubmitBatch(batch *core.BatchTransaction) error {
	return ws.orc.Wallet.SubmitBatch(batch)
}

func (ws *WalletService) ConfigureRecovery(wallet string, guardians []string, threshold int) error {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return err
	}
	guardianAddrs := make([]core.Address, 0, len(guardians))
	for _, g := range guardians {
		ga, err := core.CanonicalAddress(g)
		if err != nil {
			return err
		}
		guardianAddrs = append(guardianAddrs, ga)
	}
	return ws.orc.Wallet.ConfigureRecovery(addr, guardianAddrs, threshold)
}

func (ws *WalletService) GenerateRecoveryCode(wallet, channel, identifier string) (string, error) {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return "", err
	}
	return ws.orc.Recovery.GenerateCode(addr, channel, identifier)
}

func (ws *WalletService) VerifyRecoveryCode(wallet, channel, identifier, code string) error {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return err
	}
	return ws.orc.Recovery.VerifyCode(addr, channel, identifier, code)
}

func (ws *WalletService) RecoverWallet(wallet, newOwner string) error {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return err
	}
	newOwnerAddr, err := core.CanonicalAddress(newOwner)
	if err != nil {
		return err
	}
	return ws.orc.Recovery.RecoverWallet(ws.orc.Wallet, addr, newOwnerAddr)
}

func (ws *WalletService) ConfirmPurchase(wallet, userID string, purchaseMajor uint64) (*core.PurchaseBonusReport, error) {
	addr, err := core.CanonicalAddress(wallet)
	if err != nil {
		return nil, err
	}
	return ws.orc.ConfirmPurchase(addr, userID, purchaseMajor)
}
