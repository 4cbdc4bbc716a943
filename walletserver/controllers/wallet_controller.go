package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	core "usdtgverse-core/core"
	"usdtgverse-core/walletserver/services"
)

// WalletController provides HTTP handlers fronting the Wallet/Transfer/
// Recovery/Bonus engines via WalletService.
type WalletController struct {
	svc *services.WalletService
}

func NewWalletController(svc *services.WalletService) *WalletController {
	return &WalletController{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch core.KindOf(err) {
	case core.ValidationError:
		status = http.StatusBadRequest
	case core.NotFound:
		status = http.StatusNotFound
	case core.AuthorizationFailure:
		status = http.StatusForbidden
	case core.Duplicate, core.StateConflict:
		status = http.StatusConflict
	case core.InsufficientFunds, core.PolicyRejection:
		status = http.StatusUnprocessableEntity
	case core.BackingStoreUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (wc *WalletController) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Owner       string           `json:"owner"`
		AccountType core.AccountType `json:"account_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	addr, err := wc.svc.CreateWallet(req.Owner, req.AccountType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"wallet": string(addr)})
}

func (wc *WalletController) Initialize(w http.ResponseWriter, r *http.Request) {
	var req struct{ Wallet, ImplementationRef string }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := wc.svc.InitializeWallet(req.Wallet, req.ImplementationRef); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (wc *WalletController) Activate(w http.ResponseWriter, r *http.Request) {
	var req struct{ Wallet string }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := wc.svc.ActivateWallet(req.Wallet); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (wc *WalletController) Snapshot(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	snap, err := wc.svc.WalletSnapshot(wallet)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (wc *WalletController) Transfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From, To string
		Denom    core.Denomination
		Amount   uint64
		Memo     string
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	hash, err := wc.svc.Transfer(req.From, req.To, req.Denom, req.Amount, req.Memo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tx_hash": hash})
}

func (wc *WalletController) ExecuteMetaTx(w http.ResponseWriter, r *http.Request) {
	var mt core.MetaTransaction
	if err := json.NewDecoder(r.Body).Decode(&mt); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	hash, err := wc.svc.ExecuteMetaTx(&mt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"execution_hash": hash})
}

func (wc *WalletController) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var batch core.BatchTransaction
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := wc.svc.SubmitBatch(&batch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (wc *WalletController) ConfigureRecovery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wallet    string
		Guardians []string
		Threshold int
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := wc.svc.ConfigureRecovery(req.Wallet, req.Guardians, req.Threshold); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (wc *WalletController) GenerateRecoveryCode(w http.ResponseWriter, r *http.Request) {
	var req struct{ Wallet, Channel, Identifier string }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	code, err := wc.svc.GenerateRecoveryCode(req.Wallet, req.Channel, req.Identifier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (wc *WalletController) RecoverWallet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wallet, Channel, Identifier, Code, NewOwner string
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := wc.svc.VerifyRecoveryCode(req.Wallet, req.Channel, req.Identifier, req.Code); err != nil {
		writeError(w, err)
		return
	}
	if err := wc.svc.RecoverWallet(req.Wallet, req.NewOwner); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (wc *WalletController) ConfirmPurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wallet, UserID string
		PurchaseMajor  uint64
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	report, err := wc.svc.ConfirmPurchase(req.Wallet, req.UserID, req.PurchaseMajor)
	if err != nil {
		// A partial report (bonus created but not distributed) is still
		// useful to the caller, so it is returned alongside the error.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error(), "report": report})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Healthz is a minimal liveness probe.
func (wc *WalletController) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}
