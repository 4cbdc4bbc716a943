package controllers

import (
	"encoding/json"
	"math/big"
	"net/http"

	core "usdtgverse-core/core"

	"usdtgverse-core/bonusserver/metrics"
	"usdtgverse-core/bonusserver/services"
)

// BonusController exposes the Bonus Engine over HTTP via chi.
type BonusController struct {
	svc *services.BonusService
}

func NewBonusController(svc *services.BonusService) *BonusController {
	return &BonusController{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
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

type quoteRequest struct {
	PurchaseMajor uint64 `json:"purchase_major"`
}

func (c *BonusController) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}
	writeJSON(w, http.StatusOK, c.svc.Quote(req.PurchaseMajor))
}

type confirmRequest struct {
	Wallet        string `json:"wallet"`
	UserID        string `json:"user_id"`
	PurchaseMajor uint64 `json:"purchase_major"`
}

func (c *BonusController) ConfirmPurchase(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	report, err := c.svc.ConfirmPurchase(req.Wallet, req.UserID, req.PurchaseMajor)
	if err != nil {
		if report == nil || !report.BonusCreated {
			metrics.BonusCreateRejections.Inc()
		}
		// A partial report (bonus created but not distributed) is still
		// useful to the caller, so it is returned alongside the error.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"error": err.Error(), "report": report})
		return
	}

	metrics.BonusesCreated.Inc()
	if report.Distributed {
		metrics.BonusesDistributed.Inc()
		quote := c.svc.Quote(req.PurchaseMajor)
		major := new(big.Float).Quo(new(big.Float).SetInt(quote.Amount.Minor()), big.NewFloat(1e18))
		f, _ := major.Float64()
		metrics.BonusAmountDistributed.Observe(f)
	}
	writeJSON(w, http.StatusOK, report)
}

func (c *BonusController) UserStats(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "wallet query parameter required"})
		return
	}
	stats, err := c.svc.UserStats(wallet)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (c *BonusController) SystemStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.svc.SystemStats())
}

func (c *BonusController) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
