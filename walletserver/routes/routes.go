package routes

import (
	"github.com/gorilla/mux"

	"usdtgverse-core/walletserver/controllers"
	"usdtgverse-core/walletserver/middleware"
)

func Register(r *mux.Router, wc *controllers.WalletController) {
	r.Use(middleware.Logger)
	r.HandleFunc("/api/wallet", wc.CreateWallet).Methods("POST")
	r.HandleFunc("/api/wallet/initialize", wc.Initialize).Methods("POST")
	r.HandleFunc("/api/wallet/activate", wc.Activate).Methods("POST")
	r.HandleFunc("/api/wallet", wc.Snapshot).Methods("GET")
	r.HandleFunc("/api/transfer", wc.Transfer).Methods("POST")
	r.HandleFunc("/api/wallet/metatx", wc.ExecuteMetaTx).Methods("POST")
	r.HandleFunc("/api/wallet/batch", wc.SubmitBatch).Methods("POST")
	r.HandleFunc("/api/wallet/recovery/configure", wc.ConfigureRecovery).Methods("POST")
	r.HandleFunc("/api/wallet/recovery/code", wc.GenerateRecoveryCode).Methods("POST")
	r.HandleFunc("/api/wallet/recovery/recover", wc.RecoverWallet).Methods("POST")
	r.HandleFunc("/api/bonus/purchase", wc.ConfirmPurchase).Methods("POST")
	r.HandleFunc("/healthz", wc.Healthz).Methods("GET")
}
