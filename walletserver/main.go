package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	core "usdtgverse-core/core"
	"usdtgverse-core/walletserver/config"
	"usdtgverse-core/walletserver/controllers"
	"usdtgverse-core/walletserver/routes"
	"usdtgverse-core/walletserver/services"
)

func main() {
	if err := config.Load(); err != nil {
		logrus.Fatalf("config: %v", err)
	}

	orc, err := core.NewOrchestrator(core.OrchestratorConfig{
		Ledger: core.LedgerConfig{
			WALPath:          config.AppConfig.WALPath,
			SnapshotPath:     config.AppConfig.SnapshotPath,
			SnapshotInterval: 500,
		},
	})
	if err != nil {
		logrus.Fatalf("orchestrator: %v", err)
	}
	defer orc.Close()

	svc := services.NewService(orc)
	ctrl := controllers.NewWalletController(svc)

	r := mux.NewRouter()
	routes.Register(r, ctrl)

	logrus.Infof("wallet server listening on %s", config.AppConfig.Port)
	if err := http.ListenAndServe(":"+config.AppConfig.Port, r); err != nil {
		logrus.Fatal(err)
	}
}
