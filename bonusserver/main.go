package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	core "usdtgverse-core/core"

	"usdtgverse-core/bonusserver/config"
	"usdtgverse-core/bonusserver/controllers"
	"usdtgverse-core/bonusserver/routes"
	"usdtgverse-core/bonusserver/services"
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
	ctrl := controllers.NewBonusController(svc)

	r := chi.NewRouter()
	routes.Register(r, ctrl)

	logrus.Infof("bonus server listening on %s (metrics scraped at /metrics)", config.AppConfig.Port)
	if err := http.ListenAndServe(":"+config.AppConfig.Port, r); err != nil {
		logrus.Fatal(err)
	}
}
