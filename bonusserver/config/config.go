package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ServerConfig is the bonusserver's runtime configuration, loaded from
// environment variables (optionally seeded by a .env file).
type ServerConfig struct {
	Port         string
	MetricsPort  string
	WALPath      string
	SnapshotPath string
}

var AppConfig ServerConfig

func Load() error {
	if err := godotenv.Load("bonusserver/.env"); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("loading env: %w", err)
		}
	}

	port := os.Getenv("BONUS_PORT")
	if port == "" {
		port = "8082"
	}
	metricsPort := os.Getenv("BONUS_METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "9090"
	}
	walPath := os.Getenv("BONUS_WAL_PATH")
	if walPath == "" {
		walPath = "data/bonus-wal.log"
	}
	snapshotPath := os.Getenv("BONUS_SNAPSHOT_PATH")
	if snapshotPath == "" {
		snapshotPath = "data/bonus-snapshot.json.gz"
	}

	AppConfig = ServerConfig{Port: port, MetricsPort: metricsPort, WALPath: walPath, SnapshotPath: snapshotPath}
	return nil
}
