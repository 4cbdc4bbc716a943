package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ServerConfig is the walletserver's runtime configuration, loaded from
// environment variables (optionally seeded by a .env file).
type ServerConfig struct {
	Port         string
	WALPath      string
	SnapshotPath string
}

var AppConfig ServerConfig

func Load() error {
	if err := godotenv.Load("walletserver/.env"); err != nil {
		// Absence of a .env file is not fatal; real deployments supply
		// configuration purely through the environment.
		if !os.IsNotExist(err) {
			return fmt.Errorf("loading env: %w", err)
		}
	}

	port := os.Getenv("WALLET_PORT")
	if port == "" {
		port = "8081"
	}
	walPath := os.Getenv("WALLET_WAL_PATH")
	if walPath == "" {
		walPath = "data/wallet-wal.log"
	}
	snapshotPath := os.Getenv("WALLET_SNAPSHOT_PATH")
	if snapshotPath == "" {
		snapshotPath = "data/wallet-snapshot.json.gz"
	}

	AppConfig = ServerConfig{Port: port, WALPath: walPath, SnapshotPath: snapshotPath}
	return nil
}
