package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"usdtgverse-core/internal/testutil"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.Ledger.SnapshotInterval != 500 {
		t.Fatalf("unexpected snapshot interval: %d", AppConfig.Ledger.SnapshotInterval)
	}
	if AppConfig.Server.WalletPort != "8081" {
		t.Fatalf("unexpected wallet port: %s", AppConfig.Server.WalletPort)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("bootstrap")
	if AppConfig.Ledger.SnapshotInterval != 50 {
		t.Fatalf("expected SnapshotInterval 50, got %d", AppConfig.Ledger.SnapshotInterval)
	}
	if AppConfig.Server.WalletPort != "18081" {
		t.Fatalf("expected overridden wallet port")
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("ledger:\n  wal_path: sandbox-wal.log\n  snapshot_interval: 7\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.Ledger.WALPath != "sandbox-wal.log" {
		t.Fatalf("expected wal path sandbox-wal.log, got %s", AppConfig.Ledger.WALPath)
	}
	if AppConfig.Ledger.SnapshotInterval != 7 {
		t.Fatalf("expected SnapshotInterval 7, got %d", AppConfig.Ledger.SnapshotInterval)
	}
}
