// Command usdtgcore is the operator CLI for a USDTgVerse core instance:
// wallet lifecycle, transfers, bonus quoting and confirmation, social
// recovery, and dev-only mnemonic seeding, all talking directly to an
// in-process Orchestrator.
package main

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tyler-smith/go-bip39"

	core "usdtgverse-core/core"
	pkgconfig "usdtgverse-core/pkg/config"
)

var (
	orc     *core.Orchestrator
	envFlag string
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "usdtgcore",
		Short: "Operate a USDTgVerse core instance from the command line",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pkgconfig.Load(envFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			o, err := core.NewOrchestrator(core.OrchestratorConfig{
				Ledger: core.LedgerConfig{
					WALPath:          cfg.Ledger.WALPath,
					SnapshotPath:     cfg.Ledger.SnapshotPath,
					SnapshotInterval: cfg.Ledger.SnapshotInterval,
				},
			})
			if err != nil {
				return fmt.Errorf("open orchestrator: %w", err)
			}
			orc = o
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFlag, "env", "", "configuration environment to merge over default.yaml")
	root.AddCommand(walletCmd(), transferCmd(), bonusCmd(), recoveryCmd(), seedCmd())
	return root
}

func walletCmd() *cobra.Command {
	wallet := &cobra.Command{Use: "wallet", Short: "Wallet lifecycle operations"}

	create := &cobra.Command{
		Use:   "create <owner-address> <account-type>",
		Short: "Create a smart-contract wallet for owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := core.CanonicalAddress(args[0])
			if err != nil {
				return err
			}
			addr, err := orc.Wallet.CreateWallet(owner, core.AccountType(args[1]))
			if err != nil {
				return err
			}
			fmt.Println(addr)
			return nil
		},
	}

	initialize := &cobra.Command{
		Use:   "init <wallet-address> <implementation-ref>",
		Short: "Transition a wallet from Created to Initialized",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := core.CanonicalAddress(args[0])
			if err != nil {
				return err
			}
			return orc.Wallet.Initialize(addr, args[1])
		},
	}

	activate := &cobra.Command{
		Use:   "activate <wallet-address>",
		Short: "Transition a wallet to Active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := core.CanonicalAddress(args[0])
			if err != nil {
				return err
			}
			return orc.Wallet.Activate(addr)
		},
	}

	show := &cobra.Command{
		Use:   "show <wallet-address>",
		Short: "Print a wallet's current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := core.CanonicalAddress(args[0])
			if err != nil {
				return err
			}
			snap, err := orc.Wallet.Snapshot(addr)
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", snap)
			return nil
		},
	}

	wallet.AddCommand(create, initialize, activate, show)
	return wallet
}

func transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from> <to> <denom> <major-units> [memo]",
		Short: "Move a native coin balance between two addresses",
		Args:  cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := core.CanonicalAddress(args[0])
			if err != nil {
				return err
			}
			to, err := core.CanonicalAddress(args[1])
			if err != nil {
				return err
			}
			denom := core.Denomination(args[2])
			var major uint64
			if _, err := fmt.Sscanf(args[3], "%d", &major); err != nil {
				return fmt.Errorf("parse amount: %w", err)
			}
			memo := ""
			if len(args) == 5 {
				memo = args[4]
			}
			hash, err := orc.Transfer.Transfer(from, to, denom, core.AmountFromMajor(major), memo)
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}

func bonusCmd() *cobra.Command {
	bonus := &cobra.Command{Use: "bonus", Short: "Loyalty bonus operations"}

	quote := &cobra.Command{
		Use:   "quote <purchase-major-units>",
		Short: "Compute the bonus a purchase would qualify for, without recording it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var major uint64
			if _, err := fmt.Sscanf(args[0], "%d", &major); err != nil {
				return fmt.Errorf("parse amount: %w", err)
			}
			q := core.ComputeBonus(major)
			fmt.Printf("%+v\n", q)
			return nil
		},
	}

	confirm := &cobra.Command{
		Use:   "confirm <wallet> <user-id> <purchase-major-units>",
		Short: "Create and distribute a bonus for a confirmed purchase",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := core.CanonicalAddress(args[0])
			if err != nil {
				return err
			}
			var major uint64
			if _, err := fmt.Sscanf(args[2], "%d", &major); err != nil {
				return fmt.Errorf("parse amount: %w", err)
			}
			report, err := orc.ConfirmPurchase(wallet, args[1], major)
			fmt.Printf("%+v\n", report)
			return err
		},
	}

	bonus.AddCommand(quote, confirm)
	return bonus
}

func recoveryCmd() *cobra.Command {
	recovery := &cobra.Command{Use: "recovery", Short: "Social recovery operations"}

	code := &cobra.Command{
		Use:   "generate-code <wallet> <channel> <identifier>",
		Short: "Issue a fresh 6-digit recovery code",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := core.CanonicalAddress(args[0])
			if err != nil {
				return err
			}
			code, err := orc.Recovery.GenerateCode(wallet, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Println(code)
			return nil
		},
	}

	recover_ := &cobra.Command{
		Use:   "recover <wallet> <channel> <identifier> <code> <new-owner>",
		Short: "Verify a recovery code and transfer ownership",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := core.CanonicalAddress(args[0])
			if err != nil {
				return err
			}
			if err := orc.Recovery.VerifyCode(wallet, args[1], args[2], args[3]); err != nil {
				return err
			}
			newOwner, err := core.CanonicalAddress(args[4])
			if err != nil {
				return err
			}
			return orc.Recovery.RecoverWallet(orc.Wallet, wallet, newOwner)
		},
	}

	recovery.AddCommand(code, recover_)
	return recovery
}

// seedCmd wires the bip39 mnemonic scheme into a dev-only address
// derivation helper: a wallet owner never signs up with a mnemonic in
// production (external keys are brought in already as addresses), but
// local development and testing need a reproducible way to mint owner
// addresses from a human-readable phrase.
func seedCmd() *cobra.Command {
	generate := &cobra.Command{
		Use:   "seed-new",
		Short: "Generate a fresh BIP-39 mnemonic for development use",
		RunE: func(cmd *cobra.Command, args []string) error {
			entropy, err := bip39.NewEntropy(128)
			if err != nil {
				return err
			}
			mnemonic, err := bip39.NewMnemonic(entropy)
			if err != nil {
				return err
			}
			fmt.Println(mnemonic)
			return nil
		},
	}

	derive := &cobra.Command{
		Use:   "seed-address <mnemonic words...>",
		Short: "Derive a deterministic owner address from a BIP-39 mnemonic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mnemonic := args[0]
			for _, w := range args[1:] {
				mnemonic += " " + w
			}
			if !bip39.IsMnemonicValid(mnemonic) {
				return fmt.Errorf("invalid mnemonic")
			}
			seed := bip39.NewSeed(mnemonic, "")
			digest := sha256.Sum256(seed)
			owner := core.Address(fmt.Sprintf("0x%x", digest[:20]))
			fmt.Println(owner)
			return nil
		},
	}

	seed := &cobra.Command{Use: "seed", Short: "Development mnemonic-based address derivation"}
	seed.AddCommand(generate, derive)
	return seed
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
