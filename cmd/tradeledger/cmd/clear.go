package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trade-ledger-service/cmd/tradeledger/config"
)

var (
	clearLedger string
	clearForce  bool
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every transaction from the ledger",
	Long: `Clear empties the ledger file. The file itself is kept so subsequent
imports append to a fresh ledger.

Examples:
  tradeledger clear --yes
  tradeledger clear --ledger /tmp/test-ledger.json --yes`,

	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().StringVarP(&clearLedger, "ledger", "l", "", "ledger file path (default: ~/.tradeledger/ledger.json)")
	clearCmd.Flags().BoolVarP(&clearForce, "yes", "y", false, "clear without confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		fmt.Fprintf(os.Stderr, "This removes every stored transaction. Re-run with --yes to confirm.\n")
		return fmt.Errorf("confirmation required")
	}

	ledgerStore := config.CreateStore(clearLedger)
	if err := ledgerStore.Clear(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Ledger cleared.\n")
	return nil
}
