package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trade-ledger-service/cmd/tradeledger/config"
	"trade-ledger-service/internal/ledger"
	"trade-ledger-service/internal/models"
	"trade-ledger-service/internal/parsers"
	"trade-ledger-service/internal/reporter"
	"trade-ledger-service/pkg/errors"
)

// Flags for the report command
var (
	reportLedger string
	reportFormat string
	reportOutput string
	search       string
	game         string
	txType       string
	minPrice     string
	maxPrice     string
	fromDate     string
	toDate       string
	reportList   bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report on the stored ledger",
	Long: `Report loads the ledger, applies the requested filters and prints
totals and matching transactions.

Prices are given in decimal currency; all arithmetic happens in cents.

Examples:
  # Full ledger totals
  tradeledger report

  # One game's sales above 10.00
  tradeledger report --game CS2 --type sale --min-price 10.00

  # Date window as CSV
  tradeledger report --from 2024-01-01 --to 2024-06-30 --output-format csv`,

	PreRunE: validateReportFlags,
	RunE:    runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportLedger, "ledger", "l", "", "ledger file path (default: ~/.tradeledger/ledger.json)")
	reportCmd.Flags().StringVarP(&reportFormat, "output-format", "f", "console", "output format: console, json, csv")
	reportCmd.Flags().StringVarP(&reportOutput, "output-file", "o", "", "output file path (default: stdout)")
	reportCmd.Flags().BoolVar(&reportList, "list", true, "list matching transactions")

	// Filter flags
	reportCmd.Flags().StringVar(&search, "search", "", "match item names containing this text")
	reportCmd.Flags().StringVar(&game, "game", "", "restrict to one game title")
	reportCmd.Flags().StringVar(&txType, "type", "", "restrict to purchases or sales")
	reportCmd.Flags().StringVar(&minPrice, "min-price", "", "minimum price, e.g. 10.00")
	reportCmd.Flags().StringVar(&maxPrice, "max-price", "", "maximum price, e.g. 150.00")
	reportCmd.Flags().StringVar(&fromDate, "from", "", "earliest transaction date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&toDate, "to", "", "latest transaction date (YYYY-MM-DD)")
}

func validateReportFlags(cmd *cobra.Command, args []string) error {
	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[reportFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", reportFormat)
	}

	if txType != "" {
		if _, err := models.ParseTransactionType(txType); err != nil {
			return err
		}
	}

	for _, dateFlag := range []struct{ name, value string }{
		{"from", fromDate},
		{"to", toDate},
	} {
		if dateFlag.value != "" {
			if _, err := time.Parse("2006-01-02", dateFlag.value); err != nil {
				return fmt.Errorf("invalid %s date format. Use YYYY-MM-DD: %w", dateFlag.name, err)
			}
		}
	}

	if fromDate != "" && toDate != "" {
		from, _ := time.Parse("2006-01-02", fromDate)
		to, _ := time.Parse("2006-01-02", toDate)
		if from.After(to) {
			return fmt.Errorf("from date cannot be after to date")
		}
	}

	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	filter, err := buildFilter()
	if err != nil {
		return err
	}

	ledgerStore := config.CreateStore(reportLedger)
	txs, err := ledgerStore.Load()
	if err != nil {
		return err
	}

	matched := filter.Apply(txs)

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Loaded %d transactions, %d match the filter\n", len(txs), len(matched))
	}

	reportConfig := config.CreateReportConfig(reportFormat, reportList)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	output := os.Stdout
	if reportOutput != "" {
		output, err = os.Create(reportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	if err := reportGenerator.GenerateLedgerReport(matched, output); err != nil {
		return errors.WrapIfNeeded(err, errors.CategoryInternal, errors.CodeUnexpectedError,
			"failed to generate ledger report")
	}
	return nil
}

func buildFilter() (ledger.Filter, error) {
	filter := ledger.Filter{
		Search: search,
		Game:   game,
	}

	if txType != "" {
		parsed, err := models.ParseTransactionType(txType)
		if err != nil {
			return ledger.Filter{}, err
		}
		filter.Type = parsed
	}

	if minPrice != "" {
		cents, err := parsePriceFlag("min-price", minPrice)
		if err != nil {
			return ledger.Filter{}, err
		}
		filter.MinPriceCents = &cents
	}
	if maxPrice != "" {
		cents, err := parsePriceFlag("max-price", maxPrice)
		if err != nil {
			return ledger.Filter{}, err
		}
		filter.MaxPriceCents = &cents
	}

	if fromDate != "" {
		from, _ := time.Parse("2006-01-02", fromDate)
		filter.From = from
	}
	if toDate != "" {
		to, _ := time.Parse("2006-01-02", toDate)
		// Inclusive through the end of the day.
		filter.To = to.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}

	return filter, nil
}

func parsePriceFlag(name, value string) (int64, error) {
	cents, err := parsers.ParsePriceCents(value, "")
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': use decimal currency like 10.00", name, value)
	}
	return cents, nil
}
