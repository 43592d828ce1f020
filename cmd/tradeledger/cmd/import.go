package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trade-ledger-service/cmd/tradeledger/config"
	"trade-ledger-service/internal/importer"
	"trade-ledger-service/internal/reporter"
	"trade-ledger-service/pkg/errors"
)

// Flags for the import command
var (
	importFile   string
	ledgerFile   string
	outputFormat string
	outputFile   string
	dryRun       bool
	replace      bool
	oldestFirst  bool
	noHeader     bool
	delimiter    string
	listRecords  bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a trade-history export into the ledger",
	Long: `Import reads a marketplace trade-history CSV, normalizes its rows into
canonical transactions and appends them to the local ledger.

Rows that cannot be salvaged are discarded with a reason; the import only
fails when no row at all survives.

Examples:
  # Basic import
  tradeledger import --file trades.csv

  # Validate without writing to the ledger
  tradeledger import --file trades.csv --dry-run

  # Replace the ledger instead of appending
  tradeledger import --file trades.csv --replace

  # File sorted oldest-first (disables year inference for year-less dates)
  tradeledger import --file trades.csv --oldest-first

  # Machine-readable report
  tradeledger import --file trades.csv --output-format json --output-file report.json`,

	PreRunE: validateImportFlags,
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	// Required flags
	importCmd.Flags().StringVarP(&importFile, "file", "i", "", "path to the trade-history CSV export (required)")

	// Ledger flags
	importCmd.Flags().StringVarP(&ledgerFile, "ledger", "l", "", "ledger file path (default: ~/.tradeledger/ledger.json)")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without writing to the ledger")
	importCmd.Flags().BoolVar(&replace, "replace", false, "replace the ledger contents instead of appending")

	// Parsing flags
	importCmd.Flags().BoolVar(&oldestFirst, "oldest-first", false, "file is sorted oldest-first; year-less dates are discarded")
	importCmd.Flags().BoolVar(&noHeader, "no-header", false, "file has no header line; assume the canonical column order")
	importCmd.Flags().StringVar(&delimiter, "delimiter", "", "field delimiter (default: comma)")

	// Output flags
	importCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	importCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	importCmd.Flags().BoolVar(&listRecords, "list", false, "list imported records in the report")

	importCmd.MarkFlagRequired("file")

	// Bind flags to viper
	viper.BindPFlag("ledger", importCmd.Flags().Lookup("ledger"))
	viper.BindPFlag("oldest-first", importCmd.Flags().Lookup("oldest-first"))
	viper.BindPFlag("delimiter", importCmd.Flags().Lookup("delimiter"))
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	ledgerFile = viper.GetString("ledger")

	if importFile == "" {
		return fmt.Errorf("file is required")
	}
	if err := validateFileExists(importFile, "trade-history export"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if dryRun && replace {
		return fmt.Errorf("--dry-run and --replace are mutually exclusive")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Importing %s\n", importFile)
		if dryRun {
			fmt.Fprintf(os.Stderr, "Dry run: the ledger will not be modified\n")
		}
	}

	importConfig, err := config.CreateImportConfig(noHeader, viper.GetString("delimiter"), viper.GetBool("oldest-first"), nil)
	if err != nil {
		return fmt.Errorf("failed to create import config: %w", err)
	}

	imp, err := importer.NewImporter(importConfig)
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}

	result, err := imp.ImportFile(importFile, time.Now().UTC())
	if err != nil {
		return err
	}

	if !dryRun {
		ledgerStore := config.CreateStore(ledgerFile)
		if replace {
			if _, err := ledgerStore.ReplaceAll(result.Records); err != nil {
				return err
			}
		} else {
			if _, err := ledgerStore.Append(result.Records); err != nil {
				return err
			}
		}
	}

	reportConfig := config.CreateReportConfig(outputFormat, listRecords)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	if err := reportGenerator.GenerateImportReport(result, output); err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "report generation", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nImport completed: %d imported, %d discarded.\n",
			result.ImportedCount(), len(result.Discards))
		if len(result.Discards) > 0 {
			fmt.Fprintf(os.Stderr, "Discards: %s\n", result.DiscardSummary().Error())
		}
	}

	return nil
}
