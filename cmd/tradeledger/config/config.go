package config

import (
	"fmt"
	"os"
	"path/filepath"

	"trade-ledger-service/internal/parsers"
	"trade-ledger-service/internal/reporter"
	"trade-ledger-service/internal/store"
)

// CreateImportConfig builds the parser configuration from CLI settings.
func CreateImportConfig(noHeader bool, delimiter string, oldestFirst bool, aliases map[string]string) (*parsers.ImportConfig, error) {
	config := parsers.DefaultImportConfig()
	config.HasHeader = !noHeader
	config.AssumeNewestFirst = !oldestFirst

	if delimiter != "" {
		runes := []rune(delimiter)
		if len(runes) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
		}
		config.Delimiter = runes[0]
	}

	for alias, canonical := range aliases {
		config.ColumnAliases[alias] = canonical
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string, listRecords bool) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.IncludeRecords = listRecords

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludeRecords = true
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		// CSV is flat transaction data
		config.IncludeTotals = false
	}

	return config
}

// DefaultLedgerPath places the ledger under the user's home directory,
// falling back to the working directory when home cannot be resolved.
func DefaultLedgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ledger.json"
	}
	return filepath.Join(home, ".tradeledger", "ledger.json")
}

// CreateStore opens the ledger store at the given path.
func CreateStore(path string) store.Store {
	if path == "" {
		path = DefaultLedgerPath()
	}
	return store.NewFileStore(path)
}
