// Package reporter renders import results and ledger summaries.
//
// Supported output formats:
//   - Console: human-readable output for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: flat records for spreadsheet applications
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"trade-ledger-service/internal/importer"
	"trade-ledger-service/internal/ledger"
	"trade-ledger-service/internal/models"
	"trade-ledger-service/pkg/errors"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeRecords  bool `json:"include_records"`
	IncludeDiscards bool `json:"include_discards"`
	IncludeTotals   bool `json:"include_totals"`

	// Console formatting options
	MaxListedRows int `json:"max_listed_rows"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:          FormatConsole,
		IncludeRecords:  false,
		IncludeDiscards: true,
		IncludeTotals:   true,
		MaxListedRows:   10,
		CSVDelimiter:    ',',
		CSVHeaders:      true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.MaxListedRows < 1 {
		return fmt.Errorf("max listed rows must be at least 1, got %d", c.MaxListedRows)
	}

	return nil
}

// ReportGenerator renders import and ledger reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator with the given configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateImportReport renders the outcome of one import.
func (rg *ReportGenerator) GenerateImportReport(result *importer.ImportResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("import result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.importConsole(result, writer)
	case FormatJSON:
		return rg.importJSON(result, writer)
	case FormatCSV:
		return rg.importCSV(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// GenerateLedgerReport renders the stored ledger, normally after filtering.
func (rg *ReportGenerator) GenerateLedgerReport(txs []models.StoredTransaction, writer io.Writer) error {
	switch rg.config.Format {
	case FormatConsole:
		return rg.ledgerConsole(txs, writer)
	case FormatJSON:
		return rg.ledgerJSON(txs, writer)
	case FormatCSV:
		return rg.ledgerCSV(txs, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) importConsole(result *importer.ImportResult, writer io.Writer) error {
	fmt.Fprintf(writer, "IMPORT REPORT\n")
	fmt.Fprintf(writer, "Source: %s\n\n", result.Source)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Data Rows: %d\n", result.RowCount)
	fmt.Fprintf(writer, "Imported:  %d (%.1f%%)\n",
		result.ImportedCount(),
		percentage(result.ImportedCount(), result.RowCount))
	fmt.Fprintf(writer, "Discarded: %d (%.1f%%)\n\n",
		len(result.Discards),
		percentage(len(result.Discards), result.RowCount))

	if rg.config.IncludeDiscards && len(result.Discards) > 0 {
		fmt.Fprintf(writer, "=== DISCARDS ===\n")
		rg.printDiscardBreakdown(result, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeTotals && result.ImportedCount() > 0 {
		fmt.Fprintf(writer, "=== TOTALS ===\n")
		printTotals(importTotals(result), writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeRecords && result.ImportedCount() > 0 {
		fmt.Fprintf(writer, "=== IMPORTED RECORDS ===\n")
		rg.printRecordList(result.Records, writer)
	}

	return nil
}

func (rg *ReportGenerator) importJSON(result *importer.ImportResult, writer io.Writer) error {
	output := map[string]interface{}{
		"source":    result.Source,
		"row_count": result.RowCount,
		"imported":  result.ImportedCount(),
		"discarded": len(result.Discards),
	}

	if rg.config.IncludeRecords {
		output["records"] = result.Records
	}
	if rg.config.IncludeDiscards {
		output["discards"] = result.Discards
		output["discards_by_reason"] = result.DiscardsByReason()
	}
	if rg.config.IncludeTotals {
		output["totals"] = importTotals(result)
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (rg *ReportGenerator) importCSV(result *importer.ImportResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{"Status", "Row", "Item", "Game", "Date", "Price", "Type", "Reason", "Field", "Value"}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, record := range result.Records {
		row := []string{
			"imported",
			"",
			record.Item,
			record.Game,
			record.Date.UTC().Format(time.RFC3339),
			formatCents(record.PriceCents),
			string(record.Type),
			"", "", "",
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write record row: %w", err)
		}
	}

	if rg.config.IncludeDiscards {
		for _, discard := range result.Discards {
			row := []string{
				"discarded",
				strconv.Itoa(discard.RowIndex),
				"", "", "", "", "",
				string(discard.Reason),
				discard.Field,
				discard.Value,
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write discard row: %w", err)
			}
		}
	}

	return nil
}

func (rg *ReportGenerator) ledgerConsole(txs []models.StoredTransaction, writer io.Writer) error {
	fmt.Fprintf(writer, "LEDGER REPORT\n")
	fmt.Fprintf(writer, "Transactions: %d\n\n", len(txs))

	if rg.config.IncludeTotals {
		fmt.Fprintf(writer, "=== TOTALS ===\n")
		printTotals(ledger.CalculateTotals(txs), writer)
		fmt.Fprintf(writer, "\n")

		byGame := ledger.TotalsByGame(txs)
		if len(byGame) > 1 {
			fmt.Fprintf(writer, "=== TOTALS BY GAME ===\n")
			for _, game := range ledger.UniqueGames(txs) {
				totals := byGame[game]
				fmt.Fprintf(writer, "%s: net %s (gains %s, spent %s)\n",
					game, formatCents(totals.NetCents),
					formatCents(totals.GainsCents), formatCents(totals.SpentCents))
			}
			fmt.Fprintf(writer, "\n")
		}
	}

	if rg.config.IncludeRecords && len(txs) > 0 {
		fmt.Fprintf(writer, "=== TRANSACTIONS ===\n")
		records := make([]*models.Transaction, len(txs))
		for i := range txs {
			records[i] = &txs[i].Transaction
		}
		rg.printRecordList(records, writer)
	}

	return nil
}

func (rg *ReportGenerator) ledgerJSON(txs []models.StoredTransaction, writer io.Writer) error {
	output := map[string]interface{}{
		"count": len(txs),
	}
	if rg.config.IncludeRecords {
		output["transactions"] = txs
	}
	if rg.config.IncludeTotals {
		output["totals"] = ledger.CalculateTotals(txs)
		output["totals_by_game"] = ledger.TotalsByGame(txs)
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (rg *ReportGenerator) ledgerCSV(txs []models.StoredTransaction, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{"ID", "Item", "Game", "Date", "Price", "Type", "Created_At"}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, tx := range txs {
		row := []string{
			tx.ID,
			tx.Item,
			tx.Game,
			tx.Date.UTC().Format(time.RFC3339),
			formatCents(tx.PriceCents),
			string(tx.Type),
			tx.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write transaction row: %w", err)
		}
	}

	return nil
}

// Helper methods for console output formatting

func (rg *ReportGenerator) printDiscardBreakdown(result *importer.ImportResult, writer io.Writer) {
	counts := result.DiscardsByReason()
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)

	for _, reason := range reasons {
		fmt.Fprintf(writer, "  %-24s %d\n", reason+":", counts[errors.ErrorCode(reason)])
	}

	fmt.Fprintf(writer, "\nDiscarded Rows:\n")
	for i, discard := range result.Discards {
		fmt.Fprintf(writer, "  row %d: %s", discard.RowIndex, discard.Reason)
		if discard.Field != "" {
			fmt.Fprintf(writer, " (field: %s", discard.Field)
			if discard.Value != "" {
				fmt.Fprintf(writer, ", value: %q", discard.Value)
			}
			fmt.Fprintf(writer, ")")
		}
		fmt.Fprintf(writer, "\n")

		if i >= rg.config.MaxListedRows-1 && len(result.Discards) > rg.config.MaxListedRows {
			fmt.Fprintf(writer, "  ... and %d more\n", len(result.Discards)-rg.config.MaxListedRows)
			break
		}
	}
}

func (rg *ReportGenerator) printRecordList(records []*models.Transaction, writer io.Writer) {
	for i, record := range records {
		fmt.Fprintf(writer, "  %d. %s (%s) %s %s on %s\n",
			i+1,
			record.Item,
			record.Game,
			record.Type,
			formatCents(record.PriceCents),
			record.Date.UTC().Format("2006-01-02"))

		if i >= rg.config.MaxListedRows-1 && len(records) > rg.config.MaxListedRows {
			fmt.Fprintf(writer, "  ... and %d more\n", len(records)-rg.config.MaxListedRows)
			break
		}
	}
}

func printTotals(totals models.Totals, writer io.Writer) {
	fmt.Fprintf(writer, "Gains: %s\n", formatCents(totals.GainsCents))
	fmt.Fprintf(writer, "Spent: %s\n", formatCents(totals.SpentCents))
	fmt.Fprintf(writer, "Net:   %s\n", formatCents(totals.NetCents))
}

func importTotals(result *importer.ImportResult) models.Totals {
	var totals models.Totals
	for _, record := range result.Records {
		totals.Add(record)
	}
	return totals
}

// formatCents renders integer cents as a fixed two-decimal amount.
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}

// UpdateConfiguration replaces the generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
